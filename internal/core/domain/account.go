package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
	Income    AccountType = "INCOME"
)

// Account represents a node in the chart of accounts.
// Header accounts aggregate their children and never receive postings directly;
// detail accounts are the only legal posting destinations.
type Account struct {
	AccountID       string      `json:"accountID"`       // Primary Key (UUID)
	Code            string      `json:"code"`            // Unique ledger code, e.g. "1000", "2000-01"
	Name            string      `json:"name"`            // Unique account name
	AccountType     AccountType `json:"accountType"`     // ASSET, LIABILITY, etc.
	CurrencyCode    string      `json:"currencyCode"`    // NGN or USD
	IsHeader        bool        `json:"isHeader"`        // True for header, false for detail
	ParentAccountID string      `json:"parentAccountID"` // Nullable FK -> accounts.account_id; must reference a header
	Level           int         `json:"level"`           // Depth in the account tree, headers at 1
	Description     string      `json:"description"`     // Nullable user description
	IsActive        bool        `json:"isActive"`
	AuditFields
}

// DebitNormal reports whether the account type carries a debit-normal balance.
// The sign convention here is load-bearing: ASSET/EXPENSE balances are
// debits minus credits, everything else is credits minus debits.
func (t AccountType) DebitNormal() bool {
	return t == Asset || t == Expense
}
