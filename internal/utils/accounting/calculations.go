package accounting

import (
	"fmt"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the correct sign to an entry amount based on account type and entry side.
// This is used in both services and repositories to ensure consistent accounting logic.
func CalculateSignedAmount(entry domain.Entry, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := entry.Amount
	isDebit := entry.Side == domain.Debit

	// Determine sign based on accounting convention
	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to ASSET/EXPENSE -> Negative (-)
	// DEBIT to LIABILITY/EQUITY/REVENUE/INCOME -> Negative (-)
	// CREDIT to LIABILITY/EQUITY/REVENUE/INCOME -> Positive (+)
	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit { // Credit to Asset/Expense
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue, domain.Income:
		if isDebit { // Debit to Liability/Equity/Revenue/Income
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, entry.AccountID)
	}
	return signedAmount, nil
}

// ValidateJournalBalance checks whether the debit and credit totals of a journal's entries are equal.
func ValidateJournalBalance(entries []domain.Entry) error {
	if len(entries) < 2 {
		return fmt.Errorf("journal must have at least two entries")
	}

	zero := decimal.NewFromInt(0)
	debits := zero
	credits := zero

	for _, entry := range entries {
		// Ensure amount is positive
		if entry.Amount.LessThanOrEqual(zero) {
			return fmt.Errorf("entry amount must be positive for entry ID %s", entry.EntryID)
		}

		switch entry.Side {
		case domain.Debit:
			debits = debits.Add(entry.Amount)
		case domain.Credit:
			credits = credits.Add(entry.Amount)
		default:
			return fmt.Errorf("unknown entry side '%s' for entry ID %s", entry.Side, entry.EntryID)
		}
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("journal entries do not balance: debits %s, credits %s", debits.String(), credits.String())
	}

	return nil
}

// ComputeBalance derives an account balance from debit and credit totals
// using the account type's normal balance side.
func ComputeBalance(accountType domain.AccountType, totalDebits, totalCredits decimal.Decimal) decimal.Decimal {
	if accountType.DebitNormal() {
		return totalDebits.Sub(totalCredits)
	}
	return totalCredits.Sub(totalDebits)
}
