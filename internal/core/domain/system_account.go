package domain

// SystemAccountPurpose names a platform posting destination. Each purpose is
// mapped per currency to one detail account in the chart, so journal
// construction never hardcodes account identifiers.
type SystemAccountPurpose string

const (
	// SystemCash is the platform's bank/cash asset account.
	SystemCash SystemAccountPurpose = "CASH"
	// SystemCustomerLiability is the liability owed to customer wallets.
	SystemCustomerLiability SystemAccountPurpose = "CUSTOMER_LIABILITY"
	// SystemInvestmentClearing holds cash in flight between wallet and market.
	SystemInvestmentClearing SystemAccountPurpose = "INVESTMENT_CLEARING"
	// SystemInvestmentAsset carries customers' settled investment holdings.
	SystemInvestmentAsset SystemAccountPurpose = "INVESTMENT_ASSET"
	// SystemFeeIncome collects transaction fees earned by the platform.
	SystemFeeIncome SystemAccountPurpose = "FEE_INCOME"
	// SystemVATPayable accumulates VAT charged on fees, owed to the tax authority.
	SystemVATPayable SystemAccountPurpose = "VAT_PAYABLE"
	// SystemInterestExpense is the cost of interest credited to customers.
	SystemInterestExpense SystemAccountPurpose = "INTEREST_EXPENSE"
	// SystemWithholdingTaxPayable accumulates tax withheld from customer interest.
	SystemWithholdingTaxPayable SystemAccountPurpose = "WITHHOLDING_TAX_PAYABLE"
)
