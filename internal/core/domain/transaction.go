package domain

// TransactionType categorises the business meaning of a money movement.
type TransactionType string

const (
	TxnDeposit     TransactionType = "DEPOSIT"
	TxnWithdrawal  TransactionType = "WITHDRAWAL"
	TxnInvestment  TransactionType = "INVESTMENT"
	TxnDividend    TransactionType = "DIVIDEND"
	TxnInterest    TransactionType = "INTEREST"
	TxnLiquidation TransactionType = "LIQUIDATION"
	TxnFee         TransactionType = "FEE"
	TxnTax         TransactionType = "TAX"
	TxnTransfer    TransactionType = "TRANSFER"
	TxnBuy         TransactionType = "BUY"
	TxnSell        TransactionType = "SELL"
)

// TransactionStatus is the lifecycle state of a wallet or portfolio transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusReversed  TransactionStatus = "REVERSED"
)

// walletDirection maps each transaction type to its effect on a wallet balance.
// Types absent from the map (e.g. TRANSFER) are treated as neutral.
var walletDirection = map[TransactionType]int{
	TxnDeposit:     +1,
	TxnSell:        +1,
	TxnInterest:    +1,
	TxnLiquidation: +1,
	TxnDividend:    +1,
	TxnWithdrawal:  -1,
	TxnBuy:         -1,
	TxnInvestment:  -1,
	TxnFee:         -1,
	TxnTax:         -1,
}

// WalletDirection returns +1 for inflow types, -1 for outflow types and 0 otherwise.
func WalletDirection(t TransactionType) int {
	return walletDirection[t]
}

// IsOutflow reports whether the type reduces the wallet balance and therefore
// requires a balance sufficiency check before posting.
func (t TransactionType) IsOutflow() bool {
	return walletDirection[t] < 0
}
