package domain_test

import (
	"testing"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestAggregateBatchStatus(t *testing.T) {
	tests := []struct {
		name string
		legs []domain.PortfolioTransaction
		want domain.BatchStatus
	}{
		{
			name: "empty batch stays pending",
			legs: nil,
			want: domain.BatchPending,
		},
		{
			name: "single pending leg",
			legs: []domain.PortfolioTransaction{
				{Status: domain.StatusPending},
			},
			want: domain.BatchPending,
		},
		{
			name: "one pending leg keeps the batch pending",
			legs: []domain.PortfolioTransaction{
				{Status: domain.StatusCompleted},
				{Status: domain.StatusPending},
				{Status: domain.StatusFailed},
			},
			want: domain.BatchPending,
		},
		{
			name: "all legs completed",
			legs: []domain.PortfolioTransaction{
				{Status: domain.StatusCompleted},
				{Status: domain.StatusCompleted},
			},
			want: domain.BatchAllCompleted,
		},
		{
			name: "all legs failed",
			legs: []domain.PortfolioTransaction{
				{Status: domain.StatusFailed},
				{Status: domain.StatusFailed},
			},
			want: domain.BatchAllFailed,
		},
		{
			name: "mixed outcomes",
			legs: []domain.PortfolioTransaction{
				{Status: domain.StatusCompleted},
				{Status: domain.StatusFailed},
			},
			want: domain.BatchPartiallyFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.AggregateBatchStatus(tt.legs)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWalletDirection(t *testing.T) {
	tests := []struct {
		name    string
		txnType domain.TransactionType
		want    int
	}{
		{name: "deposit is an inflow", txnType: domain.TxnDeposit, want: +1},
		{name: "sell proceeds are an inflow", txnType: domain.TxnSell, want: +1},
		{name: "interest is an inflow", txnType: domain.TxnInterest, want: +1},
		{name: "liquidation is an inflow", txnType: domain.TxnLiquidation, want: +1},
		{name: "dividend is an inflow", txnType: domain.TxnDividend, want: +1},
		{name: "withdrawal is an outflow", txnType: domain.TxnWithdrawal, want: -1},
		{name: "buy is an outflow", txnType: domain.TxnBuy, want: -1},
		{name: "investment is an outflow", txnType: domain.TxnInvestment, want: -1},
		{name: "fee is an outflow", txnType: domain.TxnFee, want: -1},
		{name: "tax is an outflow", txnType: domain.TxnTax, want: -1},
		{name: "transfer is neutral", txnType: domain.TxnTransfer, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.WalletDirection(tt.txnType))
			assert.Equal(t, tt.want < 0, tt.txnType.IsOutflow())
		})
	}
}

func TestAccountType_DebitNormal(t *testing.T) {
	assert.True(t, domain.Asset.DebitNormal())
	assert.True(t, domain.Expense.DebitNormal())
	assert.False(t, domain.Liability.DebitNormal())
	assert.False(t, domain.Equity.DebitNormal())
	assert.False(t, domain.Revenue.DebitNormal())
	assert.False(t, domain.Income.DebitNormal())
}
