package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/dto"
)

// legSpec names one side of a wallet journal in terms of a system account purpose.
type legSpec struct {
	side    domain.EntrySide
	purpose domain.SystemAccountPurpose
}

// walletLegMap gives the journal shape for each wallet transaction type.
// Both legs carry the full transaction amount; the FEE type additionally
// splits its credit side when VAT applies (see buildFeeEntries).
var walletLegMap = map[domain.TransactionType][]legSpec{
	domain.TxnDeposit:     {{domain.Debit, domain.SystemCash}, {domain.Credit, domain.SystemCustomerLiability}},
	domain.TxnWithdrawal:  {{domain.Debit, domain.SystemCustomerLiability}, {domain.Credit, domain.SystemCash}},
	domain.TxnBuy:         {{domain.Debit, domain.SystemCustomerLiability}, {domain.Credit, domain.SystemInvestmentClearing}},
	domain.TxnInvestment:  {{domain.Debit, domain.SystemCustomerLiability}, {domain.Credit, domain.SystemInvestmentClearing}},
	domain.TxnSell:        {{domain.Debit, domain.SystemInvestmentClearing}, {domain.Credit, domain.SystemCustomerLiability}},
	domain.TxnLiquidation: {{domain.Debit, domain.SystemInvestmentClearing}, {domain.Credit, domain.SystemCustomerLiability}},
	domain.TxnInterest:    {{domain.Debit, domain.SystemInterestExpense}, {domain.Credit, domain.SystemCustomerLiability}},
	domain.TxnDividend:    {{domain.Debit, domain.SystemInterestExpense}, {domain.Credit, domain.SystemCustomerLiability}},
	domain.TxnTax:         {{domain.Debit, domain.SystemCustomerLiability}, {domain.Credit, domain.SystemWithholdingTaxPayable}},
}

// walletPoster posts wallet movements together with their journals inside a
// caller-owned database transaction. It is shared by the wallet service and
// the order orchestrator so both write paths produce identical books.
type walletPoster struct {
	accountRepo portsrepo.AccountRepositoryFacade
	walletRepo  portsrepo.WalletRepositoryWithTx
	ledgerSvc   portssvc.LedgerSvcFacade
}

// resolveSystemAccount maps a purpose and currency to a detail account ID.
func (p *walletPoster) resolveSystemAccount(ctx context.Context, purpose domain.SystemAccountPurpose, currencyCode string) (string, error) {
	account, err := p.accountRepo.FindSystemAccount(ctx, purpose, currencyCode)
	if err != nil {
		return "", fmt.Errorf("no system account mapped for %s/%s: %w", purpose, currencyCode, err)
	}
	return account.AccountID, nil
}

// buildEntries constructs balanced journal entry requests for a standard
// wallet movement.
func (p *walletPoster) buildEntries(ctx context.Context, txnType domain.TransactionType, currencyCode string, amount decimal.Decimal, memo string) ([]dto.CreateEntryRequest, error) {
	specs, ok := walletLegMap[txnType]
	if !ok {
		return nil, fmt.Errorf("%w: no journal mapping for transaction type %s", apperrors.ErrValidation, txnType)
	}
	entries := make([]dto.CreateEntryRequest, len(specs))
	for i, spec := range specs {
		accountID, err := p.resolveSystemAccount(ctx, spec.purpose, currencyCode)
		if err != nil {
			return nil, err
		}
		entries[i] = dto.CreateEntryRequest{
			AccountID:   accountID,
			Amount:      amount,
			Side:        spec.side,
			Description: memo,
		}
	}
	return entries, nil
}

// buildFeeEntries constructs the journal for a FEE movement. The debit takes
// the full charge; the credit side splits into fee income and VAT payable.
func (p *walletPoster) buildFeeEntries(ctx context.Context, currencyCode string, fee, vat decimal.Decimal, memo string) ([]dto.CreateEntryRequest, error) {
	liabilityID, err := p.resolveSystemAccount(ctx, domain.SystemCustomerLiability, currencyCode)
	if err != nil {
		return nil, err
	}
	feeIncomeID, err := p.resolveSystemAccount(ctx, domain.SystemFeeIncome, currencyCode)
	if err != nil {
		return nil, err
	}

	entries := []dto.CreateEntryRequest{
		{AccountID: liabilityID, Amount: fee.Add(vat), Side: domain.Debit, Description: memo},
		{AccountID: feeIncomeID, Amount: fee, Side: domain.Credit, Description: memo},
	}
	if vat.IsPositive() {
		vatID, err := p.resolveSystemAccount(ctx, domain.SystemVATPayable, currencyCode)
		if err != nil {
			return nil, err
		}
		entries = append(entries, dto.CreateEntryRequest{AccountID: vatID, Amount: vat, Side: domain.Credit, Description: memo})
	}
	return entries, nil
}

// postMovementInTx posts the journal for a wallet movement and records the
// wallet transaction, all inside the caller's database transaction. The
// movement is recorded as COMPLETED; pending settlement is tracked on the
// portfolio leg, never on the wallet.
func (p *walletPoster) postMovementInTx(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet, txnType domain.TransactionType, amount decimal.Decimal, vat decimal.Decimal, memo string, date time.Time, userID string) (*domain.WalletTransaction, error) {
	var entries []dto.CreateEntryRequest
	var err error
	walletAmount := amount
	if txnType == domain.TxnFee {
		entries, err = p.buildFeeEntries(ctx, wallet.CurrencyCode, amount, vat, memo)
		walletAmount = amount.Add(vat)
	} else {
		entries, err = p.buildEntries(ctx, txnType, wallet.CurrencyCode, amount, memo)
	}
	if err != nil {
		return nil, err
	}

	journal, err := p.ledgerSvc.PostJournalInTx(ctx, tx, dto.CreateJournalRequest{
		JournalDate: date,
		Memo:        memo,
		Entries:     entries,
	}, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := domain.WalletTransaction{
		TransactionID: uuid.NewString(),
		WalletID:      wallet.WalletID,
		Type:          txnType,
		Amount:        walletAmount,
		CurrencyCode:  wallet.CurrencyCode,
		Status:        domain.StatusCompleted,
		JournalID:     journal.JournalID,
		Date:          date,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := p.walletRepo.SaveWalletTransactionInTx(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("failed to save wallet transaction: %w", err)
	}
	return &txn, nil
}

// lockAndCheckFunds locks the wallet row and verifies the derived balance can
// absorb the given outflow. Locking before reading closes the race between two
// concurrent spends against the same wallet.
func (p *walletPoster) lockAndCheckFunds(ctx context.Context, tx pgx.Tx, walletID string, outflow decimal.Decimal) (*domain.Wallet, error) {
	wallet, err := p.walletRepo.FindWalletForUpdate(ctx, tx, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.Active {
		return nil, fmt.Errorf("%w: wallet %s is inactive", apperrors.ErrInactive, walletID)
	}
	if outflow.IsPositive() {
		balance, err := p.walletRepo.SumCompletedTransactionsInTx(ctx, tx, walletID)
		if err != nil {
			return nil, fmt.Errorf("failed to derive wallet balance: %w", err)
		}
		if balance.LessThan(outflow) {
			return nil, fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, balance.String(), outflow.String())
		}
	}
	return wallet, nil
}
