package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	walletRepo := newPgxWalletRepository(dbPool)
	productRepo := newPgxProductRepository(dbPool)
	portfolioRepo := newPgxPortfolioRepository(dbPool)
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)
	outboxRepo := newPgxOutboxRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      accountRepo,
		JournalRepo:      journalRepo,
		WalletRepo:       walletRepo,
		ProductRepo:      productRepo,
		PortfolioRepo:    portfolioRepo,
		ExchangeRateRepo: exchangeRateRepo,
		OutboxRepo:       outboxRepo,
	}
}
