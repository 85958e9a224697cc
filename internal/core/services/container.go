package services

import (
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
)

// NewServiceContainer wires every service against the repository provider.
// Construction order follows the dependency chain: the ledger underpins the
// wallet and order services, and valuation reads through the portfolio service.
func NewServiceContainer(repos portsrepo.RepositoryProvider, policy Policy) *portssvc.ServiceContainer {
	ledgerSvc := NewLedgerService(repos.JournalRepo, repos.AccountRepo)
	chartSvc := NewChartService(repos.AccountRepo, repos.JournalRepo)
	walletSvc := NewWalletService(repos.WalletRepo, repos.AccountRepo, ledgerSvc)
	productSvc := NewProductService(repos.ProductRepo, policy)
	portfolioSvc := NewPortfolioService(repos.PortfolioRepo, repos.ProductRepo, policy)
	rateSvc := NewExchangeRateService(repos.ExchangeRateRepo, policy)
	priceProvider := NewStoredPriceProvider(repos.ProductRepo)
	valuationSvc := NewValuationService(portfolioSvc, repos.PortfolioRepo, repos.ProductRepo, priceProvider, rateSvc, policy)
	orderSvc := NewOrderService(repos.PortfolioRepo, repos.ProductRepo, repos.WalletRepo, repos.AccountRepo, repos.OutboxRepo, ledgerSvc, productSvc, portfolioSvc, policy)

	return &portssvc.ServiceContainer{
		Chart:     chartSvc,
		Ledger:    ledgerSvc,
		Wallet:    walletSvc,
		Product:   productSvc,
		Portfolio: portfolioSvc,
		Valuation: valuationSvc,
		Order:     orderSvc,
		Rates:     rateSvc,
	}
}
