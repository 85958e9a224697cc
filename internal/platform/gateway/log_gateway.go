package gateway

import (
	"context"
	"log/slog"
	"sync"

	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
)

// LogGateway is a settlement gateway that accepts every instruction and logs
// it. It stands in for the execution venue connection in environments that
// have none, and keeps the dispatcher's idempotency contract: redelivering an
// instruction that was already accepted is a no-op.
type LogGateway struct {
	logger *slog.Logger

	mu       sync.Mutex
	accepted map[string]struct{}
}

// NewLogGateway creates a gateway that logs accepted instructions.
func NewLogGateway(logger *slog.Logger) *LogGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogGateway{
		logger:   logger,
		accepted: make(map[string]struct{}),
	}
}

var _ portssvc.SettlementGateway = (*LogGateway)(nil)

// Submit records the instruction as accepted.
func (g *LogGateway) Submit(ctx context.Context, instruction portssvc.SettlementInstruction) error {
	g.mu.Lock()
	_, seen := g.accepted[instruction.TransactionID]
	if !seen {
		g.accepted[instruction.TransactionID] = struct{}{}
	}
	g.mu.Unlock()

	if seen {
		g.logger.Debug("Instruction already accepted, ignoring redelivery",
			slog.String("transaction_id", instruction.TransactionID))
		return nil
	}

	g.logger.Info("Settlement instruction accepted",
		slog.String("transaction_id", instruction.TransactionID),
		slog.String("portfolio_id", instruction.PortfolioID),
		slog.String("product_id", instruction.ProductID),
		slog.String("type", string(instruction.Type)),
		slog.String("amount", instruction.Amount.String()),
		slog.String("currency_code", instruction.CurrencyCode))
	return nil
}
