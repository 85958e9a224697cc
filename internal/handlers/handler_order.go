package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/dto"
	"github.com/a7a6j4/pieV1/internal/middleware"
	"github.com/gin-gonic/gin"
)

// orderHandler handles HTTP requests related to orders, batches and their
// settlement lifecycle.
type orderHandler struct {
	orderService portssvc.OrderSvcFacade
}

// newOrderHandler creates a new orderHandler.
func newOrderHandler(os portssvc.OrderSvcFacade) *orderHandler {
	return &orderHandler{
		orderService: os,
	}
}

// registerOrderRoutes registers routes related to orders.
func registerOrderRoutes(rg *gin.RouterGroup, orderService portssvc.OrderSvcFacade) {
	h := newOrderHandler(orderService)

	portfolios := rg.Group("/portfolios")
	{
		portfolios.POST("/:portfolioID/orders", h.placeOrder)
		portfolios.GET("/:portfolioID/transactions", h.listTransactions)
	}

	batches := rg.Group("/batches")
	{
		batches.GET("/:batchID", h.getBatch)
	}

	transactions := rg.Group("/transactions")
	{
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.POST("/:transactionID/complete", h.completeTransaction)
		transactions.POST("/:transactionID/fail", h.failTransaction)
	}

	rg.POST("/deposits/:depositID/liquidate", h.liquidateDeposit)
}

// placeOrder validates and places a multi-leg order against a portfolio.
func (h *orderHandler) placeOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	portfolioID := c.Param("portfolioID")

	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PlaceOrder", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("portfolio_id", portfolioID), slog.String("requesting_user_id", requestingUserID))
	logger.Info("Received request to place order", slog.Int("leg_count", len(req.Legs)))

	batch, err := h.orderService.PlaceOrder(c.Request.Context(), portfolioID, req, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error placing order", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Resource not found placing order", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrInactive) {
			logger.Warn("Inactive portfolio or product", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Warn("Insufficient funds for order", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Order conflicts with current holdings", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to place order in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		}
		return
	}

	logger.Info("Order placed successfully", slog.String("batch_id", batch.BatchID), slog.String("status", batch.Status))
	c.JSON(http.StatusCreated, batch)
}

// getBatch retrieves an order batch with its legs and aggregate status.
func (h *orderHandler) getBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("batchID")

	batch, err := h.orderService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Batch not found", slog.String("batch_id", batchID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		} else {
			logger.Error("Failed to get batch from service", slog.String("error", err.Error()), slog.String("batch_id", batchID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve batch"})
		}
		return
	}

	c.JSON(http.StatusOK, batch)
}

// getTransaction retrieves a specific order leg.
func (h *orderHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	txn, err := h.orderService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found", slog.String("transaction_id", transactionID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to get transaction from service", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPortfolioTransactionResponse(txn))
}

// listTransactions retrieves a page of a portfolio's order legs.
func (h *orderHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	portfolioID := c.Param("portfolioID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.orderService.ListTransactionsByPortfolio(c.Request.Context(), portfolioID, params.Limit, params.Offset)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Portfolio not found for transactions", slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		} else {
			logger.Error("Failed to list transactions from service", slog.String("error", err.Error()), slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": dto.ToPortfolioTransactionResponses(txns)})
}

// completeTransaction settles a pending order leg.
func (h *orderHandler) completeTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	// Body is optional, every field has a server-side default.
	var req dto.SettleTransactionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for CompleteTransaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID))
	logger.Info("Received request to complete transaction")

	txn, err := h.orderService.CompleteTransaction(c.Request.Context(), transactionID, req, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found for completion")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Transaction is not pending", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error completing transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to complete transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete transaction"})
		}
		return
	}

	logger.Info("Transaction completed successfully", slog.String("journal_id", txn.JournalID))
	c.JSON(http.StatusOK, dto.ToPortfolioTransactionResponse(txn))
}

// failTransaction marks a pending leg failed and refunds the funding wallet.
func (h *orderHandler) failTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.FailTransactionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for FailTransaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID))
	logger.Info("Received request to fail transaction", slog.String("reason", req.Reason))

	txn, err := h.orderService.FailTransaction(c.Request.Context(), transactionID, req, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found for failure")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Transaction is not pending", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to fail transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fail transaction"})
		}
		return
	}

	logger.Info("Transaction marked failed")
	c.JSON(http.StatusOK, dto.ToPortfolioTransactionResponse(txn))
}

// liquidateDeposit closes a fixed-income placement and credits the wallet.
func (h *orderHandler) liquidateDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	depositID := c.Param("depositID")

	var req dto.LiquidateDepositRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for LiquidateDeposit", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("deposit_id", depositID))
	logger.Info("Received request to liquidate deposit")

	txn, err := h.orderService.LiquidateDeposit(c.Request.Context(), depositID, req, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Deposit not found for liquidation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Deposit already closed", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error liquidating deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to liquidate deposit in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to liquidate deposit"})
		}
		return
	}

	logger.Info("Deposit liquidated successfully", slog.String("transaction_id", txn.TransactionID), slog.String("payout", txn.Amount.String()))
	c.JSON(http.StatusOK, dto.ToPortfolioTransactionResponse(txn))
}
