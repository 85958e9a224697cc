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

// walletHandler handles HTTP requests related to wallets.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

// newWalletHandler creates a new walletHandler.
func newWalletHandler(ws portssvc.WalletSvcFacade) *walletHandler {
	return &walletHandler{
		walletService: ws,
	}
}

// RegisterWalletRoutes registers routes related to wallets.
func RegisterWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := newWalletHandler(walletService)

	wallets := rg.Group("/wallets")
	{
		wallets.POST("", h.createWallet)
		wallets.GET("", h.listWallets)
		wallets.GET("/:walletID", h.getWallet)
		wallets.PUT("/:walletID/status", h.setWalletStatus)
		wallets.GET("/:walletID/balance", h.getWalletBalance)
		wallets.GET("/:walletID/transactions", h.listWalletTransactions)
		wallets.POST("/:walletID/transactions", h.recordWalletTransaction)
	}
}

// createWallet opens a wallet for a user and currency.
func (h *walletHandler) createWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateWallet", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create wallet", slog.String("user_id", req.UserID), slog.String("currency_code", req.CurrencyCode))

	wallet, err := h.walletService.CreateWallet(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating wallet", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Wallet already exists for user and currency", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create wallet in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create wallet"})
		}
		return
	}

	logger.Info("Wallet created successfully", slog.String("wallet_id", wallet.WalletID))
	c.JSON(http.StatusCreated, dto.ToWalletResponse(wallet))
}

// listWallets retrieves the authenticated user's wallets.
func (h *walletHandler) listWallets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wallets, err := h.walletService.ListWalletsByUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list wallets from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list wallets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallets": dto.ToListWalletResponse(wallets)})
}

// getWallet retrieves a specific wallet by its ID.
func (h *walletHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	wallet, err := h.walletService.GetWalletByID(c.Request.Context(), walletID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Wallet not found", slog.String("wallet_id", walletID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		} else {
			logger.Error("Failed to get wallet from service", slog.String("error", err.Error()), slog.String("wallet_id", walletID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve wallet"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// setWalletStatus toggles a wallet's active flag.
func (h *walletHandler) setWalletStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var req dto.SetWalletActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetWalletStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.walletService.SetWalletActive(c.Request.Context(), walletID, *req.Active, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Wallet not found for status change", slog.String("wallet_id", walletID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		} else {
			logger.Error("Failed to change wallet status", slog.String("error", err.Error()), slog.String("wallet_id", walletID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change wallet status"})
		}
		return
	}

	logger.Info("Wallet status changed", slog.String("wallet_id", walletID), slog.Bool("active", *req.Active))
	c.Status(http.StatusNoContent)
}

// getWalletBalance derives a wallet's balance from its completed transactions.
func (h *walletHandler) getWalletBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	asOf, err := parseAsOfQuery(c)
	if err != nil {
		logger.Warn("Invalid asOf query parameter", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf parameter: " + err.Error()})
		return
	}

	balance, err := h.walletService.GetWalletBalance(c.Request.Context(), walletID, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Wallet not found for balance", slog.String("wallet_id", walletID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		} else {
			logger.Error("Failed to compute wallet balance", slog.String("error", err.Error()), slog.String("wallet_id", walletID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute wallet balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToWalletBalanceResponse(balance))
}

// listWalletTransactions retrieves a page of a wallet's statement.
func (h *walletHandler) listWalletTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var params dto.ListWalletTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListWalletTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.walletService.ListWalletTransactions(c.Request.Context(), walletID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Wallet not found for transactions", slog.String("wallet_id", walletID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list wallet transactions", slog.String("error", err.Error()), slog.String("wallet_id", walletID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list wallet transactions"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// recordWalletTransaction posts a deposit or withdrawal on a wallet.
func (h *walletHandler) recordWalletTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var req dto.RecordWalletTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordWalletTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("wallet_id", walletID), slog.String("type", string(req.Type)))
	logger.Info("Received request to record wallet transaction", slog.String("amount", req.Amount.String()))

	txn, err := h.walletService.RecordTransaction(c.Request.Context(), walletID, req, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error recording wallet transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Wallet not found for transaction")
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		} else if errors.Is(err, apperrors.ErrInactive) {
			logger.Warn("Wallet is inactive", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Warn("Insufficient funds for withdrawal", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to record wallet transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record wallet transaction"})
		}
		return
	}

	logger.Info("Wallet transaction recorded successfully", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToWalletTransactionResponse(txn))
}
