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

// portfolioHandler handles HTTP requests related to portfolios, positions and
// valuations.
type portfolioHandler struct {
	portfolioService portssvc.PortfolioSvcFacade
	valuationService portssvc.ValuationSvc
}

// newPortfolioHandler creates a new portfolioHandler.
func newPortfolioHandler(ps portssvc.PortfolioSvcFacade, vs portssvc.ValuationSvc) *portfolioHandler {
	return &portfolioHandler{
		portfolioService: ps,
		valuationService: vs,
	}
}

// registerPortfolioRoutes registers routes related to portfolios.
func registerPortfolioRoutes(rg *gin.RouterGroup, portfolioService portssvc.PortfolioSvcFacade, valuationService portssvc.ValuationSvc) {
	h := newPortfolioHandler(portfolioService, valuationService)

	portfolios := rg.Group("/portfolios")
	{
		portfolios.POST("", h.createPortfolio)
		portfolios.GET("", h.listPortfolios)
		portfolios.GET("/:portfolioID", h.getPortfolio)
		portfolios.PUT("/:portfolioID/status", h.setPortfolioStatus)
		portfolios.GET("/:portfolioID/positions", h.listPositions)
		portfolios.GET("/:portfolioID/positions/:productID", h.getPosition)
		portfolios.GET("/:portfolioID/deposits", h.listDeposits)
		portfolios.GET("/:portfolioID/valuation", h.getPortfolioValuation)
	}

	deposits := rg.Group("/deposits")
	{
		deposits.GET("/:depositID/value", h.getDepositValue)
	}

	rg.GET("/valuations", h.getUserValuation)
}

// createPortfolio opens a new portfolio for a user.
func (h *portfolioHandler) createPortfolio(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePortfolio", slog.String("error", err.Error()))
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
	logger.Info("Received request to create portfolio", slog.String("user_id", req.UserID))

	portfolio, err := h.portfolioService.CreatePortfolio(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating portfolio", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create portfolio in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create portfolio"})
		}
		return
	}

	logger.Info("Portfolio created successfully", slog.String("portfolio_id", portfolio.PortfolioID))
	c.JSON(http.StatusCreated, dto.ToPortfolioResponse(portfolio))
}

// listPortfolios retrieves the authenticated user's portfolios.
func (h *portfolioHandler) listPortfolios(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	portfolios, err := h.portfolioService.ListPortfoliosByUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list portfolios from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list portfolios"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"portfolios": dto.ToListPortfolioResponse(portfolios)})
}

// getPortfolio retrieves a specific portfolio by its ID.
func (h *portfolioHandler) getPortfolio(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	portfolioID := c.Param("portfolioID")

	portfolio, err := h.portfolioService.GetPortfolioByID(c.Request.Context(), portfolioID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Portfolio not found", slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		} else {
			logger.Error("Failed to get portfolio from service", slog.String("error", err.Error()), slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve portfolio"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPortfolioResponse(portfolio))
}

// setPortfolioStatus toggles a portfolio's active flag.
func (h *portfolioHandler) setPortfolioStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	portfolioID := c.Param("portfolioID")

	var req dto.SetPortfolioActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetPortfolioStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.portfolioService.SetPortfolioActive(c.Request.Context(), portfolioID, *req.Active, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Portfolio not found for status change", slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		} else {
			logger.Error("Failed to change portfolio status", slog.String("error", err.Error()), slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change portfolio status"})
		}
		return
	}

	logger.Info("Portfolio status changed", slog.String("portfolio_id", portfolioID), slog.Bool("active", *req.Active))
	c.Status(http.StatusNoContent)
}

// listPositions replays the unit ledger for every product held in a portfolio.
func (h *portfolioHandler) listPositions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	portfolioID := c.Param("portfolioID")

	asOf, err := parseAsOfQuery(c)
	if err != nil {
		logger.Warn("Invalid asOf query parameter", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf parameter: " + err.Error()})
		return
	}

	positions, err := h.portfolioService.ListVariablePositions(c.Request.Context(), portfolioID, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Portfolio not found for positions", slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		} else {
			logger.Error("Failed to list positions from service", slog.String("error", err.Error()), slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list positions"})
		}
		return
	}

	responses := make([]dto.VariablePositionResponse, len(positions))
	for i := range positions {
		responses[i] = dto.ToVariablePositionResponse(&positions[i])
	}
	c.JSON(http.StatusOK, gin.H{"positions": responses})
}

// getPosition replays the unit ledger for one product in a portfolio.
func (h *portfolioHandler) getPosition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	portfolioID := c.Param("portfolioID")
	productID := c.Param("productID")

	asOf, err := parseAsOfQuery(c)
	if err != nil {
		logger.Warn("Invalid asOf query parameter", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf parameter: " + err.Error()})
		return
	}

	position, err := h.portfolioService.GetVariablePosition(c.Request.Context(), portfolioID, productID, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Position not found", slog.String("portfolio_id", portfolioID), slog.String("product_id", productID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Position not found"})
		} else {
			logger.Error("Failed to get position from service", slog.String("error", err.Error()), slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve position"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToVariablePositionResponse(position))
}

// listDeposits retrieves a portfolio's fixed-income placements.
func (h *portfolioHandler) listDeposits(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	portfolioID := c.Param("portfolioID")
	includeClosed := c.Query("includeClosed") == "true"

	deposits, err := h.portfolioService.ListDeposits(c.Request.Context(), portfolioID, includeClosed)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Portfolio not found for deposits", slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		} else {
			logger.Error("Failed to list deposits from service", slog.String("error", err.Error()), slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list deposits"})
		}
		return
	}

	responses := make([]dto.DepositResponse, len(deposits))
	for i := range deposits {
		responses[i] = dto.ToDepositResponse(&deposits[i])
	}
	c.JSON(http.StatusOK, gin.H{"deposits": responses})
}

// getDepositValue reconstructs a deposit's value with accrued interest as of a date.
func (h *portfolioHandler) getDepositValue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	depositID := c.Param("depositID")

	asOf, err := parseAsOfQuery(c)
	if err != nil {
		logger.Warn("Invalid asOf query parameter", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf parameter: " + err.Error()})
		return
	}

	value, err := h.portfolioService.GetDepositValue(c.Request.Context(), depositID, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Deposit not found for valuation", slog.String("deposit_id", depositID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit not found"})
		} else {
			logger.Error("Failed to value deposit", slog.String("error", err.Error()), slog.String("deposit_id", depositID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to value deposit"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDepositValueResponse(value))
}

// getPortfolioValuation prices every position in a portfolio as of a date.
func (h *portfolioHandler) getPortfolioValuation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	portfolioID := c.Param("portfolioID")

	asOf, err := parseAsOfQuery(c)
	if err != nil {
		logger.Warn("Invalid asOf query parameter", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf parameter: " + err.Error()})
		return
	}

	valuation, err := h.valuationService.ValuePortfolio(c.Request.Context(), portfolioID, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Portfolio not found for valuation", slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		} else {
			logger.Error("Failed to value portfolio", slog.String("error", err.Error()), slog.String("portfolio_id", portfolioID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to value portfolio"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPortfolioValuationResponse(valuation))
}

// getUserValuation values all of the authenticated user's portfolios.
func (h *portfolioHandler) getUserValuation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	asOf, err := parseAsOfQuery(c)
	if err != nil {
		logger.Warn("Invalid asOf query parameter", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf parameter: " + err.Error()})
		return
	}

	valuations, err := h.valuationService.ValueUserHoldings(c.Request.Context(), userID, asOf)
	if err != nil {
		logger.Error("Failed to value user holdings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to value holdings"})
		return
	}

	responses := make([]dto.PortfolioValuationResponse, len(valuations))
	for i := range valuations {
		responses[i] = dto.ToPortfolioValuationResponse(&valuations[i])
	}
	c.JSON(http.StatusOK, gin.H{"valuations": responses})
}
