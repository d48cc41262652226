package api

import (
	"context"
	"errors"
	"net/http"

	"wallet_aggregator/internal/cache"
	"wallet_aggregator/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PortfolioProvider is the aggregation entry point the handlers depend on.
type PortfolioProvider interface {
	GetPortfolio(ctx context.Context, input string) (*entity.PortfolioResult, error)
}

// PortfolioHandler handles wallet-portfolio HTTP requests.
type PortfolioHandler struct {
	portfolios PortfolioProvider
	store      *cache.Store
	logger     *zap.Logger
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(portfolios PortfolioProvider, store *cache.Store, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolios: portfolios,
		store:      store,
		logger:     logger.Named("PortfolioHandler"),
	}
}

// GetWalletHandler serves GET /api/wallet/:addressOrName. Client mistakes
// (bad address, unknown or unresolvable name) are 400s; anything else that
// still fails after per-source degradation is a 500.
func (h *PortfolioHandler) GetWalletHandler(c *gin.Context) {
	input := c.Param("addressOrName")

	result, err := h.portfolios.GetPortfolio(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidAddress) ||
			errors.Is(err, entity.ErrResolutionFailed) ||
			errors.Is(err, entity.ErrNameNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Portfolio aggregation failed", zap.String("input", input), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal error",
			"message": "failed to aggregate portfolio",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// HealthHandler serves GET /api/health with cache statistics.
func (h *PortfolioHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache":  h.store.Snapshot(),
	})
}
