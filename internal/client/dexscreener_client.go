package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wallet_aggregator/internal/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DEXScreenerClient defines the interface for interacting with the DEX Screener API.
type DEXScreenerClient interface {
	GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]entity.PairData, error)
}

type dexScreenerClientImpl struct {
	client              *fasthttp.Client
	baseURL             string
	timeout             time.Duration
	logger              *zap.Logger
	limiter             *rate.Limiter
	maxTokensPerRequest int
}

// NewDEXScreenerClient creates a new DEX Screener client.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, logger *zap.Logger, maxTokensPerRequest int) DEXScreenerClient {
	return &dexScreenerClientImpl{
		client:              &fasthttp.Client{},
		baseURL:             strings.TrimRight(baseURL, "/"),
		timeout:             timeout,
		logger:              logger.Named("DEXScreenerClient"),
		limiter:             rate.NewLimiter(rate.Limit(5), 5),
		maxTokensPerRequest: maxTokensPerRequest,
	}
}

// GetTokenPairsByAddresses fetches trading pairs for up to maxTokensPerRequest
// token contract addresses on one DEX Screener chain.
func (c *dexScreenerClientImpl) GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]entity.PairData, error) {
	if len(tokenAddresses) == 0 {
		return nil, fmt.Errorf("tokenAddresses cannot be empty")
	}
	if len(tokenAddresses) > c.maxTokensPerRequest {
		return nil, fmt.Errorf("number of token addresses (%d) exceeds max tokens per request (%d)", len(tokenAddresses), c.maxTokensPerRequest)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	requestURL := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, dexscreenerChainID, strings.Join(tokenAddresses, ","))
	c.logger.Debug("Requesting token pairs from DEX Screener", zap.String("url", requestURL))

	rawBody, statusCode, err := doRequest(ctx, c.client, fasthttp.MethodGet, requestURL, nil, c.timeout)
	if err != nil {
		return nil, err
	}
	if statusCode != fasthttp.StatusOK {
		c.logger.Warn("DEX Screener API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", statusCode))
		return nil, fmt.Errorf("DEX Screener request to %s failed with status %d", requestURL, statusCode)
	}

	var pairs []entity.PairData
	if err := json.Unmarshal(rawBody, &pairs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response from %s: %w", requestURL, err)
	}

	c.logger.Debug("DEX Screener pairs received",
		zap.String("dexscreenerChainID", dexscreenerChainID),
		zap.Int("pairCount", len(pairs)))
	return pairs, nil
}
