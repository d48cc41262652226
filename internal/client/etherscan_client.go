package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"wallet_aggregator/internal/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ExplorerClient defines the interface for the block-explorer transaction API.
type ExplorerClient interface {
	GetTransactions(ctx context.Context, address string, limit int) ([]entity.ExplorerTx, error)
}

type etherscanClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewEtherscanClient creates a new block-explorer client. The free tier is
// rate limited hard, so the limiter is not optional here.
func NewEtherscanClient(baseURL, apiKey string, timeout time.Duration, ratePerSecond int, logger *zap.Logger) ExplorerClient {
	return &etherscanClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("EtherscanClient"),
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
	}
}

// GetTransactions fetches the most recent transactions for an address,
// newest first, truncated to limit.
func (c *etherscanClientImpl) GetTransactions(ctx context.Context, address string, limit int) ([]entity.ExplorerTx, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("explorer API key is not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", "txlist")
	query.Set("address", address)
	query.Set("page", "1")
	query.Set("offset", fmt.Sprintf("%d", limit))
	query.Set("sort", "desc")
	query.Set("apikey", c.apiKey)
	requestURL := c.baseURL + "?" + query.Encode()

	rawBody, statusCode, err := doRequest(ctx, c.client, fasthttp.MethodGet, requestURL, nil, c.timeout)
	if err != nil {
		return nil, err
	}
	if statusCode != fasthttp.StatusOK {
		return nil, fmt.Errorf("explorer txlist request failed with status %d", statusCode)
	}

	var response entity.TxListResponse
	if err := json.Unmarshal(rawBody, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal explorer txlist response: %w", err)
	}
	if response.Status != "1" && !strings.Contains(response.Message, "No transactions") {
		return nil, fmt.Errorf("explorer txlist returned status %q: %s", response.Status, response.Message)
	}

	c.logger.Debug("Explorer transactions received",
		zap.String("address", address),
		zap.Int("count", len(response.Result)))
	return response.Result, nil
}
