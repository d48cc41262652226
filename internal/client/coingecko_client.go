package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MarketDataClient defines the interface for the aggregated market-data API.
type MarketDataClient interface {
	GetSimplePrices(ctx context.Context, ids []string, vsCurrency string) (map[string]float64, error)
}

type coinGeckoClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewCoinGeckoClient creates a new CoinGecko market-data client.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) MarketDataClient {
	return &coinGeckoClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("CoinGeckoClient"),
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
}

// GetSimplePrices fetches USD unit prices for a set of CoinGecko asset ids.
func (c *coinGeckoClientImpl) GetSimplePrices(ctx context.Context, ids []string, vsCurrency string) (map[string]float64, error) {
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", vsCurrency)
	if c.apiKey != "" {
		query.Set("x_cg_demo_api_key", c.apiKey)
	}
	requestURL := c.baseURL + "/simple/price?" + query.Encode()

	rawBody, statusCode, err := doRequest(ctx, c.client, fasthttp.MethodGet, requestURL, nil, c.timeout)
	if err != nil {
		return nil, err
	}
	if statusCode != fasthttp.StatusOK {
		return nil, fmt.Errorf("coingecko simple/price request failed with status %d", statusCode)
	}

	var raw map[string]map[string]float64
	if err := json.Unmarshal(rawBody, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coingecko simple/price response: %w", err)
	}

	prices := make(map[string]float64, len(raw))
	for id, currencies := range raw {
		if price, ok := currencies[vsCurrency]; ok {
			prices[id] = price
		}
	}

	c.logger.Debug("CoinGecko prices received", zap.Int("requested", len(ids)), zap.Int("resolved", len(prices)))
	return prices, nil
}
