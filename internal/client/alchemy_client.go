package client

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"wallet_aggregator/internal/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AlchemyClient defines the interface for the Alchemy token and NFT APIs.
type AlchemyClient interface {
	GetTokenBalances(ctx context.Context, network, address string) (*entity.TokenBalancesResult, error)
	GetTokenMetadata(ctx context.Context, network, contractAddress string) (*entity.TokenMetadata, error)
	GetOwnedNFTs(ctx context.Context, network, address string, pageSize int) (*entity.OwnedNFTsResponse, error)
	GetFloorPrice(ctx context.Context, network, contractAddress string) (*entity.FloorPriceResponse, error)
}

type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type alchemyClientImpl struct {
	client    *fasthttp.Client
	apiKey    string
	timeout   time.Duration
	logger    *zap.Logger
	limiter   *rate.Limiter
	requestID atomic.Int64
}

// NewAlchemyClient creates a new Alchemy API client.
func NewAlchemyClient(apiKey string, timeout time.Duration, ratePerSecond int, logger *zap.Logger) AlchemyClient {
	return &alchemyClientImpl{
		client:  &fasthttp.Client{},
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("AlchemyClient"),
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
	}
}

func (c *alchemyClientImpl) rpcURL(network string) string {
	return fmt.Sprintf("https://%s.g.alchemy.com/v2/%s", network, c.apiKey)
}

func (c *alchemyClientImpl) nftURL(network, endpoint string) string {
	return fmt.Sprintf("https://%s.g.alchemy.com/nft/v3/%s/%s", network, c.apiKey, endpoint)
}

// call executes one JSON-RPC method against the network's Alchemy endpoint
// and unmarshals the result field into out.
func (c *alchemyClientImpl) call(ctx context.Context, network, method string, params []any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	requestURL := c.rpcURL(network)
	rawBody, statusCode, err := doRequest(ctx, c.client, fasthttp.MethodPost, requestURL, payload, c.timeout)
	if err != nil {
		return err
	}
	if statusCode != fasthttp.StatusOK {
		return fmt.Errorf("alchemy %s request failed with status %d", method, statusCode)
	}

	var envelope struct {
		Result stdjson.RawMessage `json:"result"`
		Error  *jsonRPCError      `json:"error"`
	}
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("alchemy %s error %d: %s", method, envelope.Error.Code, envelope.Error.Message)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
	}
	return nil
}

// GetTokenBalances fetches all non-zero ERC-20 balances for an address.
func (c *alchemyClientImpl) GetTokenBalances(ctx context.Context, network, address string) (*entity.TokenBalancesResult, error) {
	var result entity.TokenBalancesResult
	if err := c.call(ctx, network, "alchemy_getTokenBalances", []any{address, "erc20"}, &result); err != nil {
		c.logger.Warn("Token balance listing failed",
			zap.String("network", network),
			zap.String("address", address),
			zap.Error(err))
		return nil, err
	}
	return &result, nil
}

// GetTokenMetadata fetches symbol, name, decimals and logo for a contract.
func (c *alchemyClientImpl) GetTokenMetadata(ctx context.Context, network, contractAddress string) (*entity.TokenMetadata, error) {
	var result entity.TokenMetadata
	if err := c.call(ctx, network, "alchemy_getTokenMetadata", []any{contractAddress}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOwnedNFTs fetches one page of owned NFTs with metadata.
func (c *alchemyClientImpl) GetOwnedNFTs(ctx context.Context, network, address string, pageSize int) (*entity.OwnedNFTsResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("owner", address)
	query.Set("withMetadata", "true")
	query.Set("pageSize", fmt.Sprintf("%d", pageSize))
	requestURL := c.nftURL(network, "getNFTsForOwner") + "?" + query.Encode()

	rawBody, statusCode, err := doRequest(ctx, c.client, fasthttp.MethodGet, requestURL, nil, c.timeout)
	if err != nil {
		return nil, err
	}
	if statusCode != fasthttp.StatusOK {
		return nil, fmt.Errorf("alchemy getNFTsForOwner request failed with status %d", statusCode)
	}

	var result entity.OwnedNFTsResponse
	if err := json.Unmarshal(rawBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal getNFTsForOwner response: %w", err)
	}
	return &result, nil
}

// GetFloorPrice fetches marketplace floor quotes for a collection contract.
func (c *alchemyClientImpl) GetFloorPrice(ctx context.Context, network, contractAddress string) (*entity.FloorPriceResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	requestURL := c.nftURL(network, "getFloorPrice") + "?contractAddress=" + url.QueryEscape(contractAddress)

	rawBody, statusCode, err := doRequest(ctx, c.client, fasthttp.MethodGet, requestURL, nil, c.timeout)
	if err != nil {
		return nil, err
	}
	if statusCode != fasthttp.StatusOK {
		return nil, fmt.Errorf("alchemy getFloorPrice request failed with status %d", statusCode)
	}

	var result entity.FloorPriceResponse
	if err := json.Unmarshal(rawBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal getFloorPrice response: %w", err)
	}
	return &result, nil
}
