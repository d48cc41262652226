package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"wallet_aggregator/internal/cache"
	"wallet_aggregator/internal/domain/entity"
	upstream "wallet_aggregator/internal/entity"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeMarketClient struct {
	prices map[string]float64
	err    error
	calls  atomic.Int32
}

func (f *fakeMarketClient) GetSimplePrices(_ context.Context, ids []string, _ string) (map[string]float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	result := make(map[string]float64, len(ids))
	for _, id := range ids {
		if price, ok := f.prices[id]; ok {
			result[id] = price
		}
	}
	return result, nil
}

type fakeDexClient struct {
	pairs map[string][]upstream.PairData
	calls atomic.Int32
}

func (f *fakeDexClient) GetTokenPairsByAddresses(_ context.Context, dexscreenerChainID string, _ []string) ([]upstream.PairData, error) {
	f.calls.Add(1)
	return f.pairs[dexscreenerChainID], nil
}

func newTestPriceService(market *fakeMarketClient, dex *fakeDexClient, store *cache.Store) *PriceService {
	return NewPriceService(market, dex, store, testConfig(), zap.NewNop())
}

func TestResolvePricesStablecoinShortCircuit(t *testing.T) {
	market := &fakeMarketClient{}
	dex := &fakeDexClient{}
	svc := newTestPriceService(market, dex, cache.NewStore(time.Minute, time.Minute))

	token := &entity.TokenHolding{ChainID: 1, Symbol: "usdc", ContractAddress: "0xusdc", Balance: 250}
	svc.ResolvePrices(context.Background(), []*entity.TokenHolding{token})

	assert.Equal(t, 1.0, token.PriceUSD)
	assert.InDelta(t, 250.0, token.ValueUSD, 1e-9)
	assert.Zero(t, market.calls.Load())
	assert.Zero(t, dex.calls.Load())
}

func TestResolvePricesMajorAssetTable(t *testing.T) {
	market := &fakeMarketClient{prices: map[string]float64{"ethereum": 3000, "chainlink": 20}}
	dex := &fakeDexClient{}
	svc := newTestPriceService(market, dex, cache.NewStore(time.Minute, time.Minute))

	weth := &entity.TokenHolding{ChainID: 1, Symbol: "WETH", ContractAddress: "0xweth", Balance: 2}
	link := &entity.TokenHolding{ChainID: 1, Symbol: "LINK", ContractAddress: "0xlink", Balance: 10}
	svc.ResolvePrices(context.Background(), []*entity.TokenHolding{weth, link})

	assert.Equal(t, 3000.0, weth.PriceUSD)
	assert.Equal(t, 20.0, link.PriceUSD)
	assert.InDelta(t, 6000.0, weth.ValueUSD, 1e-9)

	// One refresh covers every major; the second resolve hits the price cache.
	assert.Equal(t, int32(1), market.calls.Load())
	svc.ResolvePrices(context.Background(), []*entity.TokenHolding{weth})
	assert.Equal(t, int32(1), market.calls.Load())
	assert.Zero(t, dex.calls.Load())
}

func TestResolvePricesDEXFallbackPrefersStableQuotedPair(t *testing.T) {
	market := &fakeMarketClient{}
	dex := &fakeDexClient{
		pairs: map[string][]upstream.PairData{
			"ethereum": {
				{
					BaseToken:  upstream.DEXToken{Address: "0xFOO", Symbol: "FOO"},
					QuoteToken: upstream.DEXToken{Address: "0xweth", Symbol: "WETH"},
					PriceUsd:   "2.10",
					Liquidity:  &upstream.DEXLiquidity{Usd: 900000},
				},
				{
					BaseToken:  upstream.DEXToken{Address: "0xfoo", Symbol: "FOO"},
					QuoteToken: upstream.DEXToken{Address: "0xusdc", Symbol: "USDC"},
					PriceUsd:   "2.00",
					Liquidity:  &upstream.DEXLiquidity{Usd: 400000},
				},
				{
					BaseToken:  upstream.DEXToken{Address: "0xbar", Symbol: "BAR"},
					QuoteToken: upstream.DEXToken{Address: "0xusdc", Symbol: "USDC"},
					PriceUsd:   "9.99",
					Liquidity:  &upstream.DEXLiquidity{Usd: 100},
				},
			},
		},
	}
	store := cache.NewStore(time.Minute, time.Minute)
	svc := newTestPriceService(market, dex, store)

	token := &entity.TokenHolding{ChainID: 1, Symbol: "FOO", ContractAddress: "0xfoo", Balance: 3}
	svc.ResolvePrices(context.Background(), []*entity.TokenHolding{token})

	// The stable-quoted pair wins over the deeper WETH pair.
	assert.Equal(t, 2.0, token.PriceUSD)
	assert.InDelta(t, 6.0, token.ValueUSD, 1e-9)

	// Second resolve is served from the price cache.
	token.PriceUSD = 0
	svc.ResolvePrices(context.Background(), []*entity.TokenHolding{token})
	assert.Equal(t, 2.0, token.PriceUSD)
	assert.Equal(t, int32(1), dex.calls.Load())
}

func TestResolvePricesUnknownTokenStaysUnpriced(t *testing.T) {
	market := &fakeMarketClient{}
	dex := &fakeDexClient{}
	svc := newTestPriceService(market, dex, cache.NewStore(time.Minute, time.Minute))

	token := &entity.TokenHolding{ChainID: 1, Symbol: "NOPE", ContractAddress: "0xnope", Balance: 42}
	svc.ResolvePrices(context.Background(), []*entity.TokenHolding{token})

	assert.Zero(t, token.PriceUSD)
	assert.Zero(t, token.ValueUSD)
}

func TestNativePriceUSDCached(t *testing.T) {
	market := &fakeMarketClient{prices: map[string]float64{"ethereum": 3000, "polygon-ecosystem-token": 0.4}}
	svc := newTestPriceService(market, &fakeDexClient{}, cache.NewStore(time.Minute, time.Minute))
	chain := testConfig().Chains[0]

	assert.Equal(t, 3000.0, svc.NativePriceUSD(context.Background(), chain))
	assert.Equal(t, 3000.0, svc.NativePriceUSD(context.Background(), chain))
	assert.Equal(t, int32(1), market.calls.Load())
}

func TestSelectBestPriceFromPairs(t *testing.T) {
	svc := newTestPriceService(&fakeMarketClient{}, &fakeDexClient{}, cache.NewStore(time.Minute, time.Minute))

	pairs := []upstream.PairData{
		{BaseToken: upstream.DEXToken{Address: "0xfoo"}, QuoteToken: upstream.DEXToken{Symbol: "WETH"}, PriceUsd: "0"},
		{BaseToken: upstream.DEXToken{Address: "0xfoo"}, QuoteToken: upstream.DEXToken{Symbol: "WETH"}, PriceUsd: "1.5", Liquidity: &upstream.DEXLiquidity{Usd: 10}},
		{BaseToken: upstream.DEXToken{Address: "0xfoo"}, QuoteToken: upstream.DEXToken{Symbol: "PEPE"}, PriceUsd: "1.6", Liquidity: &upstream.DEXLiquidity{Usd: 50}},
	}

	// No stable-quoted pair: highest liquidity wins.
	assert.Equal(t, 1.6, svc.selectBestPriceFromPairs(pairs, "0xFOO"))

	// No pair for the asked base token.
	assert.Zero(t, svc.selectBestPriceFromPairs(pairs, "0xother"))

	// Unparseable price.
	broken := []upstream.PairData{
		{BaseToken: upstream.DEXToken{Address: "0xfoo"}, QuoteToken: upstream.DEXToken{Symbol: "USDC"}, PriceUsd: "n/a"},
	}
	assert.Zero(t, svc.selectBestPriceFromPairs(broken, "0xfoo"))
}
