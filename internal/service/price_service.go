package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"wallet_aggregator/internal/cache"
	"wallet_aggregator/internal/client"
	"wallet_aggregator/internal/config"
	"wallet_aggregator/internal/domain/entity"
	upstream "wallet_aggregator/internal/entity"
	"wallet_aggregator/internal/utils"

	"go.uber.org/zap"
)

// PriceService resolves USD unit prices for token holdings through a
// prioritized fallback chain: the major-asset table via the market-data API,
// a stablecoin short-circuit, then DEX pair quotes by contract address.
// Tokens still unpriced when the budget fires keep price 0 and stay in the
// result; a holding without a price is still a holding.
type PriceService struct {
	market      client.MarketDataClient
	dex         client.DEXScreenerClient
	store       *cache.Store
	chains      []entity.ChainConfig
	majorAssets map[string]string
	stablecoins map[string]struct{}
	vsCurrency  string
	batchSize   int
	budget      time.Duration
	logger      *zap.Logger
}

// NewPriceService creates a PriceService from configuration.
func NewPriceService(market client.MarketDataClient, dex client.DEXScreenerClient, store *cache.Store, cfg *config.Config, logger *zap.Logger) *PriceService {
	stablecoins := make(map[string]struct{}, len(cfg.Stablecoins))
	for _, symbol := range cfg.Stablecoins {
		stablecoins[strings.ToUpper(symbol)] = struct{}{}
	}

	majors := make(map[string]string, len(cfg.MajorAssets))
	for symbol, id := range cfg.MajorAssets {
		majors[strings.ToUpper(symbol)] = id
	}

	return &PriceService{
		market:      market,
		dex:         dex,
		store:       store,
		chains:      cfg.Chains,
		majorAssets: majors,
		stablecoins: stablecoins,
		vsCurrency:  cfg.CoinGecko.VsCurrency,
		batchSize:   cfg.DEXScreener.MaxTokensPerBatchRequest,
		budget:      time.Duration(cfg.Timeouts.PricingBudgetMillis) * time.Millisecond,
		logger:      logger.Named("PriceService"),
	}
}

// NativePriceUSD returns the USD price of a chain's native currency, shared
// across all requests through the price cache. Returns 0 when unknown.
func (s *PriceService) NativePriceUSD(ctx context.Context, chain entity.ChainConfig) float64 {
	if chain.NativeCoinGeckoID == "" {
		return 0
	}
	if price, ok := s.store.GetPrice("native:" + chain.NativeCoinGeckoID); ok {
		return price
	}
	s.refreshMajorPrices(ctx)
	price, _ := s.store.GetPrice("native:" + chain.NativeCoinGeckoID)
	return price
}

// refreshMajorPrices fetches all configured native and major-asset prices in
// one market-data call and caches them for the price-cache window.
func (s *PriceService) refreshMajorPrices(ctx context.Context) {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(s.chains)+len(s.majorAssets))
	for _, chain := range s.chains {
		if chain.NativeCoinGeckoID != "" {
			if _, dup := seen[chain.NativeCoinGeckoID]; !dup {
				seen[chain.NativeCoinGeckoID] = struct{}{}
				ids = append(ids, chain.NativeCoinGeckoID)
			}
		}
	}
	for _, id := range s.majorAssets {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	prices, err := s.market.GetSimplePrices(ctx, ids, s.vsCurrency)
	if err != nil {
		s.logger.Warn("Market-data price refresh failed", zap.Error(err))
		return
	}
	for id, price := range prices {
		s.store.SetPrice("native:"+id, price)
	}
}

// ResolvePrices assigns PriceUSD and ValueUSD on the given holdings in place,
// under an overall wall-clock budget. Idempotent; touches no other fields.
func (s *PriceService) ResolvePrices(ctx context.Context, tokens []*entity.TokenHolding) {
	if len(tokens) == 0 {
		return
	}

	budgetCtx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	unpriced := s.resolveFromTables(budgetCtx, tokens)
	s.resolveFromDEX(budgetCtx, unpriced)

	for _, token := range tokens {
		token.ValueUSD = token.Balance * token.PriceUSD
	}
}

// resolveFromTables applies the major-asset table and the stablecoin
// short-circuit, returning the tokens that still need a DEX quote.
func (s *PriceService) resolveFromTables(ctx context.Context, tokens []*entity.TokenHolding) []*entity.TokenHolding {
	unpriced := make([]*entity.TokenHolding, 0, len(tokens))

	for _, token := range tokens {
		symbol := strings.ToUpper(token.Symbol)

		if _, ok := s.stablecoins[symbol]; ok {
			token.PriceUSD = 1.0
			continue
		}

		if id, ok := s.majorAssets[symbol]; ok {
			if price, cached := s.store.GetPrice("native:" + id); cached && price > 0 {
				token.PriceUSD = price
				continue
			}
			s.refreshMajorPrices(ctx)
			if price, cached := s.store.GetPrice("native:" + id); cached && price > 0 {
				token.PriceUSD = price
				continue
			}
		}

		if token.ContractAddress != "" {
			unpriced = append(unpriced, token)
		}
	}
	return unpriced
}

// resolveFromDEX batches unpriced contract tokens per chain into DEX pair
// lookups, picking the most liquid (preferably stablecoin-quoted) pair.
func (s *PriceService) resolveFromDEX(ctx context.Context, tokens []*entity.TokenHolding) {
	byChain := make(map[string][]*entity.TokenHolding)
	for _, token := range tokens {
		dexChainID := s.dexChainID(token.ChainID)
		if dexChainID == "" {
			continue
		}

		cacheKey := "dex:" + dexChainID + ":" + strings.ToLower(token.ContractAddress)
		if price, ok := s.store.GetPrice(cacheKey); ok {
			token.PriceUSD = price
			continue
		}
		byChain[dexChainID] = append(byChain[dexChainID], token)
	}

	for dexChainID, chainTokens := range byChain {
		addresses := make([]string, len(chainTokens))
		for i, token := range chainTokens {
			addresses[i] = token.ContractAddress
		}

		for _, batch := range utils.BatchStrings(addresses, s.batchSize) {
			if ctx.Err() != nil {
				return
			}
			pairs, err := s.dex.GetTokenPairsByAddresses(ctx, dexChainID, batch)
			if err != nil {
				s.logger.Warn("DEX pair lookup failed",
					zap.String("dexChainID", dexChainID),
					zap.Int("tokenCount", len(batch)),
					zap.Error(err))
				continue
			}

			for _, token := range chainTokens {
				if token.PriceUSD > 0 {
					continue
				}
				price := s.selectBestPriceFromPairs(pairs, token.ContractAddress)
				if price > 0 {
					token.PriceUSD = price
					s.store.SetPrice("dex:"+dexChainID+":"+strings.ToLower(token.ContractAddress), price)
				}
			}
		}
	}
}

// selectBestPriceFromPairs picks the price of the stablecoin-quoted pair with
// the highest liquidity, falling back to the most liquid pair overall.
func (s *PriceService) selectBestPriceFromPairs(pairs []upstream.PairData, baseTokenAddress string) float64 {
	var bestOverall, bestStable *upstream.PairData

	for i := range pairs {
		pair := &pairs[i]
		if !strings.EqualFold(pair.BaseToken.Address, baseTokenAddress) {
			continue
		}
		if pair.PriceUsd == "" || pair.PriceUsd == "0" {
			continue
		}

		_, stableQuoted := s.stablecoins[strings.ToUpper(pair.QuoteToken.Symbol)]
		if stableQuoted {
			if bestStable == nil || liquidityUSD(pair) > liquidityUSD(bestStable) {
				bestStable = pair
			}
		}
		if bestOverall == nil || liquidityUSD(pair) > liquidityUSD(bestOverall) {
			bestOverall = pair
		}
	}

	chosen := bestStable
	if chosen == nil {
		chosen = bestOverall
	}
	if chosen == nil {
		return 0
	}

	price, err := strconv.ParseFloat(chosen.PriceUsd, 64)
	if err != nil {
		s.logger.Warn("Failed to parse pair price",
			zap.String("baseTokenAddress", baseTokenAddress),
			zap.String("priceUsd", chosen.PriceUsd))
		return 0
	}
	return price
}

func liquidityUSD(pair *upstream.PairData) float64 {
	if pair.Liquidity == nil {
		return 0
	}
	return pair.Liquidity.Usd
}

// dexChainID maps a numeric chain id to its DEX Screener chain identifier.
func (s *PriceService) dexChainID(chainID uint64) string {
	for _, chain := range s.chains {
		if chain.ChainID == chainID {
			return chain.DEXScreenerChainID
		}
	}
	return ""
}
