package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"wallet_aggregator/internal/cache"
	"wallet_aggregator/internal/config"
	"wallet_aggregator/internal/domain/entity"
	"wallet_aggregator/pkg/metrics"

	"go.uber.org/zap"
)

// Resolver turns a raw address or name into a canonical address.
type Resolver interface {
	Resolve(ctx context.Context, input string) (address, ensName string, err error)
}

// TokenFetcher fetches all fungible holdings of an address on one chain.
type TokenFetcher interface {
	FetchTokens(ctx context.Context, address string, chain entity.ChainConfig) ([]entity.TokenHolding, error)
}

// NFTFetcher fetches all NFT collections owned by an address.
type NFTFetcher interface {
	FetchNFTs(ctx context.Context, address string) ([]entity.NFTCollection, error)
}

// ActivityFetcher fetches the most recent transactions of an address.
type ActivityFetcher interface {
	FetchActivity(ctx context.Context, address string) ([]entity.ActivityRecord, error)
}

// Pricer assigns USD prices to holdings in place.
type Pricer interface {
	ResolvePrices(ctx context.Context, tokens []*entity.TokenHolding)
}

// PortfolioService orchestrates the full aggregation pipeline: resolve the
// input, fan out to every upstream source concurrently, filter spam, price
// what survived and assemble the response. Every source is optional except
// address resolution; a source that fails or times out degrades to an empty
// sub-result and is reported in Sources instead of failing the request.
type PortfolioService struct {
	resolver   Resolver
	tokens     TokenFetcher
	nfts       NFTFetcher
	activity   ActivityFetcher
	pricer     Pricer
	spamFilter *SpamFilter
	store      *cache.Store
	chains     []entity.ChainConfig
	chainBound time.Duration
	logger     *zap.Logger
}

// NewPortfolioService wires the aggregation pipeline together.
func NewPortfolioService(
	resolver Resolver,
	tokens TokenFetcher,
	nfts NFTFetcher,
	activity ActivityFetcher,
	pricer Pricer,
	spamFilter *SpamFilter,
	store *cache.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *PortfolioService {
	return &PortfolioService{
		resolver:   resolver,
		tokens:     tokens,
		nfts:       nfts,
		activity:   activity,
		pricer:     pricer,
		spamFilter: spamFilter,
		store:      store,
		chains:     cfg.Chains,
		chainBound: time.Duration(cfg.Timeouts.ChainFetchMillis) * time.Millisecond,
		logger:     logger.Named("PortfolioService"),
	}
}

// GetPortfolio returns the aggregated portfolio for a raw address or ENS
// name. The only fatal error is a failure to resolve the input; everything
// downstream degrades and continues.
func (s *PortfolioService) GetPortfolio(ctx context.Context, input string) (*entity.PortfolioResult, error) {
	started := time.Now()
	cacheKey := strings.ToLower(strings.TrimSpace(input))

	if cached, ok := s.store.GetPortfolio(cacheKey); ok {
		metrics.CacheHits.Inc()
		metrics.PortfolioRequests.WithLabelValues("cached").Inc()
		return cached, nil
	}

	address, ensName, err := s.resolver.Resolve(ctx, input)
	if err != nil {
		metrics.PortfolioRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}

	tokens, nftCollections, activityRecords, sources := s.fetchAll(ctx, address)

	tokens = s.filterSpamTokens(tokens)
	nftCollections = s.filterSpamCollections(nftCollections)

	pointers := make([]*entity.TokenHolding, len(tokens))
	for i := range tokens {
		pointers[i] = &tokens[i]
	}
	s.pricer.ResolvePrices(ctx, pointers)

	result := s.assemble(address, ensName, tokens, nftCollections, activityRecords, sources)
	result.ResponseTimeMs = time.Since(started).Milliseconds()

	s.store.SetPortfolio(cacheKey, result)
	metrics.PortfolioRequests.WithLabelValues("ok").Inc()
	metrics.PortfolioDuration.Observe(time.Since(started).Seconds())

	s.logger.Info("Portfolio aggregated",
		zap.String("address", address),
		zap.Int("tokens", result.TokenCount),
		zap.Int("nfts", result.NFTCount),
		zap.Int64("durationMs", result.ResponseTimeMs))
	return result, nil
}

// fetchAll fans out to every configured chain plus the NFT and activity
// sources concurrently and joins the results under the shared mutex.
func (s *PortfolioService) fetchAll(ctx context.Context, address string) ([]entity.TokenHolding, []entity.NFTCollection, []entity.ActivityRecord, map[string]entity.SourceStatus) {
	var (
		mu              sync.Mutex
		wg              sync.WaitGroup
		tokens          []entity.TokenHolding
		nftCollections  = []entity.NFTCollection{}
		activityRecords = []entity.ActivityRecord{}
		sources         = make(map[string]entity.SourceStatus, len(s.chains)+2)
	)

	for _, chain := range s.chains {
		wg.Add(1)
		go func(chain entity.ChainConfig) {
			defer wg.Done()

			chainCtx, cancel := context.WithTimeout(ctx, s.chainBound)
			defer cancel()

			holdings, err := s.tokens.FetchTokens(chainCtx, address, chain)
			status := entity.SourceOK
			if err != nil {
				status = entity.SourceDegraded
				metrics.UpstreamDegraded.WithLabelValues("tokens:" + chain.Identifier).Inc()
				s.logger.Warn("Token fetch degraded",
					zap.String("chain", chain.Name),
					zap.String("address", address),
					zap.Error(err))
			}

			mu.Lock()
			tokens = append(tokens, holdings...)
			sources["tokens:"+chain.Identifier] = status
			mu.Unlock()
		}(chain)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		collections, err := s.nfts.FetchNFTs(ctx, address)
		status := entity.SourceOK
		if err != nil {
			status = entity.SourceDegraded
			collections = []entity.NFTCollection{}
			metrics.UpstreamDegraded.WithLabelValues("nfts").Inc()
			s.logger.Warn("NFT fetch degraded", zap.String("address", address), zap.Error(err))
		}

		mu.Lock()
		nftCollections = collections
		sources["nfts"] = status
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		records, err := s.activity.FetchActivity(ctx, address)
		status := entity.SourceOK
		if err != nil {
			status = entity.SourceDegraded
			records = []entity.ActivityRecord{}
			metrics.UpstreamDegraded.WithLabelValues("activity").Inc()
			s.logger.Warn("Activity fetch degraded", zap.String("address", address), zap.Error(err))
		}

		mu.Lock()
		activityRecords = records
		sources["activity"] = status
		mu.Unlock()
	}()

	wg.Wait()
	return tokens, nftCollections, activityRecords, sources
}

func (s *PortfolioService) filterSpamTokens(tokens []entity.TokenHolding) []entity.TokenHolding {
	kept := make([]entity.TokenHolding, 0, len(tokens))
	for _, token := range tokens {
		if s.spamFilter.IsSpamToken(token) {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}

func (s *PortfolioService) filterSpamCollections(collections []entity.NFTCollection) []entity.NFTCollection {
	kept := make([]entity.NFTCollection, 0, len(collections))
	for _, collection := range collections {
		if s.spamFilter.IsSpamNFTCollection(collection) {
			continue
		}
		kept = append(kept, collection)
	}
	return kept
}

// assemble builds the final response: totals, sort order, per-chain grouping
// and the counts the UI renders.
func (s *PortfolioService) assemble(address, ensName string, tokens []entity.TokenHolding, nftCollections []entity.NFTCollection, activityRecords []entity.ActivityRecord, sources map[string]entity.SourceStatus) *entity.PortfolioResult {
	total := 0.0
	for _, token := range tokens {
		total += token.ValueUSD
	}

	sortHoldings(tokens)

	byChain := make(map[uint64][]entity.TokenHolding)
	for _, token := range tokens {
		byChain[token.ChainID] = append(byChain[token.ChainID], token)
	}

	chainsWithBalance := make([]uint64, 0, len(byChain))
	for chainID := range byChain {
		chainsWithBalance = append(chainsWithBalance, chainID)
	}
	sort.Slice(chainsWithBalance, func(i, j int) bool { return chainsWithBalance[i] < chainsWithBalance[j] })

	nftCount := 0
	for _, collection := range nftCollections {
		nftCount += len(collection.Items)
	}

	return &entity.PortfolioResult{
		Address:           address,
		ENSName:           ensName,
		TotalValueUSD:     total,
		Tokens:            tokens,
		TokensByChain:     byChain,
		NFTs:              nftCollections,
		Activity:          activityRecords,
		TokenCount:        len(tokens),
		NFTCount:          nftCount,
		ChainsWithBalance: chainsWithBalance,
		Sources:           sources,
	}
}

// sortHoldings orders tokens by USD value descending; ties (typically a run
// of unpriced tokens) fall back to raw balance descending.
func sortHoldings(tokens []entity.TokenHolding) {
	sort.SliceStable(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		if a.ValueUSD != b.ValueUSD {
			return a.ValueUSD > b.ValueUSD
		}
		switch {
		case a.RawBalance == nil:
			return false
		case b.RawBalance == nil:
			return true
		}
		return a.RawBalance.Cmp(b.RawBalance) > 0
	})
}
