package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"wallet_aggregator/internal/config"
	"wallet_aggregator/internal/domain/entity"
	upstream "wallet_aggregator/internal/entity"

	"go.uber.org/zap"
)

// NFTProvider abstracts the NFT-indexing and floor-price provider.
type NFTProvider interface {
	GetOwnedNFTs(ctx context.Context, network, address string, pageSize int) (*upstream.OwnedNFTsResponse, error)
	GetFloorPrice(ctx context.Context, network, contractAddress string) (*upstream.FloorPriceResponse, error)
}

// NativePriceSource converts a chain's native-currency amount to USD.
// Returns 0 when the price is unknown.
type NativePriceSource interface {
	NativePriceUSD(ctx context.Context, chain entity.ChainConfig) float64
}

// NFTService fetches owned NFTs on the primary chain, grouped into
// collections with best-effort floor-price enrichment.
type NFTService struct {
	provider     NFTProvider
	nativePrices NativePriceSource
	chain        entity.ChainConfig
	logger       *zap.Logger
	pageSize     int
	fetchTimeout time.Duration
	floorTimeout time.Duration
	floorBudget  time.Duration
}

// NewNFTService creates an NFTService bound to the primary chain.
func NewNFTService(provider NFTProvider, nativePrices NativePriceSource, chain entity.ChainConfig, cfg *config.Config, logger *zap.Logger) *NFTService {
	return &NFTService{
		provider:     provider,
		nativePrices: nativePrices,
		chain:        chain,
		logger:       logger.Named("NFTService"),
		pageSize:     cfg.Alchemy.NFTPageSize,
		fetchTimeout: time.Duration(cfg.Timeouts.NFTFetchMillis) * time.Millisecond,
		floorTimeout: time.Duration(cfg.Timeouts.FloorPriceMillis) * time.Millisecond,
		floorBudget:  time.Duration(cfg.Timeouts.FloorBudgetMillis) * time.Millisecond,
	}
}

// FetchNFTs returns all collections owned by an address, sorted so that
// priced collections come first by total value, then unpriced ones by size.
func (s *NFTService) FetchNFTs(ctx context.Context, address string) ([]entity.NFTCollection, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	response, err := s.provider.GetOwnedNFTs(fetchCtx, s.chain.AlchemyNetwork, address, s.pageSize)
	if err != nil {
		return nil, err
	}

	collections := s.groupIntoCollections(response.OwnedNFTs)
	if len(collections) == 0 {
		return []entity.NFTCollection{}, nil
	}

	s.enrichFloorPrices(ctx, collections)
	sortCollections(collections)
	return collections, nil
}

// groupIntoCollections groups owned NFTs by contract address, preserving
// provider order within each collection.
func (s *NFTService) groupIntoCollections(owned []upstream.OwnedNFT) []entity.NFTCollection {
	byContract := make(map[string]int)
	collections := make([]entity.NFTCollection, 0)

	for _, nft := range owned {
		contract := strings.ToLower(nft.Contract.Address)
		if contract == "" {
			continue
		}

		image := resolveImageURI(nft)
		item := entity.NFTItem{
			TokenID:     nft.TokenID,
			Name:        nft.Name,
			ImageURI:    image,
			Description: nft.Description,
			HasImage:    image != "",
		}
		if item.Name == "" {
			item.Name = nft.Raw.Metadata.Name
		}

		index, exists := byContract[contract]
		if !exists {
			name := nft.Contract.Name
			if name == "" {
				name = nft.Contract.Symbol
			}
			collections = append(collections, entity.NFTCollection{
				ContractAddress: contract,
				Name:            name,
				ChainID:         s.chain.ChainID,
				Items:           []entity.NFTItem{},
			})
			index = len(collections) - 1
			byContract[contract] = index
		}
		collections[index].Items = append(collections[index].Items, item)
	}

	return collections
}

// resolveImageURI picks the first non-empty image candidate the indexer
// offers and rewrites content-addressed URIs to a gateway form.
func resolveImageURI(nft upstream.OwnedNFT) string {
	candidates := []string{
		nft.Image.ThumbnailURL,
		nft.Image.CachedURL,
		nft.Image.OriginalURL,
		nft.Raw.Metadata.Image,
	}
	for _, candidate := range candidates {
		if candidate != "" {
			return normalizeImageURI(candidate)
		}
	}
	return ""
}

// normalizeImageURI rewrites ipfs:// and ar:// URIs to HTTPS gateway URLs.
func normalizeImageURI(uri string) string {
	switch {
	case strings.HasPrefix(uri, "ipfs://"):
		path := strings.TrimPrefix(uri, "ipfs://")
		path = strings.TrimPrefix(path, "ipfs/")
		return "https://ipfs.io/ipfs/" + path
	case strings.HasPrefix(uri, "ar://"):
		return "https://arweave.net/" + strings.TrimPrefix(uri, "ar://")
	}
	return uri
}

// enrichFloorPrices looks up floor prices for all collections concurrently
// under an overall budget. Collections whose lookup misses the budget keep
// floor price 0; late results land in the buffered channel and are discarded.
func (s *NFTService) enrichFloorPrices(ctx context.Context, collections []entity.NFTCollection) {
	ethPrice := s.nativePrices.NativePriceUSD(ctx, s.chain)

	type floorResult struct {
		contract string
		usd      float64
	}
	results := make(chan floorResult, len(collections))

	for _, collection := range collections {
		go func(contract string) {
			floor, err := fetchWithTimeout(ctx, s.floorTimeout, (*upstream.FloorPriceResponse)(nil), func(callCtx context.Context) (*upstream.FloorPriceResponse, error) {
				return s.provider.GetFloorPrice(callCtx, s.chain.AlchemyNetwork, contract)
			})
			if err != nil || floor == nil {
				results <- floorResult{contract: contract}
				return
			}
			results <- floorResult{contract: contract, usd: floorToUSD(floor, ethPrice)}
		}(collection.ContractAddress)
	}

	floors := make(map[string]float64, len(collections))
	budget := time.NewTimer(s.floorBudget)
	defer budget.Stop()

	for received := 0; received < len(collections); received++ {
		select {
		case result := <-results:
			if result.usd > 0 {
				floors[result.contract] = result.usd
			}
			continue
		case <-budget.C:
		case <-ctx.Done():
		}
		break
	}

	for i := range collections {
		if usd, ok := floors[collections[i].ContractAddress]; ok {
			collections[i].FloorPriceUSD = usd
			collections[i].TotalValueUSD = usd * float64(len(collections[i].Items))
		}
	}
}

// floorToUSD picks the best marketplace quote and converts it to USD.
func floorToUSD(floor *upstream.FloorPriceResponse, ethPriceUSD float64) float64 {
	for _, quote := range []upstream.MarketplaceFloor{floor.OpenSea, floor.LooksRare} {
		if quote.Error != "" || quote.FloorPrice <= 0 {
			continue
		}
		switch strings.ToUpper(quote.PriceCurrency) {
		case "USD":
			return quote.FloorPrice
		case "ETH", "WETH":
			if ethPriceUSD > 0 {
				return quote.FloorPrice * ethPriceUSD
			}
		}
	}
	return 0
}

// sortCollections orders priced collections first (total value descending),
// then unpriced ones by item count descending.
func sortCollections(collections []entity.NFTCollection) {
	sort.SliceStable(collections, func(i, j int) bool {
		a, b := collections[i], collections[j]
		aPriced := a.FloorPriceUSD > 0
		bPriced := b.FloorPriceUSD > 0
		if aPriced != bPriced {
			return aPriced
		}
		if aPriced {
			return a.TotalValueUSD > b.TotalValueUSD
		}
		return len(a.Items) > len(b.Items)
	})
}
