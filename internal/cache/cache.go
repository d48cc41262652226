package cache

import (
	"sync/atomic"
	"time"

	"wallet_aggregator/internal/domain/entity"

	gocache "github.com/patrickmn/go-cache"
)

// Store holds the two process-local TTL caches: the full portfolio responses
// (longer TTL) and resolved prices (shorter TTL, prices move faster than
// holdings). Entries expire lazily on read; nothing survives a restart.
type Store struct {
	responses *gocache.Cache
	prices    *gocache.Cache

	responseTTL time.Duration
	priceTTL    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is the cache snapshot exposed by the health endpoint.
type Stats struct {
	ResponseEntries int   `json:"responseEntries"`
	PriceEntries    int   `json:"priceEntries"`
	Hits            int64 `json:"hits"`
	Misses          int64 `json:"misses"`
}

// NewStore creates the response and price caches with the given TTLs.
func NewStore(responseTTL, priceTTL time.Duration) *Store {
	return &Store{
		responses:   gocache.New(responseTTL, 2*responseTTL),
		prices:      gocache.New(priceTTL, 2*priceTTL),
		responseTTL: responseTTL,
		priceTTL:    priceTTL,
	}
}

// GetPortfolio returns the cached portfolio for a lowercased address key.
func (s *Store) GetPortfolio(key string) (*entity.PortfolioResult, bool) {
	value, found := s.responses.Get(key)
	if !found {
		s.misses.Add(1)
		return nil, false
	}
	result, ok := value.(*entity.PortfolioResult)
	if !ok {
		s.misses.Add(1)
		return nil, false
	}
	s.hits.Add(1)
	return result, true
}

// SetPortfolio stores a portfolio result. Last write wins.
func (s *Store) SetPortfolio(key string, result *entity.PortfolioResult) {
	s.responses.Set(key, result, s.responseTTL)
}

// GetPrice returns a cached USD unit price for a price key
// (e.g. "native:ethereum" or "dex:ethereum:0xabc...").
func (s *Store) GetPrice(key string) (float64, bool) {
	value, found := s.prices.Get(key)
	if !found {
		return 0, false
	}
	price, ok := value.(float64)
	return price, ok
}

// SetPrice caches a USD unit price under the price TTL.
func (s *Store) SetPrice(key string, price float64) {
	s.prices.Set(key, price, s.priceTTL)
}

// Snapshot returns current cache statistics.
func (s *Store) Snapshot() Stats {
	return Stats{
		ResponseEntries: s.responses.ItemCount(),
		PriceEntries:    s.prices.ItemCount(),
		Hits:            s.hits.Load(),
		Misses:          s.misses.Load(),
	}
}
