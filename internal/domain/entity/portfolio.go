package entity

// SourceStatus reports how one upstream data source fared during aggregation.
type SourceStatus string

const (
	SourceOK       SourceStatus = "ok"
	SourceDegraded SourceStatus = "degraded"
)

// PortfolioResult is the aggregate response for one wallet request.
// Constructed once per request, cached keyed by the lowercased input, and
// superseded (never mutated) by the next cache write after expiry.
type PortfolioResult struct {
	Address           string                    `json:"address"`
	ENSName           string                    `json:"ensName,omitempty"`
	TotalValueUSD     float64                   `json:"totalValue"`
	Tokens            []TokenHolding            `json:"tokens"`
	TokensByChain     map[uint64][]TokenHolding `json:"tokensByChain"`
	NFTs              []NFTCollection           `json:"nfts"`
	Activity          []ActivityRecord          `json:"activity"`
	TokenCount        int                       `json:"tokenCount"`
	NFTCount          int                       `json:"nftCount"`
	ChainsWithBalance []uint64                  `json:"chainsWithBalance"`
	Sources           map[string]SourceStatus   `json:"sources"`
	ResponseTimeMs    int64                     `json:"responseTime"`
}
