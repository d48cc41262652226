package service

import (
	"regexp"
	"strings"

	"wallet_aggregator/internal/config"
	"wallet_aggregator/internal/domain/entity"
)

// Promotional / phishing patterns seen on airdropped junk. URL-shaped names,
// call-to-action language and names that are just a contract address.
var promoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(https?://|www\.)`),
	regexp.MustCompile(`(?i)[a-z0-9-]+\.(com|net|org|io|xyz|site|top|vip|fun|lol|app|cc)\b`),
	regexp.MustCompile(`(?i)\b(visit|claim|airdrop|reward|bonus|giveaway|voucher|redeem|free)\b`),
	regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`),
}

const maxReasonableNameLength = 40

// SpamFilter decides whether a token or NFT collection should be suppressed
// from the final result. Pure and deterministic; no I/O. The rules are biased
// toward false negatives: hiding a real asset is the worse failure, so
// anything allow-listed or carrying real value is always kept.
type SpamFilter struct {
	allowedSymbols     map[string]struct{}
	allowedCollections map[string]struct{}
	minTrustedValueUSD float64
	minLegitimateCount int
}

// NewSpamFilter creates a SpamFilter from configuration.
func NewSpamFilter(cfg *config.Config) *SpamFilter {
	symbols := make(map[string]struct{}, len(cfg.Spam.AllowedSymbols))
	for _, symbol := range cfg.Spam.AllowedSymbols {
		symbols[strings.ToUpper(symbol)] = struct{}{}
	}

	collections := make(map[string]struct{}, len(cfg.Spam.AllowedNFTCollections))
	for _, name := range cfg.Spam.AllowedNFTCollections {
		collections[strings.ToLower(name)] = struct{}{}
	}

	return &SpamFilter{
		allowedSymbols:     symbols,
		allowedCollections: collections,
		minTrustedValueUSD: cfg.Spam.MinTrustedValueUSD,
		minLegitimateCount: cfg.Spam.MinLegitimateNFTCount,
	}
}

// IsSpamToken classifies one token holding. Rules apply in order, first
// match wins: allow-list, value escape hatch, promotional patterns.
func (f *SpamFilter) IsSpamToken(token entity.TokenHolding) bool {
	if token.IsNative {
		return false
	}
	if _, ok := f.allowedSymbols[strings.ToUpper(token.Symbol)]; ok {
		return false
	}
	if token.ValueUSD >= f.minTrustedValueUSD {
		return false
	}
	if matchesPromoPattern(token.Name) || matchesPromoPattern(token.Symbol) {
		return true
	}
	if len(token.Name) > maxReasonableNameLength || len(token.Symbol) > maxReasonableNameLength {
		return true
	}
	return false
}

// IsSpamNFTCollection classifies one NFT collection. A known floor price, a
// non-trivial item count or an allow-listed name always clears it.
func (f *SpamFilter) IsSpamNFTCollection(collection entity.NFTCollection) bool {
	if collection.FloorPriceUSD > 0 {
		return false
	}
	if len(collection.Items) >= f.minLegitimateCount {
		return false
	}
	if _, ok := f.allowedCollections[strings.ToLower(collection.Name)]; ok {
		return false
	}
	return matchesPromoPattern(collection.Name)
}

func matchesPromoPattern(value string) bool {
	if value == "" {
		return false
	}
	for _, pattern := range promoPatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
