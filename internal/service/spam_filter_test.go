package service

import (
	"strings"
	"testing"

	"wallet_aggregator/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestIsSpamToken(t *testing.T) {
	filter := NewSpamFilter(testConfig())

	cases := []struct {
		name  string
		token entity.TokenHolding
		spam  bool
	}{
		{
			name:  "native is never spam",
			token: entity.TokenHolding{Symbol: "ETH", IsNative: true},
			spam:  false,
		},
		{
			name:  "allow-listed symbol beats spam pattern",
			token: entity.TokenHolding{Symbol: "USDC", Name: "Visit fake-usdc.com to claim"},
			spam:  false,
		},
		{
			name:  "real value beats spam pattern",
			token: entity.TokenHolding{Symbol: "XYZ", Name: "claim your airdrop", ValueUSD: 12.5},
			spam:  false,
		},
		{
			name:  "url in name",
			token: entity.TokenHolding{Symbol: "XYZ", Name: "https://evil-site.io"},
			spam:  true,
		},
		{
			name:  "bare domain in name",
			token: entity.TokenHolding{Symbol: "XYZ", Name: "reward-pool.xyz"},
			spam:  true,
		},
		{
			name:  "call-to-action language",
			token: entity.TokenHolding{Symbol: "XYZ", Name: "Visit site to claim free tokens"},
			spam:  true,
		},
		{
			name:  "name is a raw address",
			token: entity.TokenHolding{Symbol: "XYZ", Name: "0x1234567890abcdef1234567890abcdef12345678"},
			spam:  true,
		},
		{
			name:  "excessive name length",
			token: entity.TokenHolding{Symbol: "XYZ", Name: strings.Repeat("A", 60)},
			spam:  true,
		},
		{
			name:  "ordinary unknown token",
			token: entity.TokenHolding{Symbol: "FOO", Name: "Foocoin"},
			spam:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.spam, filter.IsSpamToken(tc.token))
		})
	}
}

func TestIsSpamNFTCollection(t *testing.T) {
	filter := NewSpamFilter(testConfig())

	threeItems := []entity.NFTItem{{TokenID: "1"}, {TokenID: "2"}, {TokenID: "3"}}
	sixItems := append(append([]entity.NFTItem{}, threeItems...),
		entity.NFTItem{TokenID: "4"}, entity.NFTItem{TokenID: "5"}, entity.NFTItem{TokenID: "6"})

	cases := []struct {
		name       string
		collection entity.NFTCollection
		spam       bool
	}{
		{
			name:       "nonzero floor price clears anything",
			collection: entity.NFTCollection{Name: "claim free mint at junk.io", Items: threeItems, FloorPriceUSD: 0.01},
			spam:       false,
		},
		{
			name:       "large collection is trusted",
			collection: entity.NFTCollection{Name: "claim free mint at junk.io", Items: sixItems},
			spam:       false,
		},
		{
			name:       "allow-listed name",
			collection: entity.NFTCollection{Name: "CryptoPunks", Items: threeItems},
			spam:       false,
		},
		{
			name:       "promotional name without escape hatch",
			collection: entity.NFTCollection{Name: "free airdrop voucher", Items: threeItems},
			spam:       true,
		},
		{
			name:       "small unknown collection with plain name",
			collection: entity.NFTCollection{Name: "My Art Project", Items: threeItems},
			spam:       false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.spam, filter.IsSpamNFTCollection(tc.collection))
		})
	}
}
