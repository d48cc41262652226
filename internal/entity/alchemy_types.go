package entity

// TokenBalancesResult is the result payload of alchemy_getTokenBalances.
type TokenBalancesResult struct {
	Address       string         `json:"address"`
	TokenBalances []TokenBalance `json:"tokenBalances"`
}

// TokenBalance is one ERC-20 balance entry; TokenBalance is a 0x hex quantity.
type TokenBalance struct {
	ContractAddress string `json:"contractAddress"`
	TokenBalance    string `json:"tokenBalance"`
	Error           string `json:"error,omitempty"`
}

// TokenMetadata is the result payload of alchemy_getTokenMetadata.
// Decimals is a pointer: the API returns null for contracts it cannot read.
type TokenMetadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals *int   `json:"decimals"`
	Logo     string `json:"logo"`
}

// OwnedNFTsResponse is the response of the NFT v3 getNFTsForOwner endpoint.
type OwnedNFTsResponse struct {
	OwnedNFTs  []OwnedNFT `json:"ownedNfts"`
	TotalCount int        `json:"totalCount"`
	PageKey    string     `json:"pageKey,omitempty"`
}

// OwnedNFT is one owned NFT as reported by the indexer.
type OwnedNFT struct {
	Contract    NFTContract `json:"contract"`
	TokenID     string      `json:"tokenId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       NFTImage    `json:"image"`
	Raw         NFTRawData  `json:"raw"`
}

// NFTContract identifies the collection contract of an owned NFT.
type NFTContract struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// NFTImage carries the indexer's image URI candidates, best first.
type NFTImage struct {
	CachedURL    string `json:"cachedUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	PngURL       string `json:"pngUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// NFTRawData is the raw on-chain metadata block.
type NFTRawData struct {
	Metadata NFTRawMetadata `json:"metadata"`
}

// NFTRawMetadata is the subset of raw token metadata the service reads.
type NFTRawMetadata struct {
	Image string `json:"image"`
	Name  string `json:"name"`
}

// FloorPriceResponse is the response of the NFT v3 getFloorPrice endpoint.
type FloorPriceResponse struct {
	OpenSea   MarketplaceFloor `json:"openSea"`
	LooksRare MarketplaceFloor `json:"looksRare"`
}

// MarketplaceFloor is one marketplace's floor quote.
type MarketplaceFloor struct {
	FloorPrice    float64 `json:"floorPrice"`
	PriceCurrency string  `json:"priceCurrency"`
	Error         string  `json:"error,omitempty"`
}
