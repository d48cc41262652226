package entity

// NFTItem is one owned non-fungible token.
type NFTItem struct {
	TokenID     string `json:"tokenId"`
	Name        string `json:"name"`
	ImageURI    string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	HasImage    bool   `json:"hasImage"`
}

// NFTCollection groups the NFTItems sharing a contract address on one chain.
// Floor price is best-effort; zero means unknown.
type NFTCollection struct {
	ContractAddress string    `json:"contractAddress"`
	Name            string    `json:"name"`
	ChainID         uint64    `json:"chainId"`
	Items           []NFTItem `json:"items"`
	FloorPriceUSD   float64   `json:"floorPrice"`
	TotalValueUSD   float64   `json:"totalValue"`
}
