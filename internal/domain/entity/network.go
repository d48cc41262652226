package entity

// ZeroAddress represents the EVM zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// ChainConfig holds the static configuration for one blockchain network.
// Built once at startup from the YAML config and never mutated afterwards.
type ChainConfig struct {
	ChainID            uint64   `json:"chainId" yaml:"chainId"`
	Name               string   `json:"name" yaml:"name"`
	Identifier         string   `json:"identifier" yaml:"identifier"`
	NativeSymbol       string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativeDecimals     uint8    `json:"nativeDecimals" yaml:"nativeDecimals"`
	NativeCoinGeckoID  string   `json:"nativeCoinGeckoId" yaml:"nativeCoinGeckoId"`
	PrimaryRPCURL      string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs    []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	AlchemyNetwork     string   `json:"alchemyNetwork" yaml:"alchemyNetwork"`
	DEXScreenerChainID string   `json:"dexScreenerChainId" yaml:"dexScreenerChainId"`
	ExplorerAPIURL     string   `json:"explorerApiUrl" yaml:"explorerApiUrl"`
}
