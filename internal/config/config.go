package config

import (
	"fmt"
	"os"
	"time"

	"wallet_aggregator/internal/domain/entity"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AlchemyConfig holds Alchemy token/NFT API specific configurations.
type AlchemyConfig struct {
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	MaxMetadataRoutines  int    `yaml:"maxMetadataRoutines"`
	NFTPageSize          int    `yaml:"nftPageSize"`
	RatePerSecond        int    `yaml:"ratePerSecond"`
}

// EtherscanConfig holds block-explorer API specific configurations.
type EtherscanConfig struct {
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	ActivityLimit        int    `yaml:"activityLimit"`
	RatePerSecond        int    `yaml:"ratePerSecond"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	VsCurrency           string `yaml:"vsCurrency"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL                  string `yaml:"baseURL"`
	RequestTimeoutMillis     int64  `yaml:"requestTimeoutMillis"`
	MaxTokensPerBatchRequest int    `yaml:"maxTokensPerBatchRequest"`
}

// TimeoutsConfig holds the per-source timeout budget, in milliseconds.
type TimeoutsConfig struct {
	ResolveMillis       int64 `yaml:"resolveMillis"`
	NativeBalanceMillis int64 `yaml:"nativeBalanceMillis"`
	TokenListMillis     int64 `yaml:"tokenListMillis"`
	NFTFetchMillis      int64 `yaml:"nftFetchMillis"`
	FloorPriceMillis    int64 `yaml:"floorPriceMillis"`
	FloorBudgetMillis   int64 `yaml:"floorBudgetMillis"`
	ActivityMillis      int64 `yaml:"activityMillis"`
	ChainFetchMillis    int64 `yaml:"chainFetchMillis"`
	PricingBudgetMillis int64 `yaml:"pricingBudgetMillis"`
}

// CacheConfig holds TTLs for the two process-local caches.
type CacheConfig struct {
	ResponseTTLSeconds int `yaml:"responseTTLSeconds"`
	PriceTTLSeconds    int `yaml:"priceTTLSeconds"`
}

// SpamConfig holds the tunable knobs of the spam classifier.
type SpamConfig struct {
	AllowedSymbols        []string `yaml:"allowedSymbols"`
	AllowedNFTCollections []string `yaml:"allowedNftCollections"`
	MinTrustedValueUSD    float64  `yaml:"minTrustedValueUSD"`
	MinLegitimateNFTCount int      `yaml:"minLegitimateNftCount"`
}

// ThresholdsConfig holds dust filtering thresholds.
type ThresholdsConfig struct {
	NativeDust float64 `yaml:"nativeDust"`
	TokenDust  float64 `yaml:"tokenDust"`
}

// ENSConfig holds name-resolution configuration.
type ENSConfig struct {
	RegistryAddress string `yaml:"registryAddress"`
	Suffix          string `yaml:"suffix"`
}

// Config is the top-level configuration structure, immutable after Load.
type Config struct {
	Server      ServerConfig         `yaml:"server"`
	Logging     LoggingConfig        `yaml:"logging"`
	Chains      []entity.ChainConfig `yaml:"chains"`
	Alchemy     AlchemyConfig        `yaml:"alchemy"`
	Etherscan   EtherscanConfig      `yaml:"etherscan"`
	CoinGecko   CoinGeckoConfig      `yaml:"coingecko"`
	DEXScreener DEXScreenerConfig    `yaml:"dexScreener"`
	Timeouts    TimeoutsConfig       `yaml:"timeouts"`
	Cache       CacheConfig          `yaml:"cache"`
	Spam        SpamConfig           `yaml:"spam"`
	Thresholds  ThresholdsConfig     `yaml:"thresholds"`
	ENS         ENSConfig            `yaml:"ens"`
	Stablecoins []string             `yaml:"stablecoins"`
	MajorAssets map[string]string    `yaml:"majorAssets"`
}

// Load reads the YAML configuration file, overlays secrets from the
// environment (.env is loaded when present) and applies defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)

	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on process environment")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	if key := os.Getenv("ALCHEMY_API_KEY"); key != "" {
		cfg.Alchemy.APIKey = key
	}
	if key := os.Getenv("ETHERSCAN_API_KEY"); key != "" {
		cfg.Etherscan.APIKey = key
	}
	if key := os.Getenv("COINGECKO_API_KEY"); key != "" {
		cfg.CoinGecko.APIKey = key
	}

	cfg.applyDefaults()

	if len(cfg.Chains) == 0 {
		return nil, fmt.Errorf("no chains configured in %s", path)
	}
	for _, chain := range cfg.Chains {
		if chain.PrimaryRPCURL == "" {
			return nil, fmt.Errorf("chain %s is missing primaryRpcUrl", chain.Identifier)
		}
		if chain.DEXScreenerChainID == "" {
			logrus.Warnf("Chain %s is missing dexScreenerChainId, DEX price fallback disabled for it", chain.Identifier)
		}
	}

	logrus.Infof("Configuration loaded successfully (%d chains)", len(cfg.Chains))
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}

	if c.Alchemy.RequestTimeoutMillis == 0 {
		c.Alchemy.RequestTimeoutMillis = 6000
	}
	if c.Alchemy.MaxMetadataRoutines == 0 {
		c.Alchemy.MaxMetadataRoutines = 8
	}
	if c.Alchemy.NFTPageSize == 0 {
		c.Alchemy.NFTPageSize = 100
	}
	if c.Alchemy.RatePerSecond == 0 {
		c.Alchemy.RatePerSecond = 20
	}

	if c.Etherscan.RequestTimeoutMillis == 0 {
		c.Etherscan.RequestTimeoutMillis = 5000
	}
	if c.Etherscan.ActivityLimit == 0 {
		c.Etherscan.ActivityLimit = 15
	}
	if c.Etherscan.RatePerSecond == 0 {
		c.Etherscan.RatePerSecond = 4
	}

	if c.CoinGecko.BaseURL == "" {
		c.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.CoinGecko.RequestTimeoutMillis == 0 {
		c.CoinGecko.RequestTimeoutMillis = 5000
	}
	if c.CoinGecko.VsCurrency == "" {
		c.CoinGecko.VsCurrency = "usd"
	}

	if c.DEXScreener.BaseURL == "" {
		c.DEXScreener.BaseURL = "https://api.dexscreener.com"
	}
	if c.DEXScreener.RequestTimeoutMillis == 0 {
		c.DEXScreener.RequestTimeoutMillis = 5000
	}
	if c.DEXScreener.MaxTokensPerBatchRequest == 0 {
		c.DEXScreener.MaxTokensPerBatchRequest = 30
	}

	if c.Timeouts.ResolveMillis == 0 {
		c.Timeouts.ResolveMillis = 5000
	}
	if c.Timeouts.NativeBalanceMillis == 0 {
		c.Timeouts.NativeBalanceMillis = 4000
	}
	if c.Timeouts.TokenListMillis == 0 {
		c.Timeouts.TokenListMillis = 6000
	}
	if c.Timeouts.NFTFetchMillis == 0 {
		c.Timeouts.NFTFetchMillis = 8000
	}
	if c.Timeouts.FloorPriceMillis == 0 {
		c.Timeouts.FloorPriceMillis = 2000
	}
	if c.Timeouts.FloorBudgetMillis == 0 {
		c.Timeouts.FloorBudgetMillis = 2500
	}
	if c.Timeouts.ActivityMillis == 0 {
		c.Timeouts.ActivityMillis = 5000
	}
	if c.Timeouts.ChainFetchMillis == 0 {
		c.Timeouts.ChainFetchMillis = 10000
	}
	if c.Timeouts.PricingBudgetMillis == 0 {
		c.Timeouts.PricingBudgetMillis = 3000
	}

	if c.Cache.ResponseTTLSeconds == 0 {
		c.Cache.ResponseTTLSeconds = 300
	}
	if c.Cache.PriceTTLSeconds == 0 {
		c.Cache.PriceTTLSeconds = 60
	}

	if len(c.Spam.AllowedSymbols) == 0 {
		c.Spam.AllowedSymbols = []string{
			"ETH", "WETH", "BTC", "WBTC", "USDC", "USDT", "DAI", "BNB", "POL",
			"MATIC", "ARB", "OP", "LINK", "UNI", "AAVE", "LDO", "SHIB", "PEPE",
		}
	}
	if len(c.Spam.AllowedNFTCollections) == 0 {
		c.Spam.AllowedNFTCollections = []string{
			"CryptoPunks", "Bored Ape Yacht Club", "Mutant Ape Yacht Club",
			"Azuki", "Doodles", "Pudgy Penguins", "Milady Maker", "Moonbirds",
		}
	}
	if c.Spam.MinTrustedValueUSD == 0 {
		c.Spam.MinTrustedValueUSD = 0.5
	}
	if c.Spam.MinLegitimateNFTCount == 0 {
		c.Spam.MinLegitimateNFTCount = 5
	}

	if c.Thresholds.NativeDust == 0 {
		c.Thresholds.NativeDust = 1e-6
	}
	if c.Thresholds.TokenDust == 0 {
		c.Thresholds.TokenDust = 1e-9
	}

	if c.ENS.RegistryAddress == "" {
		c.ENS.RegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"
	}
	if c.ENS.Suffix == "" {
		c.ENS.Suffix = ".eth"
	}

	if len(c.Stablecoins) == 0 {
		c.Stablecoins = []string{"USDC", "USDT", "DAI", "BUSD", "TUSD", "USDP", "FRAX", "LUSD", "GUSD", "USDC.E"}
	}

	// Symbol -> CoinGecko id table for majors priced via the market-data API
	// instead of the DEX fallback.
	if len(c.MajorAssets) == 0 {
		c.MajorAssets = map[string]string{
			"ETH":   "ethereum",
			"WETH":  "ethereum",
			"BTC":   "bitcoin",
			"WBTC":  "wrapped-bitcoin",
			"BNB":   "binancecoin",
			"POL":   "polygon-ecosystem-token",
			"MATIC": "matic-network",
			"ARB":   "arbitrum",
			"OP":    "optimism",
			"LINK":  "chainlink",
			"UNI":   "uniswap",
			"AAVE":  "aave",
			"LDO":   "lido-dao",
		}
	}
}

// AlchemyTimeout returns the Alchemy client timeout as a duration.
func (c *Config) AlchemyTimeout() time.Duration {
	return time.Duration(c.Alchemy.RequestTimeoutMillis) * time.Millisecond
}

// EtherscanTimeout returns the Etherscan client timeout as a duration.
func (c *Config) EtherscanTimeout() time.Duration {
	return time.Duration(c.Etherscan.RequestTimeoutMillis) * time.Millisecond
}

// CoinGeckoTimeout returns the CoinGecko client timeout as a duration.
func (c *Config) CoinGeckoTimeout() time.Duration {
	return time.Duration(c.CoinGecko.RequestTimeoutMillis) * time.Millisecond
}

// DEXScreenerTimeout returns the DEXScreener client timeout as a duration.
func (c *Config) DEXScreenerTimeout() time.Duration {
	return time.Duration(c.DEXScreener.RequestTimeoutMillis) * time.Millisecond
}
