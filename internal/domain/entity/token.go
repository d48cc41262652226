package entity

import "math/big"

// TokenHolding is one fungible balance owned by an address on one chain.
// Created fresh on every request by the token service; the response cache is
// the only reuse mechanism.
type TokenHolding struct {
	ChainID          uint64   `json:"chainId"`
	NetworkName      string   `json:"networkName"`
	ContractAddress  string   `json:"contractAddress,omitempty"`
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	Decimals         uint8    `json:"decimals"`
	RawBalance       *big.Int `json:"-"`
	Balance          float64  `json:"balance"`
	BalanceFormatted string   `json:"balanceFormatted"`
	PriceUSD         float64  `json:"price"`
	ValueUSD         float64  `json:"usdValue"`
	IsNative         bool     `json:"isNative"`
	LogoURI          string   `json:"logo,omitempty"`
}
