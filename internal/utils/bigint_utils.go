package utils

import (
	"math/big"
	"strings"
)

// FormatBigInt converts a raw integer amount to a human-readable decimal
// string using the token's decimal precision.
// Example: amount=1234500000000000000, decimals=18 => "1.2345".
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	amountFloat := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(amountFloat, divisor)

	formatted := value.Text('f', int(decimals))
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}
	if formatted == "" || formatted == "-" {
		return "0"
	}
	if strings.HasPrefix(formatted, ".") {
		formatted = "0" + formatted
	}
	return formatted
}

// BigIntToFloat converts a raw integer amount to a float64 using the token's
// decimal precision. Precision loss beyond float64 is acceptable for display
// and valuation purposes.
func BigIntToFloat(amount *big.Int, decimals uint8) float64 {
	if amount == nil {
		return 0
	}
	amountFloat := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	result, _ := new(big.Float).Quo(amountFloat, divisor).Float64()
	return result
}

// ParseHexBig parses a 0x-prefixed hex quantity into a big.Int.
// Returns zero for empty or malformed input; upstream token-balance entries
// are treated as noise rather than errors.
func ParseHexBig(hexValue string) *big.Int {
	trimmed := strings.TrimPrefix(hexValue, "0x")
	if trimmed == "" {
		return new(big.Int)
	}
	value, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return new(big.Int)
	}
	return value
}

// BatchStrings splits a slice of strings into batches of at most batchSize.
func BatchStrings(items []string, batchSize int) [][]string {
	if batchSize <= 0 {
		batchSize = len(items)
	}
	if len(items) == 0 {
		return [][]string{}
	}

	var batches [][]string
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}
