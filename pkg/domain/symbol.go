// Package domain provides core domain types for the order book aggregator.
package domain

import (
	"fmt"
	"strings"
)

// NormalizeSymbol converts an exchange-specific symbol to normalized format.
// Exchange formats:
//   - Binance: "ETHBTC" -> "ETH/BTC"
//   - Coinbase: "ETH-BTC" -> "ETH/BTC"
//
// The function attempts to find common quote currencies to split the symbol.
func NormalizeSymbol(exchangeSymbol string) string {
	if strings.Contains(exchangeSymbol, "/") {
		return strings.ToUpper(exchangeSymbol)
	}
	if strings.Contains(exchangeSymbol, "-") {
		return strings.ToUpper(strings.ReplaceAll(exchangeSymbol, "-", "/"))
	}

	symbol := strings.ToUpper(exchangeSymbol)

	// Common quote currencies in order of length (longest first)
	quoteCurrencies := []string{
		"USDC", "USDT", "USDS", "BUSD", "TUSD",
		"EUR", "GBP", "JPY",
		"BTC", "ETH", "BNB", "SOL", "XRP",
	}

	for _, quote := range quoteCurrencies {
		if before, ok := strings.CutSuffix(symbol, quote); ok {
			base := before
			if base != "" {
				return base + "/" + quote
			}
		}
	}

	return symbol
}

// ExchangeSymbol converts a normalized symbol to a venue's concatenated format.
// For example: "ETH/BTC" -> "ETHBTC" (Binance; Bitstamp uses it lowercased).
func ExchangeSymbol(normalizedSymbol string) string {
	return strings.ToUpper(strings.ReplaceAll(normalizedSymbol, "/", ""))
}

// DashedSymbol converts a normalized symbol to a dash-separated format.
// For example: "ETH/BTC" -> "ETH-BTC" (Coinbase).
func DashedSymbol(normalizedSymbol string) string {
	return strings.ToUpper(strings.ReplaceAll(normalizedSymbol, "/", "-"))
}

// ParseSymbol parses a symbol into base and quote assets.
// Accepts both normalized ("ETH/BTC") and concatenated ("ETHBTC") formats.
func ParseSymbol(symbol string) (base, quote string, err error) {
	if strings.Contains(symbol, "/") {
		parts := strings.Split(symbol, "/")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid symbol format: %s", symbol)
		}
		return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), nil
	}

	normalized := NormalizeSymbol(symbol)
	if strings.Contains(normalized, "/") {
		parts := strings.Split(normalized, "/")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid symbol format: %s", symbol)
		}
		return parts[0], parts[1], nil
	}

	return "", "", fmt.Errorf("cannot parse symbol: %s", symbol)
}

// IsSymbolValid checks if a symbol string is valid.
func IsSymbolValid(symbol string) bool {
	if symbol == "" {
		return false
	}
	for _, c := range symbol {
		if !isValidSymbolChar(c) {
			return false
		}
	}
	return true
}

func isValidSymbolChar(c rune) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '/' ||
		c == '-' ||
		c == '_'
}

// FormatSymbol formats a base and quote asset into normalized symbol format.
func FormatSymbol(base, quote string) string {
	return strings.ToUpper(base) + "/" + strings.ToUpper(quote)
}
