package market

import (
	"strings"
)

// Category represents the market hours category of an instrument.
type Category int

const (
	Crypto Category = iota
	Forex
	CFD
)

// String stringifies the provided category.
func (c Category) String() string {
	switch c {
	case Crypto:
		return "crypto"
	case Forex:
		return "forex"
	case CFD:
		return "cfd"
	default:
		return "unknown"
	}
}

// cryptoTickers are substrings identifying round-the-clock crypto instruments.
var cryptoTickers = []string{
	"BTC", "ETH", "XRP", "LTC", "SOL", "ADA", "DOGE", "BNB", "DOT",
	"AVAX", "LINK", "SHIB", "MATIC", "USDT", "USDC",
}

// cfdTickers are substrings identifying index and commodity cfd instruments.
var cfdTickers = []string{
	"US30", "US500", "SPX500", "NAS100", "USTEC", "US100", "GER40", "DE40",
	"DAX", "UK100", "FTSE", "JPN225", "NIKKEI", "HK50", "AUS200", "FRA40",
	"EU50", "USOIL", "UKOIL", "WTI", "BRENT", "NATGAS",
}

// Classify maps the provided instrument to its market hours category. It is a
// total function, unmatched instruments (currency pairs and metals) default to
// forex. The category only affects gap tolerance, never touch logic.
func Classify(instrument string) Category {
	symbol := strings.ToUpper(instrument)

	for idx := range cryptoTickers {
		if strings.Contains(symbol, cryptoTickers[idx]) {
			return Crypto
		}
	}

	for idx := range cfdTickers {
		if strings.Contains(symbol, cfdTickers[idx]) {
			return CFD
		}
	}

	return Forex
}
