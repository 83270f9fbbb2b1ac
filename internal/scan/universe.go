package scan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marketlens/marketlens/internal/domain"
)

// Universes are static symbol lists. Representative subsets of the
// index constituents keep scans fast enough for interactive use; the
// full lists live with the deployment, not the binary.
var universes = map[string][]string{
	"sp500": {
		"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "BRK-B",
		"UNH", "JNJ", "XOM", "JPM", "V", "PG", "MA", "HD", "CVX", "MRK",
		"ABBV", "LLY", "PEP", "KO", "AVGO", "COST", "WMT", "MCD", "CSCO",
		"CRM", "TMO", "ACN", "ABT", "DHR", "NKE", "TXN", "ORCL", "AMD",
		"PM", "NEE", "UPS", "RTX", "HON", "QCOM", "LOW", "INTC", "CAT",
		"GS", "BA", "DE", "AMGN", "IBM",
	},
	"nasdaq100": {
		"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "AVGO",
		"COST", "PEP", "CSCO", "ADBE", "TXN", "AMD", "NFLX", "QCOM",
		"INTC", "AMGN", "INTU", "HON", "BKNG", "SBUX", "GILD", "MDLZ",
		"ADI", "ISRG", "REGN", "VRTX", "LRCX", "MU", "PANW", "KLAC",
		"SNPS", "CDNS", "MRVL", "ORLY", "ABNB", "FTNT", "ADSK", "PCAR",
	},
	"dow30": {
		"AAPL", "AMGN", "AXP", "BA", "CAT", "CRM", "CSCO", "CVX", "DIS",
		"DOW", "GS", "HD", "HON", "IBM", "INTC", "JNJ", "JPM", "KO",
		"MCD", "MMM", "MRK", "MSFT", "NKE", "PG", "TRV", "UNH", "V",
		"VZ", "WBA", "WMT",
	},
	"crypto": {
		"BTC-USD", "ETH-USD", "SOL-USD", "BNB-USD", "XRP-USD", "ADA-USD",
		"AVAX-USD", "DOGE-USD", "DOT-USD", "LINK-USD", "MATIC-USD",
		"LTC-USD", "ATOM-USD", "UNI-USD", "NEAR-USD",
	},
}

// ResolveUniverse maps a universe name to its symbol list. Unknown
// names fail with the accepted set in the message.
func ResolveUniverse(name string) ([]string, error) {
	symbols, ok := universes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(universes))
		for n := range universes {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, domain.NewError(domain.ErrUnknownUniverse,
			fmt.Sprintf("unknown universe %q, accepted: %s", name, strings.Join(names, ", ")))
	}
	out := make([]string, len(symbols))
	copy(out, symbols)
	return out, nil
}

// UniverseNames lists the known universes, sorted.
func UniverseNames() []string {
	names := make([]string, 0, len(universes))
	for n := range universes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
