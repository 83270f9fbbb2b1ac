// Package portfolio aggregates per-position risk into a sector-bucketed
// report. It composes the per-symbol core the same way the scanner
// does, one task per position under the shared worker pool discipline.
package portfolio

// The 11 GICS sectors.
const (
	SectorInfoTech       = "Information Technology"
	SectorHealthcare     = "Healthcare"
	SectorFinancials     = "Financials"
	SectorConsumerDisc   = "Consumer Discretionary"
	SectorConsumerStap   = "Consumer Staples"
	SectorEnergy         = "Energy"
	SectorIndustrials    = "Industrials"
	SectorMaterials      = "Materials"
	SectorUtilities      = "Utilities"
	SectorRealEstate     = "Real Estate"
	SectorCommunications = "Communication Services"
	SectorUnknown        = "Unknown"
)

// sectorMap is a static ticker to GICS sector assignment covering the
// symbols in the built-in universes. Unlisted tickers report Unknown.
var sectorMap = map[string]string{
	"AAPL": SectorInfoTech, "MSFT": SectorInfoTech, "NVDA": SectorInfoTech,
	"AVGO": SectorInfoTech, "CSCO": SectorInfoTech, "CRM": SectorInfoTech,
	"ACN": SectorInfoTech, "TXN": SectorInfoTech, "ORCL": SectorInfoTech,
	"AMD": SectorInfoTech, "QCOM": SectorInfoTech, "INTC": SectorInfoTech,
	"IBM": SectorInfoTech, "ADBE": SectorInfoTech, "INTU": SectorInfoTech,
	"ADI": SectorInfoTech, "LRCX": SectorInfoTech, "MU": SectorInfoTech,
	"PANW": SectorInfoTech, "KLAC": SectorInfoTech, "SNPS": SectorInfoTech,
	"CDNS": SectorInfoTech, "MRVL": SectorInfoTech, "FTNT": SectorInfoTech,
	"ADSK": SectorInfoTech,

	"UNH": SectorHealthcare, "JNJ": SectorHealthcare, "MRK": SectorHealthcare,
	"ABBV": SectorHealthcare, "LLY": SectorHealthcare, "TMO": SectorHealthcare,
	"ABT": SectorHealthcare, "DHR": SectorHealthcare, "AMGN": SectorHealthcare,
	"GILD": SectorHealthcare, "ISRG": SectorHealthcare, "REGN": SectorHealthcare,
	"VRTX": SectorHealthcare, "WBA": SectorHealthcare,

	"JPM": SectorFinancials, "V": SectorFinancials, "MA": SectorFinancials,
	"GS": SectorFinancials, "BRK-B": SectorFinancials, "AXP": SectorFinancials,
	"TRV": SectorFinancials,

	"AMZN": SectorConsumerDisc, "TSLA": SectorConsumerDisc, "HD": SectorConsumerDisc,
	"MCD": SectorConsumerDisc, "NKE": SectorConsumerDisc, "LOW": SectorConsumerDisc,
	"SBUX": SectorConsumerDisc, "BKNG": SectorConsumerDisc, "ORLY": SectorConsumerDisc,
	"ABNB": SectorConsumerDisc,

	"PG": SectorConsumerStap, "PEP": SectorConsumerStap, "KO": SectorConsumerStap,
	"COST": SectorConsumerStap, "WMT": SectorConsumerStap, "PM": SectorConsumerStap,
	"MDLZ": SectorConsumerStap,

	"XOM": SectorEnergy, "CVX": SectorEnergy,

	"UPS": SectorIndustrials, "RTX": SectorIndustrials, "HON": SectorIndustrials,
	"CAT": SectorIndustrials, "BA": SectorIndustrials, "DE": SectorIndustrials,
	"MMM": SectorIndustrials, "PCAR": SectorIndustrials,

	"DOW": SectorMaterials,

	"NEE": SectorUtilities,

	"GOOGL": SectorCommunications, "META": SectorCommunications,
	"NFLX": SectorCommunications, "DIS": SectorCommunications,
	"VZ": SectorCommunications,
}

// SectorOf returns the GICS sector for a ticker, or Unknown.
func SectorOf(symbol string) string {
	if sector, ok := sectorMap[symbol]; ok {
		return sector
	}
	return SectorUnknown
}
