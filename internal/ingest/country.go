package ingest

// countryAliases collapses formal or legal country name variants to the
// common short form used for grouping.  The table is consulted once, at
// movie creation time; persisted rows are never re-normalized on read.
var countryAliases = map[string]string{
	"中華民國":   "台灣",
	"中華民國台灣": "台灣",
	"大韓民國":   "韓國",
	"美利堅合眾國": "美國",
}

// CountryAliases returns a copy of the alias table, for remediation
// jobs that rewrite already-persisted rows.
func CountryAliases() map[string]string {
	out := make(map[string]string, len(countryAliases))
	for k, v := range countryAliases {
		out[k] = v
	}
	return out
}

// NormalizeCountry returns the common short form of a scraped country
// name, or the input unchanged when no alias applies.
func NormalizeCountry(country string) string {
	if alias, ok := countryAliases[country]; ok {
		return alias
	}
	return country
}
