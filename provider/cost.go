package provider

// PriceTable holds per-vendor USD-per-million-token rates, grounded on the
// teacher's graph/cost.go pricing map.
type PriceTable struct {
	rates map[string]rate
}

type rate struct {
	inPerMillion  float64
	outPerMillion float64
}

// DefaultPriceTable returns the built-in rate table. Callers needing
// current pricing should override entries rather than relying on these
// values staying accurate.
func DefaultPriceTable() PriceTable {
	return PriceTable{rates: map[string]rate{
		string(VendorAnthropic): {inPerMillion: 3.00, outPerMillion: 15.00},
		string(VendorOpenAI):    {inPerMillion: 2.50, outPerMillion: 10.00},
		string(VendorGemini):    {inPerMillion: 1.25, outPerMillion: 5.00},
	}}
}

// Estimate returns the USD cost of inTokens+outTokens against vendor's rate,
// or 0 if vendor is unknown to the table.
func (t PriceTable) Estimate(vendor string, inTokens, outTokens int) float64 {
	r, ok := t.rates[vendor]
	if !ok {
		return 0
	}
	return float64(inTokens)/1_000_000*r.inPerMillion + float64(outTokens)/1_000_000*r.outPerMillion
}

// With returns a copy of t with vendor's rate overridden.
func (t PriceTable) With(vendor string, inPerMillion, outPerMillion float64) PriceTable {
	out := PriceTable{rates: make(map[string]rate, len(t.rates))}
	for k, v := range t.rates {
		out.rates[k] = v
	}
	out.rates[vendor] = rate{inPerMillion: inPerMillion, outPerMillion: outPerMillion}
	return out
}
