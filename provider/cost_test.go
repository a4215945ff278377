package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceTable_Estimate(t *testing.T) {
	pt := DefaultPriceTable()
	cost := pt.Estimate(string(VendorAnthropic), 1_000_000, 1_000_000)
	assert.InDelta(t, 18.00, cost, 0.001)
}

func TestPriceTable_UnknownVendorIsZero(t *testing.T) {
	pt := DefaultPriceTable()
	assert.Equal(t, 0.0, pt.Estimate("mystery", 1000, 1000))
}

func TestPriceTable_WithOverride(t *testing.T) {
	pt := DefaultPriceTable().With(string(VendorAnthropic), 1, 1)
	cost := pt.Estimate(string(VendorAnthropic), 1_000_000, 1_000_000)
	assert.InDelta(t, 2.00, cost, 0.001)
}
