package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByID(t *testing.T) {
	asset, ok := ByID("us-10yr")
	require.True(t, ok)
	assert.Equal(t, "US 10YR", asset.Symbol)
	assert.Equal(t, MetricYield, asset.Metric)

	_, ok = ByID("dogecoin")
	assert.False(t, ok)
}

func TestBySymbolOrLabel(t *testing.T) {
	cases := []struct {
		input  string
		wantID string
	}{
		{"US 10YR", "us-10yr"},
		{"us 10yr", "us-10yr"},
		{"US 10YR Treasury", "us-10yr"},
		{"GC=F", "gold"},
		{"  gold futures  ", "gold"},
	}
	for _, tc := range cases {
		asset, ok := BySymbolOrLabel(tc.input)
		require.True(t, ok, "expected %q to resolve", tc.input)
		assert.Equal(t, tc.wantID, asset.ID)
	}

	_, ok := BySymbolOrLabel("")
	assert.False(t, ok)
	_, ok = BySymbolOrLabel("BTC")
	assert.False(t, ok)
}

func TestDefaultSelectedIDs(t *testing.T) {
	ids := DefaultSelectedIDs()

	require.NotEmpty(t, ids)
	for _, id := range ids {
		asset, ok := ByID(id)
		require.True(t, ok)
		assert.True(t, asset.DefaultSelected)
	}
	// All defaults are the yield-quoted sovereign bonds.
	assert.Contains(t, ids, "us-10yr")
	assert.NotContains(t, ids, "gold")
}

func TestNormalize(t *testing.T) {
	t.Run("drops unknown ids", func(t *testing.T) {
		assert.Equal(t, []string{"gold"}, Normalize([]string{"gold", "bitcoin"}))
	})

	t.Run("restores canonical order", func(t *testing.T) {
		assert.Equal(t, []string{"us-10yr", "gold"}, Normalize([]string{"gold", "us-10yr"}))
	})

	t.Run("deduplicates", func(t *testing.T) {
		assert.Equal(t, []string{"gold"}, Normalize([]string{"gold", "gold", "gold"}))
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		assert.Empty(t, Normalize(nil))
	})
}

func TestGroups(t *testing.T) {
	groups := Groups()

	require.Contains(t, groups, "Sovereign Bonds")
	require.Contains(t, groups, "Commodities")
	assert.Len(t, groups["Sovereign Bonds"], 8)

	// Catalog order is preserved within each bucket.
	bonds := groups["Sovereign Bonds"]
	assert.Equal(t, "us-10yr", bonds[0].ID)
	assert.Equal(t, "us-30yr", bonds[1].ID)
}

func TestPriceAlertBondsAreResolvable(t *testing.T) {
	for _, symbol := range PriceAlertBonds {
		_, ok := BySymbolOrLabel(symbol)
		assert.True(t, ok, "bond %q must resolve against the catalog", symbol)
	}
}
