// Package catalog holds the static table of trackable market assets. The
// table is compile-time data: asset selection preferences are validated
// against it so that ids persisted by an older release are dropped rather
// than breaking the selection invariant.
package catalog

import "strings"

// Metric describes which upstream figure is authoritative for an asset.
type Metric string

const (
	MetricYield Metric = "yield"
	MetricPrice Metric = "price"
)

// Asset is one trackable market instrument.
type Asset struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	Symbol          string `json:"symbol"`
	Category        string `json:"category"`
	Description     string `json:"description,omitempty"`
	DefaultSelected bool   `json:"defaultSelected,omitempty"`
	Metric          Metric `json:"metric"`
	Currency        string `json:"currency,omitempty"`
}

// Assets is the canonical asset table. Order is the display order.
var Assets = []Asset{
	{ID: "us-10yr", Label: "US 10YR Treasury", Symbol: "US 10YR", Category: "Sovereign Bonds", DefaultSelected: true, Metric: MetricYield},
	{ID: "us-30yr", Label: "US 30YR Treasury", Symbol: "US 30YR", Category: "Sovereign Bonds", DefaultSelected: true, Metric: MetricYield},
	{ID: "nigeria-dec-2034", Label: "Nigeria DEC 2034", Symbol: "NIGERIA DEC 2034", Category: "Sovereign Bonds", DefaultSelected: true, Metric: MetricYield},
	{ID: "nigeria-jan-2049", Label: "Nigeria JAN 2049", Symbol: "NIGERIA JAN 2049", Category: "Sovereign Bonds", DefaultSelected: true, Metric: MetricYield},
	{ID: "nigeria-sep-2051", Label: "Nigeria SEP 2051", Symbol: "NIGERIA SEP 2051", Category: "Sovereign Bonds", DefaultSelected: true, Metric: MetricYield},
	{ID: "angola-apr-2032", Label: "Angola APR 2032", Symbol: "ANGOLA APR 2032", Category: "Sovereign Bonds", DefaultSelected: true, Metric: MetricYield},
	{ID: "angola-may-2048", Label: "Angola MAY 2048", Symbol: "ANGOLA MAY 2048", Category: "Sovereign Bonds", DefaultSelected: true, Metric: MetricYield},
	{ID: "angola-nov-2049", Label: "Angola NOV 2049", Symbol: "ANGOLA NOV 2049", Category: "Sovereign Bonds", DefaultSelected: true, Metric: MetricYield},
	{ID: "gold", Label: "Gold Futures", Symbol: "GC=F", Category: "Commodities", Description: "Gold spot price via COMEX futures (GC=F)", Metric: MetricPrice, Currency: "USD"},
	{ID: "brent-crude", Label: "Brent Crude Oil", Symbol: "BZ=F", Category: "Commodities", Description: "ICE Brent Crude futures (BZ=F)", Metric: MetricPrice, Currency: "USD"},
	{ID: "wti-crude", Label: "WTI Crude Oil", Symbol: "CL=F", Category: "Commodities", Description: "NYMEX WTI light sweet crude oil (CL=F)", Metric: MetricPrice, Currency: "USD"},
	{ID: "sp-500", Label: "S&P 500 Index", Symbol: "^GSPC", Category: "Equity Indices", Description: "S&P 500 benchmark index (^GSPC)", Metric: MetricPrice, Currency: "USD"},
	{ID: "nasdaq-100", Label: "NASDAQ 100 Index", Symbol: "^NDX", Category: "Equity Indices", Description: "NASDAQ 100 technology index (^NDX)", Metric: MetricPrice, Currency: "USD"},
	{ID: "eur-usd", Label: "EUR/USD FX", Symbol: "EURUSD=X", Category: "FX Rates", Description: "Euro to US Dollar spot rate (EURUSD=X)", Metric: MetricPrice, Currency: "USD"},
	{ID: "gbp-usd", Label: "GBP/USD FX", Symbol: "GBPUSD=X", Category: "FX Rates", Description: "British Pound to US Dollar spot rate (GBPUSD=X)", Metric: MetricPrice, Currency: "USD"},
}

// PriceAlertBonds lists the bond symbols offered for email alerting.
var PriceAlertBonds = []string{
	"US 10YR",
	"US 30YR",
	"NIGERIA DEC 2034",
	"NIGERIA JAN 2049",
	"NIGERIA SEP 2051",
	"ANGOLA APR 2032",
	"ANGOLA MAY 2048",
	"ANGOLA NOV 2049",
}

var (
	assetsByID = func() map[string]Asset {
		m := make(map[string]Asset, len(Assets))
		for _, a := range Assets {
			m[a.ID] = a
		}
		return m
	}()
	assetOrder = func() []string {
		ids := make([]string, len(Assets))
		for i, a := range Assets {
			ids[i] = a.ID
		}
		return ids
	}()
)

// ByID returns the asset for an id.
func ByID(id string) (Asset, bool) {
	a, ok := assetsByID[id]
	return a, ok
}

// Known reports whether the id exists in the catalog.
func Known(id string) bool {
	_, ok := assetsByID[id]
	return ok
}

// BySymbolOrLabel resolves an asset by its symbol or display label,
// case-insensitively.
func BySymbolOrLabel(symbol string) (Asset, bool) {
	normalized := strings.ToLower(strings.TrimSpace(symbol))
	if normalized == "" {
		return Asset{}, false
	}
	for _, a := range Assets {
		if strings.ToLower(a.Symbol) == normalized || strings.ToLower(a.Label) == normalized {
			return a, true
		}
	}
	return Asset{}, false
}

// DefaultSelectedIDs returns the default-selected subset in catalog order.
func DefaultSelectedIDs() []string {
	var ids []string
	for _, a := range Assets {
		if a.DefaultSelected {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Normalize filters ids down to catalog-known entries and reorders them to
// the catalog's canonical order, dropping duplicates. This is the single
// entry-point guard for every selection mutation: the subset-of-catalog and
// canonical-order invariants hold no matter what the caller passes in.
func Normalize(ids []string) []string {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if Known(id) {
			wanted[id] = true
		}
	}
	result := make([]string, 0, len(wanted))
	for _, id := range assetOrder {
		if wanted[id] {
			result = append(result, id)
		}
	}
	return result
}

// Groups returns the assets bucketed by category, preserving catalog order
// within each bucket.
func Groups() map[string][]Asset {
	groups := make(map[string][]Asset)
	for _, a := range Assets {
		groups[a.Category] = append(groups[a.Category], a)
	}
	return groups
}
