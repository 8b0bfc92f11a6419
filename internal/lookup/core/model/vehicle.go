package model

import "strconv"

// Defaults substituted for fields missing from a lookup response.
const (
	DefaultName     = "NA"
	DefaultID       = "NA"
	DefaultCategory = "NA"
	DefaultPrice    = 0
	DefaultCurrency = ""
)

// VehicleInfo is the resolved vehicle behind a scanned code.
// It is always fully populated and compares with ==.
type VehicleInfo struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Category string `json:"category"`
	Price    int    `json:"price"`
	Currency string `json:"currency"`
}

// PriceLabel renders price and currency the way the details screen shows them, e.g. "10 Kr".
func (v VehicleInfo) PriceLabel() string {
	if v.Currency == "" {
		return strconv.Itoa(v.Price)
	}
	return strconv.Itoa(v.Price) + " " + v.Currency
}

// RawLookupResponse is the wire shape of the lookup service. Every field is
// optional; it only lives between decoding and Normalize.
type RawLookupResponse struct {
	Name     *string `json:"name"`
	ID       *string `json:"id"`
	Category *string `json:"category"`
	Price    *int    `json:"price"`
	Currency *string `json:"currency"`
}

// Normalize applies the field defaults and returns the immutable record.
func (r RawLookupResponse) Normalize() VehicleInfo {
	return VehicleInfo{
		Name:     stringOr(r.Name, DefaultName),
		ID:       stringOr(r.ID, DefaultID),
		Category: stringOr(r.Category, DefaultCategory),
		Price:    intOr(r.Price, DefaultPrice),
		Currency: stringOr(r.Currency, DefaultCurrency),
	}
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
