// Package fuel holds the core domain types: tracked fuel types and regions,
// observed price points and the trend classification applied to price deltas.
package fuel

import (
	"fmt"
	"strings"
	"time"
)

// FuelType identifies one tracked fuel product.
type FuelType string

const (
	E10    FuelType = "E10"
	U91    FuelType = "U91"
	U95    FuelType = "U95"
	U98    FuelType = "U98"
	Diesel FuelType = "Diesel"
	LPG    FuelType = "LPG"
)

// Types returns every tracked fuel type in report iteration order.
func Types() []FuelType {
	return []FuelType{E10, U91, U95, U98, Diesel, LPG}
}

// ParseFuelType matches a feed or config string against the fixed fuel-type
// set, case-insensitively.
func ParseFuelType(s string) (FuelType, bool) {
	for _, ft := range Types() {
		if strings.EqualFold(s, string(ft)) {
			return ft, true
		}
	}
	return "", false
}

// Region is the geographic scope of a price group. All is the nationwide
// aggregate; the rest are per-state codes.
type Region string

const (
	All Region = "All"
	VIC Region = "VIC"
	NSW Region = "NSW"
	QLD Region = "QLD"
	WA  Region = "WA"
)

// Regions returns every tracked region in report iteration order.
func Regions() []Region {
	return []Region{All, VIC, NSW, QLD, WA}
}

// ParseRegion matches a feed or config string against the fixed region set,
// case-insensitively.
func ParseRegion(s string) (Region, bool) {
	for _, r := range Regions() {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// PricePoint is one observed price at one place and time.
type PricePoint struct {
	Timestamp time.Time
	State     string
	Suburb    string
	Price     float64
}

// Key identifies one (fuel type, region) history record.
type Key struct {
	FuelType FuelType
	Region   Region
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s", k.FuelType, k.Region)
}

// ParseKey reverses Key.String. Used when scanning stored history keys.
func ParseKey(s string) (Key, bool) {
	typePart, regionPart, found := strings.Cut(s, "|")
	if !found {
		return Key{}, false
	}
	ft, ok := ParseFuelType(typePart)
	if !ok {
		return Key{}, false
	}
	region, ok := ParseRegion(regionPart)
	if !ok {
		return Key{}, false
	}
	return Key{FuelType: ft, Region: region}, true
}
