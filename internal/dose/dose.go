// Package dose estimates the THC milligrams delivered by a logged
// consumption event.
//
// The estimate is a closed-form formula, not a measurement:
//
//	vape/smoke:      thc_mg = puffs * (thc_percent / 100) * 2.5
//	edible/tincture: thc_mg = amount (taken as already being in mg)
//	anything else:   thc_mg = 0
//
// The package is pure, with no I/O and no dependencies, so it can be tested and
// reused (HTTP handler, CLI, backfill job) without any setup.
package dose

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Consumption methods with a known dose model. The method field is an open
// enum: values outside this set are accepted and estimate to 0 mg rather
// than erroring. Stricter validation would break existing clients that log
// ad-hoc methods.
const (
	MethodVape     = "vape"
	MethodSmoke    = "smoke"
	MethodEdible   = "edible"
	MethodTincture = "tincture"
)

// MgPerPuff models milligrams of THC delivered per puff at 100% potency.
// It is a fixed calibration constant (assumed dose-per-puff mass), not a
// user-configurable setting.
const MgPerPuff = 2.5

// DefaultTHCPercent is assumed when an inhaled entry doesn't state potency.
const DefaultTHCPercent = 75.0

// Estimate returns the estimated THC milligrams for one event.
// puffs and thcPercent apply to inhaled methods, amount to ingested ones;
// the irrelevant inputs are ignored. Unknown methods estimate to 0.
func Estimate(method string, puffs, thcPercent, amount float64) float64 {
	switch method {
	case MethodVape, MethodSmoke:
		return puffs * (thcPercent / 100) * MgPerPuff
	case MethodEdible, MethodTincture:
		return amount
	default:
		return 0
	}
}

// ParseQuantity parses a dose input from its wire text. Clients send these
// fields as JSON numbers or numeric strings interchangeably, so everything
// arrives here as text. An empty or all-whitespace value means "not
// provided" and parses as 0.
//
// Returns an error for anything that is not a finite, non-negative number.
func ParseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("dose: %q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("dose: quantity must be a non-negative number, got %q", s)
	}
	return v, nil
}
