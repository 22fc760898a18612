// Package emission converts logged activity quantities into kg CO2e using a
// static table of emission factors.
package emission

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is wrapped by every error Estimate returns.
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrInvalidInput)
	ErrUnknownActivity = fmt.Errorf("%w: unknown activity", ErrInvalidInput)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a finite number between 0 and %g", ErrInvalidInput, MaxQuantity)
)

// MaxQuantity bounds a single logged quantity so carbon totals stay finite
// and fit integer hundredths when aggregated.
const MaxQuantity = 1e9

// LookupError carries the category/activity pair that failed to resolve.
type LookupError struct {
	Category Category
	Activity string
	err      error
}

func (e *LookupError) Error() string {
	if e.Activity == "" {
		return fmt.Sprintf("%v %q", e.err, e.Category)
	}
	return fmt.Sprintf("%v %q in category %q", e.err, e.Activity, e.Category)
}

func (e *LookupError) Unwrap() error { return e.err }

// Estimate is the result of converting one activity quantity.
type Estimate struct {
	Factor   Factor
	Quantity float64
	CarbonKg float64
}

// Estimator is the seam services depend on.
type Estimator interface {
	Estimate(category Category, activity string, quantity float64) (Estimate, error)
}

// TableEstimator estimates against the built-in factor table.
type TableEstimator struct{}

func NewEstimator() TableEstimator {
	return TableEstimator{}
}

func (TableEstimator) Estimate(category Category, activity string, quantity float64) (Estimate, error) {
	return Compute(category, activity, quantity)
}

// Compute returns round(quantity * factor, 2). A missing category or activity
// is an error, never a zero result.
func Compute(category Category, activity string, quantity float64) (Estimate, error) {
	if math.IsNaN(quantity) || quantity < 0 || quantity > MaxQuantity {
		return Estimate{}, ErrInvalidQuantity
	}
	f, err := Lookup(category, activity)
	if err != nil {
		return Estimate{}, err
	}
	carbon := Round2(quantity * f.KgCO2ePerUnit)
	if math.IsNaN(carbon) || math.IsInf(carbon, 0) {
		return Estimate{}, ErrInvalidQuantity
	}
	return Estimate{
		Factor:   f,
		Quantity: quantity,
		CarbonKg: carbon,
	}, nil
}

// Round2 rounds half away from zero to two decimals. Values too large to
// scale are returned unchanged.
func Round2(v float64) float64 {
	scaled := v * 100
	if math.IsInf(scaled, 0) {
		return v
	}
	return math.Round(scaled) / 100
}
