// Package decimal rounds report values the way the SQL reports do,
// using github.com/cockroachdb/apd/v3 so half-way cases round away from zero.
package decimal

import (
	"math"

	"github.com/cockroachdb/apd/v3"
)

// Output precision by kind of value.
const (
	CurrencyPlaces = 2
	PercentPlaces  = 1
	RatioPlaces    = 3
)

// roundingContext is shared by every quantize call. apd contexts are safe to reuse.
var roundingContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp
	return ctx
}()

// Round rounds v to the given number of decimal places, half away from zero.
// Non-finite values are returned unchanged.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	var d apd.Decimal
	if _, err := d.SetFloat64(v); err != nil {
		return v
	}
	var out apd.Decimal
	if _, err := roundingContext.Quantize(&out, &d, int32(-places)); err != nil {
		return v
	}
	f, err := out.Float64()
	if err != nil {
		return v
	}
	if f == 0 {
		return 0 // drop negative zero
	}
	return f
}

// Currency rounds a money amount to cents.
func Currency(v float64) float64 {
	return Round(v, CurrencyPlaces)
}

// Percent rounds a percentage to one decimal.
func Percent(v float64) float64 {
	return Round(v, PercentPlaces)
}

// SafeDiv returns num/den, or nil when den is zero.
func SafeDiv(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}

// SafePercent returns 100*num/den rounded to one decimal, or nil when den is zero.
func SafePercent(num, den float64) *float64 {
	v := SafeDiv(num, den)
	if v == nil {
		return nil
	}
	p := Percent(*v * 100)
	return &p
}

// SafeAverage returns sum/count rounded to places, or nil when count is zero.
func SafeAverage(sum float64, count int, places int) *float64 {
	v := SafeDiv(sum, float64(count))
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}

// RoundPtr rounds a nullable value, keeping nil as nil.
func RoundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}
