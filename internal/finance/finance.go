// Package finance holds the discounted cash-flow math behind the assessment:
// net present value, its derivative with respect to the rate, and an
// internal rate of return found by Newton-Raphson.
package finance

import (
	"math"
)

// CashFlowSeries is ordered by year; index 0 is the upfront flow.
type CashFlowSeries []float64

// NewCostSeries builds a pure-cost series: -initial at year 0 followed by
// -recurring for each of the given years.
func NewCostSeries(initial, recurring float64, years int) CashFlowSeries {
	cf := make(CashFlowSeries, years+1)
	cf[0] = -initial
	for t := 1; t <= years; t++ {
		cf[t] = -recurring
	}
	return cf
}

// Sum returns the undiscounted total.
func (cf CashFlowSeries) Sum() float64 {
	var total float64
	for _, v := range cf {
		total += v
	}
	return total
}

// PresentValue discounts an amount received at the given year: amount/(1+rate)^year.
func PresentValue(amount, rate float64, year int) float64 {
	return amount / math.Pow(1+rate, float64(year))
}

// NPV = Σ cf[t] / (1+rate)^t.
func NPV(cf []float64, rate float64) float64 {
	var npv float64
	for t, v := range cf {
		npv += v / math.Pow(1+rate, float64(t))
	}
	return npv
}

// NPVDerivative is dNPV/drate = Σ -t·cf[t] / (1+rate)^(t+1).
func NPVDerivative(cf []float64, rate float64) float64 {
	var d float64
	for t, v := range cf {
		d += -(float64(t) * v) / math.Pow(1+rate, float64(t+1))
	}
	return d
}

// IsFinite reports whether x is neither NaN nor an infinity. NPV of a series
// of finite flows can still overflow to ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
