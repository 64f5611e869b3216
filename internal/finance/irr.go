package finance

import (
	"math"
)

type IRRStatus string

const (
	// IRRConverged means two successive estimates differed by less than the tolerance.
	IRRConverged IRRStatus = "converged"
	// IRRNotConverged means the iteration budget ran out; Rate is the last estimate.
	IRRNotConverged IRRStatus = "not_converged"
	// IRRDiverged means a Newton step produced a non-finite rate, typically
	// from a flat NPV curve; Rate is the last finite estimate.
	IRRDiverged IRRStatus = "diverged"
	// IRRUndefined means the series has no sign change, so no rate zeroes its NPV.
	IRRUndefined IRRStatus = "undefined"
)

type IRROptions struct {
	InitialGuess  float64
	Tolerance     float64
	MaxIterations int
}

func DefaultIRROptions() IRROptions {
	return IRROptions{
		InitialGuess:  0.10,
		Tolerance:     1e-6,
		MaxIterations: 100,
	}
}

// IRRResult is the outcome of the root search. Rate is only a genuine
// internal rate of return when Status is IRRConverged.
type IRRResult struct {
	Rate       float64   `json:"rate"`
	Iterations int       `json:"iterations"`
	Status     IRRStatus `json:"status"`
	Reason     string    `json:"reason,omitempty"`
}

func (r IRRResult) Converged() bool {
	return r.Status == IRRConverged
}

// IRR runs Newton-Raphson on NPV starting from opts.InitialGuess:
//
//	rate' = rate - NPV(rate) / NPV'(rate)
//
// It stops when |rate' - rate| < opts.Tolerance or after opts.MaxIterations
// steps. The step itself is not damped or bracketed; a flat NPV curve shows
// up as IRRDiverged rather than being corrected.
func IRR(cf []float64, opts IRROptions) IRRResult {
	if reason := undefinedReason(cf); reason != "" {
		return IRRResult{Status: IRRUndefined, Reason: reason}
	}

	rate := opts.InitialGuess
	for i := 1; i <= opts.MaxIterations; i++ {
		next := rate - NPV(cf, rate)/NPVDerivative(cf, rate)
		if !IsFinite(next) {
			return IRRResult{
				Rate:       rate,
				Iterations: i,
				Status:     IRRDiverged,
				Reason:     "newton step produced a non-finite rate",
			}
		}
		if math.Abs(next-rate) < opts.Tolerance {
			return IRRResult{Rate: next, Iterations: i, Status: IRRConverged}
		}
		rate = next
	}

	return IRRResult{
		Rate:       rate,
		Iterations: opts.MaxIterations,
		Status:     IRRNotConverged,
		Reason:     "iteration limit reached before tolerance was met",
	}
}

func undefinedReason(cf []float64) string {
	var hasNegative, hasPositive bool
	for _, v := range cf {
		switch {
		case !IsFinite(v):
			return "cash flows contain a non-finite value"
		case v < 0:
			hasNegative = true
		case v > 0:
			hasPositive = true
		}
	}

	switch {
	case !hasNegative && !hasPositive:
		return "all cash flows are zero"
	case !hasNegative:
		return "no investment: every cash flow is non-negative"
	case !hasPositive:
		return "no return: every cash flow is non-positive"
	}
	return ""
}
