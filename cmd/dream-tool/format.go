package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"dream-tool/internal/assessment"
	"dream-tool/internal/assessor"
	"dream-tool/internal/finance"

	"github.com/shopspring/decimal"
)

func printAssessment(w io.Writer, rec *assessor.Record) {
	r := rec.Result
	pv, diesel := r.PV, r.Diesel

	fmt.Fprintf(w, "Assessment %s\n", rec.ID)
	fmt.Fprintf(w, "Facility: %s\n", rec.FacilityName)
	fmt.Fprintf(w, "Daily usage: %s kWh, peak sun hours: %s\n",
		quantity(rec.Profile.DailyUsageKwh, 2), quantity(rec.Profile.PeakSunHours, 2))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Sizing")
	fmt.Fprintln(w, "------")
	fmt.Fprintf(w, "  PV array:               %s kW\n", quantity(pv.Sizing.PVSizeKw, 0))
	fmt.Fprintf(w, "  Battery capacity:       %s Wh\n", quantity(pv.Sizing.BatteryCapacityWh, 0))
	fmt.Fprintf(w, "  Diesel generator:       %s kW\n", quantity(diesel.Sizing.GeneratorSizeKw, 2))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-24s %16s %16s\n", "", "PV + battery", "Diesel")
	fmt.Fprintf(w, "%-24s %16s %16s\n", "Initial cost", money(pv.InitialCost), money(diesel.InitialCost))
	fmt.Fprintf(w, "%-24s %16s %16s\n", "Annual maintenance", money(pv.AnnualMaintenance), money(diesel.AnnualMaintenance))
	fmt.Fprintf(w, "%-24s %16s %16s\n", "Annual fuel", "-", money(diesel.AnnualFuelCost))
	fmt.Fprintf(w, "%-24s %16s %16s\n", "Lifecycle cost", money(pv.LifecycleCost), money(diesel.LifecycleCost))
	fmt.Fprintf(w, "%-24s %16s %16s\n", "NPV", money(pv.NPV), money(diesel.NPV))
	fmt.Fprintf(w, "%-24s %16s %16s\n", "IRR", irrCell(pv.IRR), irrCell(diesel.IRR))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Yearly energy")
	fmt.Fprintln(w, "-------------")
	fmt.Fprintf(w, "  PV production:          %s Wh\n", quantity(pv.Production.YearlyWh, 0))
	fmt.Fprintf(w, "  Diesel consumption:     %s kWh (%s L)\n",
		quantity(diesel.Consumption.YearlyKwh, 0), quantity(diesel.Consumption.YearlyLiters, 0))
	fmt.Fprintf(w, "  PV CO2 reduction:       %s kg\n", quantity(pv.Environmental.CO2ReductionKg, 1))
	fmt.Fprintf(w, "  Diesel CO2 emissions:   %s kg\n", quantity(diesel.Environmental.CO2EmissionsKg, 1))
	fmt.Fprintln(w)

	switch r.Summary.LowerLifecycleCost {
	case assessment.OptionEqual:
		fmt.Fprintln(w, "Result: both options have the same lifecycle cost")
	default:
		fmt.Fprintf(w, "Result: %s has the lower lifecycle cost (saves %s over the project)\n",
			optionName(r.Summary.LowerLifecycleCost), money(abs(r.Summary.LifecycleSavings)))
	}
}

func printIRR(w io.Writer, npv, rate float64, irr finance.IRRResult) {
	fmt.Fprintf(w, "NPV @ %s: %s\n", percent(rate), money(npv))
	fmt.Fprintf(w, "IRR: %s (%s after %d iterations)\n", percent(irr.Rate), irr.Status, irr.Iterations)
	if irr.Reason != "" {
		fmt.Fprintf(w, "     %s\n", irr.Reason)
	}
}

func irrCell(r finance.IRRResult) string {
	if !r.Converged() {
		return string(r.Status)
	}
	return percent(r.Rate)
}

func optionName(option string) string {
	switch option {
	case assessment.OptionPV:
		return "PV + battery"
	case assessment.OptionDiesel:
		return "Diesel"
	}
	return option
}

// money renders v rounded to cents with thousands separators.
func money(v float64) string {
	if !finite(v) {
		return fmt.Sprint(v)
	}
	s := group(decimal.NewFromFloat(v).StringFixed(2))
	if strings.HasPrefix(s, "-") {
		return "-$" + s[1:]
	}
	return "$" + s
}

func quantity(v float64, places int32) string {
	if !finite(v) {
		return fmt.Sprint(v)
	}
	return group(decimal.NewFromFloat(v).StringFixed(places))
}

func percent(v float64) string {
	if !finite(v) {
		return fmt.Sprint(v)
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

// decimal.NewFromFloat panics on NaN and infinities.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// group inserts thousands separators into a plain decimal string.
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
