package invreports

import (
	"errors"
	"fmt"
	"math"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// ErrNoConvergence reports that the annualized-return root finder exhausted
// its iteration cap. Callers must treat it as "no annualized return
// available", never as zero.
var ErrNoConvergence = errors.New("root finder did not converge")

const (
	// newtonTolerance is the residual below which the solve is accepted.
	newtonTolerance = 1e-9
	// newtonMaxIterations bounds the solve so it always terminates.
	newtonMaxIterations = 100
	// newtonInitialGuess starts the iteration at a modest positive rate.
	newtonInitialGuess = 0.1
	// dayCountBasis is the denominator of the year-fraction exponent.
	dayCountBasis = 365.0
)

// ModifiedDietz computes the holding-period return over [from, to]:
//
//	R = (End - Start - sumFlows + Income + Expense) / (Start + weightedFlows)
//
// where each flow weighs by the fraction of the period it was invested.
// When the denominator vanishes with no ending value the return is
// undefined and NaN is returned; downstream layers render it as N/A and
// never fold it into sums as zero.
func ModifiedDietz(startValue, endValue, income, expense float64, flows *CashFlowSeries, from, to date.Date) float64 {
	var sumFlows, weighted float64
	if flows != nil {
		flows.Each(func(on date.Date, v float64) {
			if on.Before(from) || on.After(to) {
				return
			}
			sumFlows += v
		})
		weighted = flows.WeightedSum(from, to)
	}

	denominator := startValue + weighted
	if math.Abs(denominator) < 1e-9 {
		return math.NaN()
	}
	return (endValue - startValue - sumFlows + income + expense) / denominator
}

// AnnualizedReturn solves for the constant annual rate r that zeroes the
// present value of the full-history flow series:
//
//	sum CF_i * (1+r)^(-days_i/365) = 0
//
// with days counted from the first flow. The series must already include
// the terminal flow expressing the period's own Modified-Dietz outcome.
// Newton-Raphson iteration is bounded; on failure the explicit
// ErrNoConvergence status is returned and the rate is meaningless.
//
// guess seeds the iteration; pass the period's Modified-Dietz return when
// available, or NaN to fall back to the default starting point.
func AnnualizedReturn(flows *CashFlowSeries, guess float64) (float64, error) {
	if math.IsNaN(guess) || guess <= -1 {
		guess = newtonInitialGuess
	}
	return annualize(flows, guess, newtonTolerance, newtonMaxIterations)
}

// annualize is the bounded Newton-Raphson core, parameterized for tests.
func annualize(flows *CashFlowSeries, guess, tolerance float64, maxIterations int) (float64, error) {
	if flows == nil || flows.Len() < 2 {
		return 0, fmt.Errorf("annualized return needs at least two dated flows: %w", ErrNoConvergence)
	}
	start, _ := flows.First()

	type datedFlow struct {
		years  float64
		amount float64
	}
	var series []datedFlow
	flows.Each(func(on date.Date, v float64) {
		if v == 0 {
			return
		}
		series = append(series, datedFlow{
			years:  float64(date.DaysBetween(start, on)) / dayCountBasis,
			amount: v,
		})
	})

	rate := guess
	for i := 0; i < maxIterations; i++ {
		if rate <= -1 {
			// Keep (1+r) positive so the power stays real.
			rate = -1 + 1e-6
		}
		var value, derivative float64
		for _, cf := range series {
			discount := math.Pow(1+rate, -cf.years)
			value += cf.amount * discount
			derivative += cf.amount * -cf.years * discount / (1 + rate)
		}
		if math.Abs(value) < tolerance {
			return rate, nil
		}
		if derivative == 0 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			return 0, fmt.Errorf("flat derivative at rate %v: %w", rate, ErrNoConvergence)
		}
		next := rate - value/derivative
		if next <= -1 {
			// Full Newton step left the real domain; halve toward -1 instead.
			next = (rate - 1) / 2
		}
		rate = next
	}
	return 0, fmt.Errorf("after %d iterations: %w", maxIterations, ErrNoConvergence)
}
