package invreports

import (
	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// CombineOp selects how two cash-flow series merge.
type CombineOp int

const (
	CombineAdd CombineOp = iota
	CombineSubtract
)

// CashFlowSeries is a sparse date-to-amount mapping of net external cash
// flows. Keys are unique; insertion order is irrelevant; absent dates count
// as zero. A fresh series is built per reporting horizon and merged pointwise
// during aggregation.
type CashFlowSeries struct {
	hist date.History[float64]
}

// NewCashFlowSeries returns an empty series.
func NewCashFlowSeries() *CashFlowSeries { return &CashFlowSeries{} }

// Add increments the amount recorded for a date, inserting it if absent.
func (c *CashFlowSeries) Add(on date.Date, amount float64) {
	c.hist.AppendAdd(on, amount)
}

// Combine merges another series pointwise, adding or subtracting, treating
// absent dates as zero. The receiver is modified; other is not.
func (c *CashFlowSeries) Combine(other *CashFlowSeries, op CombineOp) {
	if other == nil {
		return
	}
	sign := 1.0
	if op == CombineSubtract {
		sign = -1.0
	}
	for on, v := range other.hist.Values() {
		c.hist.AppendAdd(on, sign*v)
	}
}

// Clone returns an independent copy of the series.
func (c *CashFlowSeries) Clone() *CashFlowSeries {
	out := NewCashFlowSeries()
	out.Combine(c, CombineAdd)
	return out
}

// Len returns the number of dated entries.
func (c *CashFlowSeries) Len() int { return c.hist.Len() }

// Sum returns the plain sum of all flows.
func (c *CashFlowSeries) Sum() float64 {
	var total float64
	for _, v := range c.hist.Values() {
		total += v
	}
	return total
}

// First returns the earliest dated flow, or a zero date for an empty series.
func (c *CashFlowSeries) First() (date.Date, float64) { return c.hist.First() }

// Get returns the amount on a date and whether the date is present.
func (c *CashFlowSeries) Get(on date.Date) (float64, bool) { return c.hist.Get(on) }

// Each calls f for every dated flow in chronological order.
func (c *CashFlowSeries) Each(f func(on date.Date, amount float64)) {
	for on, v := range c.hist.Values() {
		f(on, v)
	}
}

// WeightedSum returns the day-weighted sum of flows over the period
// [from, to]: each flow weighs by the fraction of the period remaining after
// its date. Flows outside the period weigh zero.
func (c *CashFlowSeries) WeightedSum(from, to date.Date) float64 {
	span := date.DaysBetween(from, to)
	if span <= 0 {
		return 0
	}
	var total float64
	for on, v := range c.hist.Values() {
		if on.Before(from) || on.After(to) {
			continue
		}
		weight := float64(date.DaysBetween(on, to)) / float64(span)
		total += v * weight
	}
	return total
}
