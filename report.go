package invreports

import (
	"fmt"
	"math"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// ReportContext selects the reporting window: a single snapshot date, or an
// explicit from/to range. Horizon windows are always anchored on the end
// date; a range additionally carries its own from date for the headline
// period return.
type ReportContext struct {
	From date.Date // zero for a snapshot
	To   date.Date
}

// NewSnapshotContext reports as of a single date.
func NewSnapshotContext(on date.Date) ReportContext {
	return ReportContext{To: on}
}

// NewRangeContext reports over an explicit from/to window.
func NewRangeContext(from, to date.Date) ReportContext {
	return ReportContext{From: from, To: to}
}

// IsRange reports whether the context carries an explicit from date.
func (c ReportContext) IsRange() bool { return !c.From.IsZero() }

func (c ReportContext) String() string {
	if c.IsRange() {
		return fmt.Sprintf("%s..%s", c.From, c.To)
	}
	return c.To.String()
}

// GroupLabel is an identity reference carried by a report: the value of one
// grouping dimension (account name, ticker, currency, asset type or
// subtype). A leaf report holds a single value; an aggregate keeps the value
// only while every merged member agrees, and collapses to mixed otherwise.
type GroupLabel struct {
	value string
	set   bool
	mixed bool
}

// NewGroupLabel returns a label holding a single value.
func NewGroupLabel(v string) GroupLabel {
	return GroupLabel{value: v, set: true}
}

// Value returns the single value, or "" when unset or mixed.
func (l GroupLabel) Value() string {
	if l.mixed {
		return ""
	}
	return l.value
}

// Mixed reports whether merged members disagreed on this dimension.
func (l GroupLabel) Mixed() bool { return l.mixed }

func (l GroupLabel) String() string {
	switch {
	case l.mixed:
		return "mixed"
	case !l.set:
		return ""
	default:
		return l.value
	}
}

// MergeFrom folds another label in. The first merge adopts the value; any
// later disagreement collapses to mixed, and mixed is absorbing.
func (l *GroupLabel) MergeFrom(other GroupLabel) {
	if !other.set && !other.mixed {
		return
	}
	if !l.set && !l.mixed {
		*l = other
		return
	}
	if l.mixed || other.mixed || l.value != other.value {
		l.value = ""
		l.mixed = true
	}
}

// SecurityValuationReport bundles the computed valuation and return metrics
// of one security (leaf) or one composite (aggregate) for one reporting
// context.
//
// Two lifecycles exist. A leaf is built in one shot by NewLeafReport from a
// sequenced Sequence and is immediately complete. An aggregate starts empty
// (NewAggregateReport), accumulates leaves through MergeFrom, and carries
// meaningful returns only after RecomputeReturns; returns are never merged,
// only recomputed from the merged flow series.
type SecurityValuationReport struct {
	Account      GroupLabel
	Ticker       GroupLabel
	Currency     GroupLabel
	AssetType    GroupLabel
	AssetSubtype GroupLabel

	Context   ReportContext
	Aggregate bool
	Members   int // leaves folded in; 1 for a leaf

	// End-of-window scalars. EndPrice is a per-security datum, not
	// additive; it goes NaN when merged members disagree.
	EndPosition    float64
	EndPrice       float64
	EndValue       float64
	EndLongBasis   float64
	EndShortBasis  float64
	UnrealizedGain float64 // cumulative, at window end
	TotalGain      float64 // cumulative, at window end

	StartDates     PeriodMap[date.Date]
	StartValues    PeriodMap[float64]
	StartPositions PeriodMap[float64]
	StartPrices    PeriodMap[float64]
	Incomes        PeriodMap[float64]
	Expenses       PeriodMap[float64]
	RealizedGains  PeriodMap[float64]
	Flows          PeriodMap[*CashFlowSeries]

	// Explicit-range window state, meaningful only when Context.IsRange().
	// Kept apart from the horizon maps because the range anchors on its own
	// from date rather than on a trailing window of the end date.
	RangeStartValue float64
	RangeIncome     float64
	RangeExpense    float64
	RangeFlows      *CashFlowSeries

	// Computed by RecomputeReturns.
	Returns      PeriodMap[float64] // Modified-Dietz per horizon, NaN when undefined
	PeriodReturn float64            // Dietz over the explicit range; NaN for snapshots
	AnnReturn    float64
	AnnErr       error // non-nil means "no annualized return available"
}

// NewAggregateReport returns an empty aggregate for the given context,
// ready to accumulate leaves through MergeFrom.
func NewAggregateReport(ctx ReportContext) *SecurityValuationReport {
	return &SecurityValuationReport{
		Context:        ctx,
		Aggregate:      true,
		StartDates:     NewPeriodMap[date.Date](),
		StartValues:    NewPeriodMap[float64](),
		StartPositions: NewPeriodMap[float64](),
		StartPrices:    NewPeriodMap[float64](),
		Incomes:        NewPeriodMap[float64](),
		Expenses:       NewPeriodMap[float64](),
		RealizedGains:  NewPeriodMap[float64](),
		Flows:          FillPeriodMap(func(Horizon) *CashFlowSeries { return NewCashFlowSeries() }),
		RangeFlows:     NewCashFlowSeries(),
		Returns:        FillPeriodMap(func(Horizon) float64 { return math.NaN() }),
		PeriodReturn:   math.NaN(),
		AnnReturn:      math.NaN(),
	}
}

// boundaryState re-marks the sequenced position at a window boundary. The
// sequencer prices a step only on transaction dates, so quotes and splits
// landing between the last transaction and the boundary are picked up here.
// The returned value differs from the last step's open value exactly by the
// re-mark.
func boundaryState(s *Sequence, prices *PriceTable, on date.Date) (last *NormalizedTransaction, pos, price, value float64) {
	last = s.LastAsOf(on)
	if last == nil {
		return nil, 0, 0, 0
	}
	pos, price = last.Position, last.MarketPrice
	if !s.Cash {
		for _, sp := range prices.SplitsBetween(s.Security, last.Date, on) {
			ratio := sp.Ratio()
			pos *= ratio
			price /= ratio
		}
		if mark, ok := prices.MarkPrice(s.Security, on); ok {
			price = mark
		}
	}
	return last, pos, price, pos * price
}

// NewLeafReport builds the report of one sequenced security (or synthetic
// cash) sequence. The sequence must already have been run through the
// Sequencer; an unsequenced input is a programming error reported as such.
// The price table supplies the marks at the window end and at each horizon
// start, which need not coincide with a transaction date.
func NewLeafReport(s *Sequence, sec Security, prices *PriceTable, ctx ReportContext) (*SecurityValuationReport, error) {
	if !s.sequenced {
		return nil, fmt.Errorf("%s: report requested before sequencing", s)
	}
	if prices == nil {
		prices = NewPriceTable()
	}
	r := NewAggregateReport(ctx)
	r.Aggregate = false
	r.Members = 1
	r.Account = NewGroupLabel(s.Account)
	r.Ticker = NewGroupLabel(sec.Ticker)
	r.Currency = NewGroupLabel(sec.CurrencyID)
	r.AssetType = NewGroupLabel(sec.AssetType)
	r.AssetSubtype = NewGroupLabel(sec.AssetSubtype)

	end := ctx.To
	if last, pos, price, value := boundaryState(s, prices, end); last != nil {
		remark := value - last.OpenValue
		r.EndPosition = pos
		r.EndPrice = price
		r.EndValue = value
		r.EndLongBasis = last.LongBasis
		r.EndShortBasis = last.ShortBasis
		r.UnrealizedGain = last.CumUnrealizedGain + remark
		r.TotalGain = last.CumTotalGain + remark
	}

	for _, h := range Horizons() {
		start := h.Start(end)
		if h == All {
			// Dietz weighting needs a real start; inception is the
			// first transaction date.
			if first := s.First(); first != nil {
				start = first.Date
			} else {
				start = end
			}
		}
		r.StartDates[h] = start

		if prior, pos, price, value := boundaryState(s, prices, start.Add(-1)); prior != nil {
			r.StartValues[h] = value
			r.StartPositions[h] = pos
			r.StartPrices[h] = price
		}

		var income, expense, realized float64
		flows := r.Flows[h]
		for _, t := range s.Txns {
			if t.Date.Before(start) || t.Date.After(end) {
				continue
			}
			income += t.Income
			expense += t.Expense
			realized += t.PeriodRealizedGain
			if f := t.ExternalFlow(); f != 0 {
				flows.Add(t.Date, f)
			}
		}
		r.Incomes[h] = income
		r.Expenses[h] = expense
		r.RealizedGains[h] = realized
	}

	if ctx.IsRange() {
		if prior, _, _, value := boundaryState(s, prices, ctx.From.Add(-1)); prior != nil {
			r.RangeStartValue = value
		}
		for _, t := range s.Txns {
			if t.Date.Before(ctx.From) || t.Date.After(end) {
				continue
			}
			r.RangeIncome += t.Income
			r.RangeExpense += t.Expense
			if f := t.ExternalFlow(); f != 0 {
				r.RangeFlows.Add(t.Date, f)
			}
		}
	}

	r.RecomputeReturns()
	return r, nil
}

// MergeFrom folds another report into this one. The operation is commutative
// and associative over any set of leaves: scalars sum, flow series combine
// pointwise, start dates take the earliest, labels collapse to mixed on
// disagreement. Returns are NOT merged; call RecomputeReturns after the last
// merge.
func (r *SecurityValuationReport) MergeFrom(other *SecurityValuationReport) {
	r.Account.MergeFrom(other.Account)
	r.Ticker.MergeFrom(other.Ticker)
	r.Currency.MergeFrom(other.Currency)
	r.AssetType.MergeFrom(other.AssetType)
	r.AssetSubtype.MergeFrom(other.AssetSubtype)

	if r.Members == 0 {
		r.EndPrice = other.EndPrice
	} else if r.EndPrice != other.EndPrice {
		r.EndPrice = math.NaN()
	}
	r.Members += other.Members

	r.EndPosition += other.EndPosition
	r.EndValue += other.EndValue
	r.EndLongBasis += other.EndLongBasis
	r.EndShortBasis += other.EndShortBasis
	r.UnrealizedGain += other.UnrealizedGain
	r.TotalGain += other.TotalGain

	for _, h := range Horizons() {
		if cur := r.StartDates[h]; cur.IsZero() || (!other.StartDates[h].IsZero() && other.StartDates[h].Before(cur)) {
			r.StartDates[h] = other.StartDates[h]
		}
		r.StartValues[h] += other.StartValues[h]
		r.StartPositions[h] += other.StartPositions[h]
		r.StartPrices[h] += other.StartPrices[h]
		r.Incomes[h] += other.Incomes[h]
		r.Expenses[h] += other.Expenses[h]
		r.RealizedGains[h] += other.RealizedGains[h]
		if of := other.Flows[h]; of != nil {
			r.Flows[h].Combine(of, CombineAdd)
		}
	}

	r.RangeStartValue += other.RangeStartValue
	r.RangeIncome += other.RangeIncome
	r.RangeExpense += other.RangeExpense
	r.RangeFlows.Combine(other.RangeFlows, CombineAdd)
}

// RecomputeReturns derives every return figure from the report's own merged
// state. For composites this is the only legitimate source of returns: the
// formulas are non-linear, so an aggregate return is never a sum or average
// of member returns.
func (r *SecurityValuationReport) RecomputeReturns() {
	end := r.Context.To
	for _, h := range Horizons() {
		r.Returns[h] = ModifiedDietz(
			r.StartValues[h], r.EndValue,
			r.Incomes[h], r.Expenses[h],
			r.Flows[h], r.StartDates[h], end)
	}
	r.PeriodReturn = math.NaN()
	if r.Context.IsRange() {
		r.PeriodReturn = ModifiedDietz(
			r.RangeStartValue, r.EndValue,
			r.RangeIncome, r.RangeExpense,
			r.RangeFlows, r.Context.From, end)
	}
	r.AnnReturn, r.AnnErr = r.annualized(end)
}

// annualized solves for the internal rate over the full history: every
// external flow from the investor's side (contributions negative), income
// and expense as they occur, and the ending value as a terminal inflow.
func (r *SecurityValuationReport) annualized(end date.Date) (float64, error) {
	flows := NewCashFlowSeries()
	r.Flows[All].Each(func(on date.Date, v float64) {
		flows.Add(on, -v)
	})
	if flows.Len() == 0 && r.EndValue == 0 {
		return math.NaN(), fmt.Errorf("no dated flows: %w", ErrNoConvergence)
	}
	flows.Add(end, r.EndValue+r.Incomes[All]+r.Expenses[All])
	rate, err := AnnualizedReturn(flows, r.Returns[All])
	if err != nil {
		return math.NaN(), err
	}
	return rate, nil
}
