package invreports

import (
	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// acqLot is a single open acquisition. Quantity and basis share the sign of
// the position direction: positive quantity and cost for longs, negative
// quantity and credit for shorts.
type acqLot struct {
	acquired date.Date
	quantity float64
	basis    float64
}

// lotMatcher is the lot-matching cost-basis strategy. It owns a private
// inventory of open lots for exactly one security sequence, consumed oldest
// first on reducing trades.
type lotMatcher struct {
	lots []acqLot
}

func (*lotMatcher) Method() CostBasisMethod { return LotMatching }

// ApplySplit rescales open lot quantities; basis is invariant under a split.
func (m *lotMatcher) ApplySplit(ratio float64) {
	for i := range m.lots {
		m.lots[i].quantity *= ratio
	}
}

// open appends a new acquisition lot.
func (m *lotMatcher) open(on date.Date, quantity, basis float64) {
	m.lots = append(m.lots, acqLot{acquired: on, quantity: quantity, basis: basis})
}

// consume removes quantity (a positive magnitude) from the inventory oldest
// first and returns the basis removed. It reports false when the inventory
// holds less than requested.
func (m *lotMatcher) consume(quantity float64) (removed float64, ok bool) {
	remaining := quantity
	i := 0
	for ; i < len(m.lots) && remaining > positionEpsilon; i++ {
		l := &m.lots[i]
		held := l.quantity
		if held < 0 {
			held = -held
		}
		if held > remaining {
			fraction := remaining / held
			removed += l.basis * fraction
			l.basis -= l.basis * fraction
			if l.quantity > 0 {
				l.quantity -= remaining
			} else {
				l.quantity += remaining
			}
			remaining = 0
			break
		}
		removed += l.basis
		remaining -= held
		l.quantity = 0
		l.basis = 0
	}
	if remaining > positionEpsilon {
		return 0, false
	}
	// Drop fully consumed lots.
	kept := m.lots[:0]
	for _, l := range m.lots {
		if l.quantity > positionEpsilon || l.quantity < -positionEpsilon {
			kept = append(kept, l)
		}
	}
	m.lots = kept
	return removed, true
}

// totals sums the open inventory into long and short basis.
func (m *lotMatcher) totals() (long, short float64) {
	for _, l := range m.lots {
		if l.quantity > 0 {
			long += l.basis
		} else {
			short += l.basis
		}
	}
	return snapBasis(long), snapBasis(short)
}

func (m *lotMatcher) Step(prevPos, prevLong, prevShort float64, txn *NormalizedTransaction) (long, short, realized float64, err error) {
	q := txn.QuantityDelta

	switch {
	case q > 0 && prevPos >= -positionEpsilon:
		m.open(txn.Date, q, tradeCost(txn))

	case q > 0:
		// Covering a short: consume the oldest short lots.
		if q > -prevPos+positionEpsilon {
			return 0, 0, 0, dataFault(txn.Security, txn.SourceID,
				"cover of %v exceeds short position %v", q, -prevPos)
		}
		removed, ok := m.consume(q)
		if !ok {
			return 0, 0, 0, dataFault(txn.Security, txn.SourceID,
				"cover of %v exceeds recorded lots", q)
		}
		realized = -removed + txn.CoverShort + txn.Commission

	case q < 0 && prevPos > positionEpsilon:
		// Selling down a long: consume the oldest long lots.
		if -q > prevPos+positionEpsilon {
			return 0, 0, 0, dataFault(txn.Security, txn.SourceID,
				"sale of %v exceeds position %v", -q, prevPos)
		}
		removed, ok := m.consume(-q)
		if !ok {
			return 0, 0, 0, dataFault(txn.Security, txn.SourceID,
				"sale of %v exceeds recorded lots", -q)
		}
		realized = txn.Sell + txn.Commission - removed

	case q < 0:
		// Opening or adding to a short: basis is the negated net credit.
		m.open(txn.Date, q, -(txn.ShortSell + txn.Commission))
	}

	long, short = m.totals()
	return long, short, realized, nil
}
