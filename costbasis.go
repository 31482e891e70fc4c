package invreports

import "fmt"

// CostBasisMethod selects the algorithm used to compute basis and realized
// gains.
type CostBasisMethod int

const (
	// AverageCost blends every acquisition into a single average basis.
	AverageCost CostBasisMethod = iota
	// LotMatching consumes specific acquisition lots, oldest first.
	LotMatching
)

func (m CostBasisMethod) String() string {
	switch m {
	case AverageCost:
		return "average"
	case LotMatching:
		return "lot-matching"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses a string into a CostBasisMethod.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch s {
	case "average":
		return AverageCost, nil
	case "lot-matching", "fifo":
		return LotMatching, nil
	default:
		return 0, fmt.Errorf("unknown cost basis method: %q", s)
	}
}

// New returns a fresh strategy handle for one security sequence. Lot-matching
// handles carry lot inventory across calls and must not be shared between
// sequences.
func (m CostBasisMethod) New() CostBasis {
	switch m {
	case LotMatching:
		return &lotMatcher{}
	default:
		return averageCoster{}
	}
}

// CostBasis computes the basis and realized-gain increment of each sequencer
// step. The sequencer owns position arithmetic; the strategy only answers
// with the new long basis (>= 0), short basis (<= 0) and the realized gain
// the step locks in.
type CostBasis interface {
	Method() CostBasisMethod

	// ApplySplit is called before a step when a corporate-action quantity
	// ratio applies. Total basis is invariant under a split; only private
	// lot quantities rescale.
	ApplySplit(ratio float64)

	// Step consumes the current transaction given the prior sequenced state.
	// A reducing trade that consumes more quantity than is on record is a
	// data-integrity fault, never clamped.
	Step(prevPos, prevLong, prevShort float64, txn *NormalizedTransaction) (long, short, realized float64, err error)
}

// averageCoster is the stateless average-cost strategy: all state it needs is
// in the prior ValuationState.
type averageCoster struct{}

func (averageCoster) Method() CostBasisMethod { return AverageCost }
func (averageCoster) ApplySplit(float64)      {}

func (averageCoster) Step(prevPos, prevLong, prevShort float64, txn *NormalizedTransaction) (long, short, realized float64, err error) {
	q := txn.QuantityDelta
	long, short = prevLong, prevShort

	switch {
	case q > 0 && prevPos >= -positionEpsilon:
		// Opening or adding to a long: blend the spend into the basis.
		long = prevLong + tradeCost(txn)

	case q > 0:
		// Covering a short.
		if q > -prevPos+positionEpsilon {
			return 0, 0, 0, dataFault(txn.Security, txn.SourceID,
				"cover of %v exceeds short position %v", q, -prevPos)
		}
		fraction := q / -prevPos
		removed := prevShort * fraction // <= 0
		realized = -removed + txn.CoverShort + txn.Commission
		short = prevShort - removed

	case q < 0 && prevPos > positionEpsilon:
		// Selling down a long.
		if -q > prevPos+positionEpsilon {
			return 0, 0, 0, dataFault(txn.Security, txn.SourceID,
				"sale of %v exceeds position %v", -q, prevPos)
		}
		fraction := -q / prevPos
		removed := prevLong * fraction
		realized = txn.Sell + txn.Commission - removed
		long = prevLong - removed

	case q < 0:
		// Opening or adding to a short: the basis is the negated net credit.
		short = prevShort - (txn.ShortSell + txn.Commission)
	}

	return snapBasis(long), snapBasis(short), realized, nil
}

// tradeCost is the cash spent acquiring shares in this step, commission
// included. Buy and Commission are <= 0 by convention.
func tradeCost(txn *NormalizedTransaction) float64 {
	return -(txn.Buy + txn.CoverShort + txn.Commission)
}

// snapBasis absorbs float residue left by proportional basis removal.
func snapBasis(v float64) float64 {
	if v > -positionEpsilon && v < positionEpsilon {
		return 0
	}
	return v
}
