package invreports

import (
	"math"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// positionEpsilon absorbs split-adjustment rounding when deciding whether a
// position has closed. Inherited from the source data model; treat as a
// tunable pending validation against real split-adjusted histories.
const positionEpsilon = 0.0005

// Sequencer walks one sequence in order, carrying forward position, basis
// and gain state. Each security's sequence is independent; sequencing runs
// are safe to execute in parallel across sequences.
type Sequencer struct {
	Prices *PriceTable
	Method CostBasisMethod
}

// Run computes the valuation state of every transaction in the sequence.
// The input must already be sorted per the sequence total order; an
// out-of-order transaction is fatal. State is written exactly once.
func (sq Sequencer) Run(s *Sequence) error {
	basis := sq.Method.New()

	cmp := compareTxns
	if s.Cash {
		cmp = compareCashTxns
	}

	var prev *NormalizedTransaction
	var prevPos, prevLong, prevShort, prevPrice float64
	var cumTotal float64
	var lastDate date.Date

	for _, txn := range s.Txns {
		if prev != nil && cmp(prev, txn) >= 0 {
			return dataFault(s.Security, txn.SourceID,
				"out-of-order transaction on %s", txn.Date)
		}

		// Apply corporate actions effective since the previous step.
		if !s.Cash {
			for _, split := range sq.Prices.SplitsBetween(s.Security, lastDate, txn.Date) {
				ratio := split.Ratio()
				prevPos *= ratio
				prevPrice /= ratio
				basis.ApplySplit(ratio)
			}
		}

		price := sq.markPrice(s, txn, prevPrice)

		position := prevPos + txn.QuantityDelta
		if math.Abs(position) < positionEpsilon {
			position = 0
		}

		long, short, realized, err := basis.Step(prevPos, prevLong, prevShort, txn)
		if err != nil {
			return err
		}

		openValue := position * price
		cumUnrealized := openValue - (long + short)

		var periodUnrealized float64
		if prevPos != 0 && position == 0 {
			// Closing trade: the quantity is already gone, so the price move
			// applies to the prior position only.
			periodUnrealized = (price - prevPrice) * prevPos
		} else {
			prevOpenValue := prevPos * prevPrice
			prevUnrealized := prevOpenValue - (prevLong + prevShort)
			periodUnrealized = cumUnrealized - prevUnrealized
		}

		incomeExpense := txn.IncomeExpense()
		periodTotal := periodUnrealized + realized + incomeExpense
		cumTotal += periodTotal

		txn.ValuationState = ValuationState{
			Position:             position,
			MarketPrice:          price,
			LongBasis:            long,
			ShortBasis:           short,
			OpenValue:            openValue,
			CumUnrealizedGain:    cumUnrealized,
			PeriodUnrealizedGain: periodUnrealized,
			PeriodRealizedGain:   realized,
			PeriodIncomeExpense:  incomeExpense,
			PeriodTotalGain:      periodTotal,
			CumTotalGain:         cumTotal,
		}

		prev = txn
		prevPos, prevLong, prevShort, prevPrice = position, long, short, price
		lastDate = txn.Date
	}

	s.sequenced = true
	return nil
}

// markPrice finds the market price for a step. Synthetic cash always trades
// at par. Without a quote, a trade implies its own price; otherwise the last
// known price carries forward.
func (sq Sequencer) markPrice(s *Sequence, txn *NormalizedTransaction, prevPrice float64) float64 {
	if s.Cash {
		return 1
	}
	if price, ok := sq.Prices.MarkPrice(s.Security, txn.Date); ok {
		return price
	}
	if q := txn.QuantityDelta; q != 0 {
		if gross := txn.Buy + txn.Sell + txn.ShortSell + txn.CoverShort; gross != 0 {
			return math.Abs(gross / q)
		}
	}
	return prevPrice
}
