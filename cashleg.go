package invreports

import (
	"sync/atomic"
)

// CashTicker is the pseudo-ticker carried by synthetic cash sequences.
const CashTicker = "Cash"

// IDAllocator hands out source ids for synthetic transactions. It is scoped
// to one pipeline run and safe for concurrent use, so per-account synthesis
// may run in parallel.
type IDAllocator struct {
	next atomic.Int64
}

// NewIDAllocator returns an allocator whose first id is start+1. Pass the
// highest real ledger id so synthetic ids never collide.
func NewIDAllocator(start int64) *IDAllocator {
	a := &IDAllocator{}
	a.next.Store(start)
	return a
}

// Next returns a fresh, strictly increasing id.
func (a *IDAllocator) Next() int64 { return a.next.Add(1) }

// SynthesizeCash derives the synthetic cash sequence of one holding account
// from its real transactions (security-level and account-level, already in
// sequence order). The cash balance is modeled as a position in a par-priced
// pseudo-security: every real transaction's net cash effect becomes a
// signed quantity, classified into buy/sell/short/cover against the running
// cash position so that a flow which would flip the balance's sign is split
// into a closing part and an opening part.
func SynthesizeCash(acct Account, real []*NormalizedTransaction, alloc *IDAllocator) (*Sequence, error) {
	var synth []*NormalizedTransaction
	cashPos := 0.0

	// Seed with the opening balance, dated one business day before the first
	// real activity (or on the creation date of an idle account).
	opening := centsToUnits(acct.OpeningCents)
	openDate := acct.Created
	if len(real) > 0 {
		openDate = real[0].Date.AddBusinessDays(-1)
	}
	if opening != 0 {
		seed := &NormalizedTransaction{
			Date:     openDate,
			SourceID: alloc.Next(),
			Security: CashTicker,
		}
		if opening > 0 {
			seed.Type = TxnBuy
			seed.Buy = -opening
		} else {
			seed.Type = TxnShort
			seed.ShortSell = -opening
		}
		seed.QuantityDelta = opening
		synth = append(synth, seed)
		cashPos = opening
	}

	for _, txn := range real {
		effect := txn.CashEffect()
		if effect == 0 && txn.Income == 0 && txn.Expense == 0 {
			continue
		}

		parts := splitCashFlow(cashPos, effect)
		for i, part := range parts {
			ct := &NormalizedTransaction{
				Date:          txn.Date,
				SourceID:      alloc.Next(),
				Type:          part.kind,
				Security:      CashTicker,
				QuantityDelta: part.quantity,
			}
			switch part.kind {
			case TxnBuy:
				ct.Buy = -part.quantity
			case TxnSell:
				ct.Sell = -part.quantity
			case TxnShort:
				ct.ShortSell = -part.quantity
			case TxnCover:
				ct.CoverShort = -part.quantity
			}
			if i == 0 && txn.Type == TxnBank {
				// Account-level bank activity carries its income and expense
				// straight into the synthetic stream.
				ct.Income = txn.Income
				ct.Expense = txn.Expense
			}
			synth = append(synth, ct)
			cashPos += part.quantity
		}

		if len(parts) == 0 && txn.Type == TxnBank && (txn.Income != 0 || txn.Expense != 0) {
			// Net-zero bank activity (income exactly offset by expense) still
			// lands in the stream for period income accounting.
			ct := &NormalizedTransaction{
				Date:     txn.Date,
				SourceID: alloc.Next(),
				Type:     TxnBank,
				Security: CashTicker,
				Income:   txn.Income,
				Expense:  txn.Expense,
			}
			synth = append(synth, ct)
		}
	}

	return NewCashSequence(acct.Name, synth)
}

// cashPart is one classified slice of a cash flow.
type cashPart struct {
	kind     TxnType
	quantity float64
}

// splitCashFlow classifies a signed cash effect against the prior cash
// position, splitting a sign-flipping flow into its closing and opening
// halves. The same position-aware logic a security trade uses for closing
// versus opening applies here.
func splitCashFlow(pos, effect float64) []cashPart {
	switch {
	case effect == 0:
		return nil
	case effect > 0:
		if pos >= -positionEpsilon {
			return []cashPart{{TxnBuy, effect}}
		}
		if pos+effect <= positionEpsilon {
			return []cashPart{{TxnCover, effect}}
		}
		return []cashPart{{TxnCover, -pos}, {TxnBuy, effect + pos}}
	default: // effect < 0
		if pos <= positionEpsilon {
			return []cashPart{{TxnShort, effect}}
		}
		if pos+effect >= -positionEpsilon {
			return []cashPart{{TxnSell, effect}}
		}
		return []cashPart{{TxnSell, -pos}, {TxnShort, effect + pos}}
	}
}
