package invreports

import (
	"errors"
	"fmt"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
	"github.com/shopspring/decimal"
)

// ErrDataIntegrity marks faults in the source ledger that must surface to the
// caller: an unrecognized transaction type, or a reducing trade that exceeds
// the recorded position. These are never coerced or clamped.
var ErrDataIntegrity = errors.New("data integrity fault")

func dataFault(security string, txnID int64, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("security %q, transaction %d: %s: %w", security, txnID, msg, ErrDataIntegrity)
}

// centsToUnits converts integer cents to fractional currency units.
func centsToUnits(cents int64) float64 {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).InexactFloat64()
}

// tenKToUnits converts integer ten-thousandths to fractional quantity units.
func tenKToUnits(tenK int64) float64 {
	return decimal.NewFromInt(tenK).Div(decimal.NewFromInt(10000)).InexactFloat64()
}

// ValuationState is the per-step output of the valuation sequencer. It is
// written exactly once, in sequence order, and never mutated afterwards.
//
// Sign invariant: LongBasis >= 0, ShortBasis <= 0, at most one of them
// non-zero; both zero iff Position is zero (within positionEpsilon).
type ValuationState struct {
	Position             float64
	MarketPrice          float64
	LongBasis            float64
	ShortBasis           float64
	OpenValue            float64
	CumUnrealizedGain    float64
	PeriodUnrealizedGain float64
	PeriodRealizedGain   float64
	PeriodIncomeExpense  float64
	PeriodTotalGain      float64
	CumTotalGain         float64
}

// NormalizedTransaction is the typed economic-effect record of one source
// ledger transaction against one security or cash account.
//
// Monetary fields are signed by their effect on the account's cash:
// Buy, CoverShort, Commission and Expense are <= 0 (cash leaves), Sell,
// ShortSell and Income are >= 0 (cash enters), Transfer carries the signed
// funding flow to or from other accounts. QuantityDelta is in units.
type NormalizedTransaction struct {
	Date     date.Date
	SourceID int64
	Type     TxnType
	Security string

	Buy           float64
	Sell          float64
	ShortSell     float64
	CoverShort    float64
	Commission    float64
	Income        float64
	Expense       float64
	Transfer      float64
	QuantityDelta float64

	ValuationState
}

// TypeRank returns the within-day ordering rank.
func (n *NormalizedTransaction) TypeRank() int { return n.Type.Rank() }

// CashEffect is the signed change this transaction causes to the account's
// uninvested cash: the sum of every economic-effect field.
func (n *NormalizedTransaction) CashEffect() float64 {
	return n.Buy + n.Sell + n.ShortSell + n.CoverShort +
		n.Commission + n.Income + n.Expense + n.Transfer
}

// ExternalFlow is the net external cash flow into the security for
// time-weighted return purposes: buys minus sells minus commission, with
// income and expense excluded.
func (n *NormalizedTransaction) ExternalFlow() float64 {
	return -(n.Buy + n.Sell + n.ShortSell + n.CoverShort) + n.Commission
}

// IncomeExpense is the signed net income of the step (Expense is <= 0).
func (n *NormalizedTransaction) IncomeExpense() float64 {
	return n.Income + n.Expense
}

// Normalize converts one raw ledger transaction into its economic-effect
// record for the security (or cash account) named by target. The mapping is
// exhaustive over the closed set of transaction types; an unknown type is a
// data-integrity fault. Pure transform, no side effects.
func Normalize(raw RawTransaction, target string) (*NormalizedTransaction, error) {
	n := &NormalizedTransaction{
		Date:     raw.Date,
		SourceID: raw.ID,
		Type:     raw.Type,
		Security: target,
	}

	// Security, expense and income leg amounts arrive as positive magnitudes
	// from the host export; the transaction type decides the economic sign.
	// Transfer legs and quantities keep the host's sign.
	var secAmount, secQty, feeAmount, incAmount, xferAmount float64
	for _, leg := range raw.Legs {
		amount := centsToUnits(leg.AmountCents)
		switch leg.AcctType {
		case AcctSecurity:
			secAmount += amount
			secQty += tenKToUnits(leg.QuantityTenK)
		case AcctExpense:
			feeAmount += amount
		case AcctIncome:
			incAmount += amount
		case AcctBank, AcctInvestment:
			xferAmount += amount
		default:
			return nil, dataFault(target, raw.ID, "unknown account type %d on leg %q", leg.AcctType, leg.Account)
		}
	}

	switch raw.Type {
	case TxnBuy, TxnBuyXfer:
		n.Buy = -secAmount
		n.QuantityDelta = secQty
		n.Commission = -feeAmount
		n.Income = incAmount
		n.Transfer = xferAmount
	case TxnDividendReinvest:
		n.Buy = -secAmount
		n.QuantityDelta = secQty
		n.Commission = -feeAmount
		n.Income = incAmount
		n.Transfer = xferAmount
	case TxnSell, TxnSellXfer:
		n.Sell = secAmount
		n.QuantityDelta = secQty
		n.Commission = -feeAmount
		n.Income = incAmount
		n.Transfer = xferAmount
	case TxnShort:
		n.ShortSell = secAmount
		n.QuantityDelta = secQty
		n.Commission = -feeAmount
		n.Transfer = xferAmount
	case TxnCover:
		n.CoverShort = -secAmount
		n.QuantityDelta = secQty
		n.Commission = -feeAmount
		n.Transfer = xferAmount
	case TxnMiscInc:
		n.Income = incAmount
		n.Transfer = xferAmount
	case TxnMiscExp:
		n.Expense = -feeAmount
		n.Transfer = xferAmount
	case TxnDividend:
		n.Income = incAmount
		n.Transfer = xferAmount
	case TxnDividendXfer:
		// Dividend paid out of the account: income arrives and the same
		// amount leaves as a transfer.
		n.Income = incAmount
		n.Transfer = xferAmount - incAmount
	case TxnBank:
		n.Income = incAmount
		n.Expense = -feeAmount
		n.Transfer = xferAmount
	default:
		return nil, dataFault(target, raw.ID, "unknown transaction type %d", raw.Type)
	}

	return n, nil
}
