package invreports

import (
	"fmt"
	"sort"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// Sequence is the totally-ordered set of normalized transactions for one
// security or synthetic cash account. Ordering is by (date, type rank,
// source id); no two distinct transactions may compare equal.
type Sequence struct {
	Security string
	Account  string
	Cash     bool // true for the synthetic cash leg of an account
	Txns     []*NormalizedTransaction

	sequenced bool
}

// compareTxns implements the total order over normalized transactions.
func compareTxns(a, b *NormalizedTransaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := a.TypeRank() - b.TypeRank(); c != 0 {
		return c
	}
	switch {
	case a.SourceID < b.SourceID:
		return -1
	case a.SourceID > b.SourceID:
		return 1
	default:
		return 0
	}
}

// compareCashTxns orders synthetic cash transactions by (date, source id).
// Synthetic ids are allocated in emission order, so within a day they keep
// the closing half of a split flow ahead of its opening half, which the
// type ranks of compareTxns would invert.
func compareCashTxns(a, b *NormalizedTransaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	switch {
	case a.SourceID < b.SourceID:
		return -1
	case a.SourceID > b.SourceID:
		return 1
	default:
		return 0
	}
}

// NewSequence builds a sorted sequence for one security within one account.
// It fails if two distinct transactions compare equal, which would make the
// order unstable.
func NewSequence(account, security string, txns []*NormalizedTransaction) (*Sequence, error) {
	s := &Sequence{Security: security, Account: account, Txns: txns}
	sort.SliceStable(s.Txns, func(i, j int) bool {
		return compareTxns(s.Txns[i], s.Txns[j]) < 0
	})
	for i := 1; i < len(s.Txns); i++ {
		if s.Txns[i] != s.Txns[i-1] && compareTxns(s.Txns[i], s.Txns[i-1]) == 0 {
			return nil, dataFault(security, s.Txns[i].SourceID,
				"duplicate ordering key (%s, rank %d)", s.Txns[i].Date, s.Txns[i].TypeRank())
		}
	}
	return s, nil
}

// NewCashSequence builds the sorted synthetic cash sequence of one account.
func NewCashSequence(account string, txns []*NormalizedTransaction) (*Sequence, error) {
	s := &Sequence{Security: CashTicker, Account: account, Cash: true, Txns: txns}
	sort.SliceStable(s.Txns, func(i, j int) bool {
		return compareCashTxns(s.Txns[i], s.Txns[j]) < 0
	})
	for i := 1; i < len(s.Txns); i++ {
		if s.Txns[i] != s.Txns[i-1] && compareCashTxns(s.Txns[i], s.Txns[i-1]) == 0 {
			return nil, dataFault(CashTicker, s.Txns[i].SourceID,
				"duplicate ordering key (%s, id %d)", s.Txns[i].Date, s.Txns[i].SourceID)
		}
	}
	return s, nil
}

// First returns the earliest transaction, or nil for an empty sequence.
func (s *Sequence) First() *NormalizedTransaction {
	if len(s.Txns) == 0 {
		return nil
	}
	return s.Txns[0]
}

// Last returns the latest transaction, or nil for an empty sequence.
func (s *Sequence) Last() *NormalizedTransaction {
	if len(s.Txns) == 0 {
		return nil
	}
	return s.Txns[len(s.Txns)-1]
}

// LastAsOf returns the latest transaction dated on or before the given date,
// or nil when there is none.
func (s *Sequence) LastAsOf(on date.Date) *NormalizedTransaction {
	var last *NormalizedTransaction
	for _, t := range s.Txns {
		if t.Date.After(on) {
			break
		}
		last = t
	}
	return last
}

func (s *Sequence) String() string {
	kind := "security"
	if s.Cash {
		kind = "cash"
	}
	return fmt.Sprintf("%s sequence %s/%s (%d txns)", kind, s.Account, s.Security, len(s.Txns))
}
