package invreports

import (
	"errors"
	"testing"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

func TestNewSequence_TotalOrder(t *testing.T) {
	d := date.New(2024, 3, 5)
	// Same day: the type rank decides, buys before sells, shorts before
	// covers; the source id is the final tie-break.
	txns := []*NormalizedTransaction{
		{Date: d, Type: TxnCover, SourceID: 4},
		{Date: d, Type: TxnSell, SourceID: 3},
		{Date: d.Add(-1), Type: TxnSell, SourceID: 9},
		{Date: d, Type: TxnBuy, SourceID: 2},
		{Date: d, Type: TxnBuy, SourceID: 1},
		{Date: d, Type: TxnShort, SourceID: 5},
	}
	seq, err := NewSequence("Brokerage", "ACME", txns)
	if err != nil {
		t.Fatalf("NewSequence: %v", err)
	}

	want := []int64{9, 1, 2, 3, 5, 4}
	for i, txn := range seq.Txns {
		if txn.SourceID != want[i] {
			t.Fatalf("position %d holds id %d, want %d", i, txn.SourceID, want[i])
		}
	}
}

func TestNewSequence_DuplicateOrderingKey(t *testing.T) {
	d := date.New(2024, 3, 5)
	txns := []*NormalizedTransaction{
		{Date: d, Type: TxnBuy, SourceID: 7},
		{Date: d, Type: TxnBuy, SourceID: 7},
	}
	_, err := NewSequence("Brokerage", "ACME", txns)
	if !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("got %v, want a data integrity fault", err)
	}
}

func TestSequence_LastAsOf(t *testing.T) {
	d := date.New
	txns := []*NormalizedTransaction{
		{Date: d(2024, 1, 10), Type: TxnBuy, SourceID: 1},
		{Date: d(2024, 2, 20), Type: TxnSell, SourceID: 2},
		{Date: d(2024, 3, 30), Type: TxnBuy, SourceID: 3},
	}
	seq, err := NewSequence("Brokerage", "ACME", txns)
	if err != nil {
		t.Fatalf("NewSequence: %v", err)
	}

	if got := seq.LastAsOf(d(2024, 2, 20)); got.SourceID != 2 {
		t.Errorf("LastAsOf on boundary: id %d, want 2", got.SourceID)
	}
	if got := seq.LastAsOf(d(2024, 3, 1)); got.SourceID != 2 {
		t.Errorf("LastAsOf mid-gap: id %d, want 2", got.SourceID)
	}
	if got := seq.LastAsOf(d(2024, 1, 1)); got != nil {
		t.Errorf("LastAsOf before inception: id %d, want none", got.SourceID)
	}
}
