package invreports

import (
	"errors"
	"testing"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// Two buys at different prices, then a partial sale: average cost blends
// the basis, lot matching consumes the oldest lot.
func costBasisFixture() []RawTransaction {
	d := date.New
	return []RawTransaction{
		rawBuy(1, d(2024, 1, 10), "Brokerage", "ACME", 40_000, 100_000, 0),   // 10 @ 40
		rawBuy(2, d(2024, 2, 12), "Brokerage", "ACME", 50_000, 100_000, 0),   // 10 @ 50
		rawSell(3, d(2024, 3, 14), "Brokerage", "ACME", 55_000, -100_000, 0), // 10 @ 55
	}
}

func TestAverageCost_PartialSale(t *testing.T) {
	seq := mustRun(t, AverageCost, nil, "Brokerage", "ACME", costBasisFixture()...)

	sale := seq.Txns[2]
	approx(t, "realized", sale.PeriodRealizedGain, 100, 1e-9) // 550 - 900/2
	approx(t, "long basis", sale.LongBasis, 450, 1e-9)
	approx(t, "position", sale.Position, 10, 1e-9)
}

func TestLotMatching_PartialSale(t *testing.T) {
	seq := mustRun(t, LotMatching, nil, "Brokerage", "ACME", costBasisFixture()...)

	sale := seq.Txns[2]
	approx(t, "realized", sale.PeriodRealizedGain, 150, 1e-9) // 550 - oldest lot 400
	approx(t, "long basis", sale.LongBasis, 500, 1e-9)        // remaining lot 10 @ 50
	approx(t, "position", sale.Position, 10, 1e-9)
}

func TestLotMatching_PartialLotConsumption(t *testing.T) {
	d := date.New
	seq := mustRun(t, LotMatching, nil, "Brokerage", "ACME",
		rawBuy(1, d(2024, 1, 10), "Brokerage", "ACME", 40_000, 100_000, 0),   // 10 @ 40
		rawBuy(2, d(2024, 2, 12), "Brokerage", "ACME", 50_000, 100_000, 0),   // 10 @ 50
		rawSell(3, d(2024, 3, 14), "Brokerage", "ACME", 82_500, -150_000, 0), // 15 @ 55
	)

	sale := seq.Txns[2]
	// Oldest lot fully consumed (400) plus half of the second (250).
	approx(t, "realized", sale.PeriodRealizedGain, 825-650, 1e-9)
	approx(t, "long basis", sale.LongBasis, 250, 1e-9)
}

func TestLotMatching_FullLotConsumption(t *testing.T) {
	d := date.New
	seq := mustRun(t, LotMatching, nil, "Brokerage", "ACME",
		rawBuy(1, d(2024, 1, 10), "Brokerage", "ACME", 40_000, 100_000, 0),   // 10 @ 40
		rawBuy(2, d(2024, 2, 12), "Brokerage", "ACME", 50_000, 100_000, 0),   // 10 @ 50
		rawSell(3, d(2024, 3, 14), "Brokerage", "ACME", 55_000, -100_000, 0), // 10 @ 55
		rawSell(4, d(2024, 4, 16), "Brokerage", "ACME", 60_000, -100_000, 0), // 10 @ 60
	)

	// A fully consumed lot must leave the inventory, not linger with its
	// basis intact.
	first := seq.Txns[2]
	approx(t, "basis after first sale", first.LongBasis, 500, 1e-9)

	last := seq.Txns[3]
	approx(t, "realized", last.PeriodRealizedGain, 100, 1e-9) // 600 - second lot 500
	if last.Position != 0 || last.LongBasis != 0 || last.ShortBasis != 0 {
		t.Errorf("flat position carries state: pos=%v bases=(%v, %v)",
			last.Position, last.LongBasis, last.ShortBasis)
	}
}

func TestCostBasis_ShortRoundTrip(t *testing.T) {
	d := date.New
	for _, method := range []CostBasisMethod{AverageCost, LotMatching} {
		t.Run(method.String(), func(t *testing.T) {
			seq := mustRun(t, method, nil, "IRA", "ACME",
				rawTrade(1, d(2024, 2, 14), TxnShort, "IRA", "ACME", 220_000, -500_000, 1_000),
				rawTrade(2, d(2024, 4, 18), TxnCover, "IRA", "ACME", 205_000, 500_000, 1_000),
			)

			short := seq.Txns[0]
			approx(t, "short basis", short.ShortBasis, -2190, 1e-9)
			if short.LongBasis != 0 {
				t.Errorf("long basis = %v while short", short.LongBasis)
			}

			cover := seq.Txns[1]
			// Sold for 2200-10 net, bought back for 2050+10.
			approx(t, "realized", cover.PeriodRealizedGain, 130, 1e-9)
			approx(t, "position", cover.Position, 0, 1e-9)
			if cover.LongBasis != 0 || cover.ShortBasis != 0 {
				t.Errorf("bases (%v, %v) after full cover, want zero", cover.LongBasis, cover.ShortBasis)
			}
		})
	}
}

func TestCostBasis_OverSellFault(t *testing.T) {
	d := date.New
	for _, method := range []CostBasisMethod{AverageCost, LotMatching} {
		t.Run(method.String(), func(t *testing.T) {
			var txns []*NormalizedTransaction
			for _, raw := range []RawTransaction{
				rawBuy(1, d(2024, 1, 10), "Brokerage", "ACME", 40_000, 100_000, 0),
				rawSell(2, d(2024, 3, 14), "Brokerage", "ACME", 137_500, -250_000, 0),
			} {
				txns = append(txns, mustNormalize(t, raw))
			}
			seq, err := NewSequence("Brokerage", "ACME", txns)
			if err != nil {
				t.Fatalf("NewSequence: %v", err)
			}
			sq := Sequencer{Prices: NewPriceTable(), Method: method}
			err = sq.Run(seq)
			if !errors.Is(err, ErrDataIntegrity) {
				t.Fatalf("selling 25 of 10 held: got %v, want a data integrity fault", err)
			}
		})
	}
}
