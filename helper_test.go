package invreports

import (
	"testing"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// rawTrade builds a security trade: cents is the positive gross amount,
// qtyTenK the signed quantity in ten-thousandths, feeCents the commission.
func rawTrade(id int64, on date.Date, typ TxnType, acct, ticker string, cents, qtyTenK, feeCents int64) RawTransaction {
	legs := []RawLeg{
		{Account: ticker, AcctType: AcctSecurity, AmountCents: cents, QuantityTenK: qtyTenK},
	}
	if feeCents != 0 {
		legs = append(legs, RawLeg{Account: "commission", AcctType: AcctExpense, AmountCents: feeCents})
	}
	return RawTransaction{ID: id, Date: on, Type: typ, Account: acct, Security: ticker, Legs: legs}
}

func rawBuy(id int64, on date.Date, acct, ticker string, cents, qtyTenK, feeCents int64) RawTransaction {
	return rawTrade(id, on, TxnBuy, acct, ticker, cents, qtyTenK, feeCents)
}

func rawSell(id int64, on date.Date, acct, ticker string, cents, qtyTenK, feeCents int64) RawTransaction {
	return rawTrade(id, on, TxnSell, acct, ticker, cents, qtyTenK, feeCents)
}

func rawDividend(id int64, on date.Date, acct, ticker string, incCents int64) RawTransaction {
	return RawTransaction{
		ID: id, Date: on, Type: TxnDividend, Account: acct, Security: ticker,
		Legs: []RawLeg{{Account: "dividends", AcctType: AcctIncome, AmountCents: incCents}},
	}
}

func rawBank(id int64, on date.Date, acct string, incCents, expCents int64) RawTransaction {
	var legs []RawLeg
	if incCents != 0 {
		legs = append(legs, RawLeg{Account: "interest", AcctType: AcctIncome, AmountCents: incCents})
	}
	if expCents != 0 {
		legs = append(legs, RawLeg{Account: "fees", AcctType: AcctExpense, AmountCents: expCents})
	}
	return RawTransaction{ID: id, Date: on, Type: TxnBank, Account: acct, Legs: legs}
}

func mustNormalize(t *testing.T, raw RawTransaction) *NormalizedTransaction {
	t.Helper()
	target := raw.Security
	if target == "" {
		target = CashTicker
	}
	n, err := Normalize(raw, target)
	if err != nil {
		t.Fatalf("Normalize(%d): %v", raw.ID, err)
	}
	return n
}

// mustRun normalizes, sequences and values a security stream in one shot.
func mustRun(t *testing.T, method CostBasisMethod, prices *PriceTable, acct, ticker string, raws ...RawTransaction) *Sequence {
	t.Helper()
	if prices == nil {
		prices = NewPriceTable()
	}
	var txns []*NormalizedTransaction
	for _, raw := range raws {
		txns = append(txns, mustNormalize(t, raw))
	}
	seq, err := NewSequence(acct, ticker, txns)
	if err != nil {
		t.Fatalf("NewSequence: %v", err)
	}
	sq := Sequencer{Prices: prices, Method: method}
	if err := sq.Run(seq); err != nil {
		t.Fatalf("Sequencer.Run: %v", err)
	}
	return seq
}

func approx(t *testing.T, name string, got, want, tolerance float64) {
	t.Helper()
	diff := got - want
	if diff < -tolerance || diff > tolerance {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// fixtureLedger is the end-to-end fixture: two accounts, three securities,
// twenty transactions spanning eighteen months.
func fixtureLedger() *Ledger {
	d := date.New
	prices := NewPriceTable()
	prices.SetPrice("ACME", d(2023, 6, 30), 43)
	prices.SetPrice("ACME", d(2023, 12, 29), 46)
	prices.SetPrice("ACME", d(2024, 6, 28), 47)
	prices.SetPrice("BND", d(2023, 12, 29), 101)
	prices.SetPrice("BND", d(2024, 6, 28), 99)
	prices.SetPrice("GLOBX", d(2023, 12, 29), 23)
	prices.SetPrice("GLOBX", d(2024, 6, 28), 24)

	return &Ledger{
		Accounts: []Account{
			{Name: "Brokerage", Created: d(2023, 1, 2), OpeningCents: 1_000_000, CurrencyID: "USD"},
			{Name: "IRA", Created: d(2023, 1, 2), OpeningCents: 500_000, CurrencyID: "USD"},
		},
		Securities: []Security{
			{Ticker: "ACME", CurrencyID: "USD", AssetType: "Stock", AssetSubtype: "Large Cap"},
			{Ticker: "BND", CurrencyID: "USD", AssetType: "Bond", AssetSubtype: "Municipal"},
			{Ticker: "GLOBX", CurrencyID: "USD", AssetType: "Fund", AssetSubtype: "International"},
		},
		Transactions: []RawTransaction{
			rawBuy(1, d(2023, 1, 10), "Brokerage", "ACME", 400_000, 1_000_000, 1_000),
			rawBuy(2, d(2023, 2, 15), "Brokerage", "BND", 500_000, 500_000, 500),
			rawDividend(3, d(2023, 3, 20), "Brokerage", "ACME", 5_000),
			rawSell(4, d(2023, 5, 10), "Brokerage", "ACME", 180_000, -400_000, 900),
			rawBank(5, d(2023, 6, 30), "Brokerage", 1_200, 0),
			rawBuy(6, d(2023, 8, 15), "Brokerage", "ACME", 84_000, 200_000, 800),
			rawDividend(7, d(2023, 10, 2), "Brokerage", "BND", 6_000),
			{
				ID: 8, Date: d(2023, 11, 15), Type: TxnMiscExp, Account: "Brokerage",
				Legs: []RawLeg{{Account: "fees", AcctType: AcctExpense, AmountCents: 2_500}},
			},
			rawSell(9, d(2024, 1, 10), "Brokerage", "BND", 98_000, -100_000, 500),
			rawDividend(10, d(2024, 3, 15), "Brokerage", "ACME", 5_500),
			rawSell(11, d(2024, 5, 20), "Brokerage", "ACME", 144_000, -300_000, 900),

			rawBuy(12, d(2023, 1, 20), "IRA", "GLOBX", 400_000, 2_000_000, 0),
			{
				ID: 13, Date: d(2023, 4, 12), Type: TxnDividendReinvest, Account: "IRA", Security: "GLOBX",
				Legs: []RawLeg{
					{Account: "GLOBX", AcctType: AcctSecurity, AmountCents: 8_000, QuantityTenK: 40_000},
					{Account: "dividends", AcctType: AcctIncome, AmountCents: 8_000},
				},
			},
			rawBuy(14, d(2023, 7, 10), "IRA", "GLOBX", 220_000, 1_000_000, 0),
			rawDividend(15, d(2023, 9, 5), "IRA", "GLOBX", 9_000),
			rawSell(16, d(2023, 12, 28), "IRA", "GLOBX", 345_000, -1_500_000, 1_000),
			rawTrade(17, d(2024, 2, 14), TxnShort, "IRA", "ACME", 220_000, -500_000, 1_000),
			rawTrade(18, d(2024, 4, 18), TxnCover, "IRA", "ACME", 205_000, 500_000, 1_000),
			rawBank(19, d(2024, 6, 10), "IRA", 0, 2_000),
			rawDividend(20, d(2024, 6, 20), "IRA", "GLOBX", 4_500),
		},
		Prices: prices,
	}
}
