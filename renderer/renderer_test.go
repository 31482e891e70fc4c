package renderer

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	invreports "github.com/dkfurrow/moneydance-investment-reports-sub002"
	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

func fixtureTable(t *testing.T) *invreports.Table {
	t.Helper()
	ledger := &invreports.Ledger{
		Accounts: []invreports.Account{
			{Name: "Brokerage", Created: date.New(2024, 1, 2), OpeningCents: 100_000, CurrencyID: "USD"},
		},
		Securities: []invreports.Security{
			{Ticker: "ACME", CurrencyID: "USD", AssetType: "Stock", AssetSubtype: "Large Cap"},
		},
		Transactions: []invreports.RawTransaction{
			{
				ID: 1, Date: date.New(2024, 1, 3), Type: invreports.TxnBuy,
				Account: "Brokerage", Security: "ACME",
				Legs: []invreports.RawLeg{
					{Account: "ACME", AcctType: invreports.AcctSecurity, AmountCents: 40_000, QuantityTenK: 100_000},
				},
			},
		},
		Prices: invreports.NewPriceTable(),
	}
	ledger.Prices.SetPrice("ACME", date.New(2024, 6, 28), 45)

	table, err := invreports.RunReport(ledger, invreports.ReportConfig{
		Method:    invreports.AverageCost,
		FirstDim:  invreports.DimAccount,
		SecondDim: invreports.DimTicker,
		Context:   invreports.NewSnapshotContext(date.New(2024, 6, 28)),
	})
	if err != nil {
		t.Fatalf("RunReport: %v", err)
	}
	return table
}

func TestTableMarkdown_ParsesAsGFM(t *testing.T) {
	md := TableMarkdown(fixtureTable(t))
	src := []byte(md)

	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := gm.Parser().Parse(text.NewReader(src))

	var tables, headings int
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case east.KindTable:
			tables++
		case ast.KindHeading:
			headings++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walking markdown ast: %v", err)
	}
	if tables == 0 {
		t.Error("rendered document contains no markdown table")
	}
	if headings < 2 {
		t.Errorf("rendered document has %d headings, want a title and at least one section", headings)
	}
	if !strings.Contains(md, "ACME") {
		t.Error("rendered document does not mention the holding")
	}
}

func TestTableTSV_Shape(t *testing.T) {
	table := fixtureTable(t)
	tsv := TableTSV(table)

	lines := strings.Split(strings.TrimRight(tsv, "\n"), "\n")
	if want := 1 + len(table.Rows); len(lines) != want {
		t.Fatalf("got %d lines, want %d", len(lines), want)
	}
	width := len(strings.Split(lines[0], "\t"))
	if width != len(table.Columns) {
		t.Fatalf("header has %d columns, want %d", width, len(table.Columns))
	}
	for i, line := range lines[1:] {
		if got := len(strings.Split(line, "\t")); got != width {
			t.Errorf("row %d has %d cells, want %d", i, got, width)
		}
	}
}
