package invreports

import (
	"fmt"
	"math"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
)

// ReportConfig is the run configuration, constructed directly by the caller.
type ReportConfig struct {
	Method       CostBasisMethod
	FirstDim     GroupDimension
	SecondDim    GroupDimension
	Context      ReportContext
	BaseCurrency string // formatting currency for mixed-currency composites
}

// Run stamps one report run for diagnostics.
type Run struct {
	ID          string
	GeneratedAt time.Time
	Config      ReportConfig
}

// NewRun allocates a fresh run identifier.
func NewRun(cfg ReportConfig) Run {
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = "USD"
	}
	return Run{ID: uuid.NewString(), GeneratedAt: time.Now(), Config: cfg}
}

// Row is one line of the outbound table: the identity labels plus every
// metric cell, already formatted, in the fixed column order.
type Row struct {
	Name      string
	Aggregate bool
	Members   int
	Cells     []string
}

// Table is the flat outbound report: leaf rows first, composite rows after,
// in the tree's display order. It is what export and rendering consume.
type Table struct {
	Run     Run
	Columns []string
	Rows    []Row
}

// tableColumns is the fixed column order of every report table. Range runs
// carry one extra column for the explicit-window return.
func tableColumns(isRange bool) []string {
	cols := []string{
		"Name", "Position", "Price", "Value",
		"Long Basis", "Short Basis",
		"Income", "Expense", "Realized", "Unrealized", "Total Gain",
	}
	for _, h := range Horizons() {
		cols = append(cols, "Ret "+h.String())
	}
	if isRange {
		cols = append(cols, "Ret Period")
	}
	cols = append(cols, "Ann Ret")
	return cols
}

// BuildTable flattens leaves and composites into the outbound table.
// Composites that merged a single leaf are filtered out: they duplicate
// the leaf row they contain.
func BuildTable(run Run, leaves []*SecurityValuationReport, tree *AggregationTree) *Table {
	t := &Table{Run: run, Columns: tableColumns(run.Config.Context.IsRange())}
	for _, leaf := range leaves {
		t.Rows = append(t.Rows, newRow(leaf, run.Config, false))
	}
	if tree != nil {
		for _, c := range tree.Composites() {
			if c.Report.Members <= 1 {
				continue
			}
			row := newRow(c.Report, run.Config, true)
			row.Name = c.Key.String()
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func newRow(r *SecurityValuationReport, cfg ReportConfig, aggregate bool) Row {
	currency := r.Currency.Value()
	if currency == "" {
		currency = cfg.BaseCurrency
	}
	row := Row{
		Name:      r.Ticker.String(),
		Aggregate: aggregate,
		Members:   r.Members,
	}
	cells := []string{
		row.Name,
		formatQuantity(r.EndPosition),
		formatPrice(r.EndPrice),
		formatMoney(r.EndValue, currency),
		formatMoney(r.EndLongBasis, currency),
		formatMoney(r.EndShortBasis, currency),
		formatMoney(r.Incomes[All], currency),
		formatMoney(r.Expenses[All], currency),
		formatMoney(r.RealizedGains[All], currency),
		formatMoney(r.UnrealizedGain, currency),
		formatMoney(r.TotalGain, currency),
	}
	for _, h := range Horizons() {
		cells = append(cells, formatPercent(r.Returns[h]))
	}
	if cfg.Context.IsRange() {
		cells = append(cells, formatPercent(r.PeriodReturn))
	}
	if r.AnnErr != nil {
		cells = append(cells, "N/A")
	} else {
		cells = append(cells, formatPercent(r.AnnReturn))
	}
	row.Cells = cells
	return row
}

// formatMoney renders a fractional-unit amount in its currency, with the
// currency's own fraction digits and symbol.
func formatMoney(v float64, currency string) string {
	if math.IsNaN(v) {
		return "—"
	}
	c := money.GetCurrency(currency)
	if c == nil {
		c = money.GetCurrency(money.USD)
	}
	cents := int64(math.Round(v * math.Pow10(c.Fraction)))
	return money.New(cents, c.Code).Display()
}

func formatQuantity(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	return fmt.Sprintf("%.4f", v)
}

func formatPrice(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	return fmt.Sprintf("%.4f", v)
}

// formatPercent renders a return fraction as a percentage; NaN means the
// figure is undefined and renders as N/A, never as zero.
func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", 100*v)
}
