package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	invreports "github.com/dkfurrow/moneydance-investment-reports-sub002"
	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
	"github.com/dkfurrow/moneydance-investment-reports-sub002/renderer"
)

type reportCmd struct {
	date      string
	method    string
	firstDim  string
	secondDim string
	tsv       bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display a snapshot performance report" }
func (*reportCmd) Usage() string {
	return `invr report [-d <date>] [-method <method>] [-by <dim>] [-and <dim>] [-tsv]

  Computes positions, cost basis, gains and returns for every security and
  account as of the snapshot date, with composite rows for the chosen
  grouping dimensions.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Snapshot date (defaults to today)")
	f.StringVar(&c.method, "method", "average", "Cost basis method (average, lot-matching)")
	f.StringVar(&c.firstDim, "by", "account", "First grouping dimension (account, ticker, currency, asset-type, asset-subtype, none)")
	f.StringVar(&c.secondDim, "and", "ticker", "Second grouping dimension")
	f.BoolVar(&c.tsv, "tsv", false, "Emit tab-separated values instead of styled markdown")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on := date.Today()
	if c.date != "" {
		var err error
		if on, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	cfg, err := buildConfig(c.method, c.firstDim, c.secondDim, invreports.NewSnapshotContext(on))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return runAndPrint(cfg, c.tsv)
}

func buildConfig(method, first, second string, ctx invreports.ReportContext) (invreports.ReportConfig, error) {
	m, err := invreports.ParseCostBasisMethod(method)
	if err != nil {
		return invreports.ReportConfig{}, err
	}
	f, err := invreports.ParseGroupDimension(first)
	if err != nil {
		return invreports.ReportConfig{}, err
	}
	s, err := invreports.ParseGroupDimension(second)
	if err != nil {
		return invreports.ReportConfig{}, err
	}
	return invreports.ReportConfig{Method: m, FirstDim: f, SecondDim: s, Context: ctx}, nil
}

func runAndPrint(cfg invreports.ReportConfig, tsv bool) subcommands.ExitStatus {
	ledger, err := loadLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	table, err := invreports.RunReport(ledger, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if tsv {
		fmt.Print(renderer.TableTSV(table))
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.TableMarkdown(table))
	return subcommands.ExitSuccess
}
