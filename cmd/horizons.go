package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	invreports "github.com/dkfurrow/moneydance-investment-reports-sub002"
	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

type horizonsCmd struct {
	date string
}

func (*horizonsCmd) Name() string     { return "horizons" }
func (*horizonsCmd) Synopsis() string { return "list the reporting horizons and their window starts" }
func (*horizonsCmd) Usage() string {
	return `invr horizons [-d <date>]

  Prints each reporting horizon with the first day of its window for the
  given end date. Useful to check which transactions fall into a window.
`
}

func (c *horizonsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "End date (defaults to today)")
}

func (c *horizonsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	end := date.Today()
	if c.date != "" {
		var err error
		if end, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	for _, h := range invreports.Horizons() {
		start := h.Start(end)
		if start.IsZero() {
			fmt.Printf("%-6s inception .. %s\n", h, end)
			continue
		}
		fmt.Printf("%-6s %s .. %s\n", h, start, end)
	}
	return subcommands.ExitSuccess
}
