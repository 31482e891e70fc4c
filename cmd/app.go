// Package cmd implements the CLI application producing investment
// performance reports.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	invreports "github.com/dkfurrow/moneydance-investment-reports-sub002"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "reports")
	c.Register(&rangeCmd{}, "reports")
	c.Register(&horizonsCmd{}, "reports")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var ledgerFile = flag.String("ledger-file", "ledger.json", "Path to the host ledger export (JSON format)")

// loadLedger reads the app's ledger export file.
func loadLedger() (*invreports.Ledger, error) {
	return invreports.LoadLedgerFile(*ledgerFile)
}

// printMarkdown renders a markdown document for the terminal, falling back
// to the raw text when styling fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: cannot style output:", err)
		out = md
	}
	fmt.Print(out)
}
