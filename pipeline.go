package invreports

import (
	"fmt"
	"sort"
)

// Ledger is the in-memory input of one report run: the host's accounts,
// securities, raw transactions and price history, as produced by the loader
// or by a test fixture.
type Ledger struct {
	Accounts     []Account
	Securities   []Security
	Transactions []RawTransaction
	Prices       *PriceTable
}

// Security looks a security up by ticker. An unknown ticker gets a bare
// record so grouping still has an identity to hang on to.
func (l *Ledger) Security(ticker string) Security {
	for _, s := range l.Securities {
		if s.Ticker == ticker {
			return s
		}
	}
	return Security{Ticker: ticker}
}

// MaxTxnID returns the highest raw transaction id, the floor for the
// synthetic id allocator.
func (l *Ledger) MaxTxnID() int64 {
	var max int64
	for _, t := range l.Transactions {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}

// ComputeReports runs the full computation pipeline: normalize every raw
// transaction, build one ordered sequence per (account, security), derive
// the synthetic cash sequence per account, sequence them all, and build the
// leaf reports plus the aggregation tree for the configured dimensions.
func ComputeReports(l *Ledger, cfg ReportConfig) ([]*SecurityValuationReport, *AggregationTree, error) {
	if l.Prices == nil {
		l.Prices = NewPriceTable()
	}
	alloc := NewIDAllocator(l.MaxTxnID())
	sequencer := Sequencer{Prices: l.Prices, Method: cfg.Method}

	// Normalize and bucket by account, keeping the per-security streams
	// apart from the account-level bank activity.
	type bucket struct {
		bySecurity map[string][]*NormalizedTransaction
		all        []*NormalizedTransaction
	}
	buckets := make(map[string]*bucket)
	for _, acct := range l.Accounts {
		buckets[acct.Name] = &bucket{bySecurity: make(map[string][]*NormalizedTransaction)}
	}
	for _, raw := range l.Transactions {
		b, ok := buckets[raw.Account]
		if !ok {
			return nil, nil, dataFault(raw.Security, raw.ID, "unknown account %q", raw.Account)
		}
		target := raw.Security
		if target == "" {
			target = CashTicker
		}
		n, err := Normalize(raw, target)
		if err != nil {
			return nil, nil, err
		}
		if raw.Security != "" {
			b.bySecurity[raw.Security] = append(b.bySecurity[raw.Security], n)
		}
		b.all = append(b.all, n)
	}

	var leaves []*SecurityValuationReport
	for _, acct := range l.Accounts {
		b := buckets[acct.Name]

		tickers := make([]string, 0, len(b.bySecurity))
		for ticker := range b.bySecurity {
			tickers = append(tickers, ticker)
		}
		sort.Strings(tickers)

		for _, ticker := range tickers {
			seq, err := NewSequence(acct.Name, ticker, b.bySecurity[ticker])
			if err != nil {
				return nil, nil, err
			}
			if err := sequencer.Run(seq); err != nil {
				return nil, nil, err
			}
			leaf, err := NewLeafReport(seq, l.Security(ticker), l.Prices, cfg.Context)
			if err != nil {
				return nil, nil, err
			}
			leaves = append(leaves, leaf)
		}

		// Cash synthesis consumes the account's activity in sequence order.
		sort.SliceStable(b.all, func(i, j int) bool {
			return compareTxns(b.all[i], b.all[j]) < 0
		})
		cash, err := SynthesizeCash(acct, b.all, alloc)
		if err != nil {
			return nil, nil, err
		}
		if len(cash.Txns) == 0 {
			continue
		}
		if err := sequencer.Run(cash); err != nil {
			return nil, nil, err
		}
		leaf, err := NewLeafReport(cash, Security{
			Ticker:     CashTicker,
			CurrencyID: acct.CurrencyID,
			AssetType:  "Cash",
		}, l.Prices, cfg.Context)
		if err != nil {
			return nil, nil, err
		}
		leaves = append(leaves, leaf)
	}

	var tree *AggregationTree
	if len(leaves) > 0 {
		var err error
		tree, err = NewAggregationTree(cfg.FirstDim, cfg.SecondDim, cfg.Context, leaves)
		if err != nil {
			return nil, nil, err
		}
	}
	return leaves, tree, nil
}

// RunReport executes the pipeline and flattens the result into the outbound
// table, stamped with a fresh run id.
func RunReport(l *Ledger, cfg ReportConfig) (*Table, error) {
	if cfg.Context.To.IsZero() {
		return nil, fmt.Errorf("report context has no end date")
	}
	leaves, tree, err := ComputeReports(l, cfg)
	if err != nil {
		return nil, err
	}
	return BuildTable(NewRun(cfg), leaves, tree), nil
}
