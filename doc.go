// Package invreports computes investment performance from a ledger of
// buy/sell/transfer/income transactions and aggregates the results into
// hierarchical composite rows for reporting.
//
// The pipeline works leaf-first:
//   - Normalizer: converts each raw ledger transaction into a typed
//     economic-effect record for one security or cash account.
//   - Valuation Sequencer: walks each security's ordered transaction
//     sequence, carrying position, market value, cost basis and gain state,
//     consulting a pluggable cost-basis strategy (average cost or
//     oldest-first lot matching).
//   - Cash-Leg Synthesizer: derives a parallel synthetic sequence for each
//     account's uninvested cash balance from the security-level flows.
//   - Return Engine: Modified-Dietz holding-period returns per reporting
//     horizon, and an annualized return found by bounded Newton-Raphson
//     iteration over the full-history flow series.
//   - Aggregation Tree: merges per-security reports into composite rows
//     keyed by one or two grouping dimensions, then recomputes each
//     composite's returns from its merged flows.
//
// This package serves as the foundational logic for the `invr` command-line
// tool.
package invreports
