package invreports

import (
	"fmt"
	"sort"
	"strings"
)

// GroupDimension names one of the closed set of dimensions a report run can
// group by. There is no open registration: five dimensions cover the
// identity references a leaf report carries.
type GroupDimension int

const (
	DimNone GroupDimension = iota
	DimAccount
	DimTicker
	DimCurrency
	DimAssetType
	DimAssetSubtype
)

func (d GroupDimension) String() string {
	switch d {
	case DimNone:
		return "none"
	case DimAccount:
		return "account"
	case DimTicker:
		return "ticker"
	case DimCurrency:
		return "currency"
	case DimAssetType:
		return "asset-type"
	case DimAssetSubtype:
		return "asset-subtype"
	default:
		return "unknown"
	}
}

// ParseGroupDimension parses a dimension name as given on the command line.
func ParseGroupDimension(s string) (GroupDimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return DimNone, nil
	case "account":
		return DimAccount, nil
	case "ticker", "security":
		return DimTicker, nil
	case "currency":
		return DimCurrency, nil
	case "asset-type", "type":
		return DimAssetType, nil
	case "asset-subtype", "subtype":
		return DimAssetSubtype, nil
	default:
		return DimNone, fmt.Errorf("unknown grouping dimension: %q", s)
	}
}

// KeyOf extracts the leaf's value for this dimension. DimNone keys every
// leaf to the empty string.
func (d GroupDimension) KeyOf(r *SecurityValuationReport) string {
	switch d {
	case DimAccount:
		return r.Account.Value()
	case DimTicker:
		return r.Ticker.Value()
	case DimCurrency:
		return r.Currency.Value()
	case DimAssetType:
		return r.AssetType.Value()
	case DimAssetSubtype:
		return r.AssetSubtype.Value()
	default:
		return ""
	}
}

// CompositeKey identifies one node of the aggregation tree. An unset half
// means "all values of that dimension"; both halves unset is the grand
// total.
type CompositeKey struct {
	First     string
	Second    string
	HasFirst  bool
	HasSecond bool
}

func (k CompositeKey) String() string {
	first, second := "*", "*"
	if k.HasFirst {
		first = k.First
	}
	if k.HasSecond {
		second = k.Second
	}
	return first + "/" + second
}

type compositePhase int

const (
	compositeEmpty compositePhase = iota
	compositeAccumulating
	compositeFinalized
)

// CompositeReport is one aggregate node. Its lifecycle is a strict state
// machine: empty, then accumulating while AddTo folds leaves in, then
// finalized once Finalize recomputes the returns. AddTo after Finalize is
// an error: the recompute is not safe against partial merges.
type CompositeReport struct {
	Key    CompositeKey
	Report *SecurityValuationReport
	Leaves []*SecurityValuationReport

	phase compositePhase
}

// NewCompositeReport returns an empty composite for the key and context.
func NewCompositeReport(key CompositeKey, ctx ReportContext) *CompositeReport {
	return &CompositeReport{Key: key, Report: NewAggregateReport(ctx)}
}

// AddTo folds one leaf into the composite.
func (c *CompositeReport) AddTo(leaf *SecurityValuationReport) error {
	if c.phase == compositeFinalized {
		return fmt.Errorf("composite %s: addTo after finalize", c.Key)
	}
	c.Report.MergeFrom(leaf)
	c.Leaves = append(c.Leaves, leaf)
	c.phase = compositeAccumulating
	return nil
}

// Finalize recomputes the composite's returns from its merged flow series.
// Only valid once, after every applicable leaf has been folded in.
func (c *CompositeReport) Finalize() error {
	switch c.phase {
	case compositeEmpty:
		return fmt.Errorf("composite %s: finalize before any addTo", c.Key)
	case compositeFinalized:
		return fmt.Errorf("composite %s: finalized twice", c.Key)
	}
	c.Report.RecomputeReturns()
	c.phase = compositeFinalized
	return nil
}

// Finalized reports whether Finalize has run.
func (c *CompositeReport) Finalized() bool { return c.phase == compositeFinalized }

// AggregationTree merges leaf reports into composite rows keyed by one or
// two grouping dimensions. Construction is strictly two-phase: every
// required composite is materialized before any leaf is folded in, every
// leaf is folded into every applicable composite exactly once, and one
// finalize pass recomputes all returns.
type AggregationTree struct {
	First  GroupDimension
	Second GroupDimension

	nodes map[CompositeKey]*CompositeReport
	order []CompositeKey
}

// NewAggregationTree builds and finalizes the full tree over the given
// leaves. When the second dimension is a strict refinement of the first
// (every second-dimension value occurs under a single first-dimension
// value), the second-only composites are omitted as redundant.
func NewAggregationTree(first, second GroupDimension, ctx ReportContext, leaves []*SecurityValuationReport) (*AggregationTree, error) {
	t := &AggregationTree{
		First:  first,
		Second: second,
		nodes:  make(map[CompositeKey]*CompositeReport),
	}

	secondOnly := second != DimNone && !refines(leaves, second, first)

	// Phase 0: materialize every key combination.
	for _, leaf := range leaves {
		for _, key := range t.keysFor(leaf, secondOnly) {
			if _, ok := t.nodes[key]; !ok {
				t.nodes[key] = NewCompositeReport(key, ctx)
				t.order = append(t.order, key)
			}
		}
	}
	if _, ok := t.nodes[CompositeKey{}]; !ok && len(leaves) > 0 {
		t.nodes[CompositeKey{}] = NewCompositeReport(CompositeKey{}, ctx)
		t.order = append(t.order, CompositeKey{})
	}

	// Phase 1: fold every leaf into every applicable composite.
	for _, leaf := range leaves {
		for _, key := range t.keysFor(leaf, secondOnly) {
			if err := t.nodes[key].AddTo(leaf); err != nil {
				return nil, err
			}
		}
	}

	// Phase 2: one finalize pass over all composites.
	for _, key := range t.order {
		if err := t.nodes[key].Finalize(); err != nil {
			return nil, err
		}
	}

	t.sortOrder()
	return t, nil
}

// keysFor lists the composite keys a leaf belongs to: both dimensions,
// first-only, second-only (when kept), and the grand total.
func (t *AggregationTree) keysFor(leaf *SecurityValuationReport, secondOnly bool) []CompositeKey {
	keys := []CompositeKey{{}} // grand total
	if t.First != DimNone {
		f := t.First.KeyOf(leaf)
		keys = append(keys, CompositeKey{First: f, HasFirst: true})
		if t.Second != DimNone {
			keys = append(keys, CompositeKey{
				First: f, HasFirst: true,
				Second: t.Second.KeyOf(leaf), HasSecond: true,
			})
		}
	}
	if secondOnly {
		keys = append(keys, CompositeKey{Second: t.Second.KeyOf(leaf), HasSecond: true})
	}
	return keys
}

// refines reports whether every value of the sub dimension occurs under a
// single value of the over dimension across the given leaves.
func refines(leaves []*SecurityValuationReport, sub, over GroupDimension) bool {
	if over == DimNone {
		return false
	}
	seen := make(map[string]string)
	for _, leaf := range leaves {
		s, o := sub.KeyOf(leaf), over.KeyOf(leaf)
		if prev, ok := seen[s]; ok && prev != o {
			return false
		}
		seen[s] = o
	}
	return true
}

// Composites returns every node in display order: grand total last, then
// grouped rows ordered by first key, with each group's subtotal before its
// second-dimension rows.
func (t *AggregationTree) Composites() []*CompositeReport {
	out := make([]*CompositeReport, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.nodes[key])
	}
	return out
}

// Node returns the composite for a key, or nil.
func (t *AggregationTree) Node(key CompositeKey) *CompositeReport {
	return t.nodes[key]
}

func (t *AggregationTree) sortOrder() {
	sort.SliceStable(t.order, func(i, j int) bool {
		a, b := t.order[i], t.order[j]
		// Grand total sorts last.
		if ga, gb := !a.HasFirst && !a.HasSecond, !b.HasFirst && !b.HasSecond; ga != gb {
			return gb
		}
		if a.HasFirst != b.HasFirst {
			return a.HasFirst
		}
		if a.First != b.First {
			return a.First < b.First
		}
		if a.HasSecond != b.HasSecond {
			return b.HasSecond
		}
		return a.Second < b.Second
	})
}
