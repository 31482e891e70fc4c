package invreports

import (
	"sort"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// Split is a corporate-action quantity adjustment: a holder of Denominator
// shares ends up with Numerator shares on the split date.
type Split struct {
	Date        date.Date
	Numerator   int64
	Denominator int64
}

// Ratio is the quantity multiplier of the split.
func (s Split) Ratio() float64 { return float64(s.Numerator) / float64(s.Denominator) }

// PriceTable holds per-security price history and split events, as supplied
// by the host layer. Prices are stored exactly as quoted on their date; the
// Adjust operation maps a quote across split boundaries.
type PriceTable struct {
	prices map[string]*date.History[float64]
	splits map[string][]Split
}

// NewPriceTable creates an empty price table.
func NewPriceTable() *PriceTable {
	return &PriceTable{
		prices: make(map[string]*date.History[float64]),
		splits: make(map[string][]Split),
	}
}

// SetPrice records the quoted price of a security on a date.
func (p *PriceTable) SetPrice(ticker string, on date.Date, price float64) {
	h, ok := p.prices[ticker]
	if !ok {
		h = &date.History[float64]{}
		p.prices[ticker] = h
	}
	h.Append(on, price)
}

// AddSplit records a split event for a security.
func (p *PriceTable) AddSplit(ticker string, s Split) {
	splits := append(p.splits[ticker], s)
	sort.Slice(splits, func(i, j int) bool { return splits[i].Date.Before(splits[j].Date) })
	p.splits[ticker] = splits
}

// PriceAsOf returns the last quoted price on or before a date, with the date
// of the quote.
func (p *PriceTable) PriceAsOf(ticker string, on date.Date) (price float64, quoted date.Date, ok bool) {
	h, found := p.prices[ticker]
	if !found {
		return 0, date.Date{}, false
	}
	price, ok = h.ValueAsOf(on)
	if !ok {
		return 0, date.Date{}, false
	}
	// Walk back to the quote's own date so Adjust can bridge splits between
	// the quote and the requested date.
	for day, v := range h.Values() {
		if day.After(on) {
			break
		}
		quoted, price = day, v
	}
	return price, quoted, true
}

// Adjust maps a price quoted on from into the share-count basis of to,
// dividing by the ratio of every split effective after from and on or
// before to.
func (p *PriceTable) Adjust(ticker string, price float64, from, to date.Date) float64 {
	for _, s := range p.splits[ticker] {
		if s.Date.After(from) && !s.Date.After(to) {
			price /= s.Ratio()
		}
	}
	return price
}

// MarkPrice returns the split-adjusted market price of a security on a date.
func (p *PriceTable) MarkPrice(ticker string, on date.Date) (float64, bool) {
	price, quoted, ok := p.PriceAsOf(ticker, on)
	if !ok {
		return 0, false
	}
	return p.Adjust(ticker, price, quoted, on), true
}

// SplitsBetween returns the splits effective after from and on or before to,
// in chronological order.
func (p *PriceTable) SplitsBetween(ticker string, from, to date.Date) []Split {
	var out []Split
	for _, s := range p.splits[ticker] {
		if s.Date.After(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out
}
