package invreports

import (
	"fmt"
	"strings"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

// Horizon identifies one of the standard reporting windows. Every report
// computes its period metrics once per horizon, over the same transaction
// pass.
type Horizon int

const (
	// Prev is the one-day window ending on the report date.
	Prev Horizon = iota
	// Week is the trailing 7 calendar days.
	Week
	// FourWeek is the trailing 28 calendar days.
	FourWeek
	// ThreeMonth is the trailing 3 calendar months.
	ThreeMonth
	// Year is the trailing calendar year.
	Year
	// ThreeYear is the trailing 3 calendar years.
	ThreeYear
	// YTD runs from January 1st of the report date's year.
	YTD
	// All runs from inception.
	All
)

// Horizons returns all horizons in their fixed reporting order.
func Horizons() []Horizon {
	return []Horizon{Prev, Week, FourWeek, ThreeMonth, Year, ThreeYear, YTD, All}
}

func (h Horizon) String() string {
	switch h {
	case Prev:
		return "PREV"
	case Week:
		return "1Wk"
	case FourWeek:
		return "4Wk"
	case ThreeMonth:
		return "3Mnth"
	case Year:
		return "1Yr"
	case ThreeYear:
		return "3Yr"
	case YTD:
		return "YTD"
	case All:
		return "All"
	default:
		return "unknown"
	}
}

// ParseHorizon parses a string into a Horizon.
func ParseHorizon(s string) (Horizon, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prev", "1d":
		return Prev, nil
	case "1wk", "week":
		return Week, nil
	case "4wk":
		return FourWeek, nil
	case "3mnth", "3m":
		return ThreeMonth, nil
	case "1yr", "year":
		return Year, nil
	case "3yr":
		return ThreeYear, nil
	case "ytd":
		return YTD, nil
	case "all":
		return All, nil
	default:
		return 0, fmt.Errorf("unknown horizon: %q", s)
	}
}

// Start returns the first day of the horizon's window for a report ending on
// end. For All it returns the zero Date, meaning "from inception".
func (h Horizon) Start(end date.Date) date.Date {
	switch h {
	case Prev:
		return end
	case Week:
		return end.Add(-7 + 1)
	case FourWeek:
		return end.Add(-28 + 1)
	case ThreeMonth:
		return end.AddMonths(-3).Add(1)
	case Year:
		return end.AddYears(-1).Add(1)
	case ThreeYear:
		return end.AddYears(-3).Add(1)
	case YTD:
		return end.StartOfYear()
	case All:
		return date.Date{}
	default:
		return date.Date{}
	}
}

// PeriodMap holds one value per reporting horizon. The key set is fixed;
// a fresh map carries the zero value for every horizon.
type PeriodMap[V any] map[Horizon]V

// NewPeriodMap returns a PeriodMap with an entry for every horizon.
func NewPeriodMap[V any]() PeriodMap[V] {
	m := make(PeriodMap[V], len(Horizons()))
	for _, h := range Horizons() {
		var zero V
		m[h] = zero
	}
	return m
}

// FillPeriodMap returns a PeriodMap holding the result of f for every horizon.
func FillPeriodMap[V any](f func(Horizon) V) PeriodMap[V] {
	m := make(PeriodMap[V], len(Horizons()))
	for _, h := range Horizons() {
		m[h] = f(h)
	}
	return m
}
