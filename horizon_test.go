package invreports

import (
	"testing"

	"github.com/dkfurrow/moneydance-investment-reports-sub002/date"
)

func TestHorizonStart(t *testing.T) {
	end := date.New(2024, 6, 28)
	tests := []struct {
		horizon Horizon
		want    date.Date
	}{
		{Prev, end},
		{Week, date.New(2024, 6, 22)},
		{FourWeek, date.New(2024, 6, 1)},
		{ThreeMonth, date.New(2024, 3, 29)},
		{Year, date.New(2023, 6, 29)},
		{ThreeYear, date.New(2021, 6, 29)},
		{YTD, date.New(2024, 1, 1)},
		{All, date.Date{}},
	}
	for _, tc := range tests {
		if got := tc.horizon.Start(end); got != tc.want {
			t.Errorf("%s.Start(%s) = %s, want %s", tc.horizon, end, got, tc.want)
		}
	}
}

func TestHorizonRoundTrip(t *testing.T) {
	for _, h := range Horizons() {
		parsed, err := ParseHorizon(h.String())
		if err != nil {
			t.Errorf("ParseHorizon(%q): %v", h.String(), err)
			continue
		}
		if parsed != h {
			t.Errorf("ParseHorizon(%q) = %v, want %v", h.String(), parsed, h)
		}
	}
	if _, err := ParseHorizon("fortnight"); err == nil {
		t.Error("ParseHorizon accepted an unknown horizon")
	}
}

func TestPeriodMapCoversEveryHorizon(t *testing.T) {
	m := NewPeriodMap[float64]()
	if len(m) != len(Horizons()) {
		t.Fatalf("fresh map has %d entries, want %d", len(m), len(Horizons()))
	}
	filled := FillPeriodMap(func(h Horizon) int { return int(h) })
	for _, h := range Horizons() {
		if filled[h] != int(h) {
			t.Errorf("filled[%s] = %d", h, filled[h])
		}
	}
}
