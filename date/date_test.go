package date

import (
	"testing"
	"time"
)

func TestFromInt(t *testing.T) {
	tests := []struct {
		in      int
		want    Date
		wantErr bool
	}{
		{20100202, New(2010, time.February, 2), false},
		{20241231, New(2024, time.December, 31), false},
		{20240229, New(2024, time.February, 29), false}, // leap day
		{20230229, Date{}, true},                        // not a leap year
		{20241301, Date{}, true},
		{20240100, Date{}, true},
		{123, Date{}, true},
	}
	for _, tt := range tests {
		got, err := FromInt(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("FromInt(%d) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("FromInt(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIntRoundTrip(t *testing.T) {
	d := New(2011, time.July, 4)
	if got := MustFromInt(d.Int()); got != d {
		t.Errorf("round trip = %v, want %v", got, d)
	}
}

func TestAddBusinessDays(t *testing.T) {
	friday := New(2010, time.February, 5)
	monday := New(2010, time.February, 8)
	if got := friday.AddBusinessDays(1); got != monday {
		t.Errorf("friday+1 business day = %v, want %v", got, monday)
	}
	if got := monday.AddBusinessDays(-1); got != friday {
		t.Errorf("monday-1 business day = %v, want %v", got, friday)
	}
	// Through a full week.
	if got := friday.AddBusinessDays(5); got != New(2010, time.February, 12) {
		t.Errorf("friday+5 business days = %v", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := New(2010, time.January, 1)
	b := New(2010, time.December, 31)
	if got := DaysBetween(a, b); got != 364 {
		t.Errorf("DaysBetween = %d, want 364", got)
	}
	if got := DaysBetween(b, a); got != -364 {
		t.Errorf("DaysBetween reversed = %d, want -364", got)
	}
}
