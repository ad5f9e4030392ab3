package timecalc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/attendance-time-calculator/internal/timecalc"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"00:00", 0},
		{"08:30", 510},
		{"18:00", 1080},
		{"23:59", 1439},
		{"8:05", 485},
	}
	for _, tt := range tests {
		got, err := timecalc.TimeToMinutes(tt.input)
		if err != nil {
			t.Errorf("TimeToMinutes(%q): unexpected error %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("TimeToMinutes(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestTimeToMinutesFormatError(t *testing.T) {
	for _, input := range []string{"", "0800", "08:00:00", "ab:cd", "08:", ":30", " 08:00"} {
		_, err := timecalc.TimeToMinutes(input)
		var fe *timecalc.FormatError
		if !errors.As(err, &fe) {
			t.Errorf("TimeToMinutes(%q) error = %v, want *FormatError", input, err)
			continue
		}
		if fe.Input != input {
			t.Errorf("FormatError.Input = %q, want %q", fe.Input, input)
		}
	}
}

func TestMinutesToTime(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "00:00"},
		{510, "08:30"},
		{1080, "18:00"},
		{1049.9999, "17:30"},
		{1050.2, "17:30"},
	}
	for _, tt := range tests {
		got := timecalc.MinutesToTime(tt.minutes)
		if got != tt.want {
			t.Errorf("MinutesToTime(%v) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for m := 0; m < 24*60; m++ {
		s := timecalc.MinutesToTime(float64(m))
		back, err := timecalc.TimeToMinutes(s)
		if err != nil {
			t.Fatalf("TimeToMinutes(%q): %v", s, err)
		}
		if back != m {
			t.Fatalf("round trip %d -> %q -> %d", m, s, back)
		}
		if !timecalc.IsCompleteTime(s) {
			t.Fatalf("IsCompleteTime(%q) = false", s)
		}
	}
}

func TestIsCompleteTime(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"08:00", true},
		{"8:00", false},
		{"08:0", false},
		{"", false},
		{"08:00 ", false},
	}
	for _, tt := range tests {
		if got := timecalc.IsCompleteTime(tt.input); got != tt.want {
			t.Errorf("IsCompleteTime(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestHoursToTime(t *testing.T) {
	if got := timecalc.HoursToTime(8.5); got != "08:30" {
		t.Errorf("HoursToTime(8.5) = %q, want %q", got, "08:30")
	}
	if got := timecalc.HoursToTime(18.25); got != "18:15" {
		t.Errorf("HoursToTime(18.25) = %q, want %q", got, "18:15")
	}
}

func TestRounding(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
		in   float64
		want float64
	}{
		{"Round2 half up", timecalc.Round2, 0.125, 0.13},
		{"Round2 thirds", timecalc.Round2, 7.0 + 56.0/60, 7.93},
		{"Round2 negative half", timecalc.Round2, -0.125, -0.12},
		{"Round1 half up", timecalc.Round1, 1.25, 1.3},
		{"Round1 small", timecalc.Round1, 0.04, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0h"},
		{8, "8h"},
		{8.5, "8h 30m"},
		{7.93, "7h 56m"},
		{-0.5, "-0h 30m"},
		{1.999, "2h"},
	}
	for _, tt := range tests {
		got := timecalc.FormatHours(tt.hours)
		if got != tt.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	monday, sunday := timecalc.WeekRange(fri)

	wantMonday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if !monday.Equal(wantMonday) {
		t.Errorf("WeekRange monday = %v, want %v", monday, wantMonday)
	}
	if !sunday.Equal(wantSunday) {
		t.Errorf("WeekRange sunday = %v, want %v", sunday, wantSunday)
	}

	_, friday := timecalc.WorkWeek(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	if want := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC); !friday.Equal(want) {
		t.Errorf("WorkWeek friday = %v, want %v", friday, want)
	}
}

func TestISOWeekLabel(t *testing.T) {
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	got := timecalc.ISOWeekLabel(fri)
	if got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}

func TestDayRange(t *testing.T) {
	from := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	got := timecalc.DayRange(from, to)
	want := []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}
	if len(got) != len(want) {
		t.Fatalf("DayRange = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DayRange[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if n := timecalc.DaysBetween(from, to); n != 4 {
		t.Errorf("DaysBetween = %d, want 4", n)
	}
	if n := timecalc.DaysBetween(to, from); n > 0 {
		t.Errorf("DaysBetween reversed = %d, want <= 0", n)
	}
}

func TestGenerateID(t *testing.T) {
	id := timecalc.GenerateID("2026-02-27")
	if len(id) != len("2026-02-27-xxxxx") {
		t.Errorf("GenerateID length = %d, want %d", len(id), len("2026-02-27-xxxxx"))
	}
	if id[:10] != "2026-02-27" {
		t.Errorf("GenerateID prefix = %q, want %q", id[:10], "2026-02-27")
	}
}
