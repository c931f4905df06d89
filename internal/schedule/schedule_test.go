package schedule

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	mins, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mins != 570 {
		t.Fatalf("expected 570 minutes, got %d", mins)
	}

	if _, err := ParseClock("9:30am"); err == nil {
		t.Fatal("expected error for non-24h clock value")
	}
	if _, err := ParseClock(""); err == nil {
		t.Fatal("expected error for empty clock value")
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(570); got != "09:30" {
		t.Fatalf("expected 09:30, got %s", got)
	}
	if got := FormatClock(0); got != "00:00" {
		t.Fatalf("expected 00:00, got %s", got)
	}
}

func TestAt(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)

	got, err := At(date, "14:15")
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	want := time.Date(2026, 3, 9, 14, 15, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got.Location() != loc {
		t.Fatal("expected composed timestamp to keep the date's location")
	}
}

func TestOverlaps(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"disjoint", at(9, 0), at(9, 30), at(10, 0), at(10, 30), false},
		{"touching boundaries do not overlap", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"partial", at(9, 0), at(10, 0), at(9, 30), at(10, 30), true},
		{"contained", at(9, 0), at(12, 0), at(10, 0), at(10, 30), true},
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
	}
	for _, tc := range cases {
		if got := Overlaps(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestDayScheduleValidate(t *testing.T) {
	ok := DaySchedule{Enabled: true, Start: "09:00", End: "17:00", BreakStart: "12:00", BreakEnd: "13:00"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid day, got %v", err)
	}

	noBreak := DaySchedule{Enabled: true, Start: "09:00", End: "17:00"}
	if err := noBreak.Validate(); err != nil {
		t.Fatalf("expected valid day without break, got %v", err)
	}

	bad := []DaySchedule{
		{Enabled: true, Start: "17:00", End: "09:00"},
		{Enabled: true, Start: "09:00", End: "09:00"},
		{Enabled: true, Start: "09:00", End: "17:00", BreakStart: "08:00", BreakEnd: "09:30"},
		{Enabled: true, Start: "09:00", End: "17:00", BreakStart: "16:30", BreakEnd: "17:30"},
		{Enabled: true, Start: "09:00", End: "17:00", BreakStart: "13:00", BreakEnd: "12:00"},
		{Enabled: true, Start: "nine", End: "17:00"},
		{Enabled: true, Start: "09:00", End: "17:00", BreakStart: "12:00"},
	}
	for i, d := range bad {
		if err := d.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestBreakWindow(t *testing.T) {
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	d := DaySchedule{Enabled: true, Start: "09:00", End: "17:00", BreakStart: "12:00", BreakEnd: "12:45"}
	start, end, ok := d.BreakWindow(date)
	if !ok {
		t.Fatal("expected a break window")
	}
	if !start.Equal(date.Add(12 * time.Hour)) {
		t.Fatalf("expected break start 12:00, got %s", start)
	}
	if !end.Equal(date.Add(12*time.Hour + 45*time.Minute)) {
		t.Fatalf("expected break end 12:45, got %s", end)
	}

	if _, _, ok := (DaySchedule{Enabled: true, Start: "09:00", End: "17:00"}).BreakWindow(date); ok {
		t.Fatal("expected no break window")
	}
}
