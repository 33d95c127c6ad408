package timeutil

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("15-03-2026")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate = %v, want %v", got, want)
	}

	today := Today()
	if got, err := ParseDate("today"); err != nil || !got.Equal(today) {
		t.Errorf("ParseDate(today) = %v, %v, want %v", got, err, today)
	}
	if got, err := ParseDate("today+3"); err != nil || !got.Equal(today.AddDate(0, 0, 3)) {
		t.Errorf("ParseDate(today+3) = %v, %v", got, err)
	}
	if got, err := ParseDate("today-1"); err != nil || !got.Equal(today.AddDate(0, 0, -1)) {
		t.Errorf("ParseDate(today-1) = %v, %v", got, err)
	}

	for _, bad := range []string{"2026-03-15", "tomorrow", "today+"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("14:30")
	if err != nil {
		t.Fatalf("ParseClock: %v", err)
	}
	if want := 14*time.Hour + 30*time.Minute; got != want {
		t.Errorf("ParseClock = %v, want %v", got, want)
	}

	if _, err := ParseClock("now"); err != nil {
		t.Errorf("ParseClock(now): %v", err)
	}
	if _, err := ParseClock("25:99"); err == nil {
		t.Error("ParseClock(25:99) should fail")
	}
}

func TestParseInstant(t *testing.T) {
	ms, err := ParseInstant("01-01-2026", "12:00")
	if err != nil {
		t.Fatalf("ParseInstant: %v", err)
	}
	want := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if ms != ToMillis(want) {
		t.Errorf("ParseInstant = %d, want %d", ms, ToMillis(want))
	}

	dateOnly, err := ParseInstant("01-01-2026", "")
	if err != nil {
		t.Fatalf("ParseInstant without time: %v", err)
	}
	if dateOnly != ToMillis(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseInstant date-only = %d", dateOnly)
	}

	arg, err := ParseInstantArg("01-01-2026 12:00")
	if err != nil || arg != ms {
		t.Errorf("ParseInstantArg = %d, %v, want %d", arg, err, ms)
	}
}

func TestParseShift(t *testing.T) {
	day := int64(24 * time.Hour / time.Millisecond)

	tests := []struct {
		arg  string
		want int64
	}{
		{"3d", 3 * day},
		{"-2d", -2 * day},
		{"1w", 7 * day},
		{"72h", 3 * day},
		{"90m", int64(90 * time.Minute / time.Millisecond)},
	}
	for _, tt := range tests {
		got, err := ParseShift(tt.arg)
		if err != nil {
			t.Errorf("ParseShift(%q): %v", tt.arg, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseShift(%q) = %d, want %d", tt.arg, got, tt.want)
		}
	}

	for _, bad := range []string{"", "3x", "soon"} {
		if _, err := ParseShift(bad); err == nil {
			t.Errorf("ParseShift(%q) should fail", bad)
		}
	}
}

func TestMillisRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	if got := FromMillis(ToMillis(now)); !got.Equal(now) {
		t.Errorf("round trip = %v, want %v", got, now)
	}
}

func TestDayRange(t *testing.T) {
	at := time.Date(2026, 5, 10, 13, 45, 0, 0, time.UTC)
	rng := DayRange(at)
	if len(rng) != 2 {
		t.Fatalf("DayRange len = %d", len(rng))
	}
	if FromMillis(rng[0]).Hour() != 0 {
		t.Errorf("range start %v is not midnight", FromMillis(rng[0]))
	}
	if rng[1]-rng[0] != int64(24*time.Hour/time.Millisecond) {
		t.Errorf("range spans %d ms, want one day", rng[1]-rng[0])
	}
}
