package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/timeutil"
)

func TestFormatShift(t *testing.T) {
	day := int64(24 * time.Hour / time.Millisecond)
	cases := []struct {
		ms   int64
		want string
	}{
		{day, "1d"},
		{7 * day, "7d"},
		{int64(90 * time.Minute / time.Millisecond), "1h30m0s"},
	}
	for _, c := range cases {
		if got := FormatShift(c.ms); got != c.want {
			t.Errorf("FormatShift(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}

func TestFormatInstant(t *testing.T) {
	midnight := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	if got := FormatInstant(timeutil.ToMillis(midnight)); got != "14-03-2026" {
		t.Errorf("midnight = %q, want date only", got)
	}
	afternoon := time.Date(2026, 3, 14, 15, 30, 0, 0, time.Local)
	if got := FormatInstant(timeutil.ToMillis(afternoon)); got != "14-03-2026 15:30" {
		t.Errorf("afternoon = %q, want date and clock", got)
	}
}

func TestFormatWindow(t *testing.T) {
	if got := FormatWindow(&models.Task{}); got != "timeless" {
		t.Errorf("empty window = %q, want timeless", got)
	}

	start := timeutil.ToMillis(time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local))
	end := timeutil.ToMillis(time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local))
	deadline := timeutil.ToMillis(time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local))
	task := &models.Task{SupposedStart: &start, SupposedEnd: &end, Deadline: &deadline}
	want := "14-03-2026 .. 15-03-2026 ! 16-03-2026"
	if got := FormatWindow(task); got != want {
		t.Errorf("full window = %q, want %q", got, want)
	}

	task = &models.Task{Deadline: &deadline}
	if got := FormatWindow(task); got != "! 16-03-2026" {
		t.Errorf("deadline only = %q", got)
	}
}

func TestFormatTaskLine(t *testing.T) {
	start := timeutil.ToMillis(time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local))
	task := &models.Task{
		TID:           7,
		Title:         "water plants",
		Status:        models.StatusPending,
		Priority:      models.PriorityHigh,
		SupposedStart: &start,
		NotifyStart:   true,
	}
	line := FormatTaskLine(task)
	for _, part := range []string{"   7", "water plants", "14-03-2026", "high", "notify:start"} {
		if !strings.Contains(line, part) {
			t.Errorf("line %q missing %q", line, part)
		}
	}
}

func TestParseRangeFlags(t *testing.T) {
	rng, err := ParseRangeFlags("", "")
	if err != nil || rng != nil {
		t.Errorf("empty flags = %v, %v, want nil range", rng, err)
	}

	rng, err = ParseRangeFlags("14-03-2026", "")
	if err != nil || len(rng) != 1 {
		t.Fatalf("from only = %v, %v, want one instant", rng, err)
	}

	rng, err = ParseRangeFlags("14-03-2026", "16-03-2026")
	if err != nil || len(rng) != 2 || rng[1] <= rng[0] {
		t.Fatalf("full range = %v, %v", rng, err)
	}

	if _, err := ParseRangeFlags("16-03-2026", "14-03-2026"); err == nil {
		t.Error("inverted range should fail")
	}
	if _, err := ParseRangeFlags("not a date", ""); err == nil {
		t.Error("garbage should fail")
	}
}

func TestParseStatusAndPriorityFlags(t *testing.T) {
	if s, err := ParseStatusFlag(""); err != nil || s != nil {
		t.Errorf("empty status = %v, %v, want unset", s, err)
	}
	s, err := ParseStatusFlag("active")
	if err != nil || s == nil || *s != models.StatusActive {
		t.Errorf("active = %v, %v", s, err)
	}
	if _, err := ParseStatusFlag("busy"); err == nil {
		t.Error("unknown status should fail")
	}

	p, err := ParsePriorityFlag("highest")
	if err != nil || p == nil || *p != models.PriorityHighest {
		t.Errorf("highest = %v, %v", p, err)
	}
	if _, err := ParsePriorityFlag("urgent"); err == nil {
		t.Error("unknown priority should fail")
	}

	if k, err := ParseKindFlag("guest"); err != nil || k != models.UserKindGuest {
		t.Errorf("guest = %v, %v", k, err)
	}
	if _, err := ParseKindFlag("owner"); err == nil {
		t.Error("unknown role should fail")
	}
}
