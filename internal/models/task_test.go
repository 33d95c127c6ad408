package models

import (
	"reflect"
	"testing"
)

func ptr(v int64) *int64 { return &v }

func windowTask(start, end, deadline *int64) *Task {
	return &Task{Title: "t", SupposedStart: start, SupposedEnd: end, Deadline: deadline}
}

func TestWindowShapes(t *testing.T) {
	tests := []struct {
		name string
		task *Task
		want TimeRange
	}{
		{"timeless", windowTask(nil, nil, nil), nil},
		{"only start", windowTask(ptr(10), nil, nil), TimeRange{10}},
		{"only end", windowTask(nil, ptr(20), nil), TimeRange{20}},
		{"only deadline", windowTask(nil, nil, ptr(30)), TimeRange{30}},
		{"start and end", windowTask(ptr(10), ptr(20), nil), TimeRange{10, 20}},
		{"end beats deadline", windowTask(ptr(10), ptr(20), ptr(30)), TimeRange{10, 20}},
		{"deadline as end", windowTask(ptr(10), nil, ptr(30)), TimeRange{10, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Window(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Window() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLeftBorder(t *testing.T) {
	if got := windowTask(nil, nil, nil).LeftBorder(); got != nil {
		t.Errorf("timeless LeftBorder = %v, want nil", *got)
	}
	if got := windowTask(ptr(5), ptr(9), nil).LeftBorder(); got == nil || *got != 5 {
		t.Errorf("LeftBorder = %v, want 5", got)
	}
	if got := windowTask(nil, ptr(9), ptr(12)).LeftBorder(); got == nil || *got != 9 {
		t.Errorf("LeftBorder = %v, want 9", got)
	}
	if got := windowTask(nil, nil, ptr(12)).LeftBorder(); got == nil || *got != 12 {
		t.Errorf("LeftBorder = %v, want 12", got)
	}
}

func TestIsAfterIsBefore(t *testing.T) {
	task := windowTask(ptr(10), ptr(20), nil)

	if !task.IsAfter(TimeRange{0, 5}, false) {
		t.Error("window [10,20] should be after [0,5]")
	}
	if task.IsAfter(TimeRange{0, 10}, false) {
		t.Error("window [10,20] is not strictly after [0,10]")
	}
	if !task.IsAfter(TimeRange{0, 10}, true) {
		t.Error("window [10,20] is after [0,10] inclusively")
	}

	if !task.IsBefore(TimeRange{30, 40}, false) {
		t.Error("window [10,20] should be before [30,40]")
	}
	if task.IsBefore(TimeRange{20, 40}, false) {
		t.Error("window [10,20] is not strictly before [20,40]")
	}
	if !task.IsBefore(TimeRange{20, 40}, true) {
		t.Error("window [10,20] is before [20,40] inclusively")
	}

	timeless := windowTask(nil, nil, nil)
	if !timeless.IsAfter(TimeRange{0, 5}, false) || !timeless.IsBefore(TimeRange{0, 5}, false) {
		t.Error("timeless windows satisfy every comparison vacuously")
	}

	if task.IsAfter(nil, false) || task.IsBefore(nil, false) {
		t.Error("empty range never compares")
	}
}

func TestOverlaps(t *testing.T) {
	task := windowTask(ptr(10), ptr(20), nil)

	tests := []struct {
		rng  TimeRange
		want bool
	}{
		{TimeRange{0, 5}, false},
		{TimeRange{0, 10}, true},
		{TimeRange{15, 17}, true},
		{TimeRange{5, 25}, true},
		{TimeRange{20, 30}, true},
		{TimeRange{21, 30}, false},
		{TimeRange{15}, true},
		{TimeRange{9}, false},
	}
	for _, tt := range tests {
		if got := task.Overlaps(tt.rng); got != tt.want {
			t.Errorf("Overlaps(%v) = %v, want %v", tt.rng, got, tt.want)
		}
	}
}

func TestOverlapsFully(t *testing.T) {
	task := windowTask(ptr(10), ptr(20), nil)

	if !task.OverlapsFully(TimeRange{10, 20}) {
		t.Error("window should fully overlap its own range")
	}
	if task.OverlapsFully(TimeRange{5, 25}) {
		t.Error("window [10,20] does not cover [5,25]")
	}
	if !task.OverlapsFully(TimeRange{12, 18}) {
		t.Error("window [10,20] covers [12,18]")
	}
	if task.OverlapsFully(TimeRange{15}) {
		t.Error("one-instant range never satisfies the strong test")
	}
}

func TestInsideOfRange(t *testing.T) {
	task := windowTask(ptr(10), ptr(20), nil)

	if !task.InsideOfRange(TimeRange{10, 20}) {
		t.Error("window lies inside its own borders")
	}
	if !task.InsideOfRange(TimeRange{0, 100}) {
		t.Error("window [10,20] lies inside [0,100]")
	}
	if task.InsideOfRange(TimeRange{11, 100}) {
		t.Error("start 10 escapes [11,100]")
	}
}

func TestShiftWindowAndClone(t *testing.T) {
	task := windowTask(ptr(10), ptr(20), ptr(25))
	clone := task.Clone()
	clone.ShiftWindow(100)

	if *clone.SupposedStart != 110 || *clone.SupposedEnd != 120 || *clone.Deadline != 125 {
		t.Errorf("shifted clone = [%d, %d, %d], want [110, 120, 125]",
			*clone.SupposedStart, *clone.SupposedEnd, *clone.Deadline)
	}
	if *task.SupposedStart != 10 || *task.SupposedEnd != 20 || *task.Deadline != 25 {
		t.Error("shifting a clone must not touch the original")
	}
}

func TestStatusTransitions(t *testing.T) {
	if got := StatusOverdue.Raise(); got != StatusPending {
		t.Errorf("overdue raises to %v, want pending", got)
	}
	if got := StatusCompleted.Raise(); got != StatusCompleted {
		t.Errorf("completed raises to %v, want completed", got)
	}
	if got := StatusPending.Downgrade(); got != StatusOverdue {
		t.Errorf("pending downgrades to %v, want overdue", got)
	}
	if got := StatusCompleted.Downgrade(); got != StatusActive {
		t.Errorf("completed downgrades to %v, want active", got)
	}
}

func TestPlanExcluded(t *testing.T) {
	plan := &Plan{Shift: 1, Exclude: []int{2, 5}}
	if !plan.Excluded(2) || !plan.Excluded(5) {
		t.Error("listed numbers are excluded")
	}
	if plan.Excluded(3) {
		t.Error("3 is not excluded")
	}
}

func TestTimeRangePair(t *testing.T) {
	if got := (TimeRange{7}).Pair(); !reflect.DeepEqual(got, TimeRange{7, 7}) {
		t.Errorf("Pair() = %v, want [7 7]", got)
	}
	if got := (TimeRange{3, 9}).Pair(); !reflect.DeepEqual(got, TimeRange{3, 9}) {
		t.Errorf("Pair() = %v, want [3 9]", got)
	}
}
