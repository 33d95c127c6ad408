package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/timeutil"
)

var (
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	activeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	highStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

func statusStyle(s models.Status) lipgloss.Style {
	switch s {
	case models.StatusActive:
		return activeStyle
	case models.StatusCompleted:
		return completedStyle
	case models.StatusOverdue:
		return overdueStyle
	}
	return pendingStyle
}

// FormatInstant renders epoch milliseconds as a date, with the clock
// only when it is not midnight.
func FormatInstant(ms int64) string {
	t := timeutil.FromMillis(ms)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(timeutil.DateFormat)
	}
	return t.Format(timeutil.DateTimeFormat)
}

// FormatWindow renders the task window in "start .. end ! deadline"
// form, "timeless" when empty.
func FormatWindow(t *models.Task) string {
	if t.Timeless() {
		return "timeless"
	}
	var b strings.Builder
	if t.SupposedStart != nil {
		b.WriteString(FormatInstant(*t.SupposedStart))
	}
	if t.SupposedEnd != nil {
		if b.Len() > 0 {
			b.WriteString(" .. ")
		}
		b.WriteString(FormatInstant(*t.SupposedEnd))
	}
	if t.Deadline != nil {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("! " + FormatInstant(*t.Deadline))
	}
	return b.String()
}

// FormatTaskLine renders one task as a list row.
func FormatTaskLine(t *models.Task) string {
	status := statusStyle(t.Status).Render(fmt.Sprintf("%-9s", t.Status))
	title := titleStyle.Render(t.Title)

	extras := []string{FormatWindow(t)}
	if t.Priority != models.PriorityNormal {
		p := t.Priority.String()
		if t.Priority >= models.PriorityHigh {
			p = highStyle.Render(p)
		}
		extras = append(extras, p)
	}
	if notify := notifyMarks(t); notify != "" {
		extras = append(extras, notify)
	}

	return fmt.Sprintf("%4d  %s %s  %s", t.TID, status, title,
		dimStyle.Render(strings.Join(extras, "  ")))
}

func notifyMarks(t *models.Task) string {
	var marks []string
	if t.NotifyStart {
		marks = append(marks, "start")
	}
	if t.NotifyEnd {
		marks = append(marks, "end")
	}
	if t.NotifyDeadline {
		marks = append(marks, "deadline")
	}
	if len(marks) == 0 {
		return ""
	}
	return "notify:" + strings.Join(marks, ",")
}

// FormatShift renders a plan shift in the largest whole unit.
func FormatShift(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	day := 24 * time.Hour
	if d%day == 0 {
		return fmt.Sprintf("%dd", d/day)
	}
	return d.String()
}

// ParseInstantFlag parses an optional "<date> [time]" flag value.
func ParseInstantFlag(arg string) (*int64, error) {
	if arg == "" {
		return nil, nil
	}
	ms, err := timeutil.ParseInstantArg(arg)
	if err != nil {
		return nil, err
	}
	return &ms, nil
}

// ParseRangeFlags builds a query range from optional from/to flags.
func ParseRangeFlags(from, to string) (models.TimeRange, error) {
	start, err := ParseInstantFlag(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseInstantFlag(to)
	if err != nil {
		return nil, err
	}
	switch {
	case start == nil && end == nil:
		return nil, nil
	case start == nil:
		return models.TimeRange{*end}, nil
	case end == nil:
		return models.TimeRange{*start}, nil
	default:
		if *end < *start {
			return nil, fmt.Errorf("range end %s is before its start %s", to, from)
		}
		return models.TimeRange{*start, *end}, nil
	}
}

// ParseStatusFlag maps a status name flag, "" meaning unset.
func ParseStatusFlag(arg string) (*models.Status, error) {
	if arg == "" {
		return nil, nil
	}
	s, ok := models.ParseStatus(arg)
	if !ok {
		return nil, fmt.Errorf("invalid status %q (pending|active|completed|overdue)", arg)
	}
	return &s, nil
}

// ParsePriorityFlag maps a priority name flag, "" meaning unset.
func ParsePriorityFlag(arg string) (*models.Priority, error) {
	if arg == "" {
		return nil, nil
	}
	p, ok := models.ParsePriority(arg)
	if !ok {
		return nil, fmt.Errorf("invalid priority %q (low|normal|high|highest)", arg)
	}
	return &p, nil
}

// ParseKindFlag maps a membership role name.
func ParseKindFlag(arg string) (models.UserKind, error) {
	switch arg {
	case "admin":
		return models.UserKindAdmin, nil
	case "guest":
		return models.UserKindGuest, nil
	}
	return 0, fmt.Errorf("invalid role %q (admin|guest)", arg)
}
