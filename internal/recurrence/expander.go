package recurrence

import (
	"errors"
	"fmt"
	"time"
)

var ict = time.FixedZone("ICT", 7*60*60)

// Pattern identifies the recurrence family of a rule.
type Pattern int

const (
	// PatternUnspecified indicates the rule pattern is not set.
	PatternUnspecified Pattern = iota
	// PatternDaily generates one occurrence every interval days.
	PatternDaily
	// PatternWeekly generates occurrences on the start date's weekday every interval weeks.
	PatternWeekly
	// PatternWeekdays generates occurrences on Monday through Friday.
	PatternWeekdays
	// PatternWeekends generates occurrences on Saturday and Sunday.
	PatternWeekends
	// PatternMonthly generates occurrences on the start date's day of month every interval months.
	PatternMonthly
	// PatternCustom generates occurrences on an explicit weekday set.
	PatternCustom
	// PatternSemester behaves like PatternCustom over a caller-supplied semester range.
	PatternSemester
)

// String returns the stable label used for persistence and display.
func (p Pattern) String() string {
	switch p {
	case PatternDaily:
		return "daily"
	case PatternWeekly:
		return "weekly"
	case PatternWeekdays:
		return "weekdays"
	case PatternWeekends:
		return "weekends"
	case PatternMonthly:
		return "monthly"
	case PatternCustom:
		return "custom"
	case PatternSemester:
		return "semester"
	default:
		return "unspecified"
	}
}

// Weekday is a weekday code following the Vietnamese convention:
// Monday is 2 ("thứ 2") through Saturday 7, and Sunday is 8.
type Weekday int

const (
	Monday    Weekday = 2
	Tuesday   Weekday = 3
	Wednesday Weekday = 4
	Thursday  Weekday = 5
	Friday    Weekday = 6
	Saturday  Weekday = 7
	Sunday    Weekday = 8
)

// Valid reports whether the code falls within the Monday..Sunday range.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// Time converts the code to the standard library weekday.
func (w Weekday) Time() time.Weekday {
	if w == Sunday {
		return time.Sunday
	}
	return time.Weekday(int(w) - 1)
}

// FromTimeWeekday converts a standard library weekday to its code.
func FromTimeWeekday(day time.Weekday) Weekday {
	if day == time.Sunday {
		return Sunday
	}
	return Weekday(int(day) + 1)
}

// Rule describes a recurring booking request prior to expansion.
type Rule struct {
	ResourceID          string
	SlotIDs             []string
	Purpose             string
	StartDate           time.Time
	EndDate             time.Time
	Pattern             Pattern
	DaysOfWeek          []Weekday
	Interval            int
	AutoFindAlternative bool
	SkipConflicts       bool
}

// ErrInvalidRule indicates the rule cannot be expanded as provided.
var ErrInvalidRule = errors.New("recurrence: invalid rule")

// Expand generates the ordered list of calendar dates covered by the rule.
//
// Dates are normalized to midnight in Asia/Ho_Chi_Minh (ICT) and fall within
// [StartDate, EndDate] inclusive, strictly ascending with no duplicates.
// Interval semantics per pattern:
//   - Daily steps by Interval days.
//   - Weekly steps by Interval weeks from the start date's weekday.
//   - Weekdays/Weekends apply Interval as a Monday-start week stride; the
//     week containing StartDate is week zero.
//   - Monthly steps by Interval months; months lacking the start day are
//     skipped rather than rolled over.
//   - Custom/Semester include dates whose weekday code is in DaysOfWeek,
//     with the same week stride as Weekdays. Semester falls back to the
//     start date's weekday when no set is supplied.
//
// An Interval of zero is treated as one.
func Expand(rule Rule) ([]time.Time, error) {
	start := DateOf(rule.StartDate)
	end := DateOf(rule.EndDate)

	if rule.StartDate.IsZero() || rule.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidRule)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date precedes start date", ErrInvalidRule)
	}
	if rule.Interval < 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidRule)
	}
	for _, day := range rule.DaysOfWeek {
		if !day.Valid() {
			return nil, fmt.Errorf("%w: weekday code %d out of range", ErrInvalidRule, int(day))
		}
	}

	interval := rule.Interval
	if interval == 0 {
		interval = 1
	}

	switch rule.Pattern {
	case PatternDaily:
		return expandStepped(start, end, interval), nil
	case PatternWeekly:
		return expandStepped(start, end, 7*interval), nil
	case PatternWeekdays:
		return expandFiltered(start, end, interval, weekdaySet(Monday, Tuesday, Wednesday, Thursday, Friday)), nil
	case PatternWeekends:
		return expandFiltered(start, end, interval, weekdaySet(Saturday, Sunday)), nil
	case PatternMonthly:
		return expandMonthly(start, end, interval), nil
	case PatternCustom:
		if len(rule.DaysOfWeek) == 0 {
			return nil, fmt.Errorf("%w: custom pattern requires at least one weekday", ErrInvalidRule)
		}
		return expandFiltered(start, end, interval, weekdaySet(rule.DaysOfWeek...)), nil
	case PatternSemester:
		days := rule.DaysOfWeek
		if len(days) == 0 {
			days = []Weekday{FromTimeWeekday(start.Weekday())}
		}
		return expandFiltered(start, end, interval, weekdaySet(days...)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported pattern %q", ErrInvalidRule, rule.Pattern)
	}
}

// DateOf truncates a timestamp to midnight in ICT.
func DateOf(t time.Time) time.Time {
	in := t.In(ict)
	return time.Date(in.Year(), in.Month(), in.Day(), 0, 0, 0, 0, ict)
}

// Location returns the calendar zone all expanded dates are pinned to.
func Location() *time.Location {
	return ict
}

func weekdaySet(days ...Weekday) map[time.Weekday]struct{} {
	set := make(map[time.Weekday]struct{}, len(days))
	for _, day := range days {
		set[day.Time()] = struct{}{}
	}
	return set
}

func expandStepped(start, end time.Time, stepDays int) []time.Time {
	dates := make([]time.Time, 0)
	for current := start; !current.After(end); current = current.AddDate(0, 0, stepDays) {
		dates = append(dates, current)
	}
	return dates
}

func expandFiltered(start, end time.Time, weekStride int, include map[time.Weekday]struct{}) []time.Time {
	weekZero := startOfWeek(start)
	dates := make([]time.Time, 0)
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if _, ok := include[current.Weekday()]; !ok {
			continue
		}
		if weekStride > 1 && weekIndex(weekZero, current)%weekStride != 0 {
			continue
		}
		dates = append(dates, current)
	}
	return dates
}

func expandMonthly(start, end time.Time, monthStride int) []time.Time {
	day := start.Day()
	dates := make([]time.Time, 0)
	for offset := 0; ; offset += monthStride {
		anchor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, ict).AddDate(0, offset, 0)
		if anchor.After(end) {
			break
		}
		if day > daysInMonth(anchor.Year(), anchor.Month()) {
			continue
		}
		candidate := time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, ict)
		if candidate.Before(start) {
			continue
		}
		if candidate.After(end) {
			break
		}
		dates = append(dates, candidate)
	}
	return dates
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, ict).Day()
}

// startOfWeek returns the Monday at or before the given date.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func weekIndex(weekZero, t time.Time) int {
	days := int(startOfWeek(t).Sub(weekZero) / (24 * time.Hour))
	return days / 7
}
