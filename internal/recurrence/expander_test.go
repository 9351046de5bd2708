package recurrence

import (
	"errors"
	"testing"
	"time"
)

func date(t *testing.T, year int, month time.Month, day int) time.Time {
	t.Helper()
	return time.Date(year, month, day, 0, 0, 0, 0, Location())
}

func assertDates(t *testing.T, got, want []time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d dates, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("date mismatch at index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExpand_Daily(t *testing.T) {
	t.Parallel()

	t.Run("covers every day in range inclusive", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:   PatternDaily,
			StartDate: date(t, 2025, time.March, 3),
			EndDate:   date(t, 2025, time.March, 7),
			Interval:  1,
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(dates) != 5 {
			t.Fatalf("expected 5 dates, got %d", len(dates))
		}
		if !dates[0].Equal(rule.StartDate) || !dates[4].Equal(rule.EndDate) {
			t.Fatalf("expected inclusive bounds, got first=%v last=%v", dates[0], dates[4])
		}
	})

	t.Run("steps by interval days", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:   PatternDaily,
			StartDate: date(t, 2025, time.March, 3),
			EndDate:   date(t, 2025, time.March, 10),
			Interval:  3,
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		want := []time.Time{date(t, 2025, time.March, 3), date(t, 2025, time.March, 6), date(t, 2025, time.March, 9)}
		assertDates(t, dates, want)
	})

	t.Run("treats zero interval as one", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:   PatternDaily,
			StartDate: date(t, 2025, time.March, 3),
			EndDate:   date(t, 2025, time.March, 4),
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(dates) != 2 {
			t.Fatalf("expected 2 dates, got %d", len(dates))
		}
	})
}

func TestExpand_Weekly(t *testing.T) {
	t.Parallel()

	// 2025-03-03 is a Monday.
	rule := Rule{
		Pattern:   PatternWeekly,
		StartDate: date(t, 2025, time.March, 3),
		EndDate:   date(t, 2025, time.March, 31),
		Interval:  2,
	}

	dates, err := Expand(rule)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	want := []time.Time{
		date(t, 2025, time.March, 3),
		date(t, 2025, time.March, 17),
		date(t, 2025, time.March, 31),
	}
	assertDates(t, dates, want)
	for _, d := range dates {
		if d.Weekday() != time.Monday {
			t.Fatalf("expected Mondays only, got %v on %v", d.Weekday(), d)
		}
	}
}

func TestExpand_WeekdaysAndWeekends(t *testing.T) {
	t.Parallel()

	t.Run("weekdays cover Monday through Friday", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:   PatternWeekdays,
			StartDate: date(t, 2025, time.March, 3),
			EndDate:   date(t, 2025, time.March, 9),
			Interval:  1,
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(dates) != 5 {
			t.Fatalf("expected 5 weekdays, got %d", len(dates))
		}
		for _, d := range dates {
			if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
				t.Fatalf("unexpected weekend date %v", d)
			}
		}
	})

	t.Run("weekends cover Saturday and Sunday", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:   PatternWeekends,
			StartDate: date(t, 2025, time.March, 3),
			EndDate:   date(t, 2025, time.March, 9),
			Interval:  1,
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		want := []time.Time{date(t, 2025, time.March, 8), date(t, 2025, time.March, 9)}
		assertDates(t, dates, want)
	})

	t.Run("interval applies as a week stride", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:   PatternWeekdays,
			StartDate: date(t, 2025, time.March, 3),
			EndDate:   date(t, 2025, time.March, 21),
			Interval:  2,
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		// Week zero (Mar 3-7) and week two (Mar 17-21); week one is skipped.
		if len(dates) != 10 {
			t.Fatalf("expected 10 dates across two included weeks, got %d", len(dates))
		}
		for _, d := range dates {
			if d.Day() >= 10 && d.Day() <= 14 {
				t.Fatalf("date %v falls in a skipped week", d)
			}
		}
	})
}

func TestExpand_Monthly(t *testing.T) {
	t.Parallel()

	t.Run("skips months lacking the start day", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:   PatternMonthly,
			StartDate: date(t, 2025, time.January, 31),
			EndDate:   date(t, 2025, time.April, 30),
			Interval:  1,
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		want := []time.Time{date(t, 2025, time.January, 31), date(t, 2025, time.March, 31)}
		assertDates(t, dates, want)
	})

	t.Run("steps by interval months", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:   PatternMonthly,
			StartDate: date(t, 2025, time.January, 15),
			EndDate:   date(t, 2025, time.July, 31),
			Interval:  3,
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		want := []time.Time{
			date(t, 2025, time.January, 15),
			date(t, 2025, time.April, 15),
			date(t, 2025, time.July, 15),
		}
		assertDates(t, dates, want)
	})
}

func TestExpand_Custom(t *testing.T) {
	t.Parallel()

	t.Run("two weekdays over two weeks yield four dates", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:    PatternCustom,
			StartDate:  date(t, 2025, time.March, 3),
			EndDate:    date(t, 2025, time.March, 16),
			DaysOfWeek: []Weekday{Monday, Wednesday},
			Interval:   1,
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(dates) != 4 {
			t.Fatalf("expected 4 dates, got %d", len(dates))
		}
		for _, d := range dates {
			if d.Weekday() != time.Monday && d.Weekday() != time.Wednesday {
				t.Fatalf("unexpected weekday %v on %v", d.Weekday(), d)
			}
		}
	})

	t.Run("requires a weekday set", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:   PatternCustom,
			StartDate: date(t, 2025, time.March, 3),
			EndDate:   date(t, 2025, time.March, 16),
		}

		if _, err := Expand(rule); !errors.Is(err, ErrInvalidRule) {
			t.Fatalf("expected ErrInvalidRule, got %v", err)
		}
	})

	t.Run("rejects weekday codes outside the Vietnamese range", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:    PatternCustom,
			StartDate:  date(t, 2025, time.March, 3),
			EndDate:    date(t, 2025, time.March, 16),
			DaysOfWeek: []Weekday{Weekday(1)},
		}

		if _, err := Expand(rule); !errors.Is(err, ErrInvalidRule) {
			t.Fatalf("expected ErrInvalidRule, got %v", err)
		}
	})
}

func TestExpand_Semester(t *testing.T) {
	t.Parallel()

	t.Run("behaves like custom over the supplied range", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:    PatternSemester,
			StartDate:  date(t, 2025, time.March, 3),
			EndDate:    date(t, 2025, time.March, 16),
			DaysOfWeek: []Weekday{Friday},
			Interval:   1,
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		want := []time.Time{date(t, 2025, time.March, 7), date(t, 2025, time.March, 14)}
		assertDates(t, dates, want)
	})

	t.Run("defaults to the start date weekday", func(t *testing.T) {
		t.Parallel()

		rule := Rule{
			Pattern:   PatternSemester,
			StartDate: date(t, 2025, time.March, 4),
			EndDate:   date(t, 2025, time.March, 18),
			Interval:  1,
		}

		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(dates) != 3 {
			t.Fatalf("expected 3 Tuesdays, got %d", len(dates))
		}
		for _, d := range dates {
			if d.Weekday() != time.Tuesday {
				t.Fatalf("expected Tuesdays only, got %v", d.Weekday())
			}
		}
	})
}

func TestExpand_InvalidRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		rule Rule
	}{
		{
			name: "end precedes start",
			rule: Rule{
				Pattern:   PatternDaily,
				StartDate: date(t, 2025, time.March, 10),
				EndDate:   date(t, 2025, time.March, 3),
			},
		},
		{
			name: "negative interval",
			rule: Rule{
				Pattern:   PatternDaily,
				StartDate: date(t, 2025, time.March, 3),
				EndDate:   date(t, 2025, time.March, 10),
				Interval:  -1,
			},
		},
		{
			name: "unspecified pattern",
			rule: Rule{
				StartDate: date(t, 2025, time.March, 3),
				EndDate:   date(t, 2025, time.March, 10),
			},
		},
		{
			name: "zero dates",
			rule: Rule{Pattern: PatternDaily},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Expand(tc.rule); !errors.Is(err, ErrInvalidRule) {
				t.Fatalf("expected ErrInvalidRule, got %v", err)
			}
		})
	}
}

func TestExpand_OrderedWithinBoundsNoDuplicates(t *testing.T) {
	t.Parallel()

	rules := []Rule{
		{Pattern: PatternDaily, StartDate: date(t, 2025, time.March, 3), EndDate: date(t, 2025, time.April, 20), Interval: 2},
		{Pattern: PatternWeekly, StartDate: date(t, 2025, time.March, 5), EndDate: date(t, 2025, time.May, 1), Interval: 1},
		{Pattern: PatternWeekends, StartDate: date(t, 2025, time.March, 3), EndDate: date(t, 2025, time.April, 6), Interval: 2},
		{Pattern: PatternMonthly, StartDate: date(t, 2025, time.January, 29), EndDate: date(t, 2025, time.June, 30), Interval: 1},
		{Pattern: PatternCustom, StartDate: date(t, 2025, time.March, 3), EndDate: date(t, 2025, time.April, 13), DaysOfWeek: []Weekday{Tuesday, Sunday}, Interval: 1},
	}

	for _, rule := range rules {
		dates, err := Expand(rule)
		if err != nil {
			t.Fatalf("Expand(%v) returned error: %v", rule.Pattern, err)
		}
		for i, d := range dates {
			if d.Before(DateOf(rule.StartDate)) || d.After(DateOf(rule.EndDate)) {
				t.Fatalf("%v: date %v outside [%v, %v]", rule.Pattern, d, rule.StartDate, rule.EndDate)
			}
			if i > 0 && !dates[i-1].Before(d) {
				t.Fatalf("%v: dates not strictly ascending at index %d", rule.Pattern, i)
			}
		}
	}
}

func TestWeekdayConversions(t *testing.T) {
	t.Parallel()

	for code := Monday; code <= Sunday; code++ {
		if got := FromTimeWeekday(code.Time()); got != code {
			t.Fatalf("round trip failed for code %d: got %d", int(code), int(got))
		}
	}
	if Weekday(1).Valid() || Weekday(9).Valid() {
		t.Fatal("codes outside 2..8 must be invalid")
	}
	if Sunday.Time() != time.Sunday || Monday.Time() != time.Monday {
		t.Fatal("weekday conversion mismatch")
	}
}
