package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseCycle(t *testing.T) {
	cases := []struct {
		in   string
		want Cycle
		ok   bool
	}{
		{"3 days", Cycle{3, UnitDay}, true},
		{"3 day", Cycle{3, UnitDay}, true},
		{"1 week", Cycle{1, UnitWeek}, true},
		{"2 weeks", Cycle{2, UnitWeek}, true},
		{"6 months", Cycle{6, UnitMonth}, true},
		{"abc", Cycle{}, false},
		{"3", Cycle{}, false},
		{"3 fortnight", Cycle{}, false},
		{"0 day", Cycle{}, false},
		{"-1 week", Cycle{}, false},
		{"", Cycle{}, false},
	}
	for _, c := range cases {
		got, ok := ParseCycle(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseCycle(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNextDue(t *testing.T) {
	anchor := date(2024, time.January, 1)
	if got := (Cycle{1, UnitWeek}).NextDue(anchor); !got.Equal(date(2024, time.January, 8)) {
		t.Errorf("1 week after 2024-01-01 = %v", got)
	}
	if got := (Cycle{10, UnitDay}).NextDue(anchor); !got.Equal(date(2024, time.January, 11)) {
		t.Errorf("10 days after 2024-01-01 = %v", got)
	}
	if got := (Cycle{2, UnitMonth}).NextDue(anchor); !got.Equal(date(2024, time.March, 1)) {
		t.Errorf("2 months after 2024-01-01 = %v", got)
	}
}

func TestNextDueMonotonic(t *testing.T) {
	cycles := []Cycle{{1, UnitDay}, {3, UnitWeek}, {2, UnitMonth}}
	for _, c := range cycles {
		cur := date(2023, time.December, 31)
		for i := 0; i < 24; i++ {
			next := c.NextDue(cur)
			if !next.After(cur) {
				t.Fatalf("cycle %v: NextDue(%v) = %v is not after its anchor", c, cur, next)
			}
			cur = next
		}
	}
}

func TestIsOverdue(t *testing.T) {
	due := date(2024, time.January, 8)
	if IsOverdue(date(2024, time.January, 8), due) {
		t.Error("due date itself should not be overdue")
	}
	if !IsOverdue(date(2024, time.January, 9), due) {
		t.Error("the day after the due date should be overdue")
	}
}

func TestVerbalGap(t *testing.T) {
	cases := []struct {
		now, then time.Time
		unit      GapUnit
		count     int
	}{
		{date(2024, time.January, 9), date(2024, time.January, 9), GapToday, 0},
		{date(2024, time.January, 9), date(2024, time.January, 8), GapDays, 1},
		{date(2024, time.January, 9), date(2024, time.January, 3), GapDays, 6},
		{date(2024, time.January, 9), date(2024, time.January, 2), GapWeeks, 1},
		{date(2024, time.March, 9), date(2024, time.January, 9), GapMonths, 2},
		{date(2025, time.June, 9), date(2024, time.January, 9), GapYears, 1},
	}
	for _, c := range cases {
		unit, count := VerbalGap(c.now, c.then, time.UTC)
		if unit != c.unit || count != c.count {
			t.Errorf("VerbalGap(%v, %v) = %v, %d; want %v, %d",
				c.now, c.then, unit, count, c.unit, c.count)
		}
	}
}

func TestFormatGap(t *testing.T) {
	if got := FormatGap(GapToday, 0); got != "today" {
		t.Errorf("FormatGap today = %q", got)
	}
	if got := FormatGap(GapWeeks, 1); got != "1 week ago" {
		t.Errorf("FormatGap 1 week = %q", got)
	}
	if got := FormatGap(GapDays, 3); got != "3 days ago" {
		t.Errorf("FormatGap 3 days = %q", got)
	}
}

func TestUserIsLimited(t *testing.T) {
	now := date(2024, time.June, 1)
	later := date(2024, time.December, 1)

	u := &User{EventCount: FreePlanMaxEvents}
	if u.IsLimited(now) {
		t.Error("user at the quota should not be limited")
	}
	u.EventCount = FreePlanMaxEvents + 1
	if !u.IsLimited(now) {
		t.Error("user over the quota should be limited")
	}
	u.IsPremium = true
	u.PremiumUntil = &later
	if u.IsLimited(now) {
		t.Error("premium user should not be limited")
	}
	expired := date(2024, time.January, 1)
	u.PremiumUntil = &expired
	if !u.IsLimited(now) {
		t.Error("expired premium should be limited again")
	}
}
