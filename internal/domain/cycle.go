package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CycleUnit is a calendar unit of an event's recurrence cycle.
type CycleUnit string

const (
	UnitDay   CycleUnit = "day"
	UnitWeek  CycleUnit = "week"
	UnitMonth CycleUnit = "month"
)

// Cycle is an event's recurrence period, e.g. "2 weeks".
type Cycle struct {
	Count int
	Unit  CycleUnit
}

func (c Cycle) String() string {
	if c.Count == 1 {
		return fmt.Sprintf("%d %s", c.Count, c.Unit)
	}
	return fmt.Sprintf("%d %ss", c.Count, c.Unit)
}

// ParseCycle parses "<count> <unit>" where unit is day/week/month with an
// optional plural "s". Returns ok=false on any malformed input; callers
// re-prompt rather than error out.
func ParseCycle(s string) (Cycle, bool) {
	value, unit, found := strings.Cut(s, " ")
	if !found {
		return Cycle{}, false
	}
	count, err := strconv.Atoi(value)
	if err != nil || count <= 0 {
		return Cycle{}, false
	}
	unit = strings.TrimSuffix(unit, "s")
	switch CycleUnit(unit) {
	case UnitDay, UnitWeek, UnitMonth:
		return Cycle{Count: count, Unit: CycleUnit(unit)}, true
	}
	return Cycle{}, false
}

// NextDue adds the cycle to anchor using calendar-aware arithmetic.
func (c Cycle) NextDue(anchor time.Time) time.Time {
	switch c.Unit {
	case UnitDay:
		return anchor.AddDate(0, 0, c.Count)
	case UnitWeek:
		return anchor.AddDate(0, 0, c.Count*7)
	case UnitMonth:
		return anchor.AddDate(0, c.Count, 0)
	}
	return anchor
}

// IsOverdue reports whether nextDue has passed.
func IsOverdue(now, nextDue time.Time) bool {
	return now.After(nextDue)
}

// Midnight normalizes t to midnight of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// GapUnit is the single calendar unit VerbalGap reports.
type GapUnit int

const (
	GapToday GapUnit = iota
	GapDays
	GapWeeks
	GapMonths
	GapYears
)

// VerbalGap returns the largest non-zero calendar unit between then and now
// at day granularity (years > months > weeks > days), or GapToday when both
// fall on the same calendar day in loc. Reminder overdue-severity wording is
// built from this.
func VerbalGap(now, then time.Time, loc *time.Location) (GapUnit, int) {
	a := Midnight(then, loc)
	b := Midnight(now, loc)
	if a.After(b) {
		a, b = b, a
	}
	if a.Equal(b) {
		return GapToday, 0
	}

	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months >= 12 {
		return GapYears, months / 12
	}
	if months >= 1 {
		return GapMonths, months
	}
	days := int(b.Sub(a).Hours() / 24)
	if days >= 7 {
		return GapWeeks, days / 7
	}
	return GapDays, days
}

// FormatGap renders a gap as reminder-facing text, e.g. "3 weeks ago".
func FormatGap(unit GapUnit, count int) string {
	var word string
	switch unit {
	case GapToday:
		return "today"
	case GapDays:
		word = "day"
	case GapWeeks:
		word = "week"
	case GapMonths:
		word = "month"
	case GapYears:
		word = "year"
	}
	if count == 1 {
		return fmt.Sprintf("1 %s ago", word)
	}
	return fmt.Sprintf("%d %ss ago", count, word)
}
