// Package cycle maps calendar dates onto the weeks of a fixed-length goal
// cycle. Every function is pure: callers pass "now" explicitly or go through a
// Calculator that owns the clock.
package cycle

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultCycleWeeks = 12
	MaxCycleWeeks     = 52
	DaysPerWeek       = 7
)

var (
	ErrInvalidDuration  = errors.New("invalid cycle duration (must be 1-52 weeks)")
	ErrInvalidWeekIndex = errors.New("invalid week index")
)

// WeekRange is the inclusive span of one cycle week: Start is midnight of its
// first day, End is the last millisecond of its seventh day.
type WeekRange struct {
	Index int       `json:"week"`
	Start time.Time `json:"week_start"`
	End   time.Time `json:"week_end"`
}

func (r WeekRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Label renders the range the way week rows are captioned, e.g. "Jan 5 - Jan 11".
func (r WeekRange) Label() string {
	return fmt.Sprintf("%s - %s", r.Start.Format("Jan 2"), r.End.Format("Jan 2"))
}

// StartOfDay returns the first instant of t's calendar day in t's location.
// On days whose midnight is skipped by a DST change that is the transition.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()

	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if sameDate(midnight, y, m, d) {
		return midnight
	}

	// midnight does not exist; the day begins where the new zone offset does
	begin, _ := time.Date(y, m, d, 12, 0, 0, 0, loc).ZoneBounds()
	if !begin.IsZero() && sameDate(begin, y, m, d) {
		return begin
	}
	return midnight
}

// EndOfDay returns the last millisecond before the next calendar day starts.
func EndOfDay(t time.Time) time.Time {
	return AddDays(t, 1).Add(-time.Millisecond)
}

// AddDays moves t by n calendar days and returns the start of that day.
// The arithmetic is anchored at noon so a DST gap cannot slip it a day.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return StartOfDay(time.Date(y, m, d+n, 12, 0, 0, 0, t.Location()))
}

func sameDate(t time.Time, y int, m time.Month, d int) bool {
	ty, tm, td := t.Date()
	return ty == y && tm == m && td == d
}

// DateIn keeps the calendar date of t (as read in t's own location) and
// places it at the start of that day in loc. Dates loaded from a DATE column
// come back as UTC midnight and must not shift a day when viewed from
// another zone.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.Date()
	return StartOfDay(time.Date(y, m, d, 12, 0, 0, 0, loc))
}

// daysBetween counts whole calendar days from a to b. Both are compared by
// their calendar dates so a DST change in between does not lose a day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func ValidateDuration(weeks int) error {
	if weeks < 1 || weeks > MaxCycleWeeks {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, weeks)
	}
	return nil
}

func validateWeekIndex(week, max int) error {
	if week < 1 || week > max {
		return fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidWeekIndex, week, max)
	}
	return nil
}

// WeekNumberForDate returns the 1-based cycle week containing target, 0 when
// target is before start, and never more than weeks.
func WeekNumberForDate(start, target time.Time, weeks int) (int, error) {
	if err := ValidateDuration(weeks); err != nil {
		return 0, err
	}

	from := StartOfDay(start)
	day := StartOfDay(target.In(from.Location()))

	if day.Before(from) {
		return 0, nil
	}

	week := daysBetween(from, day)/DaysPerWeek + 1
	if week > weeks {
		week = weeks
	}
	return week, nil
}

func CurrentWeekNumber(start time.Time, weeks int, now time.Time) (int, error) {
	return WeekNumberForDate(start, now, weeks)
}

// WeekDateRange returns the calendar span of the given 1-based week. Indexes
// outside 1..MaxCycleWeeks are rejected; use Cycle.Week to also bound the
// index by the cycle's own length.
func WeekDateRange(start time.Time, week int) (WeekRange, error) {
	if err := validateWeekIndex(week, MaxCycleWeeks); err != nil {
		return WeekRange{}, err
	}

	weekStart := AddDays(start, (week-1)*DaysPerWeek)

	return WeekRange{
		Index: week,
		Start: weekStart,
		End:   EndOfDay(AddDays(weekStart, DaysPerWeek-1)),
	}, nil
}

// IsCycleComplete reports whether today is strictly after endDate. On the end
// date itself the cycle is still running.
func IsCycleComplete(endDate, now time.Time) bool {
	end := EndOfDay(endDate)
	return StartOfDay(now.In(end.Location())).After(end)
}

// DeriveEndDate is the stored end date of a goal: start + weeks*7 days.
func DeriveEndDate(start time.Time, weeks int) (time.Time, error) {
	if err := ValidateDuration(weeks); err != nil {
		return time.Time{}, err
	}
	return AddDays(start, weeks*DaysPerWeek), nil
}

// Cycle is a validated start date plus duration.
type Cycle struct {
	Start time.Time `json:"start_date"`
	Weeks int       `json:"cycle_weeks"`
}

func NewCycle(start time.Time, weeks int) (Cycle, error) {
	if err := ValidateDuration(weeks); err != nil {
		return Cycle{}, err
	}
	return Cycle{Start: StartOfDay(start), Weeks: weeks}, nil
}

func (c Cycle) Week(week int) (WeekRange, error) {
	if err := validateWeekIndex(week, c.Weeks); err != nil {
		return WeekRange{}, err
	}
	return WeekDateRange(c.Start, week)
}

func (c Cycle) AllWeeks() []WeekRange {
	ranges := make([]WeekRange, 0, c.Weeks)
	for i := 1; i <= c.Weeks; i++ {
		r, err := c.Week(i)
		if err != nil {
			break
		}
		ranges = append(ranges, r)
	}
	return ranges
}

func (c Cycle) EndDate() time.Time {
	return AddDays(c.Start, c.Weeks*DaysPerWeek)
}

// LastDay is the final instant of the last week of the cycle.
func (c Cycle) LastDay() time.Time {
	return EndOfDay(AddDays(c.Start, c.Weeks*DaysPerWeek-1))
}

func (c Cycle) Contains(t time.Time) bool {
	return !t.Before(c.Start) && !t.After(c.LastDay())
}

func (c Cycle) WeekOf(t time.Time) int {
	week, err := WeekNumberForDate(c.Start, t, c.Weeks)
	if err != nil {
		return 0
	}
	return week
}

func (c Cycle) Status(now time.Time) Status {
	switch {
	case StartOfDay(now.In(c.Start.Location())).Before(c.Start):
		return NotStarted(c.Weeks)
	case IsCycleComplete(c.LastDay(), now):
		return Complete(c.Weeks)
	default:
		return InProgress(c.WeekOf(now), c.Weeks)
	}
}
