package cycle

import "time"

// Calculator binds the cycle functions to a clock and a time zone. Start and
// end dates passed to it are calendar dates: only their year, month and day
// are used, re-anchored at midnight in the calculator's location.
type Calculator struct {
	loc *time.Location
	now func() time.Time
}

func NewCalculator(loc *time.Location, now func() time.Time) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Calculator{loc: loc, now: now}
}

func (c *Calculator) Location() *time.Location {
	return c.loc
}

func (c *Calculator) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *Calculator) Today() time.Time {
	return StartOfDay(c.Now())
}

func (c *Calculator) Date(t time.Time) time.Time {
	return DateIn(t, c.loc)
}

func (c *Calculator) Cycle(start time.Time, weeks int) (Cycle, error) {
	return NewCycle(c.Date(start), weeks)
}

func (c *Calculator) CurrentWeekNumber(start time.Time, weeks int) (int, error) {
	return CurrentWeekNumber(c.Date(start), weeks, c.Now())
}

func (c *Calculator) WeekNumberForDate(start, target time.Time, weeks int) (int, error) {
	return WeekNumberForDate(c.Date(start), c.Date(target), weeks)
}

func (c *Calculator) WeekDateRange(start time.Time, week int) (WeekRange, error) {
	return WeekDateRange(c.Date(start), week)
}

func (c *Calculator) IsCycleComplete(endDate time.Time) bool {
	return IsCycleComplete(c.Date(endDate), c.Now())
}

func (c *Calculator) DeriveEndDate(start time.Time, weeks int) (time.Time, error) {
	return DeriveEndDate(c.Date(start), weeks)
}

func (c *Calculator) Evaluate(start time.Time, weeks int) (Status, error) {
	return Evaluate(c.Date(start), weeks, c.Now())
}
