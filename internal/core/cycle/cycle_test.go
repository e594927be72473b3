package cycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekNumberForDate(t *testing.T) {
	start := date(2024, 1, 1)

	tests := []struct {
		name   string
		target time.Time
		weeks  int
		want   int
	}{
		{"Before start returns 0", date(2023, 12, 31), 12, 0},
		{"Far before start returns 0", date(2020, 6, 1), 12, 0},
		{"Start day is week 1", start, 12, 1},
		{"Time of day is ignored", start.Add(23 * time.Hour), 12, 1},
		{"Day 6 is still week 1", date(2024, 1, 7), 12, 1},
		{"Day 7 is week 2", date(2024, 1, 8), 12, 2},
		{"Last day of week 12", date(2024, 3, 24), 12, 12},
		{"Raw week 13 is clamped to 12", date(2024, 3, 25), 12, 12},
		{"Years later is clamped", date(2030, 1, 1), 12, 12},
		{"Single week cycle", date(2024, 2, 1), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cycle.WeekNumberForDate(start, tt.target, tt.weeks)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeekNumberForDate_InvalidDuration(t *testing.T) {
	for _, weeks := range []int{0, -1, 53} {
		_, err := cycle.WeekNumberForDate(date(2024, 1, 1), date(2024, 1, 2), weeks)
		assert.ErrorIs(t, err, cycle.ErrInvalidDuration, "weeks=%d", weeks)
	}
}

func TestWeekNumberForDate_Properties(t *testing.T) {
	start := date(2024, 1, 1)

	for _, weeks := range []int{1, 4, 12, 52} {
		prev := 0
		for offset := -30; offset <= 400; offset++ {
			d := start.AddDate(0, 0, offset)
			got, err := cycle.WeekNumberForDate(start, d, weeks)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, weeks)
			assert.GreaterOrEqual(t, got, prev, "monotonic at offset %d", offset)
			if offset < 0 {
				assert.Equal(t, 0, got)
			}
			prev = got
		}
	}
}

func TestCurrentWeekNumber(t *testing.T) {
	start := date(2024, 1, 1)

	cases := map[time.Time]int{
		date(2024, 1, 1):   1,
		date(2024, 1, 8):   2,
		date(2024, 3, 25):  12,
		date(2023, 12, 31): 0,
	}

	for now, want := range cases {
		got, err := cycle.CurrentWeekNumber(start, 12, now)
		require.NoError(t, err)
		assert.Equal(t, want, got, "now=%s", now.Format("2006-01-02"))
	}
}

func TestWeekDateRange(t *testing.T) {
	t.Run("Success: First week", func(t *testing.T) {
		r, err := cycle.WeekDateRange(date(2024, 1, 1), 1)
		require.NoError(t, err)

		assert.Equal(t, 1, r.Index)
		assert.True(t, r.Start.Equal(date(2024, 1, 1)))
		assert.True(t, r.End.Equal(time.Date(2024, 1, 7, 23, 59, 59, 999000000, time.UTC)))
		assert.Equal(t, "Jan 1 - Jan 7", r.Label())
	})

	t.Run("Success: Start time of day is dropped", func(t *testing.T) {
		r, err := cycle.WeekDateRange(time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC), 2)
		require.NoError(t, err)
		assert.True(t, r.Start.Equal(date(2024, 1, 8)))
	})

	t.Run("Success: Span is 6 days plus end of day", func(t *testing.T) {
		r, err := cycle.WeekDateRange(date(2024, 2, 26), 1)
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour-time.Millisecond, r.End.Sub(r.Start))
		assert.Equal(t, "Feb 26 - Mar 3", r.Label())
	})

	t.Run("Success: Consecutive weeks tile without gap", func(t *testing.T) {
		start := date(2024, 1, 1)
		for k := 1; k < cycle.MaxCycleWeeks; k++ {
			cur, err := cycle.WeekDateRange(start, k)
			require.NoError(t, err)
			next, err := cycle.WeekDateRange(start, k+1)
			require.NoError(t, err)

			assert.True(t, cur.End.Add(time.Millisecond).Equal(next.Start), "week %d", k)
		}
	})

	t.Run("Error: Invalid week index", func(t *testing.T) {
		for _, k := range []int{0, -3, cycle.MaxCycleWeeks + 1} {
			_, err := cycle.WeekDateRange(date(2024, 1, 1), k)
			assert.ErrorIs(t, err, cycle.ErrInvalidWeekIndex, "week=%d", k)
		}
	})

	t.Run("Success: Contains is inclusive", func(t *testing.T) {
		r, _ := cycle.WeekDateRange(date(2024, 1, 1), 1)
		assert.True(t, r.Contains(r.Start))
		assert.True(t, r.Contains(r.End))
		assert.False(t, r.Contains(r.End.Add(time.Millisecond)))
		assert.False(t, r.Contains(r.Start.Add(-time.Millisecond)))
	})
}

func loadZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("Skipping DST test, tz database unavailable: %v", err)
	}
	return loc
}

func TestWeekDateRange_AcrossDST(t *testing.T) {
	t.Run("Success: Transition at 2 a.m.", func(t *testing.T) {
		loc := loadZone(t, "Europe/Rome")
		start := time.Date(2024, 3, 25, 0, 0, 0, 0, loc)

		r, err := cycle.WeekDateRange(start, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, r.Start.Hour())

		// Clocks moved forward on 2024-03-31; week 2 must still start at midnight.
		r2, err := cycle.WeekDateRange(start, 2)
		require.NoError(t, err)
		assert.Equal(t, 0, r2.Start.Hour())
		assert.Equal(t, 1, r2.Start.Day())
		assert.True(t, r.End.Add(time.Millisecond).Equal(r2.Start))

		week, err := cycle.WeekNumberForDate(start, time.Date(2024, 4, 1, 0, 0, 0, 0, loc), 12)
		require.NoError(t, err)
		assert.Equal(t, 2, week)
	})

	// Chile skipped 2024-09-08 00:00, so that day starts at 01:00 -03.
	t.Run("Success: Skipped midnight on the last day of a week", func(t *testing.T) {
		loc := loadZone(t, "America/Santiago")
		start := cycle.DateIn(date(2024, 8, 26), loc)

		r2, err := cycle.WeekDateRange(start, 2)
		require.NoError(t, err)
		r3, err := cycle.WeekDateRange(start, 3)
		require.NoError(t, err)

		assert.Equal(t, "Sep 2 - Sep 8", r2.Label())
		assert.Equal(t, 8, r2.End.Day())
		assert.Equal(t, 9, r3.Start.Day())
		assert.True(t, r2.End.Add(time.Millisecond).Equal(r3.Start))

		skipped := time.Date(2024, 9, 8, 12, 0, 0, 0, loc)
		week, err := cycle.WeekNumberForDate(start, skipped, 12)
		require.NoError(t, err)
		assert.Equal(t, 2, week)
		assert.True(t, r2.Contains(skipped))
	})

	t.Run("Success: Cycle starting on the skipped midnight", func(t *testing.T) {
		loc := loadZone(t, "America/Santiago")
		start := cycle.DateIn(date(2024, 9, 8), loc)

		assert.Equal(t, 8, start.Day())

		r1, err := cycle.WeekDateRange(start, 1)
		require.NoError(t, err)
		assert.True(t, r1.Start.Equal(start))
		assert.Equal(t, "Sep 8 - Sep 14", r1.Label())

		end, err := cycle.DeriveEndDate(start, 1)
		require.NoError(t, err)
		assert.Equal(t, "2024-09-15", end.Format("2006-01-02"))
	})

	t.Run("Success: Weeks tile through a year of transitions", func(t *testing.T) {
		for _, name := range []string{"America/Santiago", "America/New_York", "Australia/Lord_Howe"} {
			loc := loadZone(t, name)
			start := cycle.DateIn(date(2024, 1, 1), loc)

			for k := 1; k < cycle.MaxCycleWeeks; k++ {
				cur, _ := cycle.WeekDateRange(start, k)
				next, _ := cycle.WeekDateRange(start, k+1)
				assert.True(t, cur.End.Add(time.Millisecond).Equal(next.Start), "%s week %d", name, k)
				assert.Equal(t, 6, daysApart(cur.Start, cur.End), "%s week %d", name, k)
			}
		}
	})
}

func daysApart(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return int(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC).Sub(time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)).Hours() / 24)
}

func TestStartOfDay(t *testing.T) {
	t.Run("Success: Plain day", func(t *testing.T) {
		got := cycle.StartOfDay(time.Date(2024, 5, 5, 18, 30, 0, 0, time.UTC))
		assert.True(t, got.Equal(date(2024, 5, 5)))
		assert.True(t, cycle.EndOfDay(got).Equal(time.Date(2024, 5, 5, 23, 59, 59, 999000000, time.UTC)))
	})

	t.Run("Success: Skipped midnight keeps the calendar day", func(t *testing.T) {
		loc := loadZone(t, "America/Santiago")

		got := cycle.StartOfDay(time.Date(2024, 9, 8, 12, 0, 0, 0, loc))
		assert.Equal(t, 8, got.Day())
		assert.Equal(t, 1, got.Hour())
		assert.True(t, cycle.EndOfDay(time.Date(2024, 9, 7, 12, 0, 0, 0, loc)).Add(time.Millisecond).Equal(got))
	})
}

func TestIsCycleComplete(t *testing.T) {
	end := date(2024, 3, 24)

	assert.False(t, cycle.IsCycleComplete(end, date(2024, 3, 23)))
	assert.False(t, cycle.IsCycleComplete(end, date(2024, 3, 24)))
	assert.False(t, cycle.IsCycleComplete(end, time.Date(2024, 3, 24, 23, 59, 0, 0, time.UTC)))
	assert.True(t, cycle.IsCycleComplete(end, date(2024, 3, 25)))
	assert.True(t, cycle.IsCycleComplete(end, date(2025, 1, 1)))
}

func TestDeriveEndDate(t *testing.T) {
	t.Run("Success: Twelve weeks", func(t *testing.T) {
		end, err := cycle.DeriveEndDate(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), 12)
		require.NoError(t, err)
		assert.True(t, end.Equal(date(2024, 3, 25)))
	})

	t.Run("Success: One week", func(t *testing.T) {
		end, err := cycle.DeriveEndDate(date(2024, 12, 30), 1)
		require.NoError(t, err)
		assert.True(t, end.Equal(date(2025, 1, 6)))
	})

	t.Run("Error: Invalid duration", func(t *testing.T) {
		_, err := cycle.DeriveEndDate(date(2024, 1, 1), 0)
		assert.ErrorIs(t, err, cycle.ErrInvalidDuration)
	})
}

func TestCycle(t *testing.T) {
	c, err := cycle.NewCycle(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), 12)
	require.NoError(t, err)

	t.Run("Start is normalized", func(t *testing.T) {
		assert.True(t, c.Start.Equal(date(2024, 1, 1)))
	})

	t.Run("Week is bounded by the cycle length", func(t *testing.T) {
		_, err := c.Week(13)
		assert.ErrorIs(t, err, cycle.ErrInvalidWeekIndex)

		r, err := c.Week(12)
		require.NoError(t, err)
		assert.True(t, r.Start.Equal(date(2024, 3, 18)))
	})

	t.Run("AllWeeks lists every week in order", func(t *testing.T) {
		weeks := c.AllWeeks()
		require.Len(t, weeks, 12)
		for i, w := range weeks {
			assert.Equal(t, i+1, w.Index)
		}
	})

	t.Run("LastDay and EndDate", func(t *testing.T) {
		assert.True(t, c.LastDay().Equal(time.Date(2024, 3, 24, 23, 59, 59, 999000000, time.UTC)))
		assert.True(t, c.EndDate().Equal(date(2024, 3, 25)))
		assert.True(t, c.Contains(c.LastDay()))
		assert.False(t, c.Contains(c.EndDate()))
	})

	t.Run("Error: Invalid duration", func(t *testing.T) {
		_, err := cycle.NewCycle(date(2024, 1, 1), 0)
		assert.ErrorIs(t, err, cycle.ErrInvalidDuration)
	})
}
