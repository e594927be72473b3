package services

import (
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// progressIndex groups live progress values by goal and week.
type progressIndex map[string]map[int]*domain.WeeklyProgress

func indexProgress(entries []*domain.WeeklyProgress) progressIndex {
	idx := make(progressIndex)
	for _, p := range entries {
		if p.DeletedAt != nil {
			continue
		}
		if _, ok := idx[p.GoalID]; !ok {
			idx[p.GoalID] = make(map[int]*domain.WeeklyProgress)
		}
		idx[p.GoalID][p.WeekIndex] = p
	}
	return idx
}

func (idx progressIndex) value(goalID string, week int) int {
	if p, ok := idx[goalID][week]; ok {
		return p.Value
	}
	return 0
}

// goalWeekStat evaluates one goal at ref. Only goals whose cycle contains ref
// get a week value and count as active; the rest report their status alone.
func goalWeekStat(g *domain.Goal, idx progressIndex, ref time.Time, loc *time.Location) (domain.GoalWeekStat, bool) {
	stat := domain.GoalWeekStat{
		GoalID:      g.ID,
		GoalTitle:   g.Title,
		Color:       g.Color,
		Icon:        g.Icon,
		TargetValue: g.TargetValue,
		Unit:        g.Unit,
		Status:      cycle.NotStarted(g.CycleWeeks),
	}

	c, err := g.Cycle(loc)
	if err != nil {
		return stat, false
	}

	stat.Status = c.Status(ref)
	if !c.Contains(ref) {
		return stat, false
	}

	r, err := c.Week(c.WeekOf(ref))
	if err != nil || !r.Contains(ref) {
		return stat, false
	}

	stat.WeekLabel = r.Label()
	stat.Value = idx.value(g.ID, r.Index)
	stat.CompletionRate = domain.CompletionRate(stat.Value, g.TargetValue)

	return stat, true
}

func averageRate(stats []domain.GoalWeekStat, active func(domain.GoalWeekStat) bool) float64 {
	total := 0.0
	n := 0
	for _, s := range stats {
		if !active(s) {
			continue
		}
		total += s.CompletionRate
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func isActive(s domain.GoalWeekStat) bool {
	return s.Status.Phase == cycle.PhaseInProgress
}
