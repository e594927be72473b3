package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

const dateLayout = "2006-01-02"

type StatsService struct {
	goalRepo     domain.GoalRepository
	progressRepo domain.ProgressRepository
	calc         *cycle.Calculator
}

func NewStatsService(goalRepo domain.GoalRepository, progressRepo domain.ProgressRepository, calc *cycle.Calculator) *StatsService {
	return &StatsService{
		goalRepo:     goalRepo,
		progressRepo: progressRepo,
		calc:         calc,
	}
}

// referenceTime returns the instant the overview is evaluated at: now for a
// zero date, otherwise midday of the requested calendar date.
func (s *StatsService) referenceTime(date time.Time) time.Time {
	if date.IsZero() {
		return s.calc.Now()
	}
	return s.calc.Date(date).Add(12 * time.Hour)
}

// GetWeeklyOverview reports every goal of the user in the week that contains
// input.Date. Only goals whose cycle is running count towards the overall rate.
func (s *StatsService) GetWeeklyOverview(ctx context.Context, input domain.StatsInput) (*domain.WeeklyOverview, error) {
	goals, err := s.goalRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	entries, err := s.progressRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	ref := s.referenceTime(input.Date)
	overview := buildOverview(goals, indexProgress(entries), ref, s.calc.Location())
	overview.Date = ref.Format(dateLayout)

	return overview, nil
}

func buildOverview(goals []*domain.Goal, idx progressIndex, ref time.Time, loc *time.Location) *domain.WeeklyOverview {
	overview := &domain.WeeklyOverview{
		TotalGoals: len(goals),
		Goals:      make([]domain.GoalWeekStat, 0, len(goals)),
	}

	for _, g := range goals {
		stat, active := goalWeekStat(g, idx, ref, loc)
		if active {
			overview.ActiveGoals++
		}
		overview.Goals = append(overview.Goals, stat)
	}

	overview.OverallRate = averageRate(overview.Goals, isActive)
	return overview
}
