package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
)

var (
	ErrGoalTitleEmpty    = errors.New("goal title cannot be empty")
	ErrGoalTitleTooLong  = errors.New("goal title is too long (max 100 chars)")
	ErrGoalDescTooLong   = errors.New("goal description is too long (max 500 chars)")
	ErrGoalInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor      = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidTarget     = errors.New("target cannot be negative")
	ErrInvalidGoalType   = errors.New("invalid goal type (must be boolean, numeric, or timer)")
	ErrInvalidCycleWeeks = errors.New("invalid cycle duration (must be 1-52 weeks)")
	ErrGoalArchived      = errors.New("cannot update an archived goal")
	ErrGoalUnscheduled   = errors.New("goal has no start date")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	GoalTypeBoolean = "boolean"
	GoalTypeNumeric = "numeric"
	GoalTypeTimer   = "timer"
	DefaultIcon     = "default_icon"
	MaxTitleLen     = 100
	MaxDescLen      = 500
)

type Goal struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	GroupID       *string    `json:"group_id,omitempty" db:"group_id"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description,omitempty" db:"description"`
	Color         string     `json:"color" db:"color"`
	Icon          string     `json:"icon" db:"icon"`
	SortOrder     int        `json:"sort_order" db:"sort_order"`
	Type          string     `json:"type" db:"type"`
	TargetValue   int        `json:"target_value" db:"target_value"`
	Unit          string     `json:"unit" db:"unit"`
	CycleWeeks    int        `json:"cycle_weeks" db:"cycle_weeks"`
	StartDate     *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty" db:"end_date"`
	CurrentStreak int        `json:"current_streak" db:"current_streak"`
	LongestStreak int        `json:"longest_streak" db:"longest_streak"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	Version       int        `json:"version" db:"version"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

func validateAndNormalize(title, desc, color, gType string, target int) (int, error) {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return 0, ErrGoalTitleEmpty
	}
	if len(trimmedTitle) > MaxTitleLen {
		return 0, ErrGoalTitleTooLong
	}

	if len(strings.TrimSpace(desc)) > MaxDescLen {
		return 0, ErrGoalDescTooLong
	}

	switch gType {
	case GoalTypeBoolean, GoalTypeNumeric, GoalTypeTimer:
	default:
		return 0, ErrInvalidGoalType
	}

	finalTarget := target
	if gType == GoalTypeBoolean {
		finalTarget = 1
	} else if target < 0 {
		return 0, ErrInvalidTarget
	} else if target == 0 {
		finalTarget = 1
	}

	if color != "" && !colorRegex.MatchString(color) {
		return 0, ErrInvalidColor
	}

	return finalTarget, nil
}

// normalizeCycleWeeks applies the legacy default of 12 weeks when the
// duration is absent (zero) and rejects anything the calculator cannot use.
func normalizeCycleWeeks(weeks int) (int, error) {
	if weeks == 0 {
		return cycle.DefaultCycleWeeks, nil
	}
	if err := cycle.ValidateDuration(weeks); err != nil {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidCycleWeeks, weeks)
	}
	return weeks, nil
}

// calendarDate strips the clock and zone from t, keeping its calendar date as
// UTC midnight, which is how DATE columns round-trip.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewGoal(userID, title string, cycleWeeks int) (*Goal, error) {
	if userID == "" {
		return nil, ErrGoalInvalidUserID
	}

	target, err := validateAndNormalize(title, "", "", GoalTypeBoolean, 1)
	if err != nil {
		return nil, err
	}

	weeks, err := normalizeCycleWeeks(cycleWeeks)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Icon:        DefaultIcon,
		Type:        GoalTypeBoolean,
		TargetValue: target,
		CycleWeeks:  weeks,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (g *Goal) Update(title, description, color, icon, gType, unit string, target int) error {
	if g.ArchivedAt != nil {
		return ErrGoalArchived
	}

	cleanDesc := strings.TrimSpace(description)

	safeTarget, err := validateAndNormalize(title, cleanDesc, color, gType, target)
	if err != nil {
		return err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	g.Title = strings.TrimSpace(title)
	g.Description = cleanDesc
	g.Color = color
	g.Icon = icon
	g.Type = gType
	g.Unit = unit
	g.TargetValue = safeTarget

	g.UpdatedAt = time.Now().UTC()

	return nil
}

// Schedule fixes the cycle start and derives the stored end date from it.
func (g *Goal) Schedule(start time.Time) error {
	if g.ArchivedAt != nil {
		return ErrGoalArchived
	}

	startDate := calendarDate(start)
	endDate, err := cycle.DeriveEndDate(startDate, g.CycleWeeks)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCycleWeeks, err)
	}

	g.StartDate = &startDate
	g.EndDate = &endDate
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (g *Goal) ChangeCycleWeeks(weeks int) error {
	if g.ArchivedAt != nil {
		return ErrGoalArchived
	}

	safeWeeks, err := normalizeCycleWeeks(weeks)
	if err != nil {
		return err
	}

	g.CycleWeeks = safeWeeks
	if g.StartDate != nil {
		endDate, err := cycle.DeriveEndDate(*g.StartDate, safeWeeks)
		if err != nil {
			return err
		}
		g.EndDate = &endDate
	}
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (g *Goal) IsScheduled() bool {
	return g.StartDate != nil
}

// Cycle returns the goal's cycle anchored in loc. A goal without a start date
// has no cycle yet and reports ErrGoalUnscheduled instead of a week-0 value.
func (g *Goal) Cycle(loc *time.Location) (cycle.Cycle, error) {
	if g.StartDate == nil {
		return cycle.Cycle{}, ErrGoalUnscheduled
	}
	return cycle.NewCycle(cycle.DateIn(*g.StartDate, loc), g.CycleWeeks)
}

func (g *Goal) ChangePosition(newOrder int) error {
	if g.ArchivedAt != nil {
		return ErrGoalArchived
	}

	g.SortOrder = newOrder
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (g *Goal) UpdateStreak(current, longest int) {
	g.CurrentStreak = current
	g.LongestStreak = longest
	g.UpdatedAt = time.Now().UTC()
}

func (g *Goal) MarkCompleted(at time.Time) {
	if g.CompletedAt != nil {
		return
	}
	completed := at.UTC()
	g.CompletedAt = &completed
	g.UpdatedAt = time.Now().UTC()
}

func (g *Goal) Archive() {
	if g.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	g.ArchivedAt = &now
	g.UpdatedAt = now
}

func (g *Goal) Restore() {
	if g.ArchivedAt == nil {
		return
	}
	g.ArchivedAt = nil
	g.UpdatedAt = time.Now().UTC()
}
