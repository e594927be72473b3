package domain

import (
	"time"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
)

// WeekRow is one line of a goal's cycle view. Editable marks the current
// week; past weeks are historical and future weeks are not open yet.
type WeekRow struct {
	Week       int       `json:"week"`
	StartDate  time.Time `json:"week_start"`
	EndDate    time.Time `json:"week_end"`
	Label      string    `json:"label"`
	Value      int       `json:"value"`
	Achieved   bool      `json:"achieved"`
	Current    bool      `json:"current"`
	Editable   bool      `json:"editable"`
	ProgressID string    `json:"progress_id,omitempty"`
	Version    int       `json:"version,omitempty"`
}

type GoalCycleReport struct {
	GoalID         string       `json:"goal_id"`
	Title          string       `json:"title"`
	TargetValue    int          `json:"target_value"`
	Unit           string       `json:"unit"`
	CycleWeeks     int          `json:"cycle_weeks"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	EndDate        *time.Time   `json:"end_date,omitempty"`
	Scheduled      bool         `json:"scheduled"`
	Status         cycle.Status `json:"status"`
	StatusLabel    string       `json:"status_label"`
	WeeksAchieved  int          `json:"weeks_achieved"`
	CompletionRate float64      `json:"completion_rate"`
	Weeks          []WeekRow    `json:"weeks"`
}

// GoalWeekStat is a goal's standing in the week that contains the reference date.
type GoalWeekStat struct {
	GoalID         string       `json:"goal_id"`
	GoalTitle      string       `json:"goal_title"`
	Color          string       `json:"color"`
	Icon           string       `json:"icon"`
	TargetValue    int          `json:"target_value"`
	Unit           string       `json:"unit"`
	Status         cycle.Status `json:"status"`
	WeekLabel      string       `json:"week_label,omitempty"`
	Value          int          `json:"value"`
	CompletionRate float64      `json:"completion_rate"`
}

type WeeklyOverview struct {
	Date        string         `json:"date"`
	TotalGoals  int            `json:"total_goals"`
	ActiveGoals int            `json:"active_goals"`
	OverallRate float64        `json:"overall_completion_rate"`
	Goals       []GoalWeekStat `json:"goals"`
}

type MemberStat struct {
	UserID         string         `json:"user_id"`
	ActiveGoals    int            `json:"active_goals"`
	CompletionRate float64        `json:"completion_rate"`
	Goals          []GoalWeekStat `json:"goals"`
}

type GroupOverview struct {
	GroupID     string       `json:"group_id"`
	Name        string       `json:"name"`
	Date        string       `json:"date"`
	OverallRate float64      `json:"overall_completion_rate"`
	Members     []MemberStat `json:"members"`
}

type StatsInput struct {
	UserID string
	Date   time.Time
}
