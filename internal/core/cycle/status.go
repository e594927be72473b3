package cycle

import (
	"fmt"
	"time"
)

type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseComplete   Phase = "complete"
)

// Status is the tagged result of evaluating a cycle at a point in time.
// Week is only meaningful for PhaseInProgress; it is 0 before the cycle and
// equal to TotalWeeks once complete.
type Status struct {
	Phase      Phase `json:"phase"`
	Week       int   `json:"week"`
	TotalWeeks int   `json:"total_weeks"`
}

func NotStarted(total int) Status {
	return Status{Phase: PhaseNotStarted, Week: 0, TotalWeeks: total}
}

func InProgress(week, total int) Status {
	return Status{Phase: PhaseInProgress, Week: week, TotalWeeks: total}
}

func Complete(total int) Status {
	return Status{Phase: PhaseComplete, Week: total, TotalWeeks: total}
}

func (s Status) IsStarted() bool  { return s.Phase != PhaseNotStarted }
func (s Status) IsComplete() bool { return s.Phase == PhaseComplete }

func (s Status) Label() string {
	switch s.Phase {
	case PhaseNotStarted:
		return "Not started"
	case PhaseComplete:
		return "Complete"
	default:
		return fmt.Sprintf("Week %d of %d", s.Week, s.TotalWeeks)
	}
}

// Evaluate classifies the cycle starting at start with the given duration.
func Evaluate(start time.Time, weeks int, now time.Time) (Status, error) {
	c, err := NewCycle(start, weeks)
	if err != nil {
		return Status{}, err
	}
	return c.Status(now), nil
}
