package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
	"github.com/comitanigiacomo/kanso-goals/internal/logger"
)

type GoalRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Goal, error)
	Update(ctx context.Context, goal *domain.Goal) error
	ListDueForCompletion(ctx context.Context, asOf time.Time) ([]*domain.Goal, error)
}

type ProgressRepository interface {
	ListByGoalID(ctx context.Context, goalID string) ([]*domain.WeeklyProgress, error)
}

// JobObserver receives the outcome of every processed job.
type JobObserver interface {
	RecordCycleJob(d time.Duration, result string)
	GoalCompleted()
}

const (
	ResultUpdated   = "updated"
	ResultUnchanged = "unchanged"
	ResultError     = "error"
	ResultDropped   = "dropped"

	defaultQueueSize = 100
)

type CycleJob struct {
	GoalID string
}

// CycleWorker recomputes week streaks and closes finished cycles after
// progress changes. Jobs are processed one at a time in the background.
// With a sweep interval set it also enqueues goals whose cycle ended with
// nobody logging progress, since logging is refused once a cycle is over.
type CycleWorker struct {
	goalRepo     GoalRepository
	progressRepo ProgressRepository
	calc         *cycle.Calculator
	observer     JobObserver
	jobs         chan CycleJob
	sweepEvery   time.Duration
}

func NewCycleWorker(gRepo GoalRepository, pRepo ProgressRepository, calc *cycle.Calculator, observer JobObserver) *CycleWorker {
	return &CycleWorker{
		goalRepo:     gRepo,
		progressRepo: pRepo,
		calc:         calc,
		observer:     observer,
		jobs:         make(chan CycleJob, defaultQueueSize),
	}
}

// WithSweepInterval enables the completion sweep. Zero disables it.
func (w *CycleWorker) WithSweepInterval(d time.Duration) *CycleWorker {
	w.sweepEvery = d
	return w
}

func (w *CycleWorker) Start(ctx context.Context) {
	go func() {
		logger.Info(ctx, "cycle worker started", slog.Duration("sweep_every", w.sweepEvery))

		var sweep <-chan time.Time
		if w.sweepEvery > 0 {
			ticker := time.NewTicker(w.sweepEvery)
			defer ticker.Stop()
			sweep = ticker.C
			w.runSweep(ctx)
		}

		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-sweep:
				w.runSweep(ctx)
			case <-ctx.Done():
				logger.Info(ctx, "cycle worker shutting down")
				return
			}
		}
	}()
}

func (w *CycleWorker) runSweep(ctx context.Context) {
	n, err := w.Sweep(ctx)
	if err != nil {
		logger.Error(ctx, "completion sweep failed", err)
		return
	}
	if n > 0 {
		logger.Debug(ctx, "completion sweep queued goals", slog.Int("count", n))
	}
}

// Sweep enqueues every goal whose end date has been reached but which has
// not been marked complete, and returns how many were queued.
func (w *CycleWorker) Sweep(ctx context.Context) (int, error) {
	goals, err := w.goalRepo.ListDueForCompletion(ctx, w.calc.Today())
	if err != nil {
		return 0, err
	}
	for _, g := range goals {
		w.Enqueue(g.ID)
	}
	return len(goals), nil
}

// Enqueue schedules a recomputation. It never blocks; a full queue drops the job.
func (w *CycleWorker) Enqueue(goalID string) {
	if w == nil {
		return
	}
	select {
	case w.jobs <- CycleJob{GoalID: goalID}:
	default:
		slog.Warn("cycle worker queue full, dropping job", slog.String("goal_id", goalID))
		w.record(0, ResultDropped)
	}
}

func (w *CycleWorker) record(d time.Duration, result string) {
	if w.observer != nil {
		w.observer.RecordCycleJob(d, result)
	}
}

func (w *CycleWorker) processJob(ctx context.Context, job CycleJob) {
	started := time.Now()
	result, err := w.Process(ctx, job.GoalID)
	if err != nil {
		logger.Error(ctx, "cycle worker job failed", err, slog.String("goal_id", job.GoalID))
	}
	w.record(time.Since(started), result)
}

// Process recomputes one goal synchronously and reports what changed.
func (w *CycleWorker) Process(ctx context.Context, goalID string) (string, error) {
	goal, err := w.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return ResultError, err
	}

	c, err := goal.Cycle(w.calc.Location())
	if errors.Is(err, domain.ErrGoalUnscheduled) {
		return ResultUnchanged, nil
	}
	if err != nil {
		return ResultError, err
	}

	entries, err := w.progressRepo.ListByGoalID(ctx, goalID)
	if err != nil {
		return ResultError, err
	}

	now := w.calc.Now()
	status := c.Status(now)
	current, longest := calculateWeekStreaks(entries, goal.TargetValue, status.Week)

	changed := false
	if goal.CurrentStreak != current || goal.LongestStreak != longest {
		goal.UpdateStreak(current, longest)
		changed = true
	}

	completedNow := status.IsComplete() && goal.CompletedAt == nil
	if completedNow {
		goal.MarkCompleted(now)
		changed = true
	}

	if !changed {
		return ResultUnchanged, nil
	}

	if err := w.goalRepo.Update(ctx, goal); err != nil {
		return ResultError, err
	}

	if completedNow && w.observer != nil {
		w.observer.GoalCompleted()
	}

	logger.Debug(ctx, "goal streaks updated",
		slog.String("goal_id", goalID),
		slog.Int("current", current),
		slog.Int("longest", longest),
		slog.String("status", status.Label()),
	)
	return ResultUpdated, nil
}

// calculateWeekStreaks counts consecutive achieved weeks up to upTo. The
// current streak may start at the previous week while upTo is still open.
func calculateWeekStreaks(entries []*domain.WeeklyProgress, target, upTo int) (int, int) {
	if upTo < 1 || len(entries) == 0 {
		return 0, 0
	}

	achieved := make(map[int]bool)
	for _, e := range entries {
		if e.DeletedAt != nil || e.WeekIndex < 1 || e.WeekIndex > upTo {
			continue
		}
		if e.Achieved(target) {
			achieved[e.WeekIndex] = true
		}
	}

	current := 0
	week := upTo
	if !achieved[week] {
		week--
	}
	for ; week >= 1 && achieved[week]; week-- {
		current++
	}

	longest, run := 0, 0
	for week := 1; week <= upTo; week++ {
		if achieved[week] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	return current, longest
}
