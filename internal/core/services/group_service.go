package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

const overviewConcurrency = 4

type GroupService struct {
	repo         domain.GroupRepository
	userRepo     domain.UserRepository
	goalRepo     domain.GoalRepository
	progressRepo domain.ProgressRepository
	calc         *cycle.Calculator
}

func NewGroupService(repo domain.GroupRepository, userRepo domain.UserRepository, goalRepo domain.GoalRepository, progressRepo domain.ProgressRepository, calc *cycle.Calculator) *GroupService {
	return &GroupService{
		repo:         repo,
		userRepo:     userRepo,
		goalRepo:     goalRepo,
		progressRepo: progressRepo,
		calc:         calc,
	}
}

func (s *GroupService) Create(ctx context.Context, ownerID, name string) (*domain.Group, error) {
	group, err := domain.NewGroup(ownerID, name)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) memberGroup(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, domain.ErrNotGroupMember
	}
	return group, nil
}

// AddMember lets an existing member invite another registered user by email.
func (s *GroupService) AddMember(ctx context.Context, groupID, requesterID, email string) (*domain.Group, error) {
	group, err := s.memberGroup(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if group.HasMember(user.ID) {
		return nil, domain.ErrAlreadyGroupMember
	}

	if err := s.repo.AddMember(ctx, group.ID, user.ID); err != nil {
		return nil, err
	}

	group.Members = append(group.Members, user.ID)
	return group, nil
}

func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]*domain.Group, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Overview compares this week's completion of the group's shared goals across
// members. Members are loaded concurrently; the first failure cancels the rest.
func (s *GroupService) Overview(ctx context.Context, groupID, requesterID string) (*domain.GroupOverview, error) {
	group, err := s.memberGroup(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}

	ref := s.calc.Now()
	loc := s.calc.Location()
	members := make([]domain.MemberStat, len(group.Members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)

	for i, memberID := range group.Members {
		g.Go(func() error {
			stat, err := s.memberStat(gctx, group.ID, memberID, ref, loc)
			if err != nil {
				return fmt.Errorf("member %s: %w", memberID, err)
			}
			members[i] = stat
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := &domain.GroupOverview{
		GroupID: group.ID,
		Name:    group.Name,
		Date:    s.calc.Today().Format(dateLayout),
		Members: members,
	}

	total, n := 0.0, 0
	for _, m := range members {
		if m.ActiveGoals == 0 {
			continue
		}
		total += m.CompletionRate
		n++
	}
	if n > 0 {
		overview.OverallRate = total / float64(n)
	}

	return overview, nil
}

func (s *GroupService) memberStat(ctx context.Context, groupID, userID string, ref time.Time, loc *time.Location) (domain.MemberStat, error) {
	goals, err := s.goalRepo.ListByUserID(ctx, userID)
	if err != nil {
		return domain.MemberStat{}, err
	}

	shared := make([]*domain.Goal, 0, len(goals))
	for _, goal := range goals {
		if goal.GroupID != nil && *goal.GroupID == groupID {
			shared = append(shared, goal)
		}
	}

	stat := domain.MemberStat{UserID: userID, Goals: []domain.GoalWeekStat{}}
	if len(shared) == 0 {
		return stat, nil
	}

	entries, err := s.progressRepo.ListByUserID(ctx, userID)
	if err != nil {
		return domain.MemberStat{}, err
	}

	overview := buildOverview(shared, indexProgress(entries), ref, loc)
	stat.ActiveGoals = overview.ActiveGoals
	stat.CompletionRate = overview.OverallRate
	stat.Goals = overview.Goals
	return stat, nil
}
