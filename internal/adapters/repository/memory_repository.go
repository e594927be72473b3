package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

// The in-memory repositories back STORAGE=memory and the end-to-end tests.
// They store copies so callers cannot mutate state without going through
// Update, which keeps the optimistic version checks meaningful.

type InMemoryGoalRepository struct {
	store map[string]domain.Goal

	mu sync.RWMutex
}

func NewInMemoryGoalRepository() *InMemoryGoalRepository {
	return &InMemoryGoalRepository{
		store: make(map[string]domain.Goal),
	}
}

func (r *InMemoryGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	goal.Version = 1
	r.store[goal.ID] = *goal
	return nil
}

func (r *InMemoryGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.store[id]
	if !ok || g.DeletedAt != nil {
		return nil, domain.ErrGoalNotFound
	}
	return &g, nil
}

func (r *InMemoryGoalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goals := []*domain.Goal{}
	for _, g := range r.store {
		if g.UserID == userID && g.DeletedAt == nil {
			goals = append(goals, &g)
		}
	}

	sort.Slice(goals, func(i, j int) bool {
		if goals[i].SortOrder != goals[j].SortOrder {
			return goals[i].SortOrder < goals[j].SortOrder
		}
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})

	return goals, nil
}

func (r *InMemoryGoalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[goal.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrGoalNotFound
	}
	if stored.Version != goal.Version {
		return domain.ErrGoalConflict
	}

	goal.Version++
	goal.UpdatedAt = time.Now().UTC()
	r.store[goal.ID] = *goal
	return nil
}

func (r *InMemoryGoalRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.store[id]
	if !ok || g.DeletedAt != nil {
		return domain.ErrGoalNotFound
	}

	now := time.Now().UTC()
	g.DeletedAt = &now
	g.UpdatedAt = now
	g.Version++
	r.store[id] = g
	return nil
}

func (r *InMemoryGoalRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goals := []*domain.Goal{}
	for _, g := range r.store {
		if g.UserID == userID && g.UpdatedAt.After(since) {
			goals = append(goals, &g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].UpdatedAt.Before(goals[j].UpdatedAt) })
	return goals, nil
}

func (r *InMemoryGoalRepository) ListDueForCompletion(ctx context.Context, asOf time.Time) ([]*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := asOf.Format(time.DateOnly)
	goals := []*domain.Goal{}
	for _, g := range r.store {
		if g.DeletedAt != nil || g.CompletedAt != nil || g.EndDate == nil {
			continue
		}
		if g.EndDate.Format(time.DateOnly) <= day {
			goals = append(goals, &g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].EndDate.Before(*goals[j].EndDate) })
	return goals, nil
}

type InMemoryProgressRepository struct {
	store map[string]domain.WeeklyProgress

	mu sync.RWMutex
}

func NewInMemoryProgressRepository() *InMemoryProgressRepository {
	return &InMemoryProgressRepository{
		store: make(map[string]domain.WeeklyProgress),
	}
}

func (r *InMemoryProgressRepository) Create(ctx context.Context, p *domain.WeeklyProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.store {
		if existing.GoalID == p.GoalID && existing.WeekIndex == p.WeekIndex && existing.DeletedAt == nil {
			return domain.ErrProgressConflict
		}
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.store[p.ID] = *p
	return nil
}

func (r *InMemoryProgressRepository) Update(ctx context.Context, p *domain.WeeklyProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[p.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrProgressNotFound
	}
	if stored.Version != p.Version {
		return domain.ErrProgressConflict
	}

	p.Version++
	p.UpdatedAt = time.Now().UTC()
	r.store[p.ID] = *p
	return nil
}

func (r *InMemoryProgressRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store[id]
	if !ok || p.DeletedAt != nil || p.UserID != userID {
		return domain.ErrProgressNotFound
	}

	now := time.Now().UTC()
	p.DeletedAt = &now
	p.UpdatedAt = now
	p.Version++
	r.store[id] = p
	return nil
}

func (r *InMemoryProgressRepository) GetByID(ctx context.Context, id string) (*domain.WeeklyProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.store[id]
	if !ok || p.DeletedAt != nil {
		return nil, domain.ErrProgressNotFound
	}
	return &p, nil
}

func (r *InMemoryProgressRepository) GetByGoalAndWeek(ctx context.Context, goalID string, week int) (*domain.WeeklyProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.store {
		if p.GoalID == goalID && p.WeekIndex == week && p.DeletedAt == nil {
			return &p, nil
		}
	}
	return nil, domain.ErrProgressNotFound
}

func (r *InMemoryProgressRepository) filter(keep func(p domain.WeeklyProgress) bool) []*domain.WeeklyProgress {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*domain.WeeklyProgress{}
	for _, p := range r.store {
		if keep(p) {
			entries = append(entries, &p)
		}
	}
	return entries
}

func (r *InMemoryProgressRepository) ListByGoalID(ctx context.Context, goalID string) ([]*domain.WeeklyProgress, error) {
	entries := r.filter(func(p domain.WeeklyProgress) bool {
		return p.GoalID == goalID && p.DeletedAt == nil
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].WeekIndex < entries[j].WeekIndex })
	return entries, nil
}

func (r *InMemoryProgressRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.WeeklyProgress, error) {
	entries := r.filter(func(p domain.WeeklyProgress) bool {
		return p.UserID == userID && p.DeletedAt == nil
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].GoalID != entries[j].GoalID {
			return entries[i].GoalID < entries[j].GoalID
		}
		return entries[i].WeekIndex < entries[j].WeekIndex
	})
	return entries, nil
}

func (r *InMemoryProgressRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.WeeklyProgress, error) {
	entries := r.filter(func(p domain.WeeklyProgress) bool {
		return p.UserID == userID && p.UpdatedAt.After(since)
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].UpdatedAt.Before(entries[j].UpdatedAt) })
	return entries, nil
}

type InMemoryUserRepository struct {
	byID    map[string]domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return domain.ErrEmailAlreadyExists
	}
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

type InMemoryGroupRepository struct {
	store map[string]domain.Group

	mu sync.RWMutex
}

func NewInMemoryGroupRepository() *InMemoryGroupRepository {
	return &InMemoryGroupRepository{
		store: make(map[string]domain.Group),
	}
}

func cloneGroup(g domain.Group) *domain.Group {
	g.Members = append([]string(nil), g.Members...)
	return &g
}

func (r *InMemoryGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[group.ID] = *cloneGroup(*group)
	return nil
}

func (r *InMemoryGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.store[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	return cloneGroup(g), nil
}

func (r *InMemoryGroupRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := []*domain.Group{}
	for _, g := range r.store {
		if g.HasMember(userID) {
			groups = append(groups, cloneGroup(g))
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].CreatedAt.Before(groups[j].CreatedAt) })
	return groups, nil
}

func (r *InMemoryGroupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.store[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	if g.HasMember(userID) {
		return domain.ErrAlreadyGroupMember
	}

	g.Members = append(append([]string(nil), g.Members...), userID)
	r.store[groupID] = g
	return nil
}
