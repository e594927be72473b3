package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrGroupNameEmpty     = errors.New("group name cannot be empty")
	ErrGroupNameTooLong   = errors.New("group name is too long (max 100 chars)")
	ErrAlreadyGroupMember = errors.New("user is already a member of this group")
	ErrNotGroupMember     = errors.New("user is not a member of this group")
)

// Group collects users who share goals and compare weekly progress.
type Group struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Members []string `json:"members" db:"-"`
}

func NewGroup(ownerID, name string) (*Group, error) {
	if ownerID == "" {
		return nil, ErrGoalInvalidUserID
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameEmpty
	}
	if len(name) > MaxTitleLen {
		return nil, ErrGroupNameTooLong
	}

	now := time.Now().UTC()
	return &Group{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
		Members:   []string{ownerID},
	}, nil
}

func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
