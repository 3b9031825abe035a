package users

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/models"
)

// MemoryRepository is a map-backed Repository with the same constraints as
// the PostgreSQL one. Development and test use only.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byUsername map[string]string
	order      []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*models.User),
		byUsername: make(map[string]string),
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.NoteIDs = slices.Clone(u.NoteIDs)
	return &c
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[user.Username]; ok {
		return nil, common.ErrDuplicateUsername
	}

	now := time.Now()
	stored := cloneUser(user)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.byID[stored.ID] = stored
	r.byUsername[stored.Username] = stored.ID
	r.order = append(r.order, stored.ID)

	return cloneUser(stored), nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, cloneUser(r.byID[id]))
	}
	return result, nil
}

func (r *MemoryRepository) AppendNote(_ context.Context, userID, noteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	user.NoteIDs = append(user.NoteIDs, noteID)
	user.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) RemoveNote(_ context.Context, userID, noteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	user.NoteIDs = slices.DeleteFunc(user.NoteIDs, func(id string) bool { return id == noteID })
	user.UpdatedAt = time.Now()
	return nil
}
