package notes

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/users"
)

// MemoryRepository is a map-backed Repository with the same uniqueness
// semantics as the PostgreSQL one. Development and test use only.
//
// Owner summaries are resolved through the users repository the manager
// pairs this with, mirroring the SQL join.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.Note
	byKey map[string]string
	order []string

	users users.Repository
}

func NewMemoryRepository(users users.Repository) *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[string]*models.Note),
		byKey: make(map[string]string),
		users: users,
	}
}

func (r *MemoryRepository) cloneNote(ctx context.Context, n *models.Note) *models.Note {
	c := *n
	c.Comments = slices.Clone(n.Comments)
	if c.Comments == nil {
		c.Comments = []string{}
	}
	if owner, err := r.users.GetByID(ctx, n.UserID); err == nil {
		c.Owner = owner.Summary()
	}
	return &c
}

func (r *MemoryRepository) Insert(ctx context.Context, note *models.Note) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[note.ContentKey]; ok {
		return nil, common.ErrDuplicateContent
	}

	now := time.Now()
	stored := *note
	stored.Comments = slices.Clone(note.Comments)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.byID[stored.ID] = &stored
	r.byKey[stored.ContentKey] = stored.ID
	r.order = append(r.order, stored.ID)

	return r.cloneNote(ctx, &stored), nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.cloneNote(ctx, note), nil
}

// collect walks notes in insertion order, which coincides with creation
// order here, so newest-first is just the reverse walk.
func (r *MemoryRepository) collect(ctx context.Context, keep func(*models.Note) bool, newestFirst bool) []*models.Note {
	result := []*models.Note{}
	for i := range r.order {
		idx := i
		if newestFirst {
			idx = len(r.order) - 1 - i
		}
		note := r.byID[r.order[idx]]
		if keep(note) {
			result = append(result, r.cloneNote(ctx, note))
		}
	}
	return result
}

func (r *MemoryRepository) List(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(ctx, func(n *models.Note) bool {
		return filter.Important == nil || n.Important == *filter.Important
	}, filter.NewestFirst), nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(ctx, func(n *models.Note) bool {
		return n.UserID == userID
	}, true), nil
}

func (r *MemoryRepository) FindByContentKey(ctx context.Context, key, excludeID string) (*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok || id == excludeID {
		return nil, common.ErrorNotFound
	}
	return r.cloneNote(ctx, r.byID[id]), nil
}

func (r *MemoryRepository) Update(ctx context.Context, note *models.Note) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[note.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}

	if existing, ok := r.byKey[note.ContentKey]; ok && existing != note.ID {
		return nil, common.ErrDuplicateContent
	}

	delete(r.byKey, stored.ContentKey)
	stored.Content = note.Content
	stored.ContentKey = note.ContentKey
	stored.Important = note.Important
	stored.UpdatedAt = time.Now()
	r.byKey[stored.ContentKey] = stored.ID

	return r.cloneNote(ctx, stored), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.byID, id)
	delete(r.byKey, note.ContentKey)
	r.order = slices.DeleteFunc(r.order, func(o string) bool { return o == id })
	return true, nil
}

func (r *MemoryRepository) AppendComment(_ context.Context, id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	note.Comments = append(note.Comments, text)
	note.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.byID)), nil
}
