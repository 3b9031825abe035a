package notes

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/server/models"
)

// Repository is durable storage for notes. Insert and Update are backed by a
// storage-level uniqueness constraint on the case-folded content key; two
// concurrent writers of the same content cannot both succeed.
// FindByContentKey is the friendly-error fast path in front of that
// constraint, excluding excludeID from the scan when non-empty.
type Repository interface {
	Insert(ctx context.Context, note *models.Note) (*models.Note, error)
	GetByID(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Note, error)
	FindByContentKey(ctx context.Context, key, excludeID string) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) (*models.Note, error)
	Delete(ctx context.Context, id string) (bool, error)
	AppendComment(ctx context.Context, id, text string) error
	Count(ctx context.Context) (int64, error)
}
