package users

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/server/models"
)

// Repository is durable storage for user records. Create enforces the
// case-sensitive username uniqueness constraint; AppendNote/RemoveNote
// maintain the owner's note back-references.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	AppendNote(ctx context.Context, userID, noteID string) error
	RemoveNote(ctx context.Context, userID, noteID string) error
}
