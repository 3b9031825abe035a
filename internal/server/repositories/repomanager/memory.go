package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/notehub/internal/dbx"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/users"
)

// MemoryRepositoryManager holds one shared pair of in-memory repositories
// and hands them out regardless of the DBTX argument (there is no
// connection; services run without transactions against it).
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
	notes *notes.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	u := users.NewMemoryRepository()
	return &MemoryRepositoryManager{
		users: u,
		notes: notes.NewMemoryRepository(u),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Notes(dbx.DBTX) notes.Repository { return m.notes }
