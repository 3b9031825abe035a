// Package notes provides storage for note records: a PostgreSQL repository
// over a dbx.DBTX plus an in-memory implementation for development and tests.
package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/dbx"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const noteColumns = `n.id, n.user_id, n.content, n.content_key, n.important, n.comments,
		 n.created_at, n.updated_at, u.username, u.name`

func scanNote(scan func(dest ...any) error) (*models.Note, error) {
	note := &models.Note{Owner: &models.UserSummary{}}
	var comments []byte

	err := scan(&note.ID, &note.UserID, &note.Content, &note.ContentKey, &note.Important,
		&comments, &note.CreatedAt, &note.UpdatedAt, &note.Owner.Username, &note.Owner.Name)
	if err != nil {
		return nil, err
	}

	note.Owner.ID = note.UserID
	if err := json.Unmarshal(comments, &note.Comments); err != nil {
		return nil, fmt.Errorf("comments decode error: %w", err)
	}
	if note.Comments == nil {
		note.Comments = []string{}
	}

	return note, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, note *models.Note) (*models.Note, error) {

	query :=
		`INSERT INTO notes (id, user_id, content, content_key, important)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		note.ID, note.UserID, note.Content, note.ContentKey, note.Important).
		Scan(&note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateContent
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if note.Comments == nil {
		note.Comments = []string{}
	}
	return note, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + `
		 FROM notes n JOIN users u ON u.id = n.user_id
		 WHERE n.id = $1
		 `
	note, err := scanNote(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

func (r *PostgresRepository) queryNotes(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Note{}
	for rows.Next() {
		note, err := scanNote(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + `
		 FROM notes n JOIN users u ON u.id = n.user_id
		 `
	args := []any{}
	if filter.Important != nil {
		query += ` WHERE n.important = $1`
		args = append(args, *filter.Important)
	}
	if filter.NewestFirst {
		query += ` ORDER BY n.created_at DESC, n.id DESC`
	} else {
		query += ` ORDER BY n.created_at, n.id`
	}
	return r.queryNotes(ctx, query, args...)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + `
		 FROM notes n JOIN users u ON u.id = n.user_id
		 WHERE n.user_id = $1
		 ORDER BY n.created_at DESC, n.id DESC
		 `
	return r.queryNotes(ctx, query, userID)
}

func (r *PostgresRepository) FindByContentKey(ctx context.Context, key, excludeID string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + `
		 FROM notes n JOIN users u ON u.id = n.user_id
		 WHERE n.content_key = $1 AND n.id <> $2
		 `
	note, err := scanNote(r.db.QueryRowContext(ctx, query, key, excludeID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

func (r *PostgresRepository) Update(ctx context.Context, note *models.Note) (*models.Note, error) {
	query :=
		`UPDATE notes SET content = $2, content_key = $3, important = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `
	err := r.db.QueryRowContext(ctx, query,
		note.ID, note.Content, note.ContentKey, note.Important).Scan(&note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateContent
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) AppendComment(ctx context.Context, id, text string) error {
	query :=
		`UPDATE notes SET comments = comments || to_jsonb($2::text), updated_at = now()
		 WHERE id = $1
		 `
	res, err := r.db.ExecContext(ctx, query, id, text)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
