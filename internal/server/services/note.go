// This file implements NoteService, the single source of truth for note
// create/read/update/delete semantics shared by both protocol adapters.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/dbx"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/config"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type NoteService struct {
	db                 *sql.DB
	repomanager        repomanager.RepositoryManager
	storageTimeout     time.Duration
	requireCommentAuth bool
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *NoteService {
	return &NoteService{
		db:                 db,
		repomanager:        m,
		storageTimeout:     cfg.StorageTimeout,
		requireCommentAuth: cfg.RequireCommentAuth,
	}
}

// CreateNote validates content, rejects duplicates and inserts the note
// together with the owner's back-reference. The two writes run in one
// transaction; the duplicate check is ultimately the storage constraint,
// the FindByContentKey probe just produces the friendlier error first.
func (s *NoteService) CreateNote(ctx context.Context, identity auth.Identity, content string, important bool) (*models.Note, error) {
	if identity.Anonymous() {
		return nil, common.ErrorUnauthorized
	}

	trimmed, key, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}

	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	if _, err := s.repomanager.Notes(s.db).FindByContentKey(sctx, key, ""); err == nil {
		return nil, common.ErrDuplicateContent
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, classifyStorage(err)
	}

	note := &models.Note{
		ID:         uuid.NewString(),
		UserID:     identity.UserID,
		Content:    trimmed,
		ContentKey: key,
		Important:  important,
		Comments:   []string{},
	}

	var created *models.Note
	err = withTx(sctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var insErr error
		created, insErr = s.repomanager.Notes(tx).Insert(ctx, note)
		if insErr != nil {
			return insErr
		}
		if appErr := s.repomanager.Users(tx).AppendNote(ctx, identity.UserID, created.ID); appErr != nil {
			return fmt.Errorf("%w: owner note-list append: %v", common.ErrPartialFailure, appErr)
		}
		return nil
	})
	if err != nil {
		return nil, classifyStorage(err)
	}

	return created, nil
}

// ListNotes returns notes enriched with redacted owner summaries. No
// authentication required.
func (s *NoteService) ListNotes(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error) {
	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	list, err := s.repomanager.Notes(s.db).List(sctx, filter)
	if err != nil {
		return nil, classifyStorage(err)
	}
	return list, nil
}

func (s *NoteService) GetNote(ctx context.Context, id string) (*models.Note, error) {
	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	note, err := s.repomanager.Notes(s.db).GetByID(sctx, id)
	if err != nil {
		return nil, classifyStorage(err)
	}
	return note, nil
}

// ListNotesByOwner returns a user's notes, newest first.
func (s *NoteService) ListNotesByOwner(ctx context.Context, userID string) ([]*models.Note, error) {
	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	list, err := s.repomanager.Notes(s.db).ListByOwner(sctx, userID)
	if err != nil {
		return nil, classifyStorage(err)
	}
	return list, nil
}

func (s *NoteService) CountNotes(ctx context.Context) (int64, error) {
	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	n, err := s.repomanager.Notes(s.db).Count(sctx)
	if err != nil {
		return 0, classifyStorage(err)
	}
	return n, nil
}

// loadOwned fetches the note and enforces ownership. Existence is checked
// first: a missing note is NotFound even for a caller who would not own it.
func (s *NoteService) loadOwned(ctx context.Context, identity auth.Identity, id string) (*models.Note, error) {
	if identity.Anonymous() {
		return nil, common.ErrorUnauthorized
	}

	note, err := s.repomanager.Notes(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, classifyStorage(err)
	}

	if note.UserID != identity.UserID {
		return nil, common.ErrForbidden
	}
	return note, nil
}

// UpdateNote applies a partial patch to an owned note. Content changes are
// validated and duplicate-checked exactly like create, excluding the note's
// own id from the scan.
func (s *NoteService) UpdateNote(ctx context.Context, identity auth.Identity, id string, patch models.NotePatch) (*models.Note, error) {
	if patch.Content == nil && patch.Important == nil {
		return nil, fmt.Errorf("%w: nothing to update", common.ErrValidation)
	}

	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	note, err := s.loadOwned(sctx, identity, id)
	if err != nil {
		return nil, err
	}

	if patch.Content != nil {
		trimmed, key, err := normalizeContent(*patch.Content)
		if err != nil {
			return nil, err
		}
		if key != note.ContentKey {
			if _, err := s.repomanager.Notes(s.db).FindByContentKey(sctx, key, id); err == nil {
				return nil, common.ErrDuplicateContent
			} else if !errors.Is(err, common.ErrorNotFound) {
				return nil, classifyStorage(err)
			}
		}
		note.Content = trimmed
		note.ContentKey = key
	}
	if patch.Important != nil {
		note.Important = *patch.Important
	}

	updated, err := s.repomanager.Notes(s.db).Update(sctx, note)
	if err != nil {
		return nil, classifyStorage(err)
	}
	return updated, nil
}

// ToggleImportance flips the importance flag server-side. Equivalent to
// UpdateNote with the inverted flag; kept as its own operation because the
// GraphQL surface exposes it by name.
func (s *NoteService) ToggleImportance(ctx context.Context, identity auth.Identity, id string) (*models.Note, error) {
	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	note, err := s.loadOwned(sctx, identity, id)
	if err != nil {
		return nil, err
	}

	note.Important = !note.Important
	updated, err := s.repomanager.Notes(s.db).Update(sctx, note)
	if err != nil {
		return nil, classifyStorage(err)
	}
	return updated, nil
}

// DeleteNote removes an owned note and its back-reference from the owner's
// note list in one transaction.
func (s *NoteService) DeleteNote(ctx context.Context, identity auth.Identity, id string) error {
	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	note, err := s.loadOwned(sctx, identity, id)
	if err != nil {
		return err
	}

	err = withTx(sctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		deleted, delErr := s.repomanager.Notes(tx).Delete(ctx, id)
		if delErr != nil {
			return delErr
		}
		if !deleted {
			return common.ErrorNotFound
		}
		if remErr := s.repomanager.Users(tx).RemoveNote(ctx, note.UserID, id); remErr != nil {
			return fmt.Errorf("%w: owner note-list removal: %v", common.ErrPartialFailure, remErr)
		}
		return nil
	})
	return classifyStorage(err)
}

// AddComment appends a comment to the note's append-only log. By default no
// ownership or authentication is required; RequireCommentAuth tightens that.
func (s *NoteService) AddComment(ctx context.Context, identity auth.Identity, id, comment string) (*models.Note, error) {
	if s.requireCommentAuth && identity.Anonymous() {
		return nil, common.ErrorUnauthorized
	}

	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: comment must be a non-empty string", common.ErrValidation)
	}
	if utf8.RuneCountInString(trimmed) > maxCommentLen {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", common.ErrValidation, maxCommentLen)
	}

	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	repo := s.repomanager.Notes(s.db)
	if err := repo.AppendComment(sctx, id, trimmed); err != nil {
		return nil, classifyStorage(err)
	}

	note, err := repo.GetByID(sctx, id)
	if err != nil {
		return nil, classifyStorage(err)
	}
	return note, nil
}
