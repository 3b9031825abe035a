package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/dbx"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/config"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	notesrepo "github.com/dmitrijs2005/notehub/internal/server/repositories/notes"
	usersrepo "github.com/dmitrijs2005/notehub/internal/server/repositories/users"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeNotesRepo struct {
	insertErr error

	getOut *models.Note
	getErr error

	listOut []*models.Note
	listErr error

	findOut    *models.Note
	findErr    error
	findCalled bool
	findKey    string

	updateOut *models.Note
	updateErr error

	deleted   bool
	deleteErr error

	appendErr error
	comments  []string

	count    int64
	countErr error
}

func (f *fakeNotesRepo) Insert(ctx context.Context, n *models.Note) (*models.Note, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return n, nil
}

func (f *fakeNotesRepo) GetByID(ctx context.Context, id string) (*models.Note, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeNotesRepo) List(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error) {
	return f.listOut, f.listErr
}

func (f *fakeNotesRepo) ListByOwner(ctx context.Context, userID string) ([]*models.Note, error) {
	return f.listOut, f.listErr
}

func (f *fakeNotesRepo) FindByContentKey(ctx context.Context, key, excludeID string) (*models.Note, error) {
	f.findCalled = true
	f.findKey = key
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeNotesRepo) Update(ctx context.Context, n *models.Note) (*models.Note, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateOut != nil {
		return f.updateOut, nil
	}
	return n, nil
}

func (f *fakeNotesRepo) Delete(ctx context.Context, id string) (bool, error) {
	return f.deleted, f.deleteErr
}

func (f *fakeNotesRepo) AppendComment(ctx context.Context, id, text string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.comments = append(f.comments, text)
	return nil
}

func (f *fakeNotesRepo) Count(ctx context.Context) (int64, error) {
	return f.count, f.countErr
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	listOut []*models.User
	listErr error

	appendErr error
	appended  []string

	removeErr error
	removed   []string
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	return f.listOut, f.listErr
}

func (f *fakeUsersRepo) AppendNote(ctx context.Context, userID, noteID string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, noteID)
	return nil
}

func (f *fakeUsersRepo) RemoveNote(ctx context.Context, userID, noteID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, noteID)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	n *fakeNotesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository         { return m.u }
func (m *fakeRepoManager) Notes(dbx.DBTX) notesrepo.Repository         { return m.n }

func newNoteService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *NoteService {
	t.Helper()
	cfg := &config.Config{StorageTimeout: time.Second}
	return NewNoteService(db, rm, cfg)
}

var owner = auth.Identity{UserID: "u1", Username: "alice"}

// --- CreateNote ---

func TestCreateNote_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{},
		n: &fakeNotesRepo{findErr: common.ErrorNotFound},
	}
	s := newNoteService(t, db, rm)

	note, err := s.CreateNote(context.Background(), owner, "  Hello world  ", true)
	if err != nil {
		t.Fatalf("CreateNote error: %v", err)
	}
	if note.Content != "Hello world" {
		t.Fatalf("content not trimmed: %q", note.Content)
	}
	if note.ContentKey != "hello world" {
		t.Fatalf("content key not folded: %q", note.ContentKey)
	}
	if !note.Important || note.UserID != "u1" || note.ID == "" {
		t.Fatalf("unexpected note: %+v", note)
	}
	if len(rm.u.appended) != 1 || rm.u.appended[0] != note.ID {
		t.Fatalf("owner back-reference not written: %v", rm.u.appended)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreateNote_Anonymous(t *testing.T) {
	s := newNoteService(t, nil, &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{}})

	_, err := s.CreateNote(context.Background(), auth.Identity{}, "hi", false)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestCreateNote_ContentBounds(t *testing.T) {
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{findErr: common.ErrorNotFound}}
	s := newNoteService(t, nil, rm)

	if _, err := s.CreateNote(context.Background(), owner, "   ", false); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("whitespace-only: want ErrValidation, got %v", err)
	}
	if _, err := s.CreateNote(context.Background(), owner, strings.Repeat("a", 501), false); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("501 chars: want ErrValidation, got %v", err)
	}

	note, err := s.CreateNote(context.Background(), owner, strings.Repeat("a", 500), false)
	if err != nil {
		t.Fatalf("500 chars should be accepted: %v", err)
	}
	if len(note.Content) != 500 {
		t.Fatalf("content length %d", len(note.Content))
	}
}

func TestCreateNote_DuplicateCaseFolded(t *testing.T) {
	existing := &models.Note{ID: "n1", Content: "dup", ContentKey: "dup"}
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{findOut: existing}}
	s := newNoteService(t, nil, rm)

	_, err := s.CreateNote(context.Background(), owner, "Dup", false)
	if !errors.Is(err, common.ErrDuplicateContent) {
		t.Fatalf("want ErrDuplicateContent, got %v", err)
	}
	if rm.n.findKey != "dup" {
		t.Fatalf("probe used key %q, want folded %q", rm.n.findKey, "dup")
	}
	if len(rm.u.appended) != 0 {
		t.Fatalf("no back-reference expected on duplicate")
	}
}

func TestCreateNote_PartialFailure(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{appendErr: errBoom{}},
		n: &fakeNotesRepo{findErr: common.ErrorNotFound},
	}
	s := newNoteService(t, db, rm)

	_, err := s.CreateNote(context.Background(), owner, "orphan risk", false)
	if !errors.Is(err, common.ErrPartialFailure) {
		t.Fatalf("want ErrPartialFailure, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

// --- UpdateNote / ToggleImportance ---

func TestUpdateNote_NothingToUpdate(t *testing.T) {
	s := newNoteService(t, nil, &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{}})

	_, err := s.UpdateNote(context.Background(), owner, "n1", models.NotePatch{})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestUpdateNote_MissingBeatsForbidden(t *testing.T) {
	// A note that does not exist is NotFound even for a caller who could
	// never have owned it.
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{getErr: common.ErrorNotFound}}
	s := newNoteService(t, nil, rm)

	flag := true
	_, err := s.UpdateNote(context.Background(), auth.Identity{UserID: "intruder"}, "ghost", models.NotePatch{Important: &flag})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestUpdateNote_Forbidden(t *testing.T) {
	theirs := &models.Note{ID: "n1", UserID: "u2", Content: "x", ContentKey: "x"}
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{getOut: theirs}}
	s := newNoteService(t, nil, rm)

	flag := false
	_, err := s.UpdateNote(context.Background(), owner, "n1", models.NotePatch{Important: &flag})
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestUpdateNote_SameKeySkipsDuplicateProbe(t *testing.T) {
	mine := &models.Note{ID: "n1", UserID: "u1", Content: "hello", ContentKey: "hello"}
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{getOut: mine}}
	s := newNoteService(t, nil, rm)

	content := "HELLO"
	updated, err := s.UpdateNote(context.Background(), owner, "n1", models.NotePatch{Content: &content})
	if err != nil {
		t.Fatalf("UpdateNote error: %v", err)
	}
	if rm.n.findCalled {
		t.Fatalf("duplicate probe should be skipped when the folded key is unchanged")
	}
	if updated.Content != "HELLO" || updated.ContentKey != "hello" {
		t.Fatalf("unexpected update: %+v", updated)
	}
}

func TestUpdateNote_DuplicateContent(t *testing.T) {
	mine := &models.Note{ID: "n1", UserID: "u1", Content: "old", ContentKey: "old"}
	other := &models.Note{ID: "n2", UserID: "u2", Content: "taken", ContentKey: "taken"}
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{getOut: mine, findOut: other}}
	s := newNoteService(t, nil, rm)

	content := "Taken"
	_, err := s.UpdateNote(context.Background(), owner, "n1", models.NotePatch{Content: &content})
	if !errors.Is(err, common.ErrDuplicateContent) {
		t.Fatalf("want ErrDuplicateContent, got %v", err)
	}
}

func TestToggleImportance(t *testing.T) {
	mine := &models.Note{ID: "n1", UserID: "u1", Content: "x", ContentKey: "x", Important: false}
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{getOut: mine}}
	s := newNoteService(t, nil, rm)

	updated, err := s.ToggleImportance(context.Background(), owner, "n1")
	if err != nil {
		t.Fatalf("ToggleImportance error: %v", err)
	}
	if !updated.Important {
		t.Fatalf("flag not flipped: %+v", updated)
	}
}

// --- DeleteNote ---

func TestDeleteNote_RemovesBackReference(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	mine := &models.Note{ID: "n1", UserID: "u1", Content: "x", ContentKey: "x"}
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{getOut: mine, deleted: true}}
	s := newNoteService(t, db, rm)

	if err := s.DeleteNote(context.Background(), owner, "n1"); err != nil {
		t.Fatalf("DeleteNote error: %v", err)
	}
	if len(rm.u.removed) != 1 || rm.u.removed[0] != "n1" {
		t.Fatalf("back-reference not removed: %v", rm.u.removed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDeleteNote_PartialFailure(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	mine := &models.Note{ID: "n1", UserID: "u1", Content: "x", ContentKey: "x"}
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{removeErr: errBoom{}},
		n: &fakeNotesRepo{getOut: mine, deleted: true},
	}
	s := newNoteService(t, db, rm)

	err := s.DeleteNote(context.Background(), owner, "n1")
	if !errors.Is(err, common.ErrPartialFailure) {
		t.Fatalf("want ErrPartialFailure, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDeleteNote_Forbidden(t *testing.T) {
	theirs := &models.Note{ID: "n1", UserID: "u2", Content: "x", ContentKey: "x"}
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{getOut: theirs}}
	s := newNoteService(t, nil, rm)

	if err := s.DeleteNote(context.Background(), owner, "n1"); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

// --- AddComment ---

func TestAddComment_Flows(t *testing.T) {
	note := &models.Note{ID: "n1", UserID: "u2", Content: "x", ContentKey: "x"}
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{getOut: note}}
	s := newNoteService(t, nil, rm)

	// anonymous callers may comment by default, ownership never checked
	if _, err := s.AddComment(context.Background(), auth.Identity{}, "n1", "  nice  "); err != nil {
		t.Fatalf("AddComment error: %v", err)
	}
	if _, err := s.AddComment(context.Background(), owner, "n1", "second"); err != nil {
		t.Fatalf("AddComment error: %v", err)
	}
	if len(rm.n.comments) != 2 || rm.n.comments[0] != "nice" {
		t.Fatalf("comments not appended in order: %v", rm.n.comments)
	}

	if _, err := s.AddComment(context.Background(), owner, "n1", "   "); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("empty comment: want ErrValidation, got %v", err)
	}
	if _, err := s.AddComment(context.Background(), owner, "n1", strings.Repeat("c", 301)); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("301 chars: want ErrValidation, got %v", err)
	}
}

func TestAddComment_AuthRequired(t *testing.T) {
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{getOut: &models.Note{ID: "n1"}}}
	cfg := &config.Config{StorageTimeout: time.Second, RequireCommentAuth: true}
	s := NewNoteService(nil, rm, cfg)

	if _, err := s.AddComment(context.Background(), auth.Identity{}, "n1", "hi"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
	if _, err := s.AddComment(context.Background(), owner, "n1", "hi"); err != nil {
		t.Fatalf("authenticated comment rejected: %v", err)
	}
}

// --- storage classification ---

func TestGetNote_TimeoutClassifiedUnavailable(t *testing.T) {
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, n: &fakeNotesRepo{getErr: context.DeadlineExceeded}}
	s := newNoteService(t, nil, rm)

	_, err := s.GetNote(context.Background(), "n1")
	if !errors.Is(err, common.ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}
