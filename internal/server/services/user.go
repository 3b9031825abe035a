// This file implements UserService: registration, login, and user lookups.
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
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/config"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the stored hashes were minted with.
const bcryptCost = 10

// LoginResult is what a successful login hands back to either adapter.
type LoginResult struct {
	Token    string
	UserID   string
	Username string
	Name     string
}

// UserService provides account operations:
//   - Register: create users with a one-way password hash
//   - Login: verify credentials and mint a bearer token
//   - Me / ListUsers: redacted lookups for the read surfaces
type UserService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	jwtSecret      []byte
	tokenValidity  time.Duration
	storageTimeout time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:             db,
		repomanager:    m,
		jwtSecret:      []byte(cfg.SecretKey),
		tokenValidity:  cfg.TokenValidityDuration,
		storageTimeout: cfg.StorageTimeout,
	}
}

// Register creates a new user. The username must be at least 3 characters
// after trimming and unique (case-sensitive); the password at least 6
// characters. The raw password is hashed immediately and never retained.
func (s *UserService) Register(ctx context.Context, username, name, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) < minUsernameLen {
		return nil, fmt.Errorf("%w: username must be at least %d characters", common.ErrValidation, minUsernameLen)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		NoteIDs:      []string{},
	}

	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	created, err := s.repomanager.Users(s.db).Create(sctx, user)
	if err != nil {
		return nil, classifyStorage(err)
	}
	return created, nil
}

// Login verifies the credentials and mints a token. An unknown username and
// a wrong password fail identically, so callers cannot enumerate accounts.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetByUsername(sctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, classifyStorage(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &LoginResult{Token: token, UserID: user.ID, Username: user.Username, Name: user.Name}, nil
}

// Me resolves the acting identity to its user record, or nil for anonymous
// callers (and for tokens whose user no longer resolves).
func (s *UserService) Me(ctx context.Context, identity auth.Identity) (*models.User, error) {
	if identity.Anonymous() {
		return nil, nil
	}

	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetByID(sctx, identity.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, classifyStorage(err)
	}
	return user, nil
}

// ListUsers returns all users. Credential fields are excluded by the
// adapters' serialization, never sent to them in summary form.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	sctx, cancel := storageCtx(ctx, s.storageTimeout)
	defer cancel()

	list, err := s.repomanager.Users(s.db).List(sctx)
	if err != nil {
		return nil, classifyStorage(err)
	}
	return list, nil
}
