// Package services contains the notehub business logic. Both protocol
// adapters (REST and GraphQL) call into these services and nothing else, so
// validation, authorization and duplicate detection live here exactly once.
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
	"golang.org/x/text/cases"
)

const (
	maxContentLen  = 500
	maxCommentLen  = 300
	minUsernameLen = 3
	minPasswordLen = 6
)

// normalizeContent trims content and derives the case-folded key used by
// the storage uniqueness constraint. A cases.Caser is stateful, so a fresh
// one is used per call.
func normalizeContent(content string) (trimmed, key string, err error) {
	trimmed = strings.TrimSpace(content)
	if trimmed == "" {
		return "", "", fmt.Errorf("%w: content must be a non-empty string", common.ErrValidation)
	}
	if utf8.RuneCountInString(trimmed) > maxContentLen {
		return "", "", fmt.Errorf("%w: content exceeds %d characters", common.ErrValidation, maxContentLen)
	}
	return trimmed, cases.Fold().String(trimmed), nil
}

// storageCtx derives the per-call budget for repository operations.
func storageCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// classifyStorage maps an exhausted storage budget to ErrUnavailable so
// callers can distinguish a retryable outage from a domain failure.
func classifyStorage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return err
}

// withTx runs fn transactionally when a connection exists. The in-memory
// manager has no connection; fn then runs directly against the shared repos.
func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, db, nil, fn)
}
