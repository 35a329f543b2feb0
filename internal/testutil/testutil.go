// Package testutil holds shared helpers and in-memory fakes for tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/foliocms/folio/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 7310

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// DropSchema removes every folio table plus the goose version table so the
// next migration run starts from scratch.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `DROP TABLE IF EXISTS projects, experiences, tech, users, goose_db_version`)
	if err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", "..")), nil
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================================================
// Test Data Factories
// ============================================================================

// PNG is a minimal PNG header, enough for content sniffing.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// NewTestTechInput returns a valid tech input.
func NewTestTechInput(name string) model.TechInput {
	return model.TechInput{Name: name}
}

// NewTestExperienceInput returns a valid experience input.
func NewTestExperienceInput(company string) model.ExperienceInput {
	return model.ExperienceInput{
		Department: "Engineering",
		Company:    company,
		JobTitles:  []string{"Backend Engineer"},
		TechTags:   []string{"Go", "PostgreSQL"},
		StartDate:  time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

// NewTestProjectInput returns a valid project input.
func NewTestProjectInput(name string) model.ProjectInput {
	return model.ProjectInput{
		Name:          name,
		Description:   "A test project",
		TechTags:      []string{"Go"},
		RepositoryURL: "https://github.com/example/" + name,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
