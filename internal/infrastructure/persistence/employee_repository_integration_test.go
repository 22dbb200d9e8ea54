//go:build integration

package persistence

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/etiqueta/backend/internal/domain/employee"
	"github.com/etiqueta/backend/internal/domain/shared"
	"github.com/etiqueta/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func migrationsPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// newPostgresTestDB starts a throwaway PostgreSQL container and applies migrations/
func newPostgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("etiqueta_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	m, err := migration.New(sqlDB, migrationsPath(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	return db
}

func TestGormEmployeeRepository_Postgres(t *testing.T) {
	db := newPostgresTestDB(t)
	repo := NewGormEmployeeRepository(db)
	ctx := context.Background()

	e, err := employee.New("E100", "Maria Souza", "11 98888-7777")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, e))

	t.Run("finds by trimmed exact code", func(t *testing.T) {
		found, err := repo.FindActiveByCode(ctx, "  E100 ")
		require.NoError(t, err)
		assert.Equal(t, e.ID, found.ID)
		assert.Equal(t, "Maria Souza", found.Name)
	})

	t.Run("is case-sensitive", func(t *testing.T) {
		_, err := repo.FindActiveByCode(ctx, "e100")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("update keeps identity", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "E100")
		require.NoError(t, err)
		require.NoError(t, found.UpdateContact("Maria S.", "11 90000-0000"))
		require.NoError(t, repo.Save(ctx, found))

		again, err := repo.FindActiveByCode(ctx, "E100")
		require.NoError(t, err)
		assert.Equal(t, e.ID, again.ID)
		assert.Equal(t, "11 90000-0000", again.Phone)
	})

	t.Run("unique code", func(t *testing.T) {
		dup, err := employee.New("E100", "Other", "")
		require.NoError(t, err)
		assert.Error(t, repo.Save(ctx, dup))
	})

	t.Run("inactive hidden from lookup", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "E100")
		require.NoError(t, err)
		found.Deactivate()
		require.NoError(t, repo.Save(ctx, found))

		_, err = repo.FindActiveByCode(ctx, "E100")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
