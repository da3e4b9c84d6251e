package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/models"
	"github.com/joshu-sajeev/queuectl/internal/storage/sqlite"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetupTestDB returns a migrated SQLite database in a temp directory.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sqlite.ConnectDB(filepath.Join(t.TempDir(), "test.db"), logger.Silent, discard)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = Migrate(context.Background(), sqlDB, goose.DialectSQLite3, discard)
	require.NoError(t, err)

	return db
}

func seedJob(t *testing.T, db *gorm.DB, id string, state config.JobStatus, attempts int) *models.Job {
	t.Helper()

	job := &models.Job{
		ID:         id,
		Command:    "echo " + id,
		State:      state,
		Attempts:   attempts,
		MaxRetries: 3,
		BaseTime:   2,
		CreatedAt:  time.Now().Add(-time.Minute).Truncate(time.Second),
	}
	require.NoError(t, db.Create(job).Error)
	return job
}
