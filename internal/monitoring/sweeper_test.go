package monitoring

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-app/inkwell-be/internal/database"
	"github.com/inkwell-app/inkwell-be/internal/storage"
)

func seedPost(t *testing.T, db *sql.DB, imageURL string) {
	t.Helper()
	now := time.Now().UTC()
	_, err := db.Exec("INSERT OR IGNORE INTO users (id, email, password_hash, name, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		"author", "author@example.com", "hash", "Author", "I am new!", now)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO posts (id, title, content, image_url, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		imageURL, "A fine title", "Long enough content", imageURL, "author", now, now)
	require.NoError(t, err)
}

func writeImage(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("image"), 0644))
	if age > 0 {
		stamp := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(path, stamp, stamp))
	}
	return path
}

func TestSweepRemovesOnlyOrphanedImages(t *testing.T) {
	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	store := storage.NewImageStore(dir)

	referenced := writeImage(t, dir, "referenced.png", 3*time.Hour)
	orphaned := writeImage(t, dir, "orphaned.png", 3*time.Hour)
	fresh := writeImage(t, dir, "fresh.png", 0)

	seedPost(t, db, "images/referenced.png")

	sweeper, err := NewSweeper(db, store, "@hourly")
	require.NoError(t, err)
	sweeper.sweep(context.Background())

	_, err = os.Stat(referenced)
	assert.NoError(t, err, "referenced image must survive")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "files inside the grace period must survive")
	_, err = os.Stat(orphaned)
	assert.True(t, os.IsNotExist(err), "orphaned image must be removed")
}

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper(nil, storage.NewImageStore(t.TempDir()), "not a cron expression")
	assert.Error(t, err)
}
