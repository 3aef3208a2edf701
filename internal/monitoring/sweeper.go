package monitoring

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-app/inkwell-be/internal/storage"
)

// sweepGrace keeps freshly uploaded files alive long enough for the post
// that references them to be created.
const sweepGrace = time.Hour

// Sweeper periodically removes stored image files that no post references.
// Uploads happen before the post is created, so a crashed or abandoned client
// can leave files behind; the sweep is the cleanup for that window.
type Sweeper struct {
	db       *sql.DB
	images   *storage.ImageStore
	schedule cron.Schedule
	nextRun  time.Time
	ticker   *time.Ticker
	done     chan bool
}

// NewSweeper creates a sweeper driven by a standard cron expression.
func NewSweeper(db *sql.DB, images *storage.ImageStore, cronExpression string) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cronExpression)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		db:       db,
		images:   images,
		schedule: schedule,
		nextRun:  schedule.Next(time.Now()),
		done:     make(chan bool),
	}, nil
}

// Run starts the sweeper's ticking loop.
func (s *Sweeper) Run() {
	log.Info().Msg("Starting image sweeper...")
	s.ticker = time.NewTicker(1 * time.Minute)
	defer s.ticker.Stop()

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping image sweeper.")
			return
		case <-s.ticker.C:
			now := time.Now()
			if now.After(s.nextRun) {
				s.sweep(context.Background())
				s.nextRun = s.schedule.Next(now)
			}
		}
	}
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	s.done <- true
}

// sweep removes files in the image directory that no post references and
// that are older than the grace period.
func (s *Sweeper) sweep(ctx context.Context) {
	referenced, err := s.referencedImages(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to load referenced images")
		return
	}

	entries, err := os.ReadDir(s.images.Dir())
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to read image directory")
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil || time.Since(info.ModTime()) < sweepGrace {
			continue
		}
		s.images.Remove(entry.Name())
		removed++
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Sweeper: removed orphaned images")
	}
}

// referencedImages returns the set of file names posts currently point at.
func (s *Sweeper) referencedImages(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT image_url FROM posts WHERE image_url != ''")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referenced := make(map[string]bool)
	for rows.Next() {
		var imageURL string
		if err := rows.Scan(&imageURL); err != nil {
			return nil, err
		}
		referenced[filepath.Base(filepath.FromSlash(imageURL))] = true
	}
	return referenced, rows.Err()
}
