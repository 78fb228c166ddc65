package database

import (
	"database/sql"
	"time"

	"github.com/squadup/app/internal/apperr"
)

// ProgressStore persists gamification counters. Daily counters get a
// per-day bucket so each calendar day tallies separately; lifetime counters
// use an empty bucket.
type ProgressStore struct {
	db *sql.DB
}

func NewProgressStore(db *sql.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// Increment bumps a counter by one, creating the row on first use.
func (s *ProgressStore) Increment(userID int64, counter, dayBucket string) error {
	_, err := s.db.Exec(`
		INSERT INTO progress_counters (user_id, counter, day_bucket, count, updated_at)
		VALUES (?, ?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, counter, day_bucket) DO UPDATE SET
			count = count + 1,
			updated_at = CURRENT_TIMESTAMP
	`, userID, counter, dayBucket)
	if err != nil {
		return apperr.Storage("increment progress counter", err)
	}
	return nil
}

// Get returns the current count for a counter, zero if never incremented.
func (s *ProgressStore) Get(userID int64, counter, dayBucket string) (int64, error) {
	var count int64
	row := s.db.QueryRow(
		"SELECT count FROM progress_counters WHERE user_id = ? AND counter = ? AND day_bucket = ?",
		userID, counter, dayBucket,
	)
	err := row.Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.Storage("select progress counter", err)
	}
	return count, nil
}

// DayBucket formats the day key used by daily counters.
func DayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
