package session

import (
	"time"

	"github.com/squadup/app/internal/database"
	"github.com/squadup/app/internal/models"
)

// StoredProgress records gamification counters in the progress store.
type StoredProgress struct {
	Store *database.ProgressStore

	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time
}

func (p *StoredProgress) TrackProgress(userID int64, counter string) error {
	bucket := ""
	if counter == models.CounterDailyRSVP {
		now := time.Now
		if p.Now != nil {
			now = p.Now
		}
		bucket = database.DayBucket(now())
	}
	return p.Store.Increment(userID, counter, bucket)
}
