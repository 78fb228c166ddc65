package session

import (
	"sync"

	"github.com/squadup/app/internal/attendance"
	"github.com/squadup/app/internal/models"
)

// Detail is the full read model for one session: the row plus fresh
// aggregates. The RSVP list is included so callers can render who answered
// without another round trip.
type Detail struct {
	Session    *models.Session          `json:"session"`
	Attendance attendance.Summary       `json:"attendance"`
	Checkins   attendance.CheckinCounts `json:"checkins"`
	RSVPs      []*models.RSVP           `json:"rsvps"`
}

// Cache holds the latest fetched session details. It replaces ambient
// global state with an explicit object whose single invalidation point is
// "after any successful coordinator action, refresh the affected session".
type Cache struct {
	mu      sync.RWMutex
	details map[int64]*Detail
}

func NewCache() *Cache {
	return &Cache{details: make(map[int64]*Detail)}
}

// Get returns the cached detail for a session, if any.
func (c *Cache) Get(sessionID int64) (*Detail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.details[sessionID]
	return d, ok
}

// Put stores a freshly fetched detail.
func (c *Cache) Put(d *Detail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details[d.Session.ID] = d
}

// Invalidate drops a session's cached detail.
func (c *Cache) Invalidate(sessionID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.details, sessionID)
}
