// Package attendance reduces response sets into the counts that drive
// session state transitions.
package attendance

import "github.com/squadup/app/internal/models"

// Counts tallies RSVPs by answer.
type Counts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Maybe   int `json:"maybe"`
}

// Total is the number of distinct members who have answered.
func (c Counts) Total() int {
	return c.Present + c.Absent + c.Maybe
}

// Summary is the aggregate view of one session's RSVPs: counts per answer
// plus the requesting member's own current answer ("" if unanswered).
type Summary struct {
	Counts Counts `json:"counts"`
	Mine   string `json:"mine,omitempty"`
}

// Summarize reduces one session's RSVPs. Pure and safe to run concurrently
// for different sessions. requestingUserID picks out the caller's own
// answer; pass 0 when there is none to extract.
func Summarize(rsvps []*models.RSVP, requestingUserID int64) Summary {
	var s Summary
	for _, r := range rsvps {
		switch r.Response {
		case models.RSVPPresent:
			s.Counts.Present++
		case models.RSVPAbsent:
			s.Counts.Absent++
		case models.RSVPMaybe:
			s.Counts.Maybe++
		}
		if r.UserID == requestingUserID {
			s.Mine = r.Response
		}
	}
	return s
}

// SummarizeAll groups a cross-session batch by session id and applies the
// same single-session reduction, so list views and detail views share one
// counting path.
func SummarizeAll(rsvps []*models.RSVP, requestingUserID int64) map[int64]Summary {
	bySession := make(map[int64][]*models.RSVP)
	for _, r := range rsvps {
		bySession[r.SessionID] = append(bySession[r.SessionID], r)
	}

	summaries := make(map[int64]Summary, len(bySession))
	for id, group := range bySession {
		summaries[id] = Summarize(group, requestingUserID)
	}
	return summaries
}

// CheckinCounts tallies check-ins by outcome.
type CheckinCounts struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	Noshow  int `json:"noshow"`
}

// SummarizeCheckins reduces one session's check-ins.
func SummarizeCheckins(checkins []*models.Checkin) CheckinCounts {
	var c CheckinCounts
	for _, ch := range checkins {
		switch ch.Status {
		case models.CheckinPresent:
			c.Present++
		case models.CheckinLate:
			c.Late++
		case models.CheckinNoshow:
			c.Noshow++
		}
	}
	return c
}
