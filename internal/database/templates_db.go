package database

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/squadup/app/internal/apperr"
	"github.com/squadup/app/internal/models"
)

// TemplateStore persists weekly recurrence templates. Weekday sets are
// stored as a comma-separated string of indices (0 = Monday).
type TemplateStore struct {
	db *sql.DB
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = "id, squad_id, title, game, weekdays, hour, minute, duration_minutes, min_players, max_players, auto_confirm_threshold, is_active, next_occurrence, created_at"

// Create inserts a new template. The caller computes NextOccurrence before
// activation; an inactive template may carry a zero value.
func (s *TemplateStore) Create(t *models.SessionTemplate) (*models.SessionTemplate, error) {
	stmt, err := s.db.Prepare(`
		INSERT INTO session_templates
			(squad_id, title, game, weekdays, hour, minute, duration_minutes, min_players, max_players, auto_confirm_threshold, is_active, next_occurrence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, apperr.Storage("prepare insert template", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		t.SquadID, t.Title, t.Game, encodeWeekdays(t.Weekdays), t.Hour, t.Minute,
		t.DurationMinutes, t.MinPlayers, t.MaxPlayers, t.AutoConfirmThreshold,
		t.IsActive, nullableTime(t.NextOccurrence),
	)
	if err != nil {
		return nil, apperr.Storage("insert template", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.Storage("insert template id", err)
	}
	return s.GetByID(id)
}

// GetByID retrieves a template by id.
func (s *TemplateStore) GetByID(id int64) (*models.SessionTemplate, error) {
	row := s.db.QueryRow("SELECT "+templateColumns+" FROM session_templates WHERE id = ?", id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("select template", err)
	}
	return t, nil
}

// ListDue returns active templates whose cached next occurrence is at or
// before now; these are ready to be materialized into sessions.
func (s *TemplateStore) ListDue(now time.Time) ([]*models.SessionTemplate, error) {
	rows, err := s.db.Query(
		"SELECT "+templateColumns+" FROM session_templates WHERE is_active = 1 AND next_occurrence IS NOT NULL AND next_occurrence <= ?",
		now,
	)
	if err != nil {
		return nil, apperr.Storage("select due templates", err)
	}
	defer rows.Close()

	var templates []*models.SessionTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, apperr.Storage("scan template", err)
		}
		templates = append(templates, t)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Storage("iterate templates", err)
	}
	return templates, nil
}

// SetActive flips the active flag and writes the freshly computed next
// occurrence alongside it.
func (s *TemplateStore) SetActive(id int64, active bool, nextOccurrence time.Time) error {
	res, err := s.db.Exec(
		"UPDATE session_templates SET is_active = ?, next_occurrence = ? WHERE id = ?",
		active, nullableTime(nextOccurrence), id,
	)
	if err != nil {
		return apperr.Storage("update template active", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("update template active rows", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetNextOccurrence refreshes the cached next occurrence after a
// materialization.
func (s *TemplateStore) SetNextOccurrence(id int64, next time.Time) error {
	res, err := s.db.Exec("UPDATE session_templates SET next_occurrence = ? WHERE id = ?", next, id)
	if err != nil {
		return apperr.Storage("update template next occurrence", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("update template next occurrence rows", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func scanTemplate(row rowScanner) (*models.SessionTemplate, error) {
	t := &models.SessionTemplate{}
	var weekdays string
	var next sql.NullTime
	err := row.Scan(
		&t.ID, &t.SquadID, &t.Title, &t.Game, &weekdays, &t.Hour, &t.Minute,
		&t.DurationMinutes, &t.MinPlayers, &t.MaxPlayers, &t.AutoConfirmThreshold,
		&t.IsActive, &next, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Weekdays = decodeWeekdays(weekdays)
	if next.Valid {
		t.NextOccurrence = next.Time
	}
	return t, nil
}

func encodeWeekdays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	return days
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
