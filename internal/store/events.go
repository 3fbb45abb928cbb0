package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

const eventCols = `event_id, user_id, name, reminder_enabled,
	cycle_count, cycle_unit, last_done_at, next_due_at, share_count, is_active`

func scanEvent(row rowScanner) (*domain.Event, error) {
	var (
		e            domain.Event
		reminderInt  int
		activeInt    int
		cycleCount   sql.NullInt64
		cycleUnit    sql.NullString
		lastDoneUnix int64
		nextDueNS    sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Name, &reminderInt,
		&cycleCount, &cycleUnit, &lastDoneUnix, &nextDueNS, &e.ShareCount, &activeInt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.ReminderEnabled = reminderInt != 0
	e.IsActive = activeInt != 0
	e.Cycle = fromCycleCols(cycleCount, cycleUnit)
	e.LastDoneAt = time.Unix(lastDoneUnix, 0).UTC()
	e.NextDueAt = fromNullInt64(nextDueNS)
	return &e, nil
}

func (r *SQLiteRepo) queryEvents(ctx context.Context, q string, args ...any) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *e)
	}
	return res, rows.Err()
}

// AddEvent inserts a new event row.
func (r *SQLiteRepo) AddEvent(ctx context.Context, e *domain.Event) error {
	if e == nil {
		return errors.New("nil event")
	}
	cycleCount, cycleUnit := toCycleCols(e.Cycle)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (
			event_id, user_id, name, reminder_enabled,
			cycle_count, cycle_unit, last_done_at, next_due_at,
			share_count, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Name, boolToInt(e.ReminderEnabled),
		cycleCount, cycleUnit, e.LastDoneAt.UTC().Unix(), toNullInt64(e.NextDueAt),
		e.ShareCount, boolToInt(e.IsActive),
	)
	return err
}

// GetEvent returns an event by id, or ErrNotFound.
func (r *SQLiteRepo) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventCols+` FROM events WHERE event_id = ?`, eventID)
	return scanEvent(row)
}

// GetEventByName returns the event with the given name owned by the user,
// or ErrNotFound.
func (r *SQLiteRepo) GetEventByName(ctx context.Context, userID, name string) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventCols+` FROM events WHERE user_id = ? AND name = ?`,
		userID, name)
	return scanEvent(row)
}

// EventNameTaken reports whether the user already owns an event with the name.
func (r *SQLiteRepo) EventNameTaken(ctx context.Context, userID, name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM events WHERE user_id = ? AND name = ? LIMIT 1`,
		userID, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ListEventsByUser returns all events owned by the user.
func (r *SQLiteRepo) ListEventsByUser(ctx context.Context, userID string) ([]domain.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventCols+` FROM events WHERE user_id = ? ORDER BY name`, userID)
}

// ListOverdueEventsByUser returns the user's reminder-enabled events whose
// due date has passed.
func (r *SQLiteRepo) ListOverdueEventsByUser(ctx context.Context, userID string, now time.Time) ([]domain.Event, error) {
	return r.queryEvents(ctx, `
		SELECT `+eventCols+`
		FROM events
		WHERE user_id = ?
		  AND is_active = 1
		  AND reminder_enabled = 1
		  AND next_due_at IS NOT NULL
		  AND next_due_at <= ?`,
		userID, now.UTC().Unix())
}

// SetEventName renames an event.
func (r *SQLiteRepo) SetEventName(ctx context.Context, eventID, name string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET name = ? WHERE event_id = ?`, name, eventID)
	return err
}

// SetEventReminder toggles the reminder flag and sets the due date that goes
// with it (nil when turning reminders off).
func (r *SQLiteRepo) SetEventReminder(ctx context.Context, eventID string, enabled bool, nextDue *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET reminder_enabled = ?, next_due_at = ? WHERE event_id = ?`,
		boolToInt(enabled), toNullInt64(nextDue), eventID)
	return err
}

// SetEventCycle updates the recurrence cycle together with the recomputed
// due date.
func (r *SQLiteRepo) SetEventCycle(ctx context.Context, eventID string, c domain.Cycle, nextDue time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET cycle_count = ?, cycle_unit = ?, next_due_at = ?
		WHERE event_id = ?`,
		c.Count, string(c.Unit), nextDue.UTC().Unix(), eventID)
	return err
}

// SetEventLastDone advances the last-done date and the due date derived from
// it in one statement so the two never diverge.
func (r *SQLiteRepo) SetEventLastDone(ctx context.Context, eventID string, lastDone time.Time, nextDue *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET last_done_at = ?, next_due_at = ? WHERE event_id = ?`,
		lastDone.UTC().Unix(), toNullInt64(nextDue), eventID)
	return err
}

// SetEventsActiveByUser flips the active flag on all of a user's events,
// used when the user blocks or unblocks the bot.
func (r *SQLiteRepo) SetEventsActiveByUser(ctx context.Context, userID string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET is_active = ? WHERE user_id = ?`,
		boolToInt(active), userID)
	return err
}
