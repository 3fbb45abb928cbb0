package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

// --- Records ---

// AddRecord appends one completion log entry.
func (r *SQLiteRepo) AddRecord(ctx context.Context, rec *domain.Record) error {
	if rec == nil {
		return errors.New("nil record")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (record_id, event_id, user_id, done_at)
		VALUES (?, ?, ?, ?)`,
		rec.ID, rec.EventID, rec.UserID, rec.DoneAt.UTC().Unix(),
	)
	return err
}

// ListRecentRecords returns up to limit completion entries for the event,
// newest first.
func (r *SQLiteRepo) ListRecentRecords(ctx context.Context, eventID string, limit int) ([]domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT record_id, event_id, user_id, done_at
		FROM records
		WHERE event_id = ?
		ORDER BY done_at DESC
		LIMIT ?`,
		eventID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Record
	for rows.Next() {
		var (
			rec      domain.Record
			doneUnix int64
		)
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.UserID, &doneUnix); err != nil {
			return nil, err
		}
		rec.DoneAt = time.Unix(doneUnix, 0).UTC()
		res = append(res, rec)
	}
	return res, rows.Err()
}

// --- Shares ---

// AddShare inserts a share grant.
func (r *SQLiteRepo) AddShare(ctx context.Context, s *domain.Share) error {
	if s == nil {
		return errors.New("nil share")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shares (share_id, event_id, owner_id, recipient_id)
		VALUES (?, ?, ?, ?)`,
		s.ID, s.EventID, s.OwnerID, s.RecipientID,
	)
	return err
}

// ShareExists reports whether the (event, recipient) pair already exists.
func (r *SQLiteRepo) ShareExists(ctx context.Context, eventID, recipientID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM shares WHERE event_id = ? AND recipient_id = ? LIMIT 1`,
		eventID, recipientID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ListRecipientsByEvent returns the recipient ids of all shares of an event.
func (r *SQLiteRepo) ListRecipientsByEvent(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT recipient_id FROM shares WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}

// ListOverdueSharedEventsByUser returns overdue reminder-enabled events that
// are shared with the given recipient.
func (r *SQLiteRepo) ListOverdueSharedEventsByUser(ctx context.Context, userID string, now time.Time) ([]domain.Event, error) {
	return r.queryEvents(ctx, `
		SELECT `+eventCols+`
		FROM events
		WHERE is_active = 1
		  AND reminder_enabled = 1
		  AND next_due_at IS NOT NULL
		  AND next_due_at <= ?
		  AND EXISTS (
			SELECT 1 FROM shares s
			WHERE s.recipient_id = ? AND s.event_id = events.event_id
		  )`,
		now.UTC().Unix(), userID)
}
