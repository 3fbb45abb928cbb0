package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

// Multi-row mutations run in one transaction so a mid-sequence failure
// cannot leave the denormalized counters out of step with the rows they
// mirror.

func (r *SQLiteRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func adjustEventCountTx(ctx context.Context, tx *sql.Tx, userID string, delta int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET event_count = event_count + ? WHERE user_id = ?`,
		delta, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("adjust event count for %s: %w", userID, ErrNotFound)
	}
	return nil
}

// CreateEventWithSeed inserts the event, bumps the owner's event count, and
// seeds the first completion record. All or nothing; a missing user row is
// reported as ErrNotFound and leaves no event behind.
func (r *SQLiteRepo) CreateEventWithSeed(ctx context.Context, e *domain.Event, rec *domain.Record) error {
	if e == nil || rec == nil {
		return errors.New("nil event or record")
	}
	cycleCount, cycleUnit := toCycleCols(e.Cycle)
	return r.withTx(ctx, func(tx *sql.Tx) error {
		// Count first: a missing owner surfaces as ErrNotFound before the
		// event insert can trip the foreign key.
		if err := adjustEventCountTx(ctx, tx, e.UserID, 1); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (
				event_id, user_id, name, reminder_enabled,
				cycle_count, cycle_unit, last_done_at, next_due_at,
				share_count, is_active
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.UserID, e.Name, boolToInt(e.ReminderEnabled),
			cycleCount, cycleUnit, e.LastDoneAt.UTC().Unix(), toNullInt64(e.NextDueAt),
			e.ShareCount, boolToInt(e.IsActive),
		)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (record_id, event_id, user_id, done_at)
			VALUES (?, ?, ?, ?)`,
			rec.ID, rec.EventID, rec.UserID, rec.DoneAt.UTC().Unix(),
		)
		return err
	})
}

// DeleteEventCascade removes the event together with its completion history
// and shares, and decrements the owner's event count. Returns how many
// record and share rows went with it.
func (r *SQLiteRepo) DeleteEventCascade(ctx context.Context, eventID, userID string) (records, shares int64, err error) {
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE event_id = ?`, eventID)
		if err != nil {
			return err
		}
		if records, err = res.RowsAffected(); err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, `DELETE FROM shares WHERE event_id = ?`, eventID)
		if err != nil {
			return err
		}
		if shares, err = res.RowsAffected(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, eventID); err != nil {
			return err
		}
		return adjustEventCountTx(ctx, tx, userID, -1)
	})
	if err != nil {
		return 0, 0, err
	}
	return records, shares, nil
}

// AcceptShare inserts the share grant and bumps the event's share count.
func (r *SQLiteRepo) AcceptShare(ctx context.Context, s *domain.Share) error {
	if s == nil {
		return errors.New("nil share")
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO shares (share_id, event_id, owner_id, recipient_id)
			VALUES (?, ?, ?, ?)`,
			s.ID, s.EventID, s.OwnerID, s.RecipientID,
		)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE events SET share_count = share_count + 1 WHERE event_id = ?`,
			s.EventID)
		return err
	})
}

// RevokeShare removes the (event, recipient) share and decrements the
// event's share count. A missing share is reported as ErrNotFound.
func (r *SQLiteRepo) RevokeShare(ctx context.Context, eventID, recipientID string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM shares WHERE event_id = ? AND recipient_id = ?`,
			eventID, recipientID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("revoke share %s/%s: %w", eventID, recipientID, ErrNotFound)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE events SET share_count = share_count - 1 WHERE event_id = ?`,
			eventID)
		return err
	})
}
