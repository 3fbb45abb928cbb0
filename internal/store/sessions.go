package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

// CreateSession inserts a new ongoing chat session. If the user already has
// an ongoing session the partial unique index rejects the insert and
// ErrSessionExists is returned.
func (r *SQLiteRepo) CreateSession(ctx context.Context, s *domain.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Unix()
	var step sql.NullString
	if s.Step != nil {
		step = sql.NullString{String: string(*s.Step), Valid: true}
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO chats (
			chat_id, user_id, chat_type, current_step, payload, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, string(s.Type), step, string(payload), string(s.Status),
		now, now,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", s.UserID, ErrSessionExists)
	}
	return err
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s           domain.Session
		stepNS      sql.NullString
		payloadJSON string
		chatType    string
		status      string
		created     int64
		updated     int64
	)
	err := row.Scan(&s.ID, &s.UserID, &chatType, &stepNS, &payloadJSON, &status,
		&created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payloadJSON), &s.Payload); err != nil {
		return nil, fmt.Errorf("session %s payload: %w", s.ID, err)
	}
	s.Type = domain.ChatType(chatType)
	s.Status = domain.ChatStatus(status)
	if stepNS.Valid {
		step := domain.Step(stepNS.String)
		s.Step = &step
	}
	s.CreatedAt = time.Unix(created, 0).UTC()
	s.UpdatedAt = time.Unix(updated, 0).UTC()
	return &s, nil
}

const sessionCols = `chat_id, user_id, chat_type, current_step, payload, status,
	created_at, updated_at`

// GetOngoingSession returns the user's single ongoing session, or ErrNotFound.
func (r *SQLiteRepo) GetOngoingSession(ctx context.Context, userID string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM chats WHERE user_id = ? AND status = 'ongoing'`,
		userID)
	return scanSession(row)
}

// SetSessionStep advances (or clears, with nil) the session's current step.
func (r *SQLiteRepo) SetSessionStep(ctx context.Context, sessionID string, step *domain.Step) error {
	var stepNS sql.NullString
	if step != nil {
		stepNS = sql.NullString{String: string(*step), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE chats SET current_step = ?, updated_at = ? WHERE chat_id = ?`,
		stepNS, time.Now().UTC().Unix(), sessionID)
	return err
}

// SetSessionPayload replaces the session's accumulated payload.
func (r *SQLiteRepo) SetSessionPayload(ctx context.Context, sessionID string, p domain.Payload) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE chats SET payload = ?, updated_at = ? WHERE chat_id = ?`,
		string(payload), time.Now().UTC().Unix(), sessionID)
	return err
}

// SetSessionStatus updates the lifecycle status of a session.
func (r *SQLiteRepo) SetSessionStatus(ctx context.Context, sessionID string, status domain.ChatStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE chats SET status = ?, updated_at = ? WHERE chat_id = ?`,
		string(status), time.Now().UTC().Unix(), sessionID)
	return err
}
