package store

import (
	"context"
	"errors"
	"time"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrSessionExists is returned when creating a session would violate the
	// one-ongoing-session-per-user constraint.
	ErrSessionExists = errors.New("ongoing session exists")
)

// Repo defines storage operations for users, events, records, shares and
// chat sessions. Mutations touching more than one row (create-with-seed,
// cascade delete, share accept/revoke) are transactional so the event and
// share counters never drift from the rows they count.
type Repo interface {
	// Users
	AddUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	SetUserActive(ctx context.Context, userID string, active bool) error
	SetUserSlot(ctx context.Context, userID string, hour int) error
	ListActiveUsersBySlot(ctx context.Context, hour int) ([]domain.User, error)

	// Events
	CreateEventWithSeed(ctx context.Context, e *domain.Event, rec *domain.Record) error
	DeleteEventCascade(ctx context.Context, eventID, userID string) (records, shares int64, err error)
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	GetEventByName(ctx context.Context, userID, name string) (*domain.Event, error)
	EventNameTaken(ctx context.Context, userID, name string) (bool, error)
	ListEventsByUser(ctx context.Context, userID string) ([]domain.Event, error)
	ListOverdueEventsByUser(ctx context.Context, userID string, now time.Time) ([]domain.Event, error)
	SetEventName(ctx context.Context, eventID, name string) error
	SetEventReminder(ctx context.Context, eventID string, enabled bool, nextDue *time.Time) error
	SetEventCycle(ctx context.Context, eventID string, c domain.Cycle, nextDue time.Time) error
	SetEventLastDone(ctx context.Context, eventID string, lastDone time.Time, nextDue *time.Time) error
	SetEventsActiveByUser(ctx context.Context, userID string, active bool) error

	// Records
	AddRecord(ctx context.Context, r *domain.Record) error
	ListRecentRecords(ctx context.Context, eventID string, limit int) ([]domain.Record, error)

	// Shares
	AcceptShare(ctx context.Context, s *domain.Share) error
	RevokeShare(ctx context.Context, eventID, recipientID string) error
	ShareExists(ctx context.Context, eventID, recipientID string) (bool, error)
	ListRecipientsByEvent(ctx context.Context, eventID string) ([]string, error)
	ListOverdueSharedEventsByUser(ctx context.Context, userID string, now time.Time) ([]domain.Event, error)

	// Sessions
	CreateSession(ctx context.Context, s *domain.Session) error
	GetOngoingSession(ctx context.Context, userID string) (*domain.Session, error)
	SetSessionStep(ctx context.Context, sessionID string, step *domain.Step) error
	SetSessionPayload(ctx context.Context, sessionID string, p domain.Payload) error
	SetSessionStatus(ctx context.Context, sessionID string, status domain.ChatStatus) error

	Close() error
}
