package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single-writer engine; keep one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Users ---

// AddUser inserts a new user row.
func (r *SQLiteRepo) AddUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			user_id, event_count, notification_hour, is_premium,
			premium_until, is_active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.EventCount, u.NotificationHour, boolToInt(u.IsPremium),
		toNullInt64(u.PremiumUntil), boolToInt(u.IsActive), created.UTC().Unix(),
	)
	return err
}

// GetUser returns a user by id, or ErrNotFound.
func (r *SQLiteRepo) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, event_count, notification_hour, is_premium,
		       premium_until, is_active, created_at
		FROM users
		WHERE user_id = ?`,
		userID,
	)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u           domain.User
		premiumInt  int
		activeInt   int
		premiumNS   sql.NullInt64
		createdUnix int64
	)
	err := row.Scan(&u.ID, &u.EventCount, &u.NotificationHour, &premiumInt,
		&premiumNS, &activeInt, &createdUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.IsPremium = premiumInt != 0
	u.IsActive = activeInt != 0
	u.PremiumUntil = fromNullInt64(premiumNS)
	u.CreatedAt = time.Unix(createdUnix, 0).UTC()
	return &u, nil
}

// SetUserActive toggles the active flag for a user.
func (r *SQLiteRepo) SetUserActive(ctx context.Context, userID string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = ? WHERE user_id = ?`,
		boolToInt(active), userID)
	return err
}

// SetUserSlot updates the user's notification hour.
func (r *SQLiteRepo) SetUserSlot(ctx context.Context, userID string, hour int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET notification_hour = ? WHERE user_id = ?`,
		hour, userID)
	return err
}

// ListActiveUsersBySlot returns active users whose notification slot equals
// the given hour.
func (r *SQLiteRepo) ListActiveUsersBySlot(ctx context.Context, hour int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, event_count, notification_hour, is_premium,
		       premium_until, is_active, created_at
		FROM users
		WHERE is_active = 1 AND notification_hour = ?`,
		hour,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}
