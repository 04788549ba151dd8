package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/hotelbot/core/logger"
)

// ErrNotFound is returned when a chat has no session or history row yet.
var ErrNotFound = errors.New("storage: not found")

const component = "service.sessions"

// Repository is the persistence contract the dialogue machine works
// against. Reads always resolve "current" as the row with the maximum
// start timestamp for the chat.
type Repository interface {
	CreateSession(ctx context.Context, chatID int64, kind Kind, currency string, startedAt int64) error
	UpdateSession(ctx context.Context, chatID int64, field Field, value any) error
	LatestSession(ctx context.Context, chatID int64) (*Session, error)
	SessionAt(ctx context.Context, chatID int64, startedAt int64) (*Session, error)
	CreateHistory(ctx context.Context, chatID int64, offers []byte, startedAt int64) error
	LatestHistory(ctx context.Context, chatID int64) (*History, error)
}

// PostgresRepository implements Repository on sqlx/Postgres.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wraps an open connection pool.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateSession inserts a fresh session row; all answer fields start
// empty and fill in as the dialogue advances.
func (r *PostgresRepository) CreateSession(ctx context.Context, chatID int64, kind Kind, currency string, startedAt int64) error {
	const q = `
		INSERT INTO sessions (chat_id, kind, status, currency, started_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, q, chatID, kind, StatusActive, currency, startedAt); err != nil {
		logger.Error(ctx, component, "session.create.fail",
			slog.Int64("chat_id", chatID),
			slog.String("kind", string(kind)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("create session: %w", err)
	}
	logger.Debug(ctx, component, "session.create",
		slog.Int64("chat_id", chatID),
		slog.String("kind", string(kind)),
	)
	return nil
}

// UpdateSession writes one column of the chat's most recent session row.
func (r *PostgresRepository) UpdateSession(ctx context.Context, chatID int64, field Field, value any) error {
	if err := field.Validate(); err != nil {
		return err
	}
	q := fmt.Sprintf(`
		UPDATE sessions SET %s = $1
		WHERE chat_id = $2
		  AND started_at = (SELECT MAX(started_at) FROM sessions WHERE chat_id = $2)`,
		string(field))
	if _, err := r.db.ExecContext(ctx, q, value, chatID); err != nil {
		logger.Error(ctx, component, "session.update.fail",
			slog.Int64("chat_id", chatID),
			slog.String("op", string(field)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("update session %s: %w", field, err)
	}
	return nil
}

// LatestSession returns the chat's current session.
func (r *PostgresRepository) LatestSession(ctx context.Context, chatID int64) (*Session, error) {
	const q = `
		SELECT * FROM sessions
		WHERE chat_id = $1
		ORDER BY started_at DESC
		LIMIT 1`
	var s Session
	if err := r.db.GetContext(ctx, &s, q, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest session: %w", err)
	}
	return &s, nil
}

// SessionAt returns the historical session row that started at the given
// timestamp, used to rebuild the legend of a past search.
func (r *PostgresRepository) SessionAt(ctx context.Context, chatID int64, startedAt int64) (*Session, error) {
	const q = `SELECT * FROM sessions WHERE chat_id = $1 AND started_at = $2`
	var s Session
	if err := r.db.GetContext(ctx, &s, q, chatID, startedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session at %d: %w", startedAt, err)
	}
	return &s, nil
}

// CreateHistory stores one completed search's serialized result list.
func (r *PostgresRepository) CreateHistory(ctx context.Context, chatID int64, offers []byte, startedAt int64) error {
	const q = `INSERT INTO history (chat_id, offers, started_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, q, chatID, offers, startedAt); err != nil {
		logger.Error(ctx, component, "history.create.fail",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("create history: %w", err)
	}
	logger.Debug(ctx, component, "history.create", slog.Int64("chat_id", chatID))
	return nil
}

// LatestHistory returns the chat's most recent completed search.
func (r *PostgresRepository) LatestHistory(ctx context.Context, chatID int64) (*History, error) {
	const q = `
		SELECT * FROM history
		WHERE chat_id = $1
		ORDER BY started_at DESC
		LIMIT 1`
	var h History
	if err := r.db.GetContext(ctx, &h, q, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest history: %w", err)
	}
	return &h, nil
}
