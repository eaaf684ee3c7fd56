package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"github.com/nosmoke/coachbot/bot/onboarding"
	"github.com/nosmoke/coachbot/core/logger"
)

// Postgres stores user state as a jsonb blob in the users table.
// Every call runs a single statement on the shared pool, so the
// connection is acquired and released per call on every path.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an established sqlx pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Get loads the state record for userID. Missing rows map to ErrNotFound,
// undecodable blobs to *DecodeError.
func (s *Postgres) Get(ctx context.Context, userID int64) (*onboarding.UserState, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, `SELECT state FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get user %d: %w", userID, err)
	}

	var st onboarding.UserState
	if err := json.Unmarshal(raw, &st); err != nil {
		logger.LogEvent(ctx, logger.SVCStore, slog.LevelError, "store.decode_fail",
			slog.Int64("user_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return nil, &DecodeError{UserID: userID, Err: err}
	}
	return &st, nil
}

// Put fully replaces the state blob for userID, creating the row when
// absent. created_at is written once on insert and never updated.
func (s *Postgres) Put(ctx context.Context, userID int64, st *onboarding.UserState) error {
	if st == nil {
		return fmt.Errorf("storage: nil state for user %d", userID)
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("storage: encode user %d: %w", userID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, state)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET state = EXCLUDED.state`,
		userID, raw,
	)
	if err != nil {
		return fmt.Errorf("storage: put user %d: %w", userID, err)
	}
	return nil
}
