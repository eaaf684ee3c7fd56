package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/nosmoke/coachbot/bot/onboarding"
)

// ErrNotFound reports that no state record exists for the user.
var ErrNotFound = errors.New("user state not found")

// DecodeError reports a record that exists but cannot be deserialized.
// Callers that only need a soft-fail default may treat it as absent;
// the store logs it distinctly before returning.
type DecodeError struct {
	UserID int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode user state %d: %v", e.UserID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Code is picked up by handler summary logging.
func (e *DecodeError) Code() string { return "STATE_DECODE" }

// Store persists one state record per user. Put is a full replace;
// there is no merge and no partial update.
type Store interface {
	Get(ctx context.Context, userID int64) (*onboarding.UserState, error)
	Put(ctx context.Context, userID int64, st *onboarding.UserState) error
}
