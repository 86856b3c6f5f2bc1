package prefs

import (
	"context"
	"time"
)

// Preferences keeps process-wide scalar timestamps outside the rate tables.
type Preferences interface {
	// GetTime reports ok=false when nothing was stored under key.
	GetTime(ctx context.Context, key string) (t time.Time, ok bool, err error)
	SetTime(ctx context.Context, key string, t time.Time) error
}
