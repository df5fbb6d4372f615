package model

import (
	"time"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
)

// ActionRecord is one entry of the append-only enforcement log. Records
// are never mutated or deleted. StrikeCount is nil for administrative
// resets, which act on records rather than producing a count.
type ActionRecord struct {
	ID          int64
	ChatID      int64
	UserID      int64
	Action      enums.ActionKind
	Reason      string
	StrikeCount *int
	CreatedAt   time.Time
}

// WindowedCounts aggregates action records inside a trailing window.
// Deleted covers both "deleted" and "warned" records; the stats surface
// reports them as one "Deleted/Warned" figure.
type WindowedCounts struct {
	Deleted int64
	Muted   int64
	Banned  int64
}

func (c WindowedCounts) Total() int64 {
	return c.Deleted + c.Muted + c.Banned
}
