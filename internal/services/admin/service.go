package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
)

type Ledger interface {
	GetStrikes(ctx context.Context, chatID, userID int64) (int, error)
	ListStrikes(ctx context.Context, chatID int64, limit int) ([]model.StrikeRecord, error)
	ResetUser(ctx context.Context, chatID, userID int64) (bool, error)
	ResetAll(ctx context.Context, chatID int64) (int, error)
	LogAction(ctx context.Context, record model.ActionRecord) error
}

// Service backs the administrative command surface. Privilege gating
// happens in the router before any of these are reached.
type Service struct {
	ledger Ledger
	logger *slog.Logger
}

func NewService(ledger Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledger, logger: logger}
}

// ResetUser zeroes one user's strikes and appends a reset record. The
// returned bool reports whether a strike record existed.
func (s *Service) ResetUser(ctx context.Context, chatID, userID int64) (bool, error) {
	existed, err := s.ledger.ResetUser(ctx, chatID, userID)
	if err != nil {
		return false, err
	}

	record := model.ActionRecord{
		ChatID:    chatID,
		UserID:    userID,
		Action:    enums.ActionStrikesReset,
		Reason:    "Strikes reset by admin",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ledger.LogAction(ctx, record); err != nil {
		s.logger.Error("log strikes reset", "error", err, "chat_id", chatID, "user_id", userID)
	}

	return existed, nil
}

// ResetAll clears every strike record in the chat and returns the count
// removed.
func (s *Service) ResetAll(ctx context.Context, chatID int64) (int, error) {
	cleared, err := s.ledger.ResetAll(ctx, chatID)
	if err != nil {
		return 0, err
	}

	record := model.ActionRecord{
		ChatID:    chatID,
		Action:    enums.ActionAllStrikesReset,
		Reason:    "All strikes reset by admin",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ledger.LogAction(ctx, record); err != nil {
		s.logger.Error("log all strikes reset", "error", err, "chat_id", chatID)
	}

	return cleared, nil
}

func (s *Service) GetStrikes(ctx context.Context, chatID, userID int64) (int, error) {
	return s.ledger.GetStrikes(ctx, chatID, userID)
}

// ListStrikes returns the chat's current offenders, highest strike
// counts first.
func (s *Service) ListStrikes(ctx context.Context, chatID int64, limit int) ([]model.StrikeRecord, error) {
	return s.ledger.ListStrikes(ctx, chatID, limit)
}
