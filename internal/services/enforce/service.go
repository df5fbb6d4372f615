package enforce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
	"github.com/ReOneSec/SpyCrypto/internal/infra/telegram"
	"github.com/ReOneSec/SpyCrypto/internal/ui"
)

const defaultMuteDuration = 24 * time.Hour

type Gateway interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendMarkdown(ctx context.Context, chatID int64, text string) error
	RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error
	BanMember(ctx context.Context, chatID, userID int64) error
}

type Ledger interface {
	IncrementStrikes(ctx context.Context, chatID, userID int64, username string) (int, error)
	LogAction(ctx context.Context, record model.ActionRecord) error
}

type Notifier interface {
	ActionTaken(chatTitle string, user model.EventUser, action enums.ActionKind, reason string, strikes int)
}

// Result reports what the engine decided for one violation. Handled is
// false when the pipeline aborted before a strike was issued.
type Result struct {
	Handled bool
	Action  enums.ActionKind
	Strikes int
}

// Service runs the strike state machine: delete the offending content,
// increment the user's strike count, apply the punishment the new count
// selects, and append the action record.
type Service struct {
	gateway      Gateway
	ledger       Ledger
	notifier     Notifier
	logger       *slog.Logger
	muteDuration time.Duration
	nowFn        func() time.Time
}

func NewService(gateway Gateway, ledger Ledger, notifier Notifier, logger *slog.Logger, muteDuration time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if muteDuration <= 0 {
		muteDuration = defaultMuteDuration
	}
	return &Service{
		gateway:      gateway,
		ledger:       ledger,
		notifier:     notifier,
		logger:       logger,
		muteDuration: muteDuration,
		nowFn:        time.Now,
	}
}

// HandleViolation executes the full pipeline for one detected violation.
// Strikes are only issued for content the bot could actually remove: a
// failed delete aborts before the counter is touched. A ledger failure
// after a successful delete aborts before any punitive transport call is
// made and is the only error surfaced to the caller.
func (s *Service) HandleViolation(ctx context.Context, event model.Event, reason string) (Result, error) {
	err := s.gateway.DeleteMessage(ctx, event.ChatID, event.MessageID)
	if errors.Is(err, telegram.ErrNotFound) {
		// Already handled elsewhere, not an error.
		return Result{}, nil
	}
	if errors.Is(err, telegram.ErrForbidden) {
		s.logger.Warn("no permission to delete messages", "chat_id", event.ChatID, "message_id", event.MessageID)
		return Result{}, nil
	}
	if err != nil {
		s.logger.Error("delete message", "error", err, "chat_id", event.ChatID, "message_id", event.MessageID)
		return Result{}, nil
	}

	strikes, err := s.ledger.IncrementStrikes(ctx, event.ChatID, event.User.ID, event.User.Username)
	if err != nil {
		return Result{}, fmt.Errorf("increment strikes for user %d in chat %d: %w", event.User.ID, event.ChatID, err)
	}

	action := s.punish(ctx, event, strikes)

	record := model.ActionRecord{
		ChatID:      event.ChatID,
		UserID:      event.User.ID,
		Action:      action,
		Reason:      reason,
		StrikeCount: &strikes,
		CreatedAt:   s.nowFn().UTC(),
	}
	if err := s.ledger.LogAction(ctx, record); err != nil {
		s.logger.Error("log enforcement action", "error", err, "chat_id", event.ChatID, "user_id", event.User.ID, "action", action)
	}

	if s.notifier != nil {
		s.notifier.ActionTaken(event.ChatTitle, event.User, action, reason, strikes)
	}

	return Result{Handled: true, Action: action, Strikes: strikes}, nil
}

// punish applies the action the strike count selects and returns the
// intended action kind. When the punitive transport call fails the
// intended kind is still returned, so the audit history reflects the
// policy outcome even under partial capability loss.
func (s *Service) punish(ctx context.Context, event model.Event, strikes int) enums.ActionKind {
	mention := ui.Mention(event.User)

	switch {
	case strikes <= 1:
		if err := s.gateway.SendMarkdown(ctx, event.ChatID, ui.WarningText(mention)); err != nil {
			s.logger.Warn("send warning", "error", err, "chat_id", event.ChatID, "user_id", event.User.ID)
		}
		return enums.ActionWarned

	case strikes == 2:
		until := s.nowFn().Add(s.muteDuration)
		if err := s.gateway.RestrictMember(ctx, event.ChatID, event.User.ID, until); err != nil {
			s.logger.Warn("restrict member", "error", err, "chat_id", event.ChatID, "user_id", event.User.ID)
		} else if err := s.gateway.SendMarkdown(ctx, event.ChatID, ui.MuteText(mention, s.muteDuration)); err != nil {
			s.logger.Warn("send mute notice", "error", err, "chat_id", event.ChatID)
		}
		return enums.ActionMuted

	default:
		// Three strikes and beyond: the ban is re-asserted on every
		// further violation.
		if err := s.gateway.BanMember(ctx, event.ChatID, event.User.ID); err != nil {
			s.logger.Warn("ban member", "error", err, "chat_id", event.ChatID, "user_id", event.User.ID)
		} else if err := s.gateway.SendMarkdown(ctx, event.ChatID, ui.BanText(mention)); err != nil {
			s.logger.Warn("send ban notice", "error", err, "chat_id", event.ChatID)
		}
		return enums.ActionBanned
	}
}
