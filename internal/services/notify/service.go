package notify

import (
	"context"
	"log/slog"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
	"github.com/ReOneSec/SpyCrypto/internal/ui"
)

const queueSize = 64

type Sender interface {
	SendMarkdown(ctx context.Context, chatID int64, text string) error
}

// Service mirrors enforcement and administrative actions to the admin
// log channel. Dispatch is non-blocking: callers enqueue and move on, a
// background sender drains the queue, and a full queue drops the
// message with a warning. Notification failure never affects the
// outcome already committed to the ledger.
type Service struct {
	sender    Sender
	channelID int64
	logger    *slog.Logger
	queue     chan string
}

func NewService(sender Sender, channelID int64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sender:    sender,
		channelID: channelID,
		logger:    logger,
		queue:     make(chan string, queueSize),
	}
}

// Run drains the queue until ctx is cancelled. Start it once, alongside
// the poll loop.
func (s *Service) Run(ctx context.Context) {
	if s.sender == nil || s.channelID == 0 {
		<-ctx.Done()
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case text := <-s.queue:
			if err := s.sender.SendMarkdown(ctx, s.channelID, text); err != nil {
				s.logger.Warn("notify admin channel", "error", err, "channel_id", s.channelID)
			}
		}
	}
}

func (s *Service) ActionTaken(chatTitle string, user model.EventUser, action enums.ActionKind, reason string, strikes int) {
	s.enqueue(ui.ActionTakenText(chatTitle, user, action, reason, strikes))
}

func (s *Service) StrikesReset(chatTitle string, targetLabel string) {
	s.enqueue(ui.StrikesResetText(chatTitle, targetLabel))
}

func (s *Service) AllStrikesReset(chatTitle string, cleared int) {
	s.enqueue(ui.AllStrikesResetText(chatTitle, cleared))
}

func (s *Service) enqueue(text string) {
	if s == nil || s.sender == nil || s.channelID == 0 {
		return
	}

	select {
	case s.queue <- text:
	default:
		s.logger.Warn("notification queue is full, dropping message", "channel_id", s.channelID)
	}
}
