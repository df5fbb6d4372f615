package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
)

// Sentinel failure classes for gateway calls. ErrForbidden means the bot
// lacks the right to perform the action; ErrNotFound means the target is
// already gone. Anything else is treated as a hard failure for the event.
var (
	ErrForbidden = errors.New("telegram: forbidden")
	ErrNotFound  = errors.New("telegram: not found")
)

type UpdateHandler func(context.Context, tgbotapi.Update)

type Client struct {
	api         *tgbotapi.BotAPI
	logger      *slog.Logger
	handler     UpdateHandler
	pollTimeout int
	dryRun      bool
}

func NewClient(token string, pollTimeout int, logger *slog.Logger, handler UpdateHandler) (*Client, error) {
	if handler == nil {
		return nil, errors.New("telegram update handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if strings.TrimSpace(token) == "" {
		return &Client{
			logger:      logger,
			handler:     handler,
			pollTimeout: pollTimeout,
			dryRun:      true,
		}, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:         api,
		logger:      logger,
		handler:     handler,
		pollTimeout: pollTimeout,
	}, nil
}

// Start polls for updates until ctx is cancelled. Each update is handled
// in its own goroutine; events for different chats and users never block
// each other.
func (c *Client) Start(ctx context.Context) error {
	if c.dryRun {
		c.logger.Warn("BOT_TOKEN is empty, running in dry mode")
		<-ctx.Done()
		return nil
	}

	timeout := c.pollTimeout
	if timeout <= 0 {
		timeout = 30
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = timeout
	updates := c.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go c.handler(ctx, update)
		}
	}
}

// BotUsername returns the authenticated bot's username, empty in dry mode.
func (c *Client) BotUsername() string {
	if c.dryRun {
		return ""
	}
	return c.api.Self.UserName
}

func (c *Client) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	if c.dryRun {
		return nil
	}
	_, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return classifyError(err)
}

func (c *Client) SendText(_ context.Context, chatID int64, text string) error {
	if c.dryRun {
		return nil
	}
	_, err := c.api.Send(tgbotapi.NewMessage(chatID, text))
	return classifyError(err)
}

func (c *Client) SendMarkdown(_ context.Context, chatID int64, text string) error {
	if c.dryRun {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	_, err := c.api.Send(msg)
	return classifyError(err)
}

// RestrictMember removes the send-messages permission until the given
// time.
func (c *Client) RestrictMember(_ context.Context, chatID, userID int64, until time.Time) error {
	if c.dryRun {
		return nil
	}
	cfg := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
		UntilDate:   until.Unix(),
		Permissions: &tgbotapi.ChatPermissions{CanSendMessages: false},
	}
	_, err := c.api.Request(cfg)
	return classifyError(err)
}

func (c *Client) BanMember(_ context.Context, chatID, userID int64) error {
	if c.dryRun {
		return nil
	}
	cfg := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
	}
	_, err := c.api.Request(cfg)
	return classifyError(err)
}

func (c *Client) GetChatMember(_ context.Context, chatID, userID int64) (enums.MemberStatus, error) {
	if c.dryRun {
		return enums.MemberStatusMember, nil
	}
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	return enums.MemberStatus(member.Status), nil
}

// MemberDisplayName resolves a user id to a display name via the chat
// membership. Fails when the user is not a current member.
func (c *Client) MemberDisplayName(_ context.Context, chatID, userID int64) (string, error) {
	if c.dryRun {
		return "", nil
	}
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	if member.User == nil {
		return "", fmt.Errorf("chat member %d has no user", userID)
	}
	return member.User.UserName, nil
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	message := strings.ToLower(apiErr.Message)
	switch {
	case apiErr.Code == 403:
		return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Message)
	case strings.Contains(message, "not enough rights"):
		return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Message)
	case strings.Contains(message, "not found"):
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	default:
		return err
	}
}
