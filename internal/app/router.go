package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
	exportsvc "github.com/ReOneSec/SpyCrypto/internal/services/export"
	statssvc "github.com/ReOneSec/SpyCrypto/internal/services/stats"
	"github.com/ReOneSec/SpyCrypto/internal/ui"
)

const (
	reasonCryptoAddress    = "Crypto Address Detected"
	reasonUnauthorizedLink = "Unauthorized Link"
)

func (a *App) routeUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	edited := false
	if message == nil && update.EditedMessage != nil {
		message = update.EditedMessage
		edited = true
	}
	if message == nil || message.From == nil {
		return
	}

	if message.IsCommand() {
		a.routeCommand(ctx, buildEvent(message, edited))
		return
	}

	if message.Chat.IsPrivate() {
		a.sendMarkdown(ctx, message.Chat.ID, ui.SupportedChainsText(a.registry.ChainNames()))
		return
	}

	a.routeGroupMessage(ctx, buildEvent(message, edited), message)
}

func (a *App) routeGroupMessage(ctx context.Context, event model.Event, message *tgbotapi.Message) {
	exempt, err := a.privilegeService.IsExempt(ctx, event.ChatID, event.User.ID)
	if err != nil {
		// Fail closed toward inaction: an unverifiable actor is neither
		// punished nor granted a standing exemption.
		a.logger.Error("verify member status, suppressing enforcement", "error", err, "chat_id", event.ChatID, "user_id", event.User.ID)
		return
	}

	// Moderation takes precedence: a mention alongside violating content
	// is still a violation, never a free info request.
	if !exempt {
		switch {
		case hasLinkEntity(message):
			event.Kind = enums.EventLinkMessage
			a.handleViolation(ctx, event, reasonUnauthorizedLink)
			return
		case a.registry.Match(event.Text):
			a.handleViolation(ctx, event, reasonCryptoAddress)
			return
		}
	}

	if hasBotMention(message, a.botNameFn()) {
		a.sendMarkdown(ctx, event.ChatID, ui.SupportedChainsText(a.registry.ChainNames()))
	}
}

func (a *App) handleViolation(ctx context.Context, event model.Event, reason string) {
	result, err := a.enforceService.HandleViolation(ctx, event, reason)
	if err != nil {
		a.logger.Error("handle violation", "error", err, "chat_id", event.ChatID, "user_id", event.User.ID, "reason", reason)
		return
	}
	if result.Handled {
		a.logger.Info("violation handled",
			"chat_id", event.ChatID,
			"user_id", event.User.ID,
			"action", result.Action,
			"strikes", result.Strikes,
			"reason", reason,
		)
	}
}

func (a *App) routeCommand(ctx context.Context, event model.Event) {
	switch event.Command {
	case "start":
		a.sendText(ctx, event.ChatID, ui.StartText())
	case "help":
		a.sendMarkdown(ctx, event.ChatID, ui.SupportedChainsText(a.registry.ChainNames()))
	case "ping":
		a.sendText(ctx, event.ChatID, ui.PingText())
	case "stats":
		a.handleStatsCommand(ctx, event)
	case "strikes":
		a.handleStrikesCommand(ctx, event)
	case "reset":
		a.handleResetCommand(ctx, event)
	case "resetall":
		a.handleResetAllCommand(ctx, event)
	case "export":
		a.handleExportCommand(ctx, event)
	}
}

func (a *App) handleStatsCommand(ctx context.Context, event model.Event) {
	if !a.requireAdmin(ctx, event) {
		return
	}

	counts, err := a.statsService.BuildReport(ctx, event.ChatID)
	if err != nil {
		a.logger.Error("build stats report", "error", err, "chat_id", event.ChatID)
		a.sendText(ctx, event.ChatID, "Could not load statistics.")
		return
	}

	a.sendMarkdown(ctx, event.ChatID, ui.StatsText(counts))
}

const strikeListLimit = 25

func (a *App) handleStrikesCommand(ctx context.Context, event model.Event) {
	if !event.IsGroup {
		a.sendText(ctx, event.ChatID, "This command only works in group chats.")
		return
	}
	if !a.requireAdmin(ctx, event) {
		return
	}

	records, err := a.adminService.ListStrikes(ctx, event.ChatID, strikeListLimit)
	if err != nil {
		a.logger.Error("list strikes", "error", err, "chat_id", event.ChatID)
		a.sendText(ctx, event.ChatID, "Could not load strikes.")
		return
	}

	a.sendMarkdown(ctx, event.ChatID, ui.StrikeListText(records))
}

func (a *App) handleResetCommand(ctx context.Context, event model.Event) {
	if !event.IsGroup {
		a.sendText(ctx, event.ChatID, "This command only works in group chats.")
		return
	}
	if !a.requireAdmin(ctx, event) {
		return
	}

	target, err := resolveResetTarget(event)
	if err != nil {
		a.sendText(ctx, event.ChatID, ui.ResetUsageText())
		return
	}

	label := a.targetLabel(ctx, event.ChatID, target)

	existed, err := a.adminService.ResetUser(ctx, event.ChatID, target.ID)
	if err != nil {
		a.logger.Error("reset user strikes", "error", err, "chat_id", event.ChatID, "target_user_id", target.ID)
		a.sendText(ctx, event.ChatID, "Could not reset strikes.")
		return
	}

	if existed {
		a.sendText(ctx, event.ChatID, fmt.Sprintf("Strikes reset for %s.", label))
	} else {
		a.sendText(ctx, event.ChatID, fmt.Sprintf("No strikes recorded for %s.", label))
	}

	a.notifyService.StrikesReset(event.ChatTitle, label)
}

func (a *App) handleResetAllCommand(ctx context.Context, event model.Event) {
	if !event.IsGroup {
		a.sendText(ctx, event.ChatID, "This command only works in group chats.")
		return
	}
	if !a.requireAdmin(ctx, event) {
		return
	}

	cleared, err := a.adminService.ResetAll(ctx, event.ChatID)
	if err != nil {
		a.logger.Error("reset all strikes", "error", err, "chat_id", event.ChatID)
		a.sendText(ctx, event.ChatID, "Could not reset strikes.")
		return
	}

	a.sendText(ctx, event.ChatID, fmt.Sprintf("Cleared strike records for %d users.", cleared))
	a.notifyService.AllStrikesReset(event.ChatTitle, cleared)
}

func (a *App) handleExportCommand(ctx context.Context, event model.Event) {
	if !a.requireAdmin(ctx, event) {
		return
	}
	if a.exportService == nil {
		a.sendText(ctx, event.ChatID, "Export is not configured.")
		return
	}

	link, err := a.exportService.ExportWindow(ctx, event.ChatID, statssvc.Window)
	if errors.Is(err, exportsvc.ErrNotConfigured) {
		a.sendText(ctx, event.ChatID, "Export is not configured.")
		return
	}
	if err != nil {
		a.logger.Error("export action history", "error", err, "chat_id", event.ChatID)
		a.sendText(ctx, event.ChatID, "Could not export action history.")
		return
	}

	a.sendText(ctx, event.ChatID, "Action history for the last 7 days: "+link)
}

// requireAdmin re-verifies the caller's privilege for every command; a
// prior exemption decision is never trusted. A failed check denies the
// command.
func (a *App) requireAdmin(ctx context.Context, event model.Event) bool {
	if event.IsPrivate {
		a.sendText(ctx, event.ChatID, "This command is for group admins only.")
		return false
	}

	exempt, err := a.privilegeService.IsExempt(ctx, event.ChatID, event.User.ID)
	if err != nil {
		a.logger.Error("verify admin status for command", "error", err, "chat_id", event.ChatID, "user_id", event.User.ID, "command", event.Command)
		return false
	}
	if !exempt {
		a.sendText(ctx, event.ChatID, "This command is for admins only.")
		return false
	}
	return true
}

// targetLabel resolves the target to a display label, degrading to the
// raw identifier when the user cannot be resolved in the chat.
func (a *App) targetLabel(ctx context.Context, chatID int64, target model.EventUser) string {
	if strings.TrimSpace(target.Username) != "" {
		return ui.UserLabel(target.ID, target.Username)
	}

	username, err := a.tg.MemberDisplayName(ctx, chatID, target.ID)
	if err != nil {
		a.logger.Warn("resolve target display name", "error", err, "chat_id", chatID, "target_user_id", target.ID)
		return ui.UserLabel(target.ID, "")
	}
	return ui.UserLabel(target.ID, username)
}

var errNoTarget = errors.New("no reset target")

// resolveResetTarget picks the reset target from the reply-reference's
// author, or from a numeric identifier argument.
func resolveResetTarget(event model.Event) (model.EventUser, error) {
	if event.ReplyTo != nil {
		return *event.ReplyTo, nil
	}

	arg := strings.TrimSpace(event.Args)
	if arg == "" {
		return model.EventUser{}, errNoTarget
	}

	userID, err := strconv.ParseInt(strings.Fields(arg)[0], 10, 64)
	if err != nil || userID <= 0 {
		return model.EventUser{}, errNoTarget
	}
	return model.EventUser{ID: userID}, nil
}

func buildEvent(message *tgbotapi.Message, edited bool) model.Event {
	event := model.Event{
		Kind:      enums.EventNewMessage,
		ChatID:    message.Chat.ID,
		ChatTitle: message.Chat.Title,
		IsGroup:   message.Chat.IsGroup() || message.Chat.IsSuperGroup(),
		IsPrivate: message.Chat.IsPrivate(),
		MessageID: message.MessageID,
		Text:      messageText(message),
	}
	if edited {
		event.Kind = enums.EventEditedMessage
	}

	if message.From != nil {
		event.User = eventUser(message.From)
	}
	if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
		replyTo := eventUser(message.ReplyToMessage.From)
		event.ReplyTo = &replyTo
	}

	if message.IsCommand() {
		event.Kind = enums.EventCommand
		event.Command = message.Command()
		event.Args = message.CommandArguments()
	}

	return event
}

func eventUser(user *tgbotapi.User) model.EventUser {
	fullName := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	return model.EventUser{
		ID:       user.ID,
		Username: user.UserName,
		FullName: fullName,
	}
}

func messageText(message *tgbotapi.Message) string {
	if message.Text != "" {
		return message.Text
	}
	return message.Caption
}

func hasLinkEntity(message *tgbotapi.Message) bool {
	for _, entity := range message.Entities {
		if entity.IsURL() || entity.IsTextLink() {
			return true
		}
	}
	for _, entity := range message.CaptionEntities {
		if entity.IsURL() || entity.IsTextLink() {
			return true
		}
	}
	return false
}

func hasBotMention(message *tgbotapi.Message, botUsername string) bool {
	if botUsername == "" {
		return false
	}
	for _, entity := range message.Entities {
		if entity.IsMention() {
			return strings.Contains(message.Text, "@"+botUsername)
		}
	}
	return false
}

func (a *App) sendText(ctx context.Context, chatID int64, text string) {
	if err := a.tg.SendText(ctx, chatID, text); err != nil {
		a.logger.Error("send message", "error", fmt.Errorf("chat=%d: %w", chatID, err))
	}
}

func (a *App) sendMarkdown(ctx context.Context, chatID int64, text string) {
	if err := a.tg.SendMarkdown(ctx, chatID, text); err != nil {
		a.logger.Error("send markdown message", "error", fmt.Errorf("chat=%d: %w", chatID, err))
	}
}
