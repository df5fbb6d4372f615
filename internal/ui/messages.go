package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ReOneSec/SpyCrypto/internal/domain/enums"
	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
)

func WarningText(mention string) string {
	return fmt.Sprintf(`%s, posting unauthorized content is not allowed\. This is your first warning\.`, mention)
}

func MuteText(mention string, duration time.Duration) string {
	hours := int(duration.Hours())
	if hours <= 0 {
		hours = 24
	}
	return fmt.Sprintf(`%s, you have received a second strike and are now muted for %d hours\.`, mention, hours)
}

func BanText(mention string) string {
	return fmt.Sprintf(`%s has been banned after receiving three strikes\.`, mention)
}

// ActionTakenText is the admin-channel summary mirrored after every
// enforcement decision.
func ActionTakenText(chatTitle string, user model.EventUser, action enums.ActionKind, reason string, strikes int) string {
	return fmt.Sprintf(
		"✅ *Action Taken in %s*\n\n"+
			"👤 *User:* %s `(%d)`\n"+
			"⚖️ *Action:* `%s`\n"+
			"🗒️ *Reason:* `%s`\n"+
			"⚠️ *Total Strikes:* `%d`",
		Escape(chatTitle),
		Mention(user),
		user.ID,
		strings.ToUpper(string(action)),
		reason,
		strikes,
	)
}

func StrikesResetText(chatTitle string, targetLabel string) string {
	return fmt.Sprintf(
		"♻️ *Strikes Reset in %s*\n\n👤 *User:* `%s`",
		Escape(chatTitle),
		targetLabel,
	)
}

func AllStrikesResetText(chatTitle string, cleared int) string {
	return fmt.Sprintf(
		"♻️ *All Strikes Reset in %s*\n\n🧾 *Records cleared:* `%d`",
		Escape(chatTitle),
		cleared,
	)
}

func StatsText(counts model.WindowedCounts) string {
	return fmt.Sprintf(
		"📈 *Bot Statistics for the Last 7 Days*\n\n"+
			"• Messages Deleted/Warned: `%d`\n"+
			"• Users Muted: `%d`\n"+
			"• Users Banned: `%d`\n\n"+
			"Total actions taken: `%d`",
		counts.Deleted,
		counts.Muted,
		counts.Banned,
		counts.Total(),
	)
}

// SupportedChainsText is the public info message, built from the
// registry's chain names so it never drifts from the actual coverage.
func SupportedChainsText(chainNames []string) string {
	lines := make([]string, 0, len(chainNames))
	for _, name := range chainNames {
		lines = append(lines, "• "+Escape(name))
	}
	return fmt.Sprintf(
		`🛡️ *SpyCrypto Moderation Bot*

I keep this group clean by automatically detecting and removing spam\. `+
			`I scan new messages, edited messages, and links for unauthorized content\.

*I can detect addresses from hundreds of blockchains, including:*
%s`,
		strings.Join(lines, "\n"),
	)
}

// StrikeListText renders the chat's current strike state for admins.
func StrikeListText(records []model.StrikeRecord) string {
	if len(records) == 0 {
		return "📋 *Current Strikes*\n\nNo users currently have strikes\\."
	}

	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, fmt.Sprintf("• %s: `%d`", Escape(UserLabel(record.UserID, record.Username)), record.StrikeCount))
	}
	return "📋 *Current Strikes*\n\n" + strings.Join(lines, "\n")
}

func StartText() string {
	return "SpyCrypto Moderation Bot is active. Add me to a group as an admin and I will remove crypto addresses and unauthorized links. Use /help for details."
}

func PingText() string {
	return "pong"
}

func ResetUsageText() string {
	return "Usage: reply to the user's message with /reset, or /reset <user id>."
}
