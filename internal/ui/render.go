package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ReOneSec/SpyCrypto/internal/domain/model"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
	"~", `\~`,
	"`", "\\`",
	">", `\>`,
	"#", `\#`,
	"+", `\+`,
	"-", `\-`,
	"=", `\=`,
	"|", `\|`,
	"{", `\{`,
	"}", `\}`,
	".", `\.`,
	"!", `\!`,
)

// Escape makes arbitrary text safe for MarkdownV2 parse mode.
func Escape(text string) string {
	return markdownEscaper.Replace(text)
}

// Mention renders a MarkdownV2 user mention that works even when the
// user has no username.
func Mention(user model.EventUser) string {
	name := strings.TrimSpace(user.FullName)
	if name == "" {
		name = strings.TrimSpace(user.Username)
	}
	if name == "" {
		name = strconv.FormatInt(user.ID, 10)
	}
	return fmt.Sprintf("[%s](tg://user?id=%d)", Escape(name), user.ID)
}

// UserLabel is the plain-text counterpart of Mention for replies sent
// without a parse mode.
func UserLabel(userID int64, username string) string {
	name := strings.TrimSpace(username)
	if name != "" {
		return "@" + name
	}
	return strconv.FormatInt(userID, 10)
}
