package model

import "github.com/ReOneSec/SpyCrypto/internal/domain/enums"

type EventUser struct {
	ID       int64
	Username string
	FullName string
}

// Event is the transport-independent view of one inbound update. The
// router builds it from the Telegram update; services never see the
// transport types.
type Event struct {
	Kind      enums.EventKind
	ChatID    int64
	ChatTitle string
	IsGroup   bool
	IsPrivate bool
	MessageID int
	User      EventUser
	Text      string
	Command   string
	Args      string
	ReplyTo   *EventUser
}
