package enums

type EventKind string

const (
	EventNewMessage    EventKind = "new_message"
	EventEditedMessage EventKind = "edited_message"
	EventLinkMessage   EventKind = "link_message"
	EventCommand       EventKind = "command"
)
