package enums

// ActionKind labels one entry of the append-only action log. Enforcement
// kinds carry the resulting strike count; reset kinds do not.
type ActionKind string

const (
	ActionWarned          ActionKind = "warned"
	ActionMuted           ActionKind = "muted"
	ActionBanned          ActionKind = "banned"
	ActionDeleted         ActionKind = "deleted"
	ActionStrikesReset    ActionKind = "strikes_reset"
	ActionAllStrikesReset ActionKind = "all_strikes_reset"
)
