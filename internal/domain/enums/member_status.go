package enums

// MemberStatus mirrors the Telegram chat member statuses the bot cares
// about. Values match the wire strings returned by getChatMember.
type MemberStatus string

const (
	MemberStatusCreator       MemberStatus = "creator"
	MemberStatusAdministrator MemberStatus = "administrator"
	MemberStatusMember        MemberStatus = "member"
	MemberStatusRestricted    MemberStatus = "restricted"
	MemberStatusLeft          MemberStatus = "left"
	MemberStatusKicked        MemberStatus = "kicked"
)

// IsPrivileged reports whether the status exempts its holder from
// moderation. Only administrators and the chat creator qualify.
func (s MemberStatus) IsPrivileged() bool {
	return s == MemberStatusCreator || s == MemberStatusAdministrator
}
