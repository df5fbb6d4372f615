package model

// StrikeRecord is the current-state projection for one user in one chat.
// The username is a display hint only, overwritten on every increment.
type StrikeRecord struct {
	ChatID      int64
	UserID      int64
	StrikeCount int
	Username    string
}
