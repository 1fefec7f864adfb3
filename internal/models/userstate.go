package models

// ConversationState represents the state of a conversation with a user
type ConversationState int

const (
	// Idle is the initial state
	Idle ConversationState = iota
	// AwaitingLogo is the state after /setlogo, the next image becomes the user's logo
	AwaitingLogo
)

// String returns a readable name for logging
func (s ConversationState) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingLogo:
		return "awaiting_logo"
	default:
		return "unknown"
	}
}

// UserState represents the state of a user's conversation
type UserState struct {
	State ConversationState
}
