package models

import "time"

// Role identifies the author of a conversation turn.
type Role string

// Turn roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a session transcript.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one conversation: the transcript plus the most recent station
// recommendations used to ground assistant replies.
type Session struct {
	ID              string          `json:"id"`
	Turns           []Turn          `json:"turns"`
	Recommendations []ScoredStation `json:"recommendations,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
