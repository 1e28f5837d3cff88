package conversation

import (
	"fmt"
	"strings"
)

// Kind classifies inbound events.
type Kind int

const (
	KindUnknown Kind = iota
	KindCommand
	KindText
	KindContact
	KindPhoto
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindContact:
		return "contact"
	case KindPhoto:
		return "photo"
	case KindAction:
		return "action"
	}
	return "unknown"
}

// User is the sender's display identity.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// Display renders "First Last @handle • id:123".
func (u User) Display() string {
	handle := "(sans pseudo)"
	if u.Username != "" {
		handle = "@" + u.Username
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	return strings.TrimSpace(fmt.Sprintf("%s %s • id:%d", name, handle, u.ID))
}

// Event is one inbound interaction for a session.
type Event struct {
	UpdateID  int
	Kind      Kind
	SessionID int64
	ChatID    int64
	User      User

	// Command holds the command name without slash; Text holds free text or command arguments.
	Command string
	Text    string
	Phone   string
	Photo   string

	// Action fields: the button token, the callback id to answer and the message that carried it.
	Action          string
	ActionID        string
	MessageID       int
	MessageHasMedia bool
}
