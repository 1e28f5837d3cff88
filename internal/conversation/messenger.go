package conversation

import "context"

// Button is either an action button (Action set) or a link (URL set).
type Button struct {
	Text   string
	Action string
	URL    string
}

// Keyboard is rows of buttons.
type Keyboard [][]Button

// ContactRequest asks the client to offer a "share my phone number" button.
type ContactRequest struct {
	Label       string
	Placeholder string
}

// Message is an outbound message. Markdown marks the text as lightly formatted.
type Message struct {
	Text     string
	Markdown bool
	Keyboard Keyboard
	Contact  *ContactRequest
}

// Messenger is the outbound side of the transport.
type Messenger interface {
	Send(ctx context.Context, chatID int64, msg Message) error
	// Edit replaces the text, or the caption when the message carries media.
	Edit(ctx context.Context, chatID int64, messageID int, hasMedia bool, msg Message) error
	EditPhoto(ctx context.Context, chatID int64, messageID int, photo string, msg Message) error
	EditKeyboard(ctx context.Context, chatID int64, messageID int, kb Keyboard) error
	AnswerAction(ctx context.Context, actionID, text string, alert bool) error
}
