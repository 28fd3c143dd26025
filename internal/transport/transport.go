// Package transport defines the boundary between the relay core and whatever
// messaging system carries the traffic. The core only ever sees Event values
// coming in and calls the Relay interface going out; the concrete binding
// lives in the httprelay subpackage and test doubles in transporttest.
package transport

import "context"

// Address identifies a conversation endpoint on the transport: a user's
// private conversation or the shared staff space.
type Address int64

// MessageID identifies a message within a conversation.
type MessageID int64

// ThreadID identifies a dedicated sub-thread inside the staff space. Zero
// means "no thread" (the general area, or a private conversation).
type ThreadID int64

// Profile is the advisory display metadata the transport attaches to a
// sender. All fields may be empty.
type Profile struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Locale    string `json:"locale,omitempty"`
}

// Event is one inbound occurrence delivered by the transport: a new or
// edited message, tagged with where it came from. Commands are ordinary text
// events; the dispatcher recognizes them by their leading slash.
type Event struct {
	// Origin is the conversation the event arrived in. For private
	// conversations this doubles as the sender's external identity.
	Origin Address `json:"origin"`
	// Private is true for a user's one-on-one conversation with the
	// bridge, false for the staff space.
	Private bool `json:"private"`
	// Thread is the staff-space thread the event was posted in, zero
	// when the event is private or landed outside any thread.
	Thread ThreadID `json:"thread,omitempty"`
	// Message is the event's message id on its origin side.
	Message MessageID `json:"message"`
	// Edited is true when this event revises an earlier message rather
	// than introducing a new one.
	Edited bool `json:"edited,omitempty"`
	// From describes the sender.
	From Profile `json:"from"`
	// Content is the message payload.
	Content Content `json:"content"`
}

// Relay is the outbound capability surface of the transport. Every call is a
// fallible remote operation; the core performs no retries, so a failed call
// aborts the event being processed.
type Relay interface {
	// Send delivers content to an address, inside a thread when thread is
	// non-zero, and returns the id the transport assigned to the copy.
	// The operation used on the wire is selected by content.Kind.
	Send(ctx context.Context, to Address, thread ThreadID, content Content) (MessageID, error)

	// EditText replaces the text of a previously sent message using
	// content.Text, content.Entities and content.Mode.
	EditText(ctx context.Context, at Address, msg MessageID, content Content) error

	// EditCaption replaces the caption of a previously sent media message
	// using content.Caption and content.CaptionEntities.
	EditCaption(ctx context.Context, at Address, msg MessageID, content Content) error

	// EditLocation moves a previously sent live location.
	EditLocation(ctx context.Context, at Address, msg MessageID, lat, lon float64) error

	// CreateThread provisions a new dedicated thread in the staff space.
	CreateThread(ctx context.Context, space Address, label string) (ThreadID, error)

	// RenameThread updates a thread's label.
	RenameThread(ctx context.Context, space Address, thread ThreadID, label string) error

	// Pin pins a message in its conversation.
	Pin(ctx context.Context, at Address, msg MessageID) error

	// React sets an emoji reaction on a message.
	React(ctx context.Context, at Address, msg MessageID, emoji string) error
}
