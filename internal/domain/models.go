// Package domain defines the persistence models for bridge users, message
// links, and notes. These types are mapped with GORM and form the core data
// layer of the support bridge.
package domain

import (
	"strings"
	"time"
)

// Direction tells which side of the bridge a relayed message originated on.
type Direction int16

const (
	// Incoming is a message relayed from a user into the staff space.
	Incoming Direction = iota
	// Outgoing is a message relayed from the staff space to a user.
	Outgoing
)

// String returns a stable label for logs and metrics.
func (d Direction) String() string {
	switch d {
	case Incoming:
		return "incoming"
	case Outgoing:
		return "outgoing"
	default:
		return "unknown"
	}
}

// User represents one external party talking to the staff team. Every user
// owns exactly one dedicated thread inside the shared staff space; both the
// external identity and the thread are unique per row, and a thread is never
// reassigned once provisioned.
//
// Fields:
//   - ID: numeric primary key assigned by storage, used as foreign key.
//   - ExternalID: the user's stable identifier on the transport (unique).
//   - ThreadID: the dedicated staff-side thread (unique).
//   - InfoMessageID: transport id of the pinned info card, nil until the
//     card has been rendered for the first time.
//   - FirstName / LastName / Locale: advisory display metadata used only
//     for rendering; any of them may be absent.
type User struct {
	ID            int64     `json:"id"          gorm:"primaryKey"`
	ExternalID    int64     `json:"external_id" gorm:"not null;uniqueIndex:ux_users_external"`
	ThreadID      int64     `json:"thread_id"   gorm:"not null;uniqueIndex:ux_users_thread"`
	InfoMessageID *int64    `json:"info_message_id,omitempty"`
	FirstName     *string   `json:"first_name,omitempty" gorm:"type:varchar(128)"`
	LastName      *string   `json:"last_name,omitempty"  gorm:"type:varchar(128)"`
	Locale        *string   `json:"locale,omitempty"     gorm:"type:varchar(16)"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// DisplayName joins the advisory first/last name, trimmed. Empty when the
// transport supplied no metadata.
func (u *User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	return strings.Join(parts, " ")
}

// MessageLink is the durable correlation between an original message and the
// copy produced when it was relayed to the other side. At most one link
// exists per (user, direction, original id); the snapshot is written once and
// never mutated, and is only read back to diff against a later edit of the
// same original message.
type MessageLink struct {
	ID         int64     `json:"id"          gorm:"primaryKey"`
	UserID     int64     `json:"user_id"     gorm:"not null;index;uniqueIndex:ux_links_user_dir_orig,priority:1"`
	Direction  Direction `json:"direction"   gorm:"not null;uniqueIndex:ux_links_user_dir_orig,priority:2;check:direction IN (0,1)"`
	OriginalID int64     `json:"original_id" gorm:"not null;uniqueIndex:ux_links_user_dir_orig,priority:3"`
	Snapshot   []byte    `json:"-"           gorm:"not null"`
	ForwardID  int64     `json:"forward_id"  gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`

	// User is the owning bridge user. Links are cascade-deleted if the
	// user row is ever removed administratively.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for MessageLink.
func (MessageLink) TableName() string { return "message_links" }

// Note is a free-form key/value annotation staff attach to a user. Keys are
// case-sensitive and unique per user; saving an existing key overwrites the
// value in place.
type Note struct {
	ID        int64     `json:"id"      gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:ux_notes_user_key,priority:1"`
	Key       string    `json:"key"     gorm:"type:varchar(255);not null;uniqueIndex:ux_notes_user_key,priority:2"`
	Value     string    `json:"value"   gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// User is the annotated bridge user.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Note.
func (Note) TableName() string { return "notes" }
