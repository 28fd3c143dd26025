// Package services – InfoCardService
//
// The info card is a pinned message at the top of a user's dedicated thread
// summarizing the user's identity plus every current note. It is rendered on
// first contact and re-rendered after every note mutation so staff always
// see the current state without scrolling.
package services

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/tbourn/go-support-bridge/internal/domain"
	"github.com/tbourn/go-support-bridge/internal/i18n"
	"github.com/tbourn/go-support-bridge/internal/repo"
	"github.com/tbourn/go-support-bridge/internal/transport"
)

// InfoCardService renders and refreshes per-user info cards.
type InfoCardService struct {
	// DB is the database handle used to read notes and persist the card
	// message id.
	DB *gorm.DB
	// Relay delivers and edits the card message.
	Relay transport.Relay
	// Space is the shared staff space the card lives in.
	Space transport.Address
	// Bundle localizes the card header. The card is staff-facing, so it
	// always renders in the bundle's default language.
	Bundle *i18n.Bundle
}

// Refresh re-renders the card for u. When the user already has a card it is
// edited in place; otherwise a new message is sent into the dedicated
// thread, pinned, and its id persisted on the user row (u is updated to
// match). Exactly one transport write happens per call, plus the pin and the
// row update on first creation.
func (s *InfoCardService) Refresh(ctx context.Context, u *domain.User) error {
	text, err := s.render(ctx, u)
	if err != nil {
		return err
	}

	if u.InfoMessageID != nil {
		return s.Relay.EditText(ctx, s.Space, transport.MessageID(*u.InfoMessageID), transport.HTML(text))
	}

	msg, err := s.Relay.Send(ctx, s.Space, transport.ThreadID(u.ThreadID), transport.HTML(text))
	if err != nil {
		return err
	}
	if err := s.Relay.Pin(ctx, s.Space, msg); err != nil {
		return err
	}
	id := int64(msg)
	u.InfoMessageID = &id
	return repo.UpdateUser(ctx, s.DB, u)
}

// render builds the card body: localized header, then one line per note.
func (s *InfoCardService) render(ctx context.Context, u *domain.User) (string, error) {
	header := s.Bundle.Localize("", i18n.InfoHeader, map[string]string{
		"id":         strconv.FormatInt(u.ID, 10),
		"first_name": i18n.Sanitize(deref(u.FirstName)),
		"last_name":  i18n.Sanitize(deref(u.LastName)),
		"lang":       i18n.Sanitize(deref(u.Locale)),
	})

	notes, err := repo.ListNotes(ctx, s.DB, u.ID)
	if err != nil {
		return "", err
	}
	text := header
	for _, n := range notes {
		text += fmt.Sprintf("<b>%s: </b><code>%s</code>\n", i18n.Sanitize(n.Key), i18n.Sanitize(n.Value))
	}
	return text, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
