// Package services – LinkService
//
// This file implements the correlation store. Every successful forward
// records a link from the original message (as seen on its origin side) to
// the forwarded copy, keyed by (user, direction, original id). A later edit
// of the original uses the link to find the counterpart and the stored
// snapshot to diff against.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-support-bridge/internal/domain"
	"github.com/tbourn/go-support-bridge/internal/repo"
	"github.com/tbourn/go-support-bridge/internal/transport"
)

// LinkService records and resolves message correlations.
type LinkService struct {
	// DB is the database handle used for all link operations.
	DB *gorm.DB
}

// Record serializes the original content as the immutable snapshot and
// inserts the correlation entry. A second record for the same (user,
// direction, original id) violates the uniqueness invariant and yields
// ErrDuplicateLink.
func (s *LinkService) Record(ctx context.Context, u *domain.User, dir domain.Direction, originalID transport.MessageID, original transport.Content, forwarded transport.MessageID) (*domain.MessageLink, error) {
	snap, err := json.Marshal(original)
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}
	l := &domain.MessageLink{
		UserID:     u.ID,
		Direction:  dir,
		OriginalID: int64(originalID),
		Snapshot:   snap,
		ForwardID:  int64(forwarded),
	}
	if err := repo.CreateLink(ctx, s.DB, l); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return nil, ErrDuplicateLink
		}
		return nil, err
	}
	return l, nil
}

// Find returns the correlation for an original message previously relayed in
// the given direction, or repo.ErrNotFound when the message was never seen.
func (s *LinkService) Find(ctx context.Context, u *domain.User, dir domain.Direction, originalID transport.MessageID) (*domain.MessageLink, error) {
	return repo.FindLink(ctx, s.DB, u.ID, dir, int64(originalID))
}

// Snapshot decodes the pre-edit content stored with a link.
func (s *LinkService) Snapshot(l *domain.MessageLink) (transport.Content, error) {
	var c transport.Content
	if err := json.Unmarshal(l.Snapshot, &c); err != nil {
		return transport.Content{}, fmt.Errorf("decode snapshot for link %d: %w", l.ID, err)
	}
	return c, nil
}

// isDuplicate detects unique-constraint violations across drivers that do
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite: "UNIQUE constraint failed"
	// Postgres: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
