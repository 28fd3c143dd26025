// Package services – UserService
//
// This file implements the identity/thread mapper. Every external identity
// owns exactly one user row and one dedicated thread in the staff space;
// Resolve provisions both lazily on first contact. Thread provisioning is a
// two-phase operation (create the thread on the transport, then insert the
// row) and is not atomic across the two systems: when the insert fails the
// already-created thread is orphaned. The returned error carries the thread
// id so the caller can log it for out-of-band reconciliation; no automatic
// compensation is attempted.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-support-bridge/internal/domain"
	"github.com/tbourn/go-support-bridge/internal/repo"
	"github.com/tbourn/go-support-bridge/internal/transport"
)

// UserService maps transport identities and staff threads to user rows.
type UserService struct {
	// DB is the database handle used for all user operations.
	DB *gorm.DB
	// Relay provisions and labels dedicated threads.
	Relay transport.Relay
	// Space is the shared staff space threads are created in.
	Space transport.Address
}

// Lookup fetches the user owning an external identity without provisioning
// anything. Returns repo.ErrNotFound for first-contact identities.
func (s *UserService) Lookup(ctx context.Context, externalID int64) (*domain.User, error) {
	return repo.GetUserByExternalID(ctx, s.DB, externalID)
}

// Resolve returns the user owning externalID, creating the user and their
// dedicated thread on first contact.
//
// First contact runs in two phases: a thread is created under a provisional
// label derived from the display metadata, the row is inserted referencing
// it, and the thread is then renamed so its label carries the stable
// storage-assigned id (e.g. "#T00042 Ada Lovelace"). A failed insert after
// thread creation leaves the thread orphaned; see the package comment.
//
// For known users the stored display metadata is refreshed when the
// transport reports different values.
func (s *UserService) Resolve(ctx context.Context, externalID int64, p transport.Profile) (*domain.User, error) {
	u, err := repo.GetUserByExternalID(ctx, s.DB, externalID)
	if err == nil {
		if applyProfile(u, p) {
			if err := repo.UpdateUser(ctx, s.DB, u); err != nil {
				return nil, err
			}
		}
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	thread, err := s.Relay.CreateThread(ctx, s.Space, threadLabel(0, p))
	if err != nil {
		return nil, fmt.Errorf("provision thread: %w", err)
	}

	u = &domain.User{ExternalID: externalID, ThreadID: int64(thread)}
	applyProfile(u, p)
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		return nil, fmt.Errorf("insert user for provisioned thread %d: %w", thread, err)
	}

	if err := s.Relay.RenameThread(ctx, s.Space, thread, threadLabel(u.ID, p)); err != nil {
		return nil, fmt.Errorf("label thread %d: %w", thread, err)
	}
	return u, nil
}

// ResolveThread maps a staff-space thread back to its owning user. Returns
// ErrUnknownThread for threads the bridge did not provision.
func (s *UserService) ResolveThread(ctx context.Context, thread transport.ThreadID) (*domain.User, error) {
	u, err := repo.GetUserByThreadID(ctx, s.DB, int64(thread))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnknownThread
	}
	return u, err
}

// threadLabel renders the human-scannable thread label. With id zero the
// label is provisional, used only until the storage-assigned id is known.
func threadLabel(id int64, p transport.Profile) string {
	if id == 0 {
		return strings.TrimSpace(fmt.Sprintf("#T %s %s", p.FirstName, p.LastName))
	}
	return strings.TrimSpace(fmt.Sprintf("#T%05d %s %s", id, p.FirstName, p.LastName))
}

// applyProfile copies non-empty display metadata onto the row and reports
// whether anything changed.
func applyProfile(u *domain.User, p transport.Profile) bool {
	changed := false
	set := func(dst **string, v string) {
		if v == "" {
			return
		}
		if *dst == nil || **dst != v {
			*dst = &v
			changed = true
		}
	}
	set(&u.FirstName, p.FirstName)
	set(&u.LastName, p.LastName)
	set(&u.Locale, p.Locale)
	return changed
}
