// Package services defines the business logic of the bridge: identity and
// thread mapping, the info card, message links, and notes. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the dispatcher; none of them
// is ever shown to an external party.
package services

import "errors"

var (
	// ErrUnknownThread indicates a staff-side event arrived in a thread
	// that is not mapped to any user. The dispatcher drops such events
	// silently.
	ErrUnknownThread = errors.New("thread is not mapped to a user")

	// ErrDuplicateLink indicates a correlation entry already exists for
	// (user, direction, original id). Each original message id is
	// observed once, so hitting this is a logic error.
	ErrDuplicateLink = errors.New("message link already recorded")

	// ErrEmptyNoteKey is returned when a note key is empty after
	// trimming.
	ErrEmptyNoteKey = errors.New("note key is empty")
)
