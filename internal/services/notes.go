// Package services – NoteService
//
// Notes are free-form key/value annotations staff attach to a user from
// inside the dedicated thread. Keys are case-sensitive and unique per user;
// saving an existing key overwrites its value in place.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-support-bridge/internal/domain"
	"github.com/tbourn/go-support-bridge/internal/repo"
)

// NoteService implements the note use-cases.
type NoteService struct {
	// DB is the database handle used for all note operations.
	DB *gorm.DB
}

// Save upserts a note. Key and value are trimmed; a key that is empty after
// trimming yields ErrEmptyNoteKey.
func (s *NoteService) Save(ctx context.Context, u *domain.User, key, value string) (*domain.Note, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptyNoteKey
	}
	return repo.UpsertNote(ctx, s.DB, u.ID, key, strings.TrimSpace(value))
}

// List returns all notes for u in insertion order.
func (s *NoteService) List(ctx context.Context, u *domain.User) ([]domain.Note, error) {
	return repo.ListNotes(ctx, s.DB, u.ID)
}

// Delete removes the note with the given key. Absence is not an error.
func (s *NoteService) Delete(ctx context.Context, u *domain.User, key string) error {
	return repo.DeleteNote(ctx, s.DB, u.ID, strings.TrimSpace(key))
}
