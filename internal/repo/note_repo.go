// Package repo implements the persistence port for bridge entities, backed
// by GORM. This file provides repository functions for the Note model.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-support-bridge/internal/domain"
)

// UpsertNote saves a note for (userID, key): an existing row has its value
// replaced in place, otherwise a new row is inserted. The returned note
// carries the row that is now current.
func UpsertNote(ctx context.Context, db *gorm.DB, userID int64, key, value string) (*domain.Note, error) {
	var n domain.Note
	err := db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&n).Error
	switch {
	case err == nil:
		n.Value = value
		if err := db.WithContext(ctx).
			Model(&domain.Note{}).
			Where("id = ?", n.ID).
			Update("value", value).Error; err != nil {
			return nil, err
		}
		return &n, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		n = domain.Note{
			UserID:    userID,
			Key:       key,
			Value:     value,
			CreatedAt: time.Now().UTC(),
		}
		if err := db.WithContext(ctx).Create(&n).Error; err != nil {
			return nil, err
		}
		return &n, nil
	default:
		return nil, err
	}
}

// ListNotes returns all notes for a user in insertion order. An empty slice
// when the user has none.
func ListNotes(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Note, error) {
	var out []domain.Note
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// DeleteNote removes the note with the given key if present. Deleting an
// absent key is not an error.
func DeleteNote(ctx context.Context, db *gorm.DB, userID int64, key string) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		Delete(&domain.Note{}).Error
}
