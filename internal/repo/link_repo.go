// Package repo implements the persistence port for bridge entities, backed
// by GORM. This file provides repository functions for the MessageLink model
// (the correlation between an original message and its forwarded copy).
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-support-bridge/internal/domain"
)

// CreateLink inserts a new correlation row. The (user_id, direction,
// original_id) unique index rejects a second link for the same original
// message; callers treat that as a logic error since every original id is
// observed at most once.
func CreateLink(ctx context.Context, db *gorm.DB, l *domain.MessageLink) error {
	l.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(l).Error
}

// FindLink fetches the correlation for an original message seen earlier in
// the given direction, or ErrNotFound when the message was never relayed.
func FindLink(ctx context.Context, db *gorm.DB, userID int64, dir domain.Direction, originalID int64) (*domain.MessageLink, error) {
	var l domain.MessageLink
	err := db.WithContext(ctx).
		Where("user_id = ? AND direction = ? AND original_id = ?", userID, dir, originalID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}
