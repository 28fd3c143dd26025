// Package repo implements the persistence port for bridge entities, backed
// by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-support-bridge/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for consistency across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// GetUserByExternalID fetches the user owning the given transport identity,
// or ErrNotFound.
func GetUserByExternalID(ctx context.Context, db *gorm.DB, externalID int64) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByThreadID fetches the user owning the given dedicated thread, or
// ErrNotFound.
func GetUserByThreadID(ctx context.Context, db *gorm.DB, threadID int64) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user row. The storage engine assigns u.ID; the
// unique indexes on external_id and thread_id reject duplicates with the
// driver's unique-constraint error.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	u.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(u).Error
}

// UpdateUser persists the full user row (info-card message id and display
// metadata are the only fields the core ever mutates). Returns ErrNotFound
// when the row vanished underneath us.
func UpdateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"info_message_id": u.InfoMessageID,
			"first_name":      u.FirstName,
			"last_name":       u.LastName,
			"locale":          u.Locale,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
