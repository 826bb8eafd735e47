// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Script
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a script is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateScript inserts s as is. The id and timestamps are assigned by the
// caller; scripts are never updated afterwards.
func CreateScript(ctx context.Context, db *gorm.DB, s *domain.Script) error {
	return db.WithContext(ctx).Create(s).Error
}

// GetScript fetches a single script by id, or ErrNotFound if missing.
func GetScript(ctx context.Context, db *gorm.DB, id string) (*domain.Script, error) {
	var s domain.Script
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CountScripts returns the number of scripts owned by userID.
func CountScripts(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Script{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListScriptsPage returns a page of userID's scripts, newest first.
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListScriptsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Script, error) {
	var out []domain.Script
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// RecentScripts returns the newest scripts across all users.
func RecentScripts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Script, error) {
	var out []domain.Script
	err := db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
