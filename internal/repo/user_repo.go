package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

// ErrDuplicate indicates that a unique constraint rejected the insert
// (a taken email, or an idempotency key already recorded).
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation matches both the gorm translated error and the plain-text
// errors glebarez/sqlite often returns for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// CreateUser inserts u and returns ErrDuplicate when the email is taken.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetUser fetches a user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CountUsers returns the number of registered users.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

// UpdateUserPlan sets the plan of user id. Returns ErrNotFound when no row
// matched.
func UpdateUserPlan(ctx context.Context, db *gorm.DB, id, plan string, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"plan": plan, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var usageColumns = map[domain.UsageKind]string{
	domain.UsageScriptGeneration: "usage_scripts_generated",
	domain.UsageVideoCreation:    "usage_videos_created",
	domain.UsageAPICall:          "usage_api_calls_made",
}

// IncrementUsage bumps one usage counter of user id atomically.
// Unknown kinds are ignored; a missing user yields ErrNotFound.
func IncrementUsage(ctx context.Context, db *gorm.DB, id string, kind domain.UsageKind) error {
	col, ok := usageColumns[kind]
	if !ok {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn(col, gorm.Expr(col+" + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
