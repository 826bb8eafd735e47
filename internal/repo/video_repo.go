package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

// CreateVideo inserts v. Segments are stored as a JSON column.
func CreateVideo(ctx context.Context, db *gorm.DB, v *domain.Video) error {
	return db.WithContext(ctx).Create(v).Error
}

// GetVideo fetches a video by id, or ErrNotFound.
func GetVideo(ctx context.Context, db *gorm.DB, id string) (*domain.Video, error) {
	var v domain.Video
	if err := db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVideosPage returns a page of userID's videos, newest first.
func ListVideosPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Video, error) {
	var out []domain.Video
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
