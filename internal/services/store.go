package services

import (
	"context"
	"time"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

// ScriptStore persists generated scripts. Implementations return
// repo.ErrNotFound for unknown ids.
type ScriptStore interface {
	SaveScript(ctx context.Context, s *domain.Script) error
	GetScript(ctx context.Context, id string) (*domain.Script, error)

	// ListScripts returns a newest-first page of a user's scripts.
	ListScripts(ctx context.Context, userID string, offset, limit int) ([]domain.Script, error)
	CountScripts(ctx context.Context, userID string) (int64, error)

	// RecentScripts returns the newest scripts across all users.
	RecentScripts(ctx context.Context, limit int) ([]domain.Script, error)

	// ScriptsStats returns count and newest created_at for ETag computation.
	ScriptsStats(ctx context.Context, userID string) (int64, *time.Time, error)
}

// VideoStore persists created videos.
type VideoStore interface {
	SaveVideo(ctx context.Context, v *domain.Video) error
	GetVideo(ctx context.Context, id string) (*domain.Video, error)
	ListVideos(ctx context.Context, userID string, offset, limit int) ([]domain.Video, error)
}

// UserStore persists registered users and their usage counters.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUserPlan(ctx context.Context, id, plan string, now time.Time) error
	IncrementUsage(ctx context.Context, id string, kind domain.UsageKind) error
}
