// Package handlers exposes the REST endpoints of the content studio.
//
// Handlers are transport-thin: they bind and check input, call application
// services through the narrow contracts below, and translate results into
// HTTP responses. Business rules live in the services package.
package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/http/middleware"
	"github.com/tbourn/ai-content-studio/internal/search"
	"github.com/tbourn/ai-content-studio/internal/services"
	"github.com/tbourn/ai-content-studio/internal/utils"
)

//
// Service contracts (context-aware where they touch storage)
//

// ScriptService generates and serves scripts.
type ScriptService interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Script, error)
	Get(ctx context.Context, id string) (*domain.Script, error)
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Script, int64, error)
	Recent(ctx context.Context, n int) ([]domain.Script, error)
	Search(ctx context.Context, query string, k int) ([]search.Result, error)
	// Stats returns the script count and newest created_at, for ETags.
	Stats(ctx context.Context, userID string) (int64, *time.Time, error)
}

// VideoService renders and serves videos.
type VideoService interface {
	CreateVideo(ctx context.Context, req services.VideoRequest) (*domain.Video, error)
	GetVideo(ctx context.Context, id string) (*domain.Video, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Video, error)
}

// UserService manages registered users.
type UserService interface {
	Register(ctx context.Context, email, name, plan string) (*domain.User, error)
	Profile(ctx context.Context, id string) (*services.Profile, error)
	ChangePlan(ctx context.Context, id, plan string) (*services.PlanChange, error)
	Stats(ctx context.Context, id string) (*services.UserStats, error)
	Count(ctx context.Context) (int64, error)
}

// AnalyticsService reads the in-process activity counters.
type AnalyticsService interface {
	SystemStats() services.SystemStats
	UserDashboard(userID string) services.UserDashboard
	UsageData(userID string, days int) services.UsageReport
	TopUsers(limit int) []services.TopUser
	Uptime() time.Duration
}

// CostService reports tracked spend.
type CostService interface {
	Analysis(userID string) services.CostAnalysis
}

// CostEstimator prices work before it is done.
type CostEstimator interface {
	EstimateScript(text string) services.CostEstimate
	EstimateVideo(seconds int) services.CostEstimate
	Optimize(userID string, targetSavings float64, now time.Time) services.OptimizationResult
}

// AppInfo identifies the running service in /health and the dashboard.
type AppInfo struct {
	Service     string
	Version     string
	Environment string
}

// Deps groups everything the handlers need. Now defaults to time.Now.
type Deps struct {
	Scripts   ScriptService
	Videos    VideoService
	Users     UserService
	Analytics AnalyticsService
	Costs     CostService
	Estimator CostEstimator
	Info      AppInfo
	Now       func() time.Time
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	scripts   ScriptService
	videos    VideoService
	users     UserService
	analytics AnalyticsService
	costs     CostService
	estimator CostEstimator
	info      AppInfo
	now       func() time.Time
}

// New constructs Handlers bound to d.
func New(d Deps) *Handlers {
	now := d.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Handlers{
		scripts:   d.Scripts,
		videos:    d.Videos,
		users:     d.Users,
		analytics: d.Analytics,
		costs:     d.Costs,
		estimator: d.Estimator,
		info:      d.Info,
		now:       now,
	}
}

// userID returns the caller identity set by middleware.UserIdentity, falling
// back to the X-User-ID header so handlers work without the middleware in
// tests. Anonymous callers get "".
func userID(c *gin.Context) string {
	if uid := middleware.UserID(c); uid != "" {
		return uid
	}
	if c != nil && c.Request != nil {
		return strings.TrimSpace(c.GetHeader(middleware.HeaderUserID))
	}
	return ""
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses page and page_size, bounding them to [1, ..] and
// [1, 100] with defaults 1 and 20.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = max(1, utils.AtoiDefault(c.Query("page"), defaultPage))
	pageSize = utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// queryInt reads an int query parameter bounded to [lo, hi].
func queryInt(c *gin.Context, name string, def, lo, hi int) int {
	return utils.Clamp(utils.AtoiDefault(c.Query(name), def), lo, hi)
}
