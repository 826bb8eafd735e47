// Analytics HTTP handlers:
//   - GET /api/analytics/dashboard
//   - GET /api/analytics/top-users
//   - GET /api/analytics/users/{id}
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/services"
	"github.com/tbourn/ai-content-studio/internal/sysutil"
)

const dashboardRecentScripts = 5

// DashboardStats extends the analytics counters with service status.
type DashboardStats struct {
	services.SystemStats
	Status          string `json:"status" example:"operational"`
	Version         string `json:"version" example:"2.0.0"`
	RegisteredUsers int64  `json:"registered_users"`
}

// Performance summarizes request health.
type Performance struct {
	AverageResponseTime float64 `json:"average_response_time"`
	SuccessRate         float64 `json:"success_rate"`
	ErrorRate           float64 `json:"error_rate"`
}

// DashboardResponse is the service-wide dashboard.
type DashboardResponse struct {
	Service       string          `json:"service"`
	SystemStats   DashboardStats  `json:"system_stats"`
	RecentScripts []domain.Script `json:"recent_scripts"`
	Performance   Performance     `json:"performance"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// TopUsersResponse ranks users by activity.
type TopUsersResponse struct {
	Users []services.TopUser `json:"users"`
}

// UserAnalyticsResponse is one user's dashboard and usage report.
type UserAnalyticsResponse struct {
	Dashboard   services.UserDashboard `json:"dashboard"`
	UsageReport services.UsageReport   `json:"usage_report"`
}

// Dashboard godoc
// @ID          analyticsDashboard
// @Summary     Service dashboard
// @Tags        Analytics
// @Produce     json
// @Success     200  {object}  handlers.DashboardResponse
// @Router      /api/analytics/dashboard [get]
func (h *Handlers) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	st := h.analytics.SystemStats()

	recent, err := h.scripts.Recent(ctx, dashboardRecentScripts)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("dashboard: recent scripts unavailable")
	}
	if recent == nil {
		recent = []domain.Script{}
	}
	registered, err := h.users.Count(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("dashboard: user count unavailable")
	}

	ok(c, http.StatusOK, DashboardResponse{
		Service: h.info.Service,
		SystemStats: DashboardStats{
			SystemStats:     st,
			Status:          "operational",
			Version:         h.info.Version,
			RegisteredUsers: registered,
		},
		RecentScripts: recent,
		Performance: Performance{
			AverageResponseTime: st.AverageResponseTime,
			SuccessRate:         sysutil.Round(100-st.ErrorRate, 2),
			ErrorRate:           st.ErrorRate,
		},
		GeneratedAt: h.now(),
	})
}

// TopUsers godoc
// @ID          topUsers
// @Summary     Most active users
// @Tags        Analytics
// @Produce     json
// @Param       limit  query  int  false  "Max users"  minimum(1) maximum(100) default(10)
// @Success     200  {object}  handlers.TopUsersResponse
// @Router      /api/analytics/top-users [get]
func (h *Handlers) TopUsers(c *gin.Context) {
	users := h.analytics.TopUsers(queryInt(c, "limit", 10, 1, 100))
	if users == nil {
		users = []services.TopUser{}
	}
	ok(c, http.StatusOK, TopUsersResponse{Users: users})
}

// UserAnalytics godoc
// @ID          userAnalytics
// @Summary     Per-user dashboard and usage report
// @Tags        Analytics
// @Produce     json
// @Param       id    path   string  true   "User ID"
// @Param       days  query  int     false  "Report period"  minimum(1) maximum(365) default(30)
// @Success     200  {object}  handlers.UserAnalyticsResponse
// @Router      /api/analytics/users/{id} [get]
func (h *Handlers) UserAnalytics(c *gin.Context) {
	id := c.Param("id")
	ok(c, http.StatusOK, UserAnalyticsResponse{
		Dashboard:   h.analytics.UserDashboard(id),
		UsageReport: h.analytics.UsageData(id, queryInt(c, "days", 30, 1, 365)),
	})
}
