// Package services – Analytics
//
// Analytics keeps process-local usage counters and a bounded log of recent
// events. It backs the dashboards and the top-users ranking. State is lost on
// restart; nothing here is persisted.
package services

import (
	"sort"
	"sync"
	"time"

	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/sysutil"
)

const (
	defaultMaxEvents = 10000
	defaultMaxUsers  = 10000
	recentActivityN  = 10
	trendWindow      = 30 * 24 * time.Hour
)

// Trend labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Event is one tracked action.
type Event struct {
	Kind         domain.UsageKind `json:"event_type"`
	UserID       string           `json:"user_id"`
	Timestamp    time.Time        `json:"timestamp"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	Endpoint     string           `json:"endpoint,omitempty"`
	ResponseTime float64          `json:"response_time,omitempty"`
	StatusCode   int              `json:"status_code,omitempty"`
}

// UserActivity holds the per-user counters.
type UserActivity struct {
	ScriptsGenerated int       `json:"scripts_generated"`
	VideosCreated    int       `json:"videos_created"`
	APICalls         int       `json:"api_calls"`
	LastActivity     time.Time `json:"last_activity"`
}

// ActivityScore weighs scripts and videos over plain API calls, clamped to
// [0, 100].
func (u UserActivity) ActivityScore() float64 {
	s := float64(u.ScriptsGenerated)*2 + float64(u.VideosCreated)*3 + float64(u.APICalls)*0.1
	return sysutil.Round(min(100, max(0, s)), 2)
}

// SystemStats are the service-wide aggregates.
type SystemStats struct {
	TotalRequests         int     `json:"total_requests"`
	TotalScriptsGenerated int     `json:"total_scripts_generated"`
	TotalVideosCreated    int     `json:"total_videos_created"`
	TotalUsers            int     `json:"total_users"`
	AverageResponseTime   float64 `json:"average_response_time"`
	ErrorRate             float64 `json:"error_rate"`
	UptimeSeconds         float64 `json:"uptime_seconds"`
	UptimeHuman           string  `json:"uptime_human"`
}

// UserTrends summarizes how a user's activity moves over the last 30 days.
type UserTrends struct {
	ScriptGenerationTrend string  `json:"script_generation_trend"`
	VideoCreationTrend    string  `json:"video_creation_trend"`
	ActivityScore         float64 `json:"activity_score"`
}

// RecentActivity lists a user's latest script and video events.
type RecentActivity struct {
	Scripts []Event `json:"scripts"`
	Videos  []Event `json:"videos"`
}

// UserDashboard is the per-user analytics view.
type UserDashboard struct {
	UserID         string         `json:"user_id"`
	UserMetrics    UserActivity   `json:"user_metrics"`
	RecentActivity RecentActivity `json:"recent_activity"`
	Trends         UserTrends     `json:"trends"`
	SystemStats    SystemStats    `json:"system_stats"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// DailyUsage counts one calendar day (UTC).
type DailyUsage struct {
	Date     string `json:"date"`
	Scripts  int    `json:"scripts"`
	Videos   int    `json:"videos"`
	APICalls int    `json:"api_calls"`
}

// UsagePatterns shows when a user is active. Weekdays start at Monday = 0.
type UsagePatterns struct {
	PeakHour           int     `json:"peak_hour"`
	PeakDay            int     `json:"peak_day"`
	HourlyDistribution [24]int `json:"hourly_distribution"`
	WeeklyDistribution [7]int  `json:"weekly_distribution"`
}

// UsageReport is the usage of one user over a period of days.
type UsageReport struct {
	UserID        string        `json:"user_id"`
	PeriodDays    int           `json:"period_days"`
	TotalScripts  int           `json:"total_scripts"`
	TotalVideos   int           `json:"total_videos"`
	TotalAPICalls int           `json:"total_api_calls"`
	DailyUsage    []DailyUsage  `json:"daily_usage"`
	UsagePatterns UsagePatterns `json:"usage_patterns"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

// TopUser is one row of the activity ranking.
type TopUser struct {
	UserID        string  `json:"user_id"`
	ActivityScore float64 `json:"activity_score"`
	UserActivity
}

// Analytics is safe for concurrent use.
type Analytics struct {
	mu sync.Mutex

	now       func() time.Time
	startedAt time.Time
	maxEvents int
	maxUsers  int

	events []Event
	users  map[string]*UserActivity

	totalRequests int
	totalScripts  int
	totalVideos   int
	errorCount    int
	avgResponse   float64
}

// NewAnalytics returns an empty tracker whose uptime starts now.
func NewAnalytics() *Analytics {
	return newAnalyticsAt(time.Now)
}

func newAnalyticsAt(now func() time.Time) *Analytics {
	return &Analytics{
		now:       now,
		startedAt: now(),
		maxEvents: defaultMaxEvents,
		maxUsers:  defaultMaxUsers,
		users:     make(map[string]*UserActivity),
	}
}

func (a *Analytics) user(id string) *UserActivity {
	u, ok := a.users[id]
	if !ok {
		if len(a.users) >= a.maxUsers {
			a.evictIdlest()
		}
		u = &UserActivity{}
		a.users[id] = u
	}
	return u
}

// evictIdlest drops the user whose last activity is oldest, keeping the
// per-user table bounded by maxUsers.
func (a *Analytics) evictIdlest() {
	var (
		victim string
		oldest time.Time
		found  bool
	)
	for id, u := range a.users {
		if !found || u.LastActivity.Before(oldest) {
			victim, oldest, found = id, u.LastActivity, true
		}
	}
	if found {
		delete(a.users, victim)
	}
}

func (a *Analytics) append(e Event) {
	if len(a.events) >= a.maxEvents {
		a.events = append(a.events[:0:0], a.events[1:]...)
	}
	a.events = append(a.events, e)
}

func anonymousIfBlank(userID string) string {
	if userID == "" {
		return "anonymous"
	}
	return userID
}

// TrackScript records a generated script.
func (a *Analytics) TrackScript(userID string, meta map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	userID = anonymousIfBlank(userID)
	now := a.now()
	a.append(Event{Kind: domain.UsageScriptGeneration, UserID: userID, Timestamp: now, Metadata: meta})
	a.totalScripts++
	u := a.user(userID)
	u.ScriptsGenerated++
	u.LastActivity = now
}

// TrackVideo records a created video.
func (a *Analytics) TrackVideo(userID string, meta map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	userID = anonymousIfBlank(userID)
	now := a.now()
	a.append(Event{Kind: domain.UsageVideoCreation, UserID: userID, Timestamp: now, Metadata: meta})
	a.totalVideos++
	u := a.user(userID)
	u.VideosCreated++
	u.LastActivity = now
}

// TrackAPICall records one served request. Status codes of 400 and above
// count as errors.
func (a *Analytics) TrackAPICall(userID, endpoint string, responseTime time.Duration, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	userID = anonymousIfBlank(userID)
	now := a.now()
	secs := responseTime.Seconds()
	a.append(Event{Kind: domain.UsageAPICall, UserID: userID, Timestamp: now, Endpoint: endpoint, ResponseTime: secs, StatusCode: status})

	a.totalRequests++
	a.avgResponse += (secs - a.avgResponse) / float64(a.totalRequests)
	if status >= 400 {
		a.errorCount++
	}
	u := a.user(userID)
	u.APICalls++
	u.LastActivity = now
}

// SystemStats returns a snapshot of the service-wide aggregates.
func (a *Analytics) SystemStats() SystemStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.systemStatsLocked()
}

func (a *Analytics) systemStatsLocked() SystemStats {
	up := a.now().Sub(a.startedAt)
	return SystemStats{
		TotalRequests:         a.totalRequests,
		TotalScriptsGenerated: a.totalScripts,
		TotalVideosCreated:    a.totalVideos,
		TotalUsers:            len(a.users),
		AverageResponseTime:   sysutil.Round(a.avgResponse, 3),
		ErrorRate:             sysutil.Round(float64(a.errorCount)/float64(max(1, a.totalRequests))*100, 2),
		UptimeSeconds:         sysutil.Round(up.Seconds(), 2),
		UptimeHuman:           sysutil.HumanDuration(up),
	}
}

// Uptime reports how long the tracker has been running.
func (a *Analytics) Uptime() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now().Sub(a.startedAt)
}

// UserDashboard builds the analytics view of one user.
func (a *Analytics) UserDashboard(userID string) UserDashboard {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	var metrics UserActivity
	if u, ok := a.users[userID]; ok {
		metrics = *u
	}

	var scripts, videos []Event
	for i := len(a.events) - 1; i >= 0; i-- {
		e := a.events[i]
		if e.UserID != userID {
			continue
		}
		switch {
		case e.Kind == domain.UsageScriptGeneration && len(scripts) < recentActivityN:
			scripts = append(scripts, e)
		case e.Kind == domain.UsageVideoCreation && len(videos) < recentActivityN:
			videos = append(videos, e)
		}
	}
	if scripts == nil {
		scripts = []Event{}
	}
	if videos == nil {
		videos = []Event{}
	}

	return UserDashboard{
		UserID:         userID,
		UserMetrics:    metrics,
		RecentActivity: RecentActivity{Scripts: scripts, Videos: videos},
		Trends: UserTrends{
			ScriptGenerationTrend: a.trendLocked(userID, domain.UsageScriptGeneration, now),
			VideoCreationTrend:    a.trendLocked(userID, domain.UsageVideoCreation, now),
			ActivityScore:         metrics.ActivityScore(),
		},
		SystemStats: a.systemStatsLocked(),
		GeneratedAt: now,
	}
}

// trendLocked compares the two halves of the trailing 30 days. Fewer than
// two events is always stable.
func (a *Analytics) trendLocked(userID string, kind domain.UsageKind, now time.Time) string {
	start := now.Add(-trendWindow)
	mid := now.Add(-trendWindow / 2)
	var first, second, total int
	for _, e := range a.events {
		if e.UserID != userID || e.Kind != kind || e.Timestamp.Before(start) {
			continue
		}
		total++
		if e.Timestamp.Before(mid) {
			first++
		} else {
			second++
		}
	}
	if total < 2 {
		return TrendStable
	}
	switch {
	case float64(second) > float64(first)*1.2:
		return TrendIncreasing
	case float64(second) < float64(first)*0.8:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// UsageData reports a user's daily usage over the last days days, oldest day
// first. Non-positive days default to 30.
func (a *Analytics) UsageData(userID string, days int) UsageReport {
	if days <= 0 {
		days = 30
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	first := today.AddDate(0, 0, -(days - 1))

	daily := make([]DailyUsage, days)
	for i := range daily {
		daily[i].Date = first.AddDate(0, 0, i).Format(time.DateOnly)
	}

	rep := UsageReport{UserID: userID, PeriodDays: days, GeneratedAt: now}
	for _, e := range a.events {
		ts := e.Timestamp.UTC()
		if e.UserID != userID || ts.Before(first) {
			continue
		}
		d := &daily[min(days-1, int(ts.Sub(first)/(24*time.Hour)))]
		switch e.Kind {
		case domain.UsageScriptGeneration:
			rep.TotalScripts++
			d.Scripts++
		case domain.UsageVideoCreation:
			rep.TotalVideos++
			d.Videos++
		case domain.UsageAPICall:
			rep.TotalAPICalls++
			d.APICalls++
		}
		rep.UsagePatterns.HourlyDistribution[ts.Hour()]++
		rep.UsagePatterns.WeeklyDistribution[(int(ts.Weekday())+6)%7]++
	}
	rep.DailyUsage = daily
	rep.UsagePatterns.PeakHour = argmax(rep.UsagePatterns.HourlyDistribution[:])
	rep.UsagePatterns.PeakDay = argmax(rep.UsagePatterns.WeeklyDistribution[:])
	return rep
}

func argmax(xs []int) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

// TopUsers ranks users by activity score, highest first. Ties are broken by
// user id. Non-positive limits default to 10.
func (a *Analytics) TopUsers(limit int) []TopUser {
	if limit <= 0 {
		limit = 10
	}
	a.mu.Lock()
	out := make([]TopUser, 0, len(a.users))
	for id, u := range a.users {
		out = append(out, TopUser{UserID: id, ActivityScore: u.ActivityScore(), UserActivity: *u})
	}
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ActivityScore != out[j].ActivityScore {
			return out[i].ActivityScore > out[j].ActivityScore
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
