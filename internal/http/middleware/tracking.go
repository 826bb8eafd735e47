package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// APICallRecorder receives one call per completed API request.
type APICallRecorder interface {
	TrackAPICall(userID, endpoint string, responseTime time.Duration, status int)
}

// UsageFunc bumps the api_call usage counter of a user.
type UsageFunc func(ctx context.Context, userID string) error

// TrackAPICalls reports every request to rec once the handler returns, and
// charges registered callers through usage when it is non-nil. The endpoint
// is the registered route, so ids never leak into analytics.
func TrackAPICalls(rec APICallRecorder, usage UsageFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		uid := UserID(c)
		if rec != nil {
			rec.TrackAPICall(uid, routeLabel(c), time.Since(start), c.Writer.Status())
		}
		if usage != nil && uid != "" {
			if err := usage(c.Request.Context(), uid); err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("api usage update failed")
			}
		}
	}
}
