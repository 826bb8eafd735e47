// Package provider adapts remote generation backends to two small
// interfaces: Generator for text and Synthesizer for audio. Adapters never
// log; callers decide what a failure means. Every call is counted and timed
// in Prometheus under the adapter's name.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

// Generator produces text for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Synthesizer turns text into speech and returns where the audio lives.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string, voice domain.VoiceProfile) (audioURL string, err error)
}

// ErrEmptyResponse is wrapped when a backend answers without content.
var ErrEmptyResponse = errors.New("empty response")

// Error wraps a failure of a named backend (network, auth, quota, or an
// empty reply).
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string { return e.Provider + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Provider: name, Err: err}
}

var (
	providerReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of calls to generation backends.",
		},
		[]string{"provider", "status"},
	)

	providerLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of calls to generation backends in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(providerReqs, providerLat)
}

// observe records one backend call.
func observe(name string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	providerReqs.WithLabelValues(name, status).Inc()
	providerLat.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
