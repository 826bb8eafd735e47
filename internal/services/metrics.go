package services

import "github.com/prometheus/client_golang/prometheus"

var (
	scriptsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scripts_generated_total",
			Help: "Total number of generated scripts by provider and style.",
		},
		[]string{"provider", "style"},
	)

	videosCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videos_created_total",
			Help: "Total number of created videos by style and audio backend.",
		},
		[]string{"style", "synthesizer"},
	)

	scriptWords = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "script_word_count",
			Help:    "Word count of generated scripts.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600},
		},
	)

	providerFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "script_template_fallbacks_total",
			Help: "Total number of scripts rendered from the local template because no provider answered.",
		},
	)
)

func init() {
	prometheus.MustRegister(scriptsGenerated, videosCreated, scriptWords, providerFallbacks)
}
