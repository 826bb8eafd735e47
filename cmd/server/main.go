// Command server runs the AI Content Studio HTTP API.
//
// @title          AI Content Studio API
// @version        2.0.0
// @description    Script generation, video creation, analytics, users and cost tracking.
// @BasePath       /
// @schemes        http https
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/tbourn/ai-content-studio/docs"
	"github.com/tbourn/ai-content-studio/internal/cache"
	"github.com/tbourn/ai-content-studio/internal/config"
	httpapi "github.com/tbourn/ai-content-studio/internal/http"
	"github.com/tbourn/ai-content-studio/internal/http/handlers"
	"github.com/tbourn/ai-content-studio/internal/http/middleware"
	"github.com/tbourn/ai-content-studio/internal/jobs"
	"github.com/tbourn/ai-content-studio/internal/observability"
	"github.com/tbourn/ai-content-studio/internal/provider"
	"github.com/tbourn/ai-content-studio/internal/repo"
	"github.com/tbourn/ai-content-studio/internal/services"
	"github.com/tbourn/ai-content-studio/internal/sysutil"
)

const (
	serviceName         = "ai-content-studio"
	idempotencySweep    = "@hourly"
	cacheSweep          = "@every 10m"
	shutdownGracePeriod = 15 * time.Second
)

// store is what every service needs from persistence.
type store interface {
	services.ScriptStore
	services.VideoStore
	services.UserStore
}

func main() {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	log.Logger = log.With().Str("service", serviceName).Logger()
	zerolog.DefaultContextLogger = &log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.BuildInfo{
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
		shutdownOTel = func(context.Context) error { return nil }
	}

	sched := jobs.New()

	// Persistence
	var (
		st   store
		idem middleware.IdempotencyStore
	)
	switch cfg.StoreDriver {
	case "sqlite":
		db, err := repo.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
		}
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
		st = repo.NewGormStore(db)
		idem = httpapi.NewIdempotencyStore(db, cfg.IdempotencyTTL)
		if err := sched.Add(idempotencySweep, "idempotency-purge", func(jctx context.Context) error {
			n, err := repo.PurgeExpiredIdempotency(jctx, db, time.Now().UTC())
			if n > 0 {
				zerolog.Ctx(jctx).Debug().Int64("rows", n).Msg("idempotency purged")
			}
			return err
		}); err != nil {
			log.Fatal().Err(err).Msg("schedule idempotency purge")
		}
	default:
		st = repo.NewMemoryStore()
	}

	responses, err := cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-process cache")
		responses = cache.NewMemory(cfg.CacheTTL)
	}
	defer responses.Close()
	if mc, ok := responses.(*cache.MemoryCache); ok {
		if err := sched.Add(cacheSweep, "cache-sweep", func(jctx context.Context) error {
			if n := mc.Sweep(time.Now()); n > 0 {
				zerolog.Ctx(jctx).Debug().Int("entries", n).Msg("cache swept")
			}
			return nil
		}); err != nil {
			log.Fatal().Err(err).Msg("schedule cache sweep")
		}
	}

	// Providers, in fallback order
	p := cfg.Providers
	var gens []provider.Generator
	if p.OpenAIKey != "" {
		gens = append(gens, provider.NewOpenAI(p.OpenAIKey, p.OpenAIModel, p.OpenAIBaseURL, p.Timeout))
	}
	if p.AnthropicKey != "" {
		gens = append(gens, provider.NewAnthropic(p.AnthropicKey, p.AnthropicModel, p.AnthropicBaseURL, p.Timeout))
	}
	var synths []provider.Synthesizer
	if p.ElevenLabsKey != "" {
		synths = append(synths, provider.NewElevenLabs(p.ElevenLabsKey, p.ElevenLabsBaseURL, p.Timeout))
	}

	// Services
	analytics := services.NewAnalytics()
	costs := services.NewCostTracker()
	users := services.NewUserManager(st)

	scripts := services.NewScriptService(st, gens...)
	scripts.Cache = responses
	scripts.CacheTTL = cfg.CacheTTL
	scripts.Analytics = analytics
	scripts.Costs = costs
	scripts.Users = users

	videos := services.NewVideoService(st, scripts, synths...)
	videos.Analytics = analytics
	videos.Costs = costs
	videos.Users = users

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, cfg, httpapi.Deps{
		Deps: handlers.Deps{
			Scripts:   scripts,
			Videos:    videos,
			Users:     users,
			Analytics: analytics,
			Costs:     costs,
			Estimator: services.NewCostOptimizer(p.OpenAIModel),
			Info: handlers.AppInfo{
				Service:     serviceName,
				Version:     cfg.Version,
				Environment: cfg.Environment,
			},
		},
		Idempotency: idem,
		APICalls:    analytics,
		Usage:       httpapi.UsageFromUsers(users),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	sched.Start()
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("store", cfg.StoreDriver).
			Int("generators", len(gens)).
			Int("synthesizers", len(synths)).
			Bool("redis", cfg.RedisURL != "").
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := sched.Stop(sctx); err != nil {
		log.Error().Err(err).Msg("jobs shutdown")
	}
	if err := shutdownOTel(sctx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
}
