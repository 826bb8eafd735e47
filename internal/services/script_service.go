// Package services – ScriptService
//
// ScriptService routes a generation request through the configured text
// providers in order and falls back to a local template when none of them
// produces a usable reply. The result is scored, persisted through the
// injected store, cached, indexed for search and accounted for in analytics,
// cost tracking and the caller's plan usage.
//
// Provider failures are logged and counted but never returned: the only
// caller-visible errors are validation, quota and store errors.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/ai-content-studio/internal/cache"
	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/provider"
	"github.com/tbourn/ai-content-studio/internal/repo"
	"github.com/tbourn/ai-content-studio/internal/search"
	"github.com/tbourn/ai-content-studio/internal/sysutil"
)

const (
	MinTopicRunes   = 3
	MinDuration     = 10
	MaxDuration     = 300
	DefaultDuration = 30

	scriptCachePrefix = "script:"
)

// ScriptService generates and serves scripts. Only Store is required; every
// other collaborator is optional.
type ScriptService struct {
	Store      ScriptStore
	Generators []provider.Generator

	Cache    cache.Cache
	CacheTTL time.Duration
	Index    search.Index

	Analytics *Analytics
	Costs     *CostTracker
	Users     *UserManager

	Now func() time.Time

	clock monotonic
}

// NewScriptService wires a ScriptService with an empty search index.
func NewScriptService(st ScriptStore, gens ...provider.Generator) *ScriptService {
	return &ScriptService{
		Store:      st,
		Generators: gens,
		Index:      search.New(search.WithStopwords(search.DefaultStopwords), search.WithMaxDocs(5000)),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *ScriptService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

// Validate normalizes req and rejects it when the topic is shorter than three
// runes or the duration is outside [10, 300]. Unknown styles become
// professional.
func (s *ScriptService) Validate(req domain.GenerationRequest) (domain.GenerationRequest, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	req.UserID = strings.TrimSpace(req.UserID)
	if utf8.RuneCountInString(req.Topic) < MinTopicRunes {
		return req, invalid("topic", "must be at least %d characters", MinTopicRunes)
	}
	if req.Duration < MinDuration || req.Duration > MaxDuration {
		return req, invalid("duration", "must be between %d and %d seconds", MinDuration, MaxDuration)
	}
	req.Style = domain.ParseStyle(string(req.Style))
	return req, nil
}

// ResolveID derives a script id from topic, user and the current time. The
// timestamp is strictly increasing within the process, so two identical
// requests never share an id.
func (s *ScriptService) ResolveID(topic, userID string) string {
	ts := s.clock.next(s.now())
	return sysutil.ShortHash(topic+"_"+userID+"_"+ts.Format(time.RFC3339Nano), 12)
}

// Generate validates req, produces content and persists the resulting script.
func (s *ScriptService) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Script, error) {
	tr := otel.Tracer("services/ScriptService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("user.id", req.UserID),
			attribute.String("script.style", string(req.Style)),
			attribute.Int("script.duration", req.Duration),
		),
	)
	defer span.End()

	req, err := s.Validate(req)
	if err != nil {
		return nil, err
	}

	if s.Users != nil && req.UserID != "" {
		allowed, err := s.Users.CheckLimit(ctx, req.UserID, domain.UsageScriptGeneration)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrQuotaExceeded
		}
	}

	tpl := domain.TemplateFor(req.Style)
	content, source, err := s.produce(ctx, req, tpl)
	if err != nil {
		return nil, err
	}

	words := countWords(content)
	sc := &domain.Script{
		ID:                s.ResolveID(req.Topic, req.UserID),
		UserID:            req.UserID,
		Topic:             req.Topic,
		Content:           content,
		Style:             req.Style,
		Duration:          req.Duration,
		WordCount:         words,
		EstimatedDuration: estimatedDuration(words),
		Provider:          source,
		Cost:              scriptCost(words),
		QualityScore:      qualityScore(content),
		CreatedAt:         s.now(),
	}
	span.SetAttributes(attribute.String("script.id", sc.ID), attribute.String("script.provider", source))

	if err := s.Store.SaveScript(ctx, sc); err != nil {
		return nil, err
	}

	scriptsGenerated.WithLabelValues(source, string(sc.Style)).Inc()
	scriptWords.Observe(float64(words))
	s.afterSave(ctx, sc)
	return sc, nil
}

// produce asks each generator in order and returns the first acceptable
// reply, or the template render when none qualifies.
func (s *ScriptService) produce(ctx context.Context, req domain.GenerationRequest, tpl domain.StyleTemplate) (content, source string, err error) {
	logger := log.Ctx(ctx)
	prompt := buildPrompt(req.Topic, req.Duration, req.Style, tpl)

	for _, g := range s.Generators {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		out, gerr := g.Generate(ctx, prompt)
		if gerr != nil {
			logger.Warn().Err(gerr).Str("provider", g.Name()).Msg("provider failed, trying next")
			continue
		}
		if !accepted(out) {
			logger.Warn().Str("provider", g.Name()).Int("len", len(strings.TrimSpace(out))).Msg("provider reply too short, trying next")
			continue
		}
		return strings.TrimSpace(out), g.Name(), nil
	}

	providerFallbacks.Inc()
	logger.Debug().Str("style", string(req.Style)).Msg("rendering script from template")
	return renderTemplate(req.Topic, req.Duration, req.Style, tpl), templateProvider, nil
}

// afterSave feeds the optional collaborators. Their failures are logged and
// do not fail the generation.
func (s *ScriptService) afterSave(ctx context.Context, sc *domain.Script) {
	logger := log.Ctx(ctx)
	if s.Cache != nil {
		if err := cache.SetJSON(ctx, s.Cache, scriptCachePrefix+sc.ID, sc, s.CacheTTL); err != nil {
			logger.Warn().Err(err).Str("script_id", sc.ID).Msg("cache write failed")
		}
	}
	if s.Index != nil {
		s.Index.Add(sc.ID, sc.Topic+"\n"+sc.Content)
	}
	if s.Analytics != nil {
		s.Analytics.TrackScript(sc.UserID, map[string]any{
			"script_id":  sc.ID,
			"topic":      sc.Topic,
			"style":      string(sc.Style),
			"provider":   sc.Provider,
			"word_count": sc.WordCount,
		})
	}
	if s.Costs != nil {
		s.Costs.Record(sc.UserID, domain.UsageScriptGeneration, sc.Cost)
	}
	if s.Users != nil {
		if err := s.Users.RecordUsage(ctx, sc.UserID, domain.UsageScriptGeneration); err != nil {
			logger.Warn().Err(err).Str("user_id", sc.UserID).Msg("usage update failed")
		}
	}
}

// Get returns a script by id, reading through the cache when one is set.
func (s *ScriptService) Get(ctx context.Context, id string) (*domain.Script, error) {
	tr := otel.Tracer("services/ScriptService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("script.id", id)))
	defer span.End()

	key := scriptCachePrefix + id
	if s.Cache != nil {
		sc, ok, err := cache.GetJSON[domain.Script](ctx, s.Cache, key)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("script_id", id).Msg("cache read failed")
		} else if ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &sc, nil
		}
	}

	sc, err := s.Store.GetScript(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrScriptNotFound
		}
		return nil, err
	}
	if s.Cache != nil {
		_ = cache.SetJSON(ctx, s.Cache, key, sc, s.CacheTTL)
	}
	return sc, nil
}

// ListPage returns a newest-first page of a user's scripts and the total.
func (s *ScriptService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Script, int64, error) {
	tr := otel.Tracer("services/ScriptService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := s.Store.CountScripts(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Script{}, 0, nil
	}
	items, err := s.Store.ListScripts(ctx, userID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Recent returns the newest n scripts across all users.
func (s *ScriptService) Recent(ctx context.Context, n int) ([]domain.Script, error) {
	if n <= 0 {
		n = 5
	}
	return s.Store.RecentScripts(ctx, n)
}

// Search ranks generated scripts against query. It only covers scripts
// generated by this process.
func (s *ScriptService) Search(ctx context.Context, query string, k int) ([]search.Result, error) {
	_, span := otel.Tracer("services/ScriptService").Start(ctx, "Search")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("q", "is required")
	}
	if s.Index == nil {
		return []search.Result{}, nil
	}
	res := s.Index.TopK(query, k)
	if res == nil {
		res = []search.Result{}
	}
	return res, nil
}

// Stats returns the script count and newest created_at of userID. Handlers
// use it to build weak ETags.
func (s *ScriptService) Stats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return s.Store.ScriptsStats(ctx, userID)
}
