// Package services – VideoService
//
// VideoService turns a stored script into a video description: narration
// through the configured synthesizers, visual segments cut from the script
// text, and deterministic mock render URLs. Like scripts, videos are
// persisted through an injected store and accounted for in analytics, costs
// and plan usage.
package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/provider"
	"github.com/tbourn/ai-content-studio/internal/repo"
	"github.com/tbourn/ai-content-studio/internal/sysutil"
)

const (
	segmentMaxRunes  = 100
	bytesPerSecond   = 625000
	videoResolution  = "1920x1080"
	videoFormat      = "mp4"
	videoStatusReady = "completed"
)

// VideoRequest is the input of CreateVideo. Voice is an optional voice
// profile key.
type VideoRequest struct {
	ScriptID string
	Style    domain.Style
	Voice    string
	UserID   string
}

// ScriptGetter resolves the script a video is built from.
type ScriptGetter interface {
	Get(ctx context.Context, id string) (*domain.Script, error)
}

// VideoService creates and serves videos.
type VideoService struct {
	Store        VideoStore
	Scripts      ScriptGetter
	Synthesizers []provider.Synthesizer

	Analytics *Analytics
	Costs     *CostTracker
	Users     *UserManager

	Now func() time.Time

	clock monotonic
}

// NewVideoService wires a VideoService. The mock synthesizer is always
// appended so narration never fails.
func NewVideoService(st VideoStore, scripts ScriptGetter, synths ...provider.Synthesizer) *VideoService {
	return &VideoService{
		Store:        st,
		Scripts:      scripts,
		Synthesizers: append(synths, provider.MockSynthesizer{}),
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *VideoService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

// CreateVideo builds and persists a video for req.ScriptID.
func (s *VideoService) CreateVideo(ctx context.Context, req VideoRequest) (*domain.Video, error) {
	tr := otel.Tracer("services/VideoService")
	ctx, span := tr.Start(ctx, "CreateVideo",
		trace.WithAttributes(
			attribute.String("script.id", req.ScriptID),
			attribute.String("user.id", req.UserID),
		),
	)
	defer span.End()

	req.ScriptID = strings.TrimSpace(req.ScriptID)
	if req.ScriptID == "" {
		return nil, invalid("script_id", "is required")
	}
	req.Style = domain.ParseStyle(string(req.Style))

	if s.Users != nil && req.UserID != "" {
		allowed, err := s.Users.CheckLimit(ctx, req.UserID, domain.UsageVideoCreation)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrQuotaExceeded
		}
	}

	sc, err := s.Scripts.Get(ctx, req.ScriptID)
	if err != nil {
		return nil, err
	}

	voice := domain.VoiceFor(req.Style, req.Voice)
	audioURL, synth := s.narrate(ctx, sc.Content, voice)
	tpl := domain.VideoTemplateFor(req.Style)

	now := s.clock.next(s.now())
	duration := videoDuration(sc.Content)
	v := &domain.Video{
		ID:           sysutil.ShortHash(req.ScriptID+"_"+req.UserID+"_"+now.Format(time.RFC3339Nano), 12),
		ScriptID:     req.ScriptID,
		UserID:       req.UserID,
		Style:        req.Style,
		Voice:        voice.Key,
		VoiceID:      voice.VoiceID,
		AudioURL:     audioURL,
		VideoURL:     "https://mock-video-url.com/video_" + sysutil.ShortHash(sc.Content+"_"+string(req.Style), 12) + ".mp4",
		ThumbnailURL: "https://mock-thumbnail-url.com/thumb_" + sysutil.ShortHash(firstRunes(sc.Content, 50)+"_"+string(req.Style), 8) + ".jpg",
		Duration:     duration,
		Resolution:   videoResolution,
		Format:       videoFormat,
		FileSize:     int64(duration) * bytesPerSecond,
		Status:       videoStatusReady,
		Cost:         sysutil.Round(float64(duration)*videoCostPerSecond, 4),
		QualityScore: videoQuality(duration, sc.Content),
		Segments:     buildSegments(sc.Content, tpl),
		CreatedAt:    now,
	}
	span.SetAttributes(attribute.String("video.id", v.ID))

	if err := s.Store.SaveVideo(ctx, v); err != nil {
		return nil, err
	}
	videosCreated.WithLabelValues(string(v.Style), synth).Inc()
	s.afterSave(ctx, v)
	return v, nil
}

// narrate returns the audio URL from the first synthesizer that succeeds.
func (s *VideoService) narrate(ctx context.Context, text string, voice domain.VoiceProfile) (url, synth string) {
	logger := log.Ctx(ctx)
	for _, syn := range s.Synthesizers {
		u, err := syn.Synthesize(ctx, text, voice)
		if err != nil {
			logger.Warn().Err(err).Str("synthesizer", syn.Name()).Msg("audio generation failed, trying next")
			continue
		}
		return u, syn.Name()
	}
	m := provider.MockSynthesizer{}
	u, _ := m.Synthesize(ctx, text, voice)
	return u, m.Name()
}

func (s *VideoService) afterSave(ctx context.Context, v *domain.Video) {
	if s.Analytics != nil {
		s.Analytics.TrackVideo(v.UserID, map[string]any{
			"video_id":  v.ID,
			"script_id": v.ScriptID,
			"style":     string(v.Style),
			"duration":  v.Duration,
		})
	}
	if s.Costs != nil {
		s.Costs.Record(v.UserID, domain.UsageVideoCreation, v.Cost)
	}
	if s.Users != nil {
		if err := s.Users.RecordUsage(ctx, v.UserID, domain.UsageVideoCreation); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("user_id", v.UserID).Msg("usage update failed")
		}
	}
}

// GetVideo returns a video by id.
func (s *VideoService) GetVideo(ctx context.Context, id string) (*domain.Video, error) {
	ctx, span := otel.Tracer("services/VideoService").Start(ctx, "GetVideo",
		trace.WithAttributes(attribute.String("video.id", id)))
	defer span.End()

	v, err := s.Store.GetVideo(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return v, nil
}

// ListByUser returns a newest-first page of a user's videos.
func (s *VideoService) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Video, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.Store.ListVideos(ctx, userID, 0, limit)
}

// buildSegments cuts the non-heading lines of content into segments of just
// over segmentMaxRunes runes.
func buildSegments(content string, tpl domain.VideoTemplate) []domain.Segment {
	var texts []string
	var cur strings.Builder
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte(' ')
		if utf8.RuneCountInString(cur.String()) > segmentMaxRunes {
			texts = append(texts, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		texts = append(texts, strings.TrimSpace(cur.String()))
	}

	anims, ok := domain.Animations[tpl.Transitions]
	if !ok {
		anims = domain.Animations["smooth"]
	}
	font := ""
	if len(tpl.Fonts) > 0 {
		font = tpl.Fonts[0]
	}

	out := make([]domain.Segment, 0, len(texts))
	for i, t := range texts {
		out = append(out, domain.Segment{
			SegmentID:  i,
			Text:       t,
			Duration:   math.Max(3, float64(countWords(t))/3),
			Style:      tpl.Look,
			Colors:     tpl.Colors,
			Font:       font,
			Background: tpl.Background,
			Animation:  anims[utf8.RuneCountInString(t)%len(anims)],
		})
	}
	return out
}

func videoDuration(content string) int {
	return max(10, int(float64(countWords(content))/wordsPerSecond))
}

func videoQuality(duration int, content string) float64 {
	d := math.Min(1, float64(duration)/60)
	c := math.Min(1, float64(utf8.RuneCountInString(content))/1000)
	return sysutil.Round((d+0.8+c)/3, 2)
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
