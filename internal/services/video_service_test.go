package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/provider"
	"github.com/tbourn/ai-content-studio/internal/repo"
)

type fakeSynth struct {
	name  string
	url   string
	err   error
	voice domain.VoiceProfile
	calls int
}

func (f *fakeSynth) Name() string { return f.name }

func (f *fakeSynth) Synthesize(_ context.Context, _ string, v domain.VoiceProfile) (string, error) {
	f.calls++
	f.voice = v
	return f.url, f.err
}

func seedScript(t *testing.T, st *repo.MemoryStore, content string) *domain.Script {
	t.Helper()
	sc := &domain.Script{ID: "script000001", Topic: "t", Content: content, Style: domain.StyleCasual, CreatedAt: time.Now()}
	if err := st.SaveScript(context.Background(), sc); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return sc
}

func TestCreateVideo_Validation(t *testing.T) {
	st := repo.NewMemoryStore()
	vs := NewVideoService(st, NewScriptService(st))

	var ve *ValidationError
	if _, err := vs.CreateVideo(context.Background(), VideoRequest{ScriptID: "  "}); !errors.As(err, &ve) || ve.Field != "script_id" {
		t.Fatalf("expected script_id ValidationError, got %v", err)
	}
	if _, err := vs.CreateVideo(context.Background(), VideoRequest{ScriptID: "nope"}); !errors.Is(err, ErrScriptNotFound) {
		t.Fatalf("expected ErrScriptNotFound, got %v", err)
	}
}

func TestCreateVideo_DerivedFields(t *testing.T) {
	st := repo.NewMemoryStore()
	scripts := NewScriptService(st)
	content := renderTemplate("Cats", 60, domain.StyleCasual, domain.TemplateFor(domain.StyleCasual))
	sc := seedScript(t, st, content)

	vs := NewVideoService(st, scripts)
	vs.Now = fixedClock(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	v, err := vs.CreateVideo(context.Background(), VideoRequest{ScriptID: sc.ID, Style: "unknown"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	wc := len(strings.Fields(content))
	wantDur := max(10, int(float64(wc)/2.5))
	if v.Style != domain.StyleProfessional || v.Voice != "professional_male" {
		t.Fatalf("style/voice = %s/%s", v.Style, v.Voice)
	}
	if v.Duration != wantDur || v.FileSize != int64(wantDur)*625000 {
		t.Fatalf("duration/size = %d/%d", v.Duration, v.FileSize)
	}
	if math.Abs(v.Cost-float64(wantDur)*0.05) > 1e-9 {
		t.Fatalf("cost = %v", v.Cost)
	}
	if v.Resolution != "1920x1080" || v.Format != "mp4" || v.Status != "completed" {
		t.Fatalf("static fields = %+v", v)
	}
	if !strings.HasPrefix(v.VideoURL, "https://mock-video-url.com/video_") || !strings.HasSuffix(v.VideoURL, ".mp4") {
		t.Fatalf("video url = %q", v.VideoURL)
	}
	if !strings.HasPrefix(v.ThumbnailURL, "https://mock-thumbnail-url.com/thumb_") {
		t.Fatalf("thumbnail url = %q", v.ThumbnailURL)
	}
	if !strings.HasPrefix(v.AudioURL, "https://mock-audio-url.com/audio_") {
		t.Fatalf("mock synthesizer should narrate, got %q", v.AudioURL)
	}
	if v.QualityScore < 0 || v.QualityScore > 1 {
		t.Fatalf("quality = %v", v.QualityScore)
	}
	if len(v.ID) != 12 {
		t.Fatalf("video id = %q", v.ID)
	}
	if got, err := vs.GetVideo(context.Background(), v.ID); err != nil || got.ID != v.ID {
		t.Fatalf("GetVideo = %+v, %v", got, err)
	}
	if _, err := vs.GetVideo(context.Background(), "missing"); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
}

func TestCreateVideo_SynthesizerOrderAndVoice(t *testing.T) {
	st := repo.NewMemoryStore()
	sc := seedScript(t, st, "Some narration text.")

	bad := &fakeSynth{name: "elevenlabs", err: &provider.Error{Provider: "elevenlabs", Err: errors.New("401")}}
	good := &fakeSynth{name: "backup", url: "https://audio.example/a.mp3"}
	vs := NewVideoService(st, NewScriptService(st), bad, good)

	v, err := vs.CreateVideo(context.Background(), VideoRequest{ScriptID: sc.ID, Style: domain.StyleEducational})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if v.AudioURL != good.url || bad.calls != 1 || good.calls != 1 {
		t.Fatalf("audio = %q, calls %d/%d", v.AudioURL, bad.calls, good.calls)
	}
	if good.voice.Key != "professional_female" {
		t.Fatalf("educational default voice = %q", good.voice.Key)
	}

	v2, _ := vs.CreateVideo(context.Background(), VideoRequest{ScriptID: sc.ID, Style: domain.StyleEducational, Voice: "casual_male"})
	if v2.Voice != "casual_male" || v2.VoiceID != domain.VoiceProfiles["casual_male"].VoiceID {
		t.Fatalf("explicit voice ignored: %+v", v2)
	}
	if v2.ID == v.ID {
		t.Fatalf("video ids must differ across calls")
	}
}

func TestCreateVideo_PlanQuotaAndTracking(t *testing.T) {
	ctx := context.Background()
	st := repo.NewMemoryStore()
	sc := seedScript(t, st, "Narration.")
	users := NewUserManager(st)
	u, _ := users.Register(ctx, "v@example.com", "V", "free")

	vs := NewVideoService(st, NewScriptService(st))
	vs.Users = users
	vs.Analytics = NewAnalytics()
	vs.Costs = NewCostTracker()

	limit := domain.Plans["free"].Limits.VideosPerMonth
	for i := 0; i < limit; i++ {
		if _, err := vs.CreateVideo(ctx, VideoRequest{ScriptID: sc.ID, UserID: u.ID}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := vs.CreateVideo(ctx, VideoRequest{ScriptID: sc.ID, UserID: u.ID}); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if got := vs.Analytics.SystemStats().TotalVideosCreated; got != limit {
		t.Fatalf("videos tracked = %d", got)
	}
	if a := vs.Costs.Analysis(u.ID); a.CostBreakdown["video_creation"].Count != limit {
		t.Fatalf("cost breakdown = %+v", a.CostBreakdown)
	}
	if list, _ := vs.ListByUser(ctx, u.ID, 0); len(list) != limit {
		t.Fatalf("ListByUser = %d", len(list))
	}
}

func TestBuildSegments(t *testing.T) {
	tpl := domain.VideoTemplateFor(domain.StyleCasual)
	content := "# Title\n\n## Section\n" + strings.Repeat("alpha ", 20) + "\nshort line\n\n# Another\ntail"

	segs := buildSegments(content, tpl)
	if len(segs) != 2 {
		t.Fatalf("segments = %d: %+v", len(segs), segs)
	}
	if segs[0].SegmentID != 0 || segs[1].SegmentID != 1 {
		t.Fatalf("segment ids must be zero-based")
	}
	if strings.Contains(segs[0].Text, "#") || segs[1].Text != "short line tail" {
		t.Fatalf("texts = %q / %q", segs[0].Text, segs[1].Text)
	}
	if segs[0].Duration != 20.0/3 || segs[1].Duration != 3 {
		t.Fatalf("durations = %v / %v", segs[0].Duration, segs[1].Duration)
	}
	for _, s := range segs {
		if s.Style != tpl.Look || s.Font != tpl.Fonts[0] || s.Background != tpl.Background {
			t.Fatalf("template not applied: %+v", s)
		}
		anims := domain.Animations[tpl.Transitions]
		if s.Animation != anims[len([]rune(s.Text))%len(anims)] {
			t.Fatalf("animation = %q", s.Animation)
		}
	}

	if got := buildSegments("# only headings\n## here", tpl); len(got) != 0 {
		t.Fatalf("heading-only content should yield no segments")
	}
}

func TestVideoHelpers(t *testing.T) {
	if videoDuration("a b c") != 10 {
		t.Fatalf("videoDuration floor")
	}
	if got := videoDuration(strings.Repeat("w ", 100)); got != 40 {
		t.Fatalf("videoDuration(100 words) = %d", got)
	}
	// (min(1,60/60) + 0.8 + min(1, 2000/1000)) / 3 = 0.93
	if got := videoQuality(60, strings.Repeat("x", 2000)); got != 0.93 {
		t.Fatalf("videoQuality = %v", got)
	}
	if firstRunes("héllo", 2) != "hé" || firstRunes("hi", 5) != "hi" {
		t.Fatalf("firstRunes")
	}
}
