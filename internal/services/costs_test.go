package services

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

func TestCostTracker_RecordAndAnalysis(t *testing.T) {
	ct := NewCostTracker()
	ct.Record("u1", domain.UsageScriptGeneration, 0.01)
	ct.Record("u1", domain.UsageScriptGeneration, 0.03)
	ct.Record("u1", domain.UsageVideoCreation, 1.5)
	ct.Record("", domain.UsageScriptGeneration, 0.02)

	if got := ct.Total("u1"); got != 1.54 {
		t.Fatalf("Total = %v", got)
	}
	if got := ct.Total(""); got != 0.02 {
		t.Fatalf("anonymous total = %v", got)
	}

	a := ct.Analysis("u1")
	sg := a.CostBreakdown["script_generation"]
	if sg.Count != 2 || sg.Total != 0.04 || sg.Average != 0.02 {
		t.Fatalf("script bucket = %+v", sg)
	}
	if a.CostBreakdown["video_creation"].Count != 1 {
		t.Fatalf("video bucket = %+v", a.CostBreakdown["video_creation"])
	}
	if a.TotalCost != 1.54 || a.Trends.Trend != TrendStable || a.Trends.ProjectedMonthlyCost != 50 {
		t.Fatalf("analysis = %+v", a)
	}
	if len(a.Recommendations) != 2 || a.Recommendations[0].Type != "provider_switch" {
		t.Fatalf("recommendations = %+v", a.Recommendations)
	}

	empty := ct.Analysis("nobody")
	if empty.TotalCost != 0 || empty.CostBreakdown == nil || len(empty.CostBreakdown) != 0 {
		t.Fatalf("empty analysis = %+v", empty)
	}
}

func TestCostOptimizer_CountTokensFallsBackToWords(t *testing.T) {
	// An unknown model makes tiktoken refuse without touching the network.
	o := NewCostOptimizer("no-such-model")
	n, src := o.CountTokens("one two three four five six")
	if src != "estimate" || n != 8 {
		t.Fatalf("CountTokens = %d (%s), want 8 (estimate)", n, src)
	}
}

func TestCostOptimizer_CountTokensOffline(t *testing.T) {
	o := NewCostOptimizer("gpt-4")
	done := make(chan struct{})
	var (
		n   int
		src string
	)
	go func() {
		n, src = o.CountTokens("hello world")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("CountTokens blocked loading encoding")
	}
	if src != "tiktoken" || n != 2 {
		t.Fatalf("CountTokens = %d (%s), want 2 (tiktoken)", n, src)
	}
}

func TestCostTracker_EvictsIdlestUser(t *testing.T) {
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ct := NewCostTracker()
	ct.now = func() time.Time { return clock }
	ct.maxUsers = 2

	ct.Record("old", domain.UsageScriptGeneration, 0.01)
	clock = clock.Add(time.Minute)
	ct.Record("mid", domain.UsageScriptGeneration, 0.02)
	clock = clock.Add(time.Minute)
	ct.Record("old", domain.UsageVideoCreation, 0.5) // old is now the freshest
	clock = clock.Add(time.Minute)
	ct.Record("new", domain.UsageScriptGeneration, 0.03)

	if len(ct.users) != 2 {
		t.Fatalf("tracked users = %d, want 2", len(ct.users))
	}
	if ct.Total("mid") != 0 {
		t.Fatalf("idlest user kept: %v", ct.Total("mid"))
	}
	if ct.Total("old") != 0.51 || ct.Total("new") != 0.03 {
		t.Fatalf("totals old=%v new=%v", ct.Total("old"), ct.Total("new"))
	}
}

func TestCostOptimizer_Estimates(t *testing.T) {
	o := NewCostOptimizer("no-such-model")

	est := o.EstimateScript(strings.Repeat("word ", 750)) // 1000 estimated tokens
	if est.Tokens != 1000 || est.Kind != domain.UsageScriptGeneration {
		t.Fatalf("estimate = %+v", est)
	}
	if est.Cheapest != "local" || len(est.Estimates) != 3 {
		t.Fatalf("cheapest = %q, %+v", est.Cheapest, est.Estimates)
	}
	want := map[string]float64{"local": 0.001, "anthropic": 0.015, "openai": 0.03}
	for _, e := range est.Estimates {
		if math.Abs(e.Cost-want[e.Provider]) > 1e-9 {
			t.Fatalf("%s cost = %v, want %v", e.Provider, e.Cost, want[e.Provider])
		}
	}
	for i := 1; i < len(est.Estimates); i++ {
		if est.Estimates[i-1].Cost > est.Estimates[i].Cost {
			t.Fatalf("estimates not sorted: %+v", est.Estimates)
		}
	}

	v := o.EstimateVideo(60)
	if v.Seconds != 60 || v.Cheapest != "local" || v.Estimates[2].Provider != "elevenlabs" || v.Estimates[2].Cost != 3 {
		t.Fatalf("video estimate = %+v", v)
	}
	if neg := o.EstimateVideo(-5); neg.Seconds != 0 {
		t.Fatalf("negative seconds should clamp to 0, got %d", neg.Seconds)
	}
}

func TestCostOptimizer_Optimize(t *testing.T) {
	o := NewCostOptimizer("")
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	r := o.Optimize("u1", 50, at)
	if r.EstimatedSavings != 40 || r.Plan.TargetSavings != 50 || r.Results["status"] != "applied" || !r.AppliedAt.Equal(at) {
		t.Fatalf("optimize = %+v", r)
	}
	if d := o.Optimize("", 0, at); d.Plan.TargetSavings != 30 || d.EstimatedSavings != 24 || d.UserID != "anonymous" {
		t.Fatalf("defaults = %+v", d)
	}
	if o.Model != "gpt-4" {
		t.Fatalf("default model = %q", o.Model)
	}
}
