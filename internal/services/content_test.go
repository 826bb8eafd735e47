package services

import (
	"math"
	"strings"
	"testing"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

func TestBuildPrompt_CarriesTemplateAndTargets(t *testing.T) {
	tpl := domain.TemplateFor(domain.StyleEducational)
	p := buildPrompt("Photosynthesis", 60, domain.StyleEducational, tpl)

	for _, want := range []string{
		`Create a 60-second video script about "Photosynthesis" in a educational and clear style.`,
		"Understanding Photosynthesis is crucial for success.",
		"Main Content (5-55 seconds)",
		"definition, examples, practical_tips",
		"Aim for approximately 120 words",
		"Style: educational",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestRenderTemplate_LayoutAndFooter(t *testing.T) {
	tpl := domain.TemplateFor(domain.StyleCasual)
	out := renderTemplate("home coffee brewing", 45, domain.StyleCasual, tpl)

	if !strings.HasPrefix(out, "# Home Coffee Brewing\n") {
		t.Fatalf("heading not title-cased: %q", strings.SplitN(out, "\n", 2)[0])
	}
	for _, want := range []string{
		"## Hook (0-5 seconds)\nHey there! Today we're diving into home coffee brewing",
		"## Main Content (5-40 seconds)",
		"## Call to Action (40-45 seconds)\n" + tpl.CallToAction,
		"1. **First Point**: This is where the magic happens with home coffee brewing.",
		"**Style**: casual",
		"**Tone**: friendly and conversational",
		"**Generated with AI Content Studio Template Engine**",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("template missing %q:\n%s", want, out)
		}
	}
	if out != renderTemplate("home coffee brewing", 45, domain.StyleCasual, tpl) {
		t.Fatalf("template render must be deterministic")
	}
}

func TestScoringHelpers(t *testing.T) {
	if got := estimatedDuration(5); got != 10 {
		t.Fatalf("estimatedDuration floor = %v", got)
	}
	if got := estimatedDuration(100); got != 40 {
		t.Fatalf("estimatedDuration(100) = %v", got)
	}
	if got := scriptCost(123); got != 0.0123 {
		t.Fatalf("scriptCost(123) = %v", got)
	}
	if countWords("  a b\n\tc  ") != 3 {
		t.Fatalf("countWords should split on any whitespace")
	}
	if accepted(strings.Repeat("x", 50)) || !accepted("  "+strings.Repeat("x", 51)+"  ") {
		t.Fatalf("accepted threshold is >50 trimmed runes")
	}
}

func TestQualityScore(t *testing.T) {
	if got := qualityScore("no terminal punctuation here"); got != 0.5 {
		t.Fatalf("zero sentences = %v, want 0.5", got)
	}

	// 15 words, one sentence: in band.
	inBand := strings.Repeat("word ", 14) + "end."
	if got := qualityScore(inBand); math.Abs(got-0.7045) > 1e-9 {
		t.Fatalf("in-band score = %v", got)
	}

	// 40 words per sentence: 0.7 - 25*0.02 = 0.2, clamped to 0.3.
	long := strings.Repeat("word ", 39) + "end."
	if got := qualityScore(long); got != 0.3 {
		t.Fatalf("long sentence score = %v, want 0.3", got)
	}

	for _, s := range []string{"!", "a. b. c.", inBand, long, strings.Repeat("w ", 5000) + "."} {
		if q := qualityScore(s); q < 0.3 || q > 1 {
			t.Fatalf("score %v out of range for %q", q, s)
		}
	}
}
