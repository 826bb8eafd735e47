package services

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/sysutil"
)

const (
	// minAcceptedRunes is the trimmed length a provider reply must exceed to
	// be used instead of the next provider.
	minAcceptedRunes = 50

	scriptCostPer100Words = 0.01
	videoCostPerSecond    = 0.05
	wordsPerSecond        = 2.5

	templateProvider = "template"
)

// buildPrompt renders the instruction sent to text providers.
func buildPrompt(topic string, duration int, style domain.Style, tpl domain.StyleTemplate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-second video script about \"%s\" in a %s style.\n\n", duration, topic, tpl.Tone)
	fmt.Fprintf(&b, "Open with a hook like: %s\n\n", formatHook(tpl.Hook, topic))
	b.WriteString("Structure:\n")
	b.WriteString("- Hook (0-5 seconds): Grab attention immediately\n")
	fmt.Fprintf(&b, "- Main Content (5-%d seconds): Deliver value with clear points\n", duration-5)
	b.WriteString("- Call to Action (last 5 seconds): Encourage engagement\n")
	fmt.Fprintf(&b, "Sections to cover: %s\n\n", strings.Join(tpl.Structure, ", "))
	fmt.Fprintf(&b, "Style: %s\nTone: %s\n\n", style, tpl.Tone)
	b.WriteString("Requirements:\n")
	b.WriteString("- Keep it engaging and conversational\n")
	b.WriteString("- Include specific, actionable points\n")
	b.WriteString("- End with a strong call to action\n")
	fmt.Fprintf(&b, "- Aim for approximately %d words\n", duration*2)
	b.WriteString("- Make it suitable for social media\n\n")
	b.WriteString("Format the response as a complete script with clear sections.")
	return b.String()
}

func formatHook(hook, topic string) string {
	return strings.ReplaceAll(hook, "{topic}", topic)
}

func mainPoints(topic string) string {
	return strings.Join([]string{
		fmt.Sprintf("Understanding %s is more important than you might think.", topic),
		fmt.Sprintf("Here are three key insights about %s:", topic),
		fmt.Sprintf("1. **First Point**: This is where the magic happens with %s.", topic),
		"2. **Second Point**: The impact is real and measurable.",
		"3. **Third Point**: This isn't just theory - it's practical advice you can use today.",
	}, "\n\n")
}

// renderTemplate is the local fallback used when no provider produced an
// acceptable reply. It never fails and is deterministic for its inputs.
func renderTemplate(topic string, duration int, style domain.Style, tpl domain.StyleTemplate) string {
	hook := formatHook(tpl.Hook, topic)
	points := mainPoints(topic)
	cta := tpl.CallToAction
	words := countWords(points) + countWords(hook) + countWords(cta)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cases.Title(language.English, cases.NoLower).String(topic))
	fmt.Fprintf(&b, "## Hook (0-5 seconds)\n%s\n\n", hook)
	fmt.Fprintf(&b, "## Main Content (5-%d seconds)\n%s\n\n", duration-5, points)
	fmt.Fprintf(&b, "## Call to Action (%d-%d seconds)\n%s\n\n", duration-5, duration, cta)
	b.WriteString("---\n")
	fmt.Fprintf(&b, "**Word Count**: %d words\n", words)
	fmt.Fprintf(&b, "**Estimated Duration**: %d seconds\n", duration)
	fmt.Fprintf(&b, "**Style**: %s\n", style)
	fmt.Fprintf(&b, "**Tone**: %s\n", tpl.Tone)
	b.WriteString("**Generated with AI Content Studio Template Engine**")
	return b.String()
}

func countWords(s string) int { return len(strings.Fields(s)) }

func estimatedDuration(words int) float64 {
	return math.Max(10, float64(words)/wordsPerSecond)
}

func scriptCost(words int) float64 {
	return sysutil.Round(float64(words)/100*scriptCostPer100Words, 4)
}

// qualityScore rates content by average sentence length. The result is
// always within [0.3, 1].
func qualityScore(content string) float64 {
	words := countWords(content)
	sentences := strings.Count(content, ".") + strings.Count(content, "!") + strings.Count(content, "?")
	if sentences == 0 {
		return 0.5
	}
	avg := float64(words) / float64(sentences)
	if avg >= 10 && avg <= 20 {
		return math.Min(1, 0.7+float64(words)/1000*0.3)
	}
	return math.Max(0.3, 0.7-math.Abs(avg-15)*0.02)
}

// accepted reports whether a provider reply is long enough to use.
func accepted(out string) bool {
	return len([]rune(strings.TrimSpace(out))) > minAcceptedRunes
}

// monotonic hands out strictly increasing timestamps so ids derived from
// the clock stay distinct even when the clock is coarse or frozen.
type monotonic struct {
	mu   sync.Mutex
	last time.Time
}

func (m *monotonic) next(now time.Time) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !now.After(m.last) {
		now = m.last.Add(time.Nanosecond)
	}
	m.last = now
	return now
}
