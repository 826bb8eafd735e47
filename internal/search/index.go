// Package search provides a small, deterministic, concurrency-safe in-memory
// index over generated scripts. Documents are added as they are created and
// ranked by Jaccard similarity between the query token set and each
// document's token set: score = |Q ∩ D| / |Q ∪ D|.
//
// The package never logs; callers decide how and what to log.
package search

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Result is a ranked document with its similarity score.
type Result struct {
	ID      string  `json:"id"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	Add(id, text string)
	TopK(query string, k int) []Result
	Len() int
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords    map[string]struct{}
	maxDocs      int
	snippetRunes int
}

func defaultConfig() config {
	return config{
		stopwords:    nil,
		maxDocs:      0,
		snippetRunes: 160,
	}
}

// WithStopwords drops the given words from both documents and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxDocs caps the index; the oldest document is evicted first.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

// WithSnippetRunes sets the length of returned snippets.
func WithSnippetRunes(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.snippetRunes = n
		}
	}
}

// DefaultStopwords is a short English list suited to script text.
var DefaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from", "how",
	"in", "is", "it", "its", "of", "on", "or", "that", "the", "this", "to", "was",
	"what", "with", "you", "your",
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	id      string
	snippet string
	tokens  map[string]struct{}
}

type index struct {
	cfg  config
	mu   sync.RWMutex
	docs []doc
	pos  map[string]int
}

// New returns an empty Index.
func New(opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &index{cfg: cfg, pos: make(map[string]int)}
}

// Add indexes text under id. Re-adding an id replaces its document.
// Text without any word tokens is ignored.
func (i *index) Add(id, text string) {
	t := strings.TrimSpace(normalizeWhitespace(text))
	toks := tokenize(t, i.cfg.stopwords)
	if id == "" || len(toks) == 0 {
		return
	}
	d := doc{id: id, snippet: clip(t, i.cfg.snippetRunes), tokens: toks}

	i.mu.Lock()
	defer i.mu.Unlock()
	if p, ok := i.pos[id]; ok {
		i.docs[p] = d
		return
	}
	if i.cfg.maxDocs > 0 && len(i.docs) >= i.cfg.maxDocs {
		evicted := i.docs[0]
		i.docs = append(i.docs[:0:0], i.docs[1:]...)
		delete(i.pos, evicted.id)
		for p, kept := range i.docs {
			i.pos[kept.id] = p
		}
	}
	i.pos[id] = len(i.docs)
	i.docs = append(i.docs, d)
}

// Len reports the number of indexed documents.
func (i *index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// TopK returns up to k best-matching documents by Jaccard similarity.
// Ties are broken by shorter snippet, then by id.
func (i *index) TopK(q string, k int) []Result {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		Result
		lenRunes int
	}

	i.mu.RLock()
	buf := make([]scored, 0, min(k*4, len(i.docs)))
	for _, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + len(d.tokens) - over)
		if union <= 0 {
			continue
		}
		buf = append(buf, scored{
			Result:   Result{ID: d.id, Snippet: d.snippet, Score: float64(over) / union},
			lenRunes: utf8.RuneCountInString(d.snippet),
		})
	}
	i.mu.RUnlock()

	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].Score != buf[b].Score {
			return buf[a].Score > buf[b].Score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return buf[a].ID < buf[b].ID
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for n := 0; n < k; n++ {
		out[n] = buf[n].Result
	}
	return out
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	s = strings.ToLower(s)
	words := wordRE.FindAllString(s, -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// normalizeWhitespace collapses runs of blanks and newlines into one space.
func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}
