// Package search provides a small, deterministic, concurrency-safe in-memory
// product search index.
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options (stop words, document cap)
//   - Unicode-aware tokenization over letters and digits
//   - Immutable after construction, so safe for concurrent use
//   - Deterministic ordering for ties
//
// Scoring uses Jaccard similarity between the query token set and each
// product's token set: score = |Q ∩ P| / |Q ∪ P|.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tbourn/marketplace-state/internal/domain"
)

// Result is a ranked product identity with its similarity score.
type Result struct {
	ProductID uint32  `json:"id"`
	Score     float64 `json:"score"`
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	TopK(query string, k int) []Result
	Len() int
}

// Document is one searchable unit: a product identity and its text.
type Document struct {
	ID   uint32
	Text string
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	maxDocs   int
}

func defaultConfig() config {
	return config{}
}

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

func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	id     uint32
	tokens map[string]struct{}
}

type index struct {
	cfg  config
	docs []doc
}

// ProductText joins the searchable fields of p.
func ProductText(p domain.Product) string {
	return strings.Join([]string{p.Name, p.Description, p.Category, p.Vendor, p.Community}, " ")
}

// NewProductIndex indexes products by ProductText.
func NewProductIndex(products []domain.Product, opts ...Option) Index {
	docs := make([]Document, 0, len(products))
	for _, p := range products {
		docs = append(docs, Document{ID: p.ID, Text: ProductText(p)})
	}
	return NewIndex(docs, opts...)
}

// NewIndex builds an Index from documents. Documents without tokens are
// skipped; with WithMaxDocs, indexing stops after the cap.
func NewIndex(documents []Document, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	docs := make([]doc, 0, len(documents))
	for _, d := range documents {
		toks := tokenize(d.Text, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{id: d.ID, tokens: toks})
		if cfg.maxDocs > 0 && len(docs) >= cfg.maxDocs {
			break
		}
	}
	return &index{cfg: cfg, docs: docs}
}

// Len returns the number of indexed documents.
func (i *index) Len() int { return len(i.docs) }

// TopK returns up to k best-matching products by Jaccard similarity. Ties
// are broken by fewer tokens first, then by ascending id.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 10
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		id    uint32
		score float64
		size  int
	}

	buf := make([]scored, 0, min(k*4, len(i.docs)))
	for _, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + len(d.tokens) - over)
		buf = append(buf, scored{id: d.id, score: float64(over) / union, size: len(d.tokens)})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].size != buf[b].size {
			return buf[a].size < buf[b].size
		}
		return buf[a].id < buf[b].id
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for i := 0; i < k; i++ {
		out[i] = Result{ProductID: buf[i].id, Score: buf[i].score}
	}
	return out
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
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
