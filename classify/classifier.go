package classify

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/grocer/core"
	"github.com/poiesic/grocer/normalize"
)

// Tier identifies the cascade step that produced a Result.
type Tier int

const (
	TierCache Tier = iota
	TierExact
	TierWord
	TierKeywordWord
	TierKeywordSubstring
	TierDefault
)

func (t Tier) String() string {
	switch t {
	case TierCache:
		return "cache"
	case TierExact:
		return "exact"
	case TierWord:
		return "word"
	case TierKeywordWord:
		return "keyword-word"
	case TierKeywordSubstring:
		return "keyword-substring"
	case TierDefault:
		return "default"
	}
	return "unknown"
}

// CacheHit reports whether the result came from stored knowledge.
func (t Tier) CacheHit() bool {
	return t == TierCache
}

// KnowledgeReader is the read side of the knowledge store.
// Get returns (nil, nil) when no record exists.
type KnowledgeReader interface {
	Get(ctx context.Context, name string) (*core.KnowledgeRecord, error)
}

// Result is the outcome of classifying one name.
type Result struct {
	Name     string
	Category core.Category
	Record   *core.KnowledgeRecord // set only for TierCache
	Tier     Tier
}

type keyword struct {
	text     string
	words    []string
	category core.Category
}

// Classifier is safe for concurrent use. Its tables are never written after construction.
type Classifier struct {
	reader   KnowledgeReader
	exact    map[string]core.Category
	keywords []keyword
	logger   *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used to report knowledge lookup failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTables replaces the built-in exact and keyword tables.
func WithTables(exact, keywords map[string]core.Category) Option {
	return func(c *Classifier) {
		c.exact = exact
		c.keywords = sortKeywords(keywords)
	}
}

// defaultKeywords is sorted once; every Classifier using the built-in tables shares it.
var defaultKeywords = sortKeywords(keywordTable)

// New returns a Classifier. reader may be nil, in which case the cache tier is skipped.
func New(reader KnowledgeReader, opts ...Option) *Classifier {
	c := &Classifier{
		reader:   reader,
		exact:    exactTable,
		keywords: defaultKeywords,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "classifier")
	return c
}

// Classify runs the cascade for name. The name is normalized first; passing an
// already normalized name is a no-op.
func (c *Classifier) Classify(ctx context.Context, name string) Result {
	name = normalize.Normalize(name)
	res := Result{Name: name}

	if c.reader != nil && name != "" {
		rec, err := c.reader.Get(ctx, name)
		if err != nil {
			c.logger.Warn("knowledge lookup failed, using static rules", "name", name, "err", err)
		} else if rec != nil {
			res.Category = rec.Category.Canonical()
			res.Record = rec
			res.Tier = TierCache
			return res
		}
	}

	res.Category, res.Tier = c.classifyStatic(name)
	return res
}

// ClassifyStatic runs the cascade without consulting stored knowledge.
func (c *Classifier) ClassifyStatic(name string) (core.Category, Tier) {
	return c.classifyStatic(normalize.Normalize(name))
}

func (c *Classifier) classifyStatic(name string) (core.Category, Tier) {
	if name == "" {
		return core.CategoryOther, TierDefault
	}
	if cat, ok := c.exact[name]; ok {
		return cat.Canonical(), TierExact
	}

	words := strings.Fields(name)
	for _, w := range words {
		if cat, ok := c.exact[w]; ok {
			return cat.Canonical(), TierWord
		}
	}

	for _, kw := range c.keywords {
		if containsWords(words, kw.words) {
			return kw.category.Canonical(), TierKeywordWord
		}
	}
	for _, kw := range c.keywords {
		if strings.Contains(name, kw.text) {
			return kw.category.Canonical(), TierKeywordSubstring
		}
	}
	return core.CategoryOther, TierDefault
}

// containsWords reports whether needle occurs as a contiguous run of whole words in haystack.
func containsWords(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}

func sortKeywords(table map[string]core.Category) []keyword {
	out := make([]keyword, 0, len(table))
	for text, cat := range table {
		words := strings.Fields(text)
		if len(words) == 0 {
			continue
		}
		out = append(out, keyword{text: strings.Join(words, " "), words: words, category: cat})
	}
	slices.SortFunc(out, func(a, b keyword) int {
		if n := cmp.Compare(len(b.text), len(a.text)); n != 0 {
			return n
		}
		return cmp.Compare(a.text, b.text)
	})
	return out
}
