package parse

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/grocer/ai"
	"github.com/poiesic/grocer/core"
)

// ComplexLength is the segment length in characters above which input is always treated as complex.
const ComplexLength = 100

const unitPattern = `lbs?|oz|kg|g|cups?|tablespoons?|tbsp|teaspoons?|tsp|pounds?|ounces?`

var (
	// leadingQuantity matches "2 lbs ground beef", "1/2 cup sugar" and "3 eggs".
	leadingQuantity = regexp.MustCompile(`(?i)^(\d+(?:[./]\d+)?(?:\s*(?:` + unitPattern + `)\b)?)\s+(.+)$`)

	// quantityToken matches the same amounts anywhere in a segment.
	quantityToken = regexp.MustCompile(`(?i)\b\d+(?:[./]\d+)?(?:\s*(?:` + unitPattern + `)\b|\b)`)

	// unitOnly matches a bare unit, which is never a name on its own.
	unitOnly = regexp.MustCompile(`(?i)^(?:` + unitPattern + `)$`)

	// percentToken matches "2%" style descriptors, which are not amounts.
	percentToken = regexp.MustCompile(`\b\d+(?:\.\d+)?%`)

	andSeparator = regexp.MustCompile(`(?i) and `)

	// compounds are names that contain a separator but are one item.
	compounds = regexp.MustCompile(`(?i)\b(?:half (?:and|&) half|mac(?:aroni)? (?:and|&) cheese|pork (?:and|&) beans|sweet (?:and|&) sour(?: sauce)?|salt (?:and|&) vinegar chips|black (?:and|&) white cookies)\b`)
)

// bullets are stripped from the start of each line.
const bullets = "•·-*○▪▫"

// joiner temporarily replaces the spaces inside a compound so separators skip it.
const joiner = "\x00"

// Parser is safe for concurrent use.
type Parser struct {
	freeform ai.FreeformParser
	logger   *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New returns a Parser. freeform may be nil, in which case complex input
// degrades straight to a single low-confidence item.
func New(freeform ai.FreeformParser, opts ...Option) *Parser {
	p := &Parser{
		freeform: freeform,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "parser")
	return p
}

// Parse splits text into ingredients in input order.
// Returns core.ErrEmptyInput when text is blank.
func (p *Parser) Parse(ctx context.Context, text string) ([]core.ParsedIngredient, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, core.ErrEmptyInput
	}

	lines := splitLines(trimmed)
	switch len(lines) {
	case 0:
		return nil, core.ErrEmptyInput
	case 1:
	default:
		return extractAll(lines), nil
	}

	segments := splitDelimiters(lines[0])
	switch len(segments) {
	case 0:
		return nil, core.ErrEmptyInput
	case 1:
	default:
		return extractAll(segments), nil
	}

	segment := segments[0]
	if !isComplex(segment) {
		return []core.ParsedIngredient{extract(segment)}, nil
	}
	return p.parseComplex(ctx, trimmed), nil
}

// parseComplex asks the free-form parser and degrades to one low-confidence item.
func (p *Parser) parseComplex(ctx context.Context, text string) []core.ParsedIngredient {
	fallback := []core.ParsedIngredient{{Name: text, Confidence: core.ConfidenceLow}}
	if p.freeform == nil {
		return fallback
	}

	items, err := p.freeform.ParseFreeform(ctx, text)
	if err != nil {
		p.logger.Warn("free-form parse failed, keeping text as one item", "err", err)
		return fallback
	}

	out := make([]core.ParsedIngredient, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		out = append(out, core.ParsedIngredient{
			Name:       name,
			Quantity:   it.Quantity,
			Confidence: core.ConfidenceMedium,
		})
	}
	if len(out) == 0 {
		p.logger.Debug("free-form parse found no items, keeping text as one item")
		return fallback
	}
	return out
}

// splitLines returns the non-empty lines of text with bullets removed.
func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, bullets))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// splitDelimiters splits a line on ",", ";", " and " and " & " in turn.
func splitDelimiters(line string) []string {
	line = compounds.ReplaceAllStringFunc(line, func(m string) string {
		return strings.ReplaceAll(m, " ", joiner)
	})

	parts := []string{line}
	for _, split := range []func(string) []string{
		func(s string) []string { return strings.Split(s, ",") },
		func(s string) []string { return strings.Split(s, ";") },
		func(s string) []string { return andSeparator.Split(s, -1) },
		func(s string) []string { return strings.Split(s, " & ") },
	} {
		var next []string
		for _, part := range parts {
			next = append(next, split(part)...)
		}
		parts = next
	}

	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(strings.ReplaceAll(part, joiner, " "))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// isComplex reports whether a lone segment needs the free-form parser.
func isComplex(segment string) bool {
	if utf8.RuneCountInString(segment) > ComplexLength {
		return true
	}
	text := percentToken.ReplaceAllString(segment, "")
	if !quantityToken.MatchString(text) {
		return false
	}
	m := leadingQuantity.FindStringSubmatch(text)
	if m == nil {
		return true
	}
	return quantityToken.MatchString(m[2])
}

// extract splits a leading amount off a segment. A segment that is only an
// amount, such as "2 lbs", is kept whole as the name.
func extract(segment string) core.ParsedIngredient {
	if m := leadingQuantity.FindStringSubmatch(segment); m != nil && !unitOnly.MatchString(strings.TrimSpace(m[2])) {
		qty := strings.TrimSpace(m[1])
		return core.ParsedIngredient{
			Name:       strings.TrimSpace(m[2]),
			Quantity:   &qty,
			Confidence: core.ConfidenceHigh,
		}
	}
	return core.ParsedIngredient{Name: segment, Confidence: core.ConfidenceHigh}
}

func extractAll(segments []string) []core.ParsedIngredient {
	out := make([]core.ParsedIngredient, len(segments))
	for i, s := range segments {
		out[i] = extract(s)
	}
	return out
}
