package domain

import "strings"

// TokenKind discriminates filename template tokens.
type TokenKind string

const (
	TokenTitle   TokenKind = "title"
	TokenAuthor  TokenKind = "author"
	TokenYear    TokenKind = "year"
	TokenLiteral TokenKind = "literal"
)

// TemplateToken is one element of a filename template: either a substituted
// field or literal text preserved verbatim between fields.
type TemplateToken struct {
	Kind    TokenKind
	Literal string
}

// FilenameTemplate is an ordered token sequence. A valid template carries at
// least one non-literal token.
type FilenameTemplate []TemplateToken

// FieldCount reports how many substituted fields the template carries.
func (t FilenameTemplate) FieldCount() int {
	n := 0
	for _, tok := range t {
		if tok.Kind != TokenLiteral {
			n++
		}
	}
	return n
}

// DefaultTemplate is "{title} - {author} - {year}".
func DefaultTemplate() FilenameTemplate {
	return FilenameTemplate{
		{Kind: TokenTitle},
		{Kind: TokenLiteral, Literal: " - "},
		{Kind: TokenAuthor},
		{Kind: TokenLiteral, Literal: " - "},
		{Kind: TokenYear},
	}
}

// ScopeFilter restricts which classified topics a run accepts. An empty
// AllowedTopics list accepts every topic.
type ScopeFilter struct {
	AllowedTopics []string
	MinConfidence float64
}

// Allows reports whether a classified (topic, confidence) pair is in scope.
// Topic matching is case-insensitive; short allowed entries (such as "c" or
// "go") match exactly, longer ones also match as substrings.
func (f ScopeFilter) Allows(topic string, confidence float64) bool {
	if confidence < f.MinConfidence {
		return false
	}
	if len(f.AllowedTopics) == 0 {
		return true
	}
	folded := strings.ToLower(strings.TrimSpace(topic))
	for _, allowed := range f.AllowedTopics {
		a := strings.ToLower(strings.TrimSpace(allowed))
		if a == "" {
			continue
		}
		if folded == a {
			return true
		}
		if len(a) > 2 && strings.Contains(folded, a) {
			return true
		}
	}
	return false
}

// PolicyConfig steers one organization run. It is produced once by the
// instruction interpreter and consumed read-only downstream.
type PolicyConfig struct {
	Scope            ScopeFilter
	Taxonomy         Taxonomy
	Template         FilenameTemplate
	FallbackCategory string
	// LanguageFirst flattens subdivided categories so the language or
	// technology becomes the top-level directory.
	LanguageFirst bool
}

// DefaultPolicy accepts every topic, uses the built-in taxonomy, the default
// filename template and the "Unclassified" fallback.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		Taxonomy:         DefaultTaxonomy(),
		Template:         DefaultTemplate(),
		FallbackCategory: FallbackCategoryName,
	}
}
