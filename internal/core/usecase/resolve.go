package usecase

import (
	"strings"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

// canonical casing for common languages and web technologies so derived
// subdirectories read "Programming/Python" rather than "Programming/python".
var canonicalSubtech = map[string]string{
	"python": "Python", "javascript": "JavaScript", "typescript": "TypeScript",
	"java": "Java", "c": "C", "c++": "C++", "c#": "C#", "go": "Go",
	"golang": "Go", "rust": "Rust", "ruby": "Ruby", "php": "PHP",
	"swift": "Swift", "kotlin": "Kotlin", "scala": "Scala",
	"haskell": "Haskell", "sql": "SQL", "html": "HTML", "css": "CSS",
	"react": "React", "angular": "Angular", "vue": "Vue", "node.js": "Node.js",
	"nodejs": "Node.js", "r": "R",
}

// ResolveCategory maps an oracle result to a concrete category path under
// the active policy. It never fails: out-of-scope documents get the
// excluded sentinel, unmapped topics terminate in the fallback category.
//
// The oracle is instructed to report the single most-central topic for
// multi-topic books; no local re-ranking happens here.
func ResolveCategory(result domain.ClassificationResult, policy domain.PolicyConfig) domain.CategoryPath {
	if !policy.Scope.Allows(result.Topic, result.Confidence) {
		return domain.ExcludedPath()
	}

	category, ok := policy.Taxonomy.Lookup(result.Topic)
	if !ok {
		return domain.CategoryPath{domain.SanitizeSegment(policy.FallbackCategory)}
	}

	subtech := canonicalizeSubtech(result.LanguageOrSubtech)
	if category.Subdivided && subtech != "" {
		if policy.LanguageFirst {
			return domain.CategoryPath{subtech}
		}
		return domain.CategoryPath{domain.SanitizeSegment(category.Name), subtech}
	}
	return domain.CategoryPath{domain.SanitizeSegment(category.Name)}
}

func canonicalizeSubtech(s string) string {
	s = domain.SanitizeSegment(s)
	if s == "" {
		return ""
	}
	if canonical, ok := canonicalSubtech[strings.ToLower(s)]; ok {
		return canonical
	}
	// Unknown value: keep it, first letter upper for directory consistency.
	return strings.ToUpper(s[:1]) + s[1:]
}
