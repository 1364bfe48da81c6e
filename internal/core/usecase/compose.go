package usecase

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

// ComposeFilename renders the canonical filename for one document and
// resolves collisions against names already taken in the destination
// directory, both pre-existing on disk and assigned earlier in this run.
// The caller owns adding the returned name to the taken set.
func ComposeFilename(
	doc domain.ExtractedDocument,
	result domain.ClassificationResult,
	policy domain.PolicyConfig,
	taken map[string]struct{},
) string {
	title := firstNonEmpty(result.Title, doc.TitleGuess, stem(doc.SourcePath))
	author := firstNonEmpty(result.Author, doc.AuthorGuess)
	if author == "" {
		author = "Unknown"
	}
	year := ""
	switch {
	case result.Year > 0:
		year = strconv.Itoa(result.Year)
	case doc.YearGuess > 0:
		year = strconv.Itoa(doc.YearGuess)
	}

	base := renderTemplate(policy.Template, map[domain.TokenKind]string{
		domain.TokenTitle:  title,
		domain.TokenAuthor: author,
		domain.TokenYear:   year,
	})
	base = domain.SanitizeSegment(base)
	if base == "" {
		base = "Untitled"
	}

	ext := doc.Format.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(doc.SourcePath))
	}

	name := base + ext
	for n := 2; ; n++ {
		if _, exists := taken[name]; !exists {
			return name
		}
		name = fmt.Sprintf("%s (%d)%s", base, n, ext)
	}
}

// renderTemplate substitutes field tokens and collapses the literal
// separators adjacent to missing fields so no dangling delimiter remains.
func renderTemplate(tpl domain.FilenameTemplate, values map[domain.TokenKind]string) string {
	var b strings.Builder
	pending := ""
	emitted := false
	skipped := false
	for _, tok := range tpl {
		if tok.Kind == domain.TokenLiteral {
			pending += tok.Literal
			continue
		}
		value := values[tok.Kind]
		if value == "" {
			skipped = true
			pending = ""
			continue
		}
		if emitted || !skipped {
			b.WriteString(pending)
		}
		pending = ""
		b.WriteString(value)
		emitted = true
		skipped = false
	}
	if emitted && !skipped {
		b.WriteString(pending)
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
