package usecase

import (
	"testing"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

func TestComposeFilenameUsesResultFieldsFirst(t *testing.T) {
	doc := domain.ExtractedDocument{
		SourcePath: "/books/fp.epub",
		Format:     domain.FormatEPUB,
		TitleGuess: "fluent_python_final",
	}
	result := domain.ClassificationResult{
		Title:  "Fluent Python",
		Author: "Ramalho",
		Year:   2015,
	}

	name := ComposeFilename(doc, result, domain.DefaultPolicy(), map[string]struct{}{})
	if name != "Fluent Python - Ramalho - 2015.epub" {
		t.Fatalf("unexpected filename %q", name)
	}
}

func TestComposeFilenameFallsBackToGuessesThenStem(t *testing.T) {
	doc := domain.ExtractedDocument{
		SourcePath: "/books/some_title.pdf",
		Format:     domain.FormatPDF,
	}

	name := ComposeFilename(doc, domain.ClassificationResult{}, domain.DefaultPolicy(), map[string]struct{}{})
	if name != "some_title - Unknown.pdf" {
		t.Fatalf("expected stem title and Unknown author, got %q", name)
	}
}

func TestComposeFilenameCollapsesMissingYearSeparator(t *testing.T) {
	doc := domain.ExtractedDocument{
		SourcePath: "/books/x.pdf",
		Format:     domain.FormatPDF,
	}
	result := domain.ClassificationResult{Title: "Title", Author: "Author"}

	name := ComposeFilename(doc, result, domain.DefaultPolicy(), map[string]struct{}{})
	if name != "Title - Author.pdf" {
		t.Fatalf("expected dangling separator collapsed, got %q", name)
	}
}

func TestComposeFilenameCollapsesLeadingSeparatorForMissingTitle(t *testing.T) {
	policy := domain.DefaultPolicy()
	policy.Template = ParseTemplate("{year} - {title}")
	doc := domain.ExtractedDocument{SourcePath: "/books/x.pdf", Format: domain.FormatPDF}
	result := domain.ClassificationResult{Title: "Title Only"}

	name := ComposeFilename(doc, result, policy, map[string]struct{}{})
	if name != "Title Only.pdf" {
		t.Fatalf("expected leading separator dropped, got %q", name)
	}
}

func TestComposeFilenameSanitizesIllegalCharacters(t *testing.T) {
	policy := domain.DefaultPolicy()
	policy.Template = ParseTemplate("{title}")
	doc := domain.ExtractedDocument{SourcePath: "/books/x.pdf", Format: domain.FormatPDF}
	result := domain.ClassificationResult{Title: `C++: A "Complete" Guide?`}

	name := ComposeFilename(doc, result, policy, map[string]struct{}{})
	if name != "C++ A Complete Guide.pdf" {
		t.Fatalf("unexpected sanitized name %q", name)
	}
}

func TestComposeFilenameIsDeterministic(t *testing.T) {
	doc := domain.ExtractedDocument{SourcePath: "/books/x.pdf", Format: domain.FormatPDF}
	result := domain.ClassificationResult{Title: "Some Book", Author: "A. Writer", Year: 2020}
	policy := domain.DefaultPolicy()

	first := ComposeFilename(doc, result, policy, map[string]struct{}{})
	second := ComposeFilename(doc, result, policy, map[string]struct{}{})
	if first != second {
		t.Fatalf("composition not deterministic: %q vs %q", first, second)
	}
}

func TestComposeFilenameResolvesCollisionsWithSuffix(t *testing.T) {
	policy := domain.DefaultPolicy()
	policy.Template = ParseTemplate("{title}")
	doc := domain.ExtractedDocument{SourcePath: "/books/a.pdf", Format: domain.FormatPDF}
	result := domain.ClassificationResult{Title: "Untitled"}

	taken := map[string]struct{}{}
	var names []string
	for i := 0; i < 3; i++ {
		name := ComposeFilename(doc, result, policy, taken)
		taken[name] = struct{}{}
		names = append(names, name)
	}

	want := []string{"Untitled.pdf", "Untitled (2).pdf", "Untitled (3).pdf"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("collision %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}

func TestRenderTemplateKeepsLiteralBetweenPresentFields(t *testing.T) {
	template := ParseTemplate("{author}_{title}")
	out := renderTemplate(template, map[domain.TokenKind]string{
		domain.TokenAuthor: "Ramalho",
		domain.TokenTitle:  "Fluent Python",
	})
	if out != "Ramalho_Fluent Python" {
		t.Fatalf("unexpected render %q", out)
	}
}
