package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
	"github.com/kirillkom/ebook-organizer/internal/infrastructure/storage/localfs"
)

// oracleFake answers by title guess so results stay bound to the right
// request regardless of batch composition.
type oracleFake struct {
	byTitle  map[string]domain.ClassificationResult
	err      error
	failOnce bool
	calls    int
}

func (f *oracleFake) Classify(_ context.Context, requests []domain.ClassificationRequest) ([]domain.ClassificationResult, error) {
	f.calls++
	if f.err != nil && (!f.failOnce || f.calls == 1) {
		return nil, f.err
	}
	results := make([]domain.ClassificationResult, 0, len(requests))
	for _, req := range requests {
		results = append(results, f.byTitle[req.TitleGuess])
	}
	return results, nil
}

type shortOracleFake struct{}

func (shortOracleFake) Classify(_ context.Context, requests []domain.ClassificationRequest) ([]domain.ClassificationResult, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	return make([]domain.ClassificationResult, len(requests)-1), nil
}

func writeSourceFile(t *testing.T, dir, name, content string) domain.ExtractedDocument {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}
	format, _ := domain.FormatForPath(path)
	if format == "" {
		format = domain.FormatPDF
	}
	return domain.ExtractedDocument{SourcePath: path, Format: format, TitleGuess: name}
}

func newTestPlanner(oracle *oracleFake) *Planner {
	return NewPlanner(nil, oracle, localfs.New(), nil, 10, 4000)
}

func TestRunCopiesClassifiedBooksIntoCategoryTree(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	python := writeSourceFile(t, src, "fluent.epub", "python content")
	cooking := writeSourceFile(t, src, "cookbook.epub", "recipes")

	oracle := &oracleFake{byTitle: map[string]domain.ClassificationResult{
		"fluent.epub": {
			Topic: "Programming", Confidence: 0.95,
			Title: "Fluent Python", Author: "Ramalho", Year: 2015,
			LanguageOrSubtech: "Python",
		},
		"cookbook.epub": {Topic: "Cooking", Confidence: 0.9, Title: "Recipes"},
	}}

	policy := domain.DefaultPolicy()
	policy.Scope.AllowedTopics = domain.ProgrammingTopics()

	report, err := newTestPlanner(oracle).Run(context.Background(), []domain.ExtractedDocument{python, cooking}, policy, dest)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Copied != 1 || report.Excluded != 1 || report.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", report)
	}

	want := filepath.Join(dest, "Programming", "Python", "Fluent Python - Ramalho - 2015.epub")
	got, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("expected copied file at %s: %v", want, err)
	}
	if !bytes.Equal(got, []byte("python content")) {
		t.Fatalf("copy not byte-identical")
	}

	// The excluded cookbook must not appear anywhere in the output tree.
	err = filepath.WalkDir(dest, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && bytes.Contains([]byte(path), []byte("Recipes")) {
			t.Fatalf("excluded book present at %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk destination: %v", err)
	}
}

func TestRunAssignsDistinctNamesOnCollision(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	first := writeSourceFile(t, src, "a.pdf", "first body")
	second := writeSourceFile(t, src, "b.pdf", "second body")

	oracle := &oracleFake{byTitle: map[string]domain.ClassificationResult{
		"a.pdf": {Topic: "Programming", Confidence: 0.9, Title: "Untitled", LanguageOrSubtech: "Rust"},
		"b.pdf": {Topic: "Programming", Confidence: 0.9, Title: "Untitled", LanguageOrSubtech: "Rust"},
	}}

	policy := domain.DefaultPolicy()
	policy.Template = ParseTemplate("{title}")

	report, err := newTestPlanner(oracle).Run(context.Background(), []domain.ExtractedDocument{first, second}, policy, dest)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Copied != 2 {
		t.Fatalf("expected 2 copies, got %+v", report)
	}

	rustDir := filepath.Join(dest, "Programming", "Rust")
	firstBody, err := os.ReadFile(filepath.Join(rustDir, "Untitled.pdf"))
	if err != nil {
		t.Fatalf("first copy missing: %v", err)
	}
	secondBody, err := os.ReadFile(filepath.Join(rustDir, "Untitled (2).pdf"))
	if err != nil {
		t.Fatalf("suffixed copy missing: %v", err)
	}
	if !bytes.Equal(firstBody, []byte("first body")) || !bytes.Equal(secondBody, []byte("second body")) {
		t.Fatalf("collision copies lost content")
	}
}

func TestRunSeedsCollisionSetFromExistingDestination(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	existingDir := filepath.Join(dest, "Programming", "Go")
	if err := os.MkdirAll(existingDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(existingDir, "Untitled.pdf"), []byte("old"), 0o644); err != nil {
		t.Fatalf("write existing: %v", err)
	}

	doc := writeSourceFile(t, src, "new.pdf", "new body")
	oracle := &oracleFake{byTitle: map[string]domain.ClassificationResult{
		"new.pdf": {Topic: "Programming", Confidence: 0.9, Title: "Untitled", LanguageOrSubtech: "Go"},
	}}
	policy := domain.DefaultPolicy()
	policy.Template = ParseTemplate("{title}")

	report, err := newTestPlanner(oracle).Run(context.Background(), []domain.ExtractedDocument{doc}, policy, dest)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Copied != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(existingDir, "Untitled (2).pdf")); err != nil {
		t.Fatalf("expected suffixed name next to pre-existing file: %v", err)
	}
	old, err := os.ReadFile(filepath.Join(existingDir, "Untitled.pdf"))
	if err != nil || !bytes.Equal(old, []byte("old")) {
		t.Fatalf("pre-existing file was touched")
	}
}

func TestRunDegradesToFallbackWhenOracleFails(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	doc := writeSourceFile(t, src, "mystery.pdf", "body")
	oracle := &oracleFake{err: errors.New("oracle down")}

	policy := domain.DefaultPolicy()
	policy.Scope.AllowedTopics = domain.ProgrammingTopics()

	report, err := newTestPlanner(oracle).Run(context.Background(), []domain.ExtractedDocument{doc}, policy, dest)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Copied != 1 || report.Failed != 0 {
		t.Fatalf("expected degraded copy, got %+v", report)
	}
	matches, _ := filepath.Glob(filepath.Join(dest, domain.FallbackCategoryName, "*"))
	if len(matches) != 1 {
		t.Fatalf("expected one file in fallback category, got %v", matches)
	}
}

func TestRunDegradesBatchOnWrongResultCount(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	a := writeSourceFile(t, src, "a.pdf", "a")
	b := writeSourceFile(t, src, "b.pdf", "b")

	planner := NewPlanner(nil, shortOracleFake{}, localfs.New(), nil, 10, 4000)
	report, err := planner.Run(context.Background(), []domain.ExtractedDocument{a, b}, domain.DefaultPolicy(), dest)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Copied != 2 {
		t.Fatalf("expected both degraded books copied, got %+v", report)
	}
	matches, _ := filepath.Glob(filepath.Join(dest, domain.FallbackCategoryName, "*"))
	if len(matches) != 2 {
		t.Fatalf("expected two files in fallback category, got %v", matches)
	}
}

func TestRunOneFailureDoesNotAbortOthers(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	good := writeSourceFile(t, src, "good.pdf", "good body")
	missing := domain.ExtractedDocument{
		SourcePath: filepath.Join(src, "missing.pdf"),
		Format:     domain.FormatPDF,
		TitleGuess: "missing.pdf",
	}

	oracle := &oracleFake{byTitle: map[string]domain.ClassificationResult{
		"good.pdf":    {Topic: "Security", Confidence: 0.9, Title: "Good Book"},
		"missing.pdf": {Topic: "Security", Confidence: 0.9, Title: "Gone Book"},
	}}

	report, err := newTestPlanner(oracle).Run(context.Background(), []domain.ExtractedDocument{good, missing}, domain.DefaultPolicy(), dest)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Copied != 1 || report.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("expected itemized failure, got %+v", report.Failures)
	}
	if report.Failures[0].Kind != "copy" {
		t.Fatalf("expected copy failure kind, got %q", report.Failures[0].Kind)
	}
	if _, err := os.Stat(filepath.Join(dest, "Security", "Good Book - Unknown.pdf")); err != nil {
		t.Fatalf("expected surviving copy: %v", err)
	}
}

func TestRunEveryDocumentGetsExactlyOneOutcome(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	var docs []domain.ExtractedDocument
	byTitle := map[string]domain.ClassificationResult{}
	names := []string{"one.pdf", "two.pdf", "three.pdf", "four.pdf"}
	topics := []string{"Programming", "Databases", "Science", "Nonsense Topic"}
	for i, name := range names {
		docs = append(docs, writeSourceFile(t, src, name, name+" body"))
		byTitle[name] = domain.ClassificationResult{Topic: topics[i], Confidence: 0.9, Title: name}
	}

	report, err := newTestPlanner(&oracleFake{byTitle: byTitle}).Run(context.Background(), docs, domain.DefaultPolicy(), dest)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if total := report.Copied + report.Excluded + report.Failed; total != len(docs) {
		t.Fatalf("expected %d outcomes, got %d (%+v)", len(docs), total, report)
	}
	if report.Excluded != 0 {
		t.Fatalf("accept-all scope must not exclude, got %+v", report)
	}
}
