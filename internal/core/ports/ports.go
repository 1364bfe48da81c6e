package ports

import (
	"context"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

// DocumentExtractor turns a raw file into a normalized ExtractedDocument.
type DocumentExtractor interface {
	Extract(ctx context.Context, path string) (domain.ExtractedDocument, error)
}

// ClassificationOracle classifies a batch of requests. Implementations
// return exactly one result per request, in request order, or fail the
// whole batch; degrading individual items is the caller's concern.
type ClassificationOracle interface {
	Classify(ctx context.Context, requests []domain.ClassificationRequest) ([]domain.ClassificationResult, error)
}

// InstructionOracle extracts structured directives from a free-form
// instruction document.
type InstructionOracle interface {
	ParseInstructions(ctx context.Context, text string) (domain.InstructionDirectives, error)
}

// FileStore is the destination-side filesystem capability.
type FileStore interface {
	EnsureDir(path string) error
	ListNames(dir string) (map[string]struct{}, error)
	Copy(ctx context.Context, src, dst string) error
}
