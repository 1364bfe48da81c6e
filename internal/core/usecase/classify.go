package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

// BuildRequests maps documents to oracle requests, bounding each text
// sample and attaching the candidate taxonomy from the active policy.
func BuildRequests(docs []domain.ExtractedDocument, policy domain.PolicyConfig, maxSample int) []domain.ClassificationRequest {
	taxonomy := policy.Taxonomy.Names()
	requests := make([]domain.ClassificationRequest, 0, len(docs))
	for _, doc := range docs {
		sample := doc.TextSample
		if maxSample > 0 && len(sample) > maxSample {
			sample = truncateOnRuneBoundary(sample, maxSample)
		}
		requests = append(requests, domain.ClassificationRequest{
			TitleGuess:        doc.TitleGuess,
			AuthorGuess:       doc.AuthorGuess,
			TextSample:        sample,
			CandidateTaxonomy: taxonomy,
		})
	}
	return requests
}

// normalizeResult enforces the oracle response contract for one item:
// confidence clamped to [0,1], topic trimmed, empty topic degraded to the
// fallback category. Optional fields stay empty here; the composer falls
// back to the document's own guesses.
func normalizeResult(result domain.ClassificationResult, policy domain.PolicyConfig) domain.ClassificationResult {
	result.Topic = strings.TrimSpace(result.Topic)
	if result.Topic == "" {
		result.Topic = policy.FallbackCategory
		result.Confidence = 0
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	if result.Year < 0 {
		result.Year = 0
	}
	return result
}

// truncateOnRuneBoundary cuts s at no more than limit bytes without
// splitting a multi-byte rune, so the prompt never carries invalid UTF-8.
func truncateOnRuneBoundary(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	s = s[:limit]
	for i := 0; i < utf8.UTFMax-1 && len(s) > 0 && !utf8.ValidString(s); i++ {
		s = s[:len(s)-1]
	}
	return s
}

// fallbackResult is the degraded classification applied when the oracle
// fails after retries or returns a structurally invalid batch.
func fallbackResult(policy domain.PolicyConfig) domain.ClassificationResult {
	return domain.ClassificationResult{
		Topic:      policy.FallbackCategory,
		Confidence: 0,
	}
}
