// Package llm holds the prompt and response contract shared by the oracle
// transports. Prompt construction lives here so it never leaks into the
// category resolver.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

// BuildClassificationPrompt renders one batch of requests. The oracle must
// answer with a JSON object {"books": [...]} carrying exactly one entry per
// book, in input order, with a single primary topic each.
func BuildClassificationPrompt(requests []domain.ClassificationRequest) string {
	var b strings.Builder
	b.WriteString(`You are an ebook classifier.
Return a strict JSON object with a single key "books": an array with exactly one entry per book below, in the same order.
Each entry has keys:
topic (string, the single most central subject; for multi-topic books pick the primary one),
confidence (number from 0 to 1),
title (string, corrected book title, optional),
author (string, optional),
year (integer, optional),
language_or_subtech (string, programming language or main technology, optional).
No markdown, no extra keys.

`)
	if len(requests) > 0 && len(requests[0].CandidateTaxonomy) > 0 {
		b.WriteString("Preferred topics: ")
		b.WriteString(strings.Join(requests[0].CandidateTaxonomy, ", "))
		b.WriteString("\n\n")
	}
	for i, req := range requests {
		fmt.Fprintf(&b, "Book %d:\n", i+1)
		if req.TitleGuess != "" {
			fmt.Fprintf(&b, "title guess: %s\n", req.TitleGuess)
		}
		if req.AuthorGuess != "" {
			fmt.Fprintf(&b, "author guess: %s\n", req.AuthorGuess)
		}
		if req.TextSample != "" {
			fmt.Fprintf(&b, "sample:\n%s\n", req.TextSample)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// BuildInstructionPrompt asks the oracle to distill a free-form instruction
// document into the directive schema.
func BuildInstructionPrompt(text string) string {
	return `You interpret instructions for an ebook organizer.
Return a strict JSON object with keys:
allowed_topics (array of strings, empty if no scope restriction),
min_confidence (number from 0 to 1, 0 if unspecified),
language_first (boolean, true if directories should be named after the language itself),
extra_categories (array of strings, additional category directories requested),
filename_template (string with {title} {author} {year} tokens, empty if unspecified).
No markdown, no extra keys.

Instructions:
` + text
}

type booksEnvelope struct {
	Books []domain.ClassificationResult `json:"books"`
}

// ParseClassificationResponse accepts either the {"books": [...]} envelope
// or a bare JSON array, with or without surrounding prose.
func ParseClassificationResponse(raw string) ([]domain.ClassificationResult, error) {
	if obj := extractJSONObject(raw); strings.HasPrefix(obj, "{") {
		var envelope booksEnvelope
		if err := json.Unmarshal([]byte(obj), &envelope); err == nil && envelope.Books != nil {
			return envelope.Books, nil
		}
	}
	if arr := extractJSONArray(raw); arr != "" {
		var results []domain.ClassificationResult
		if err := json.Unmarshal([]byte(arr), &results); err == nil {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no classification array in response")
}

// ParseInstructionResponse parses the directive object.
func ParseInstructionResponse(raw string) (domain.InstructionDirectives, error) {
	var directives domain.InstructionDirectives
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &directives); err != nil {
		return domain.InstructionDirectives{}, fmt.Errorf("parse instruction json: %w", err)
	}
	return directives, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return ""
}
