package domain

import (
	"path/filepath"
	"strings"
)

// Format identifies the container format of a source ebook file.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
	FormatMOBI Format = "mobi"
	FormatAZW3 Format = "azw3"
	FormatText Format = "txt"
)

// Extension returns the filename extension for the format, dot included.
func (f Format) Extension() string {
	if f == "" {
		return ""
	}
	return "." + string(f)
}

// FormatForPath maps a file path to a Format by extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, true
	case ".epub":
		return FormatEPUB, true
	case ".mobi":
		return FormatMOBI, true
	case ".azw3":
		return FormatAZW3, true
	case ".txt":
		return FormatText, true
	default:
		return "", false
	}
}

// ExtractedDocument is the normalized view of one source file produced by an
// extractor. TextSample may be empty for corrupt or opaque containers;
// SourcePath and Format are always set.
type ExtractedDocument struct {
	SourcePath  string            `json:"source_path"`
	Format      Format            `json:"format"`
	TitleGuess  string            `json:"title_guess,omitempty"`
	AuthorGuess string            `json:"author_guess,omitempty"`
	YearGuess   int               `json:"year_guess,omitempty"`
	TextSample  string            `json:"text_sample,omitempty"`
	RawMetadata map[string]string `json:"raw_metadata,omitempty"`
}

// ClassificationRequest is one item of a batch sent to the classification
// oracle. TextSample is already bounded by the caller.
type ClassificationRequest struct {
	TitleGuess        string   `json:"title_guess,omitempty"`
	AuthorGuess       string   `json:"author_guess,omitempty"`
	TextSample        string   `json:"text_sample,omitempty"`
	CandidateTaxonomy []string `json:"candidate_taxonomy"`
}

// ClassificationResult is the oracle's answer for one request. Topic is the
// only required field; absent optional fields fall back to the document's
// own guesses downstream.
type ClassificationResult struct {
	Topic             string  `json:"topic"`
	Confidence        float64 `json:"confidence"`
	Title             string  `json:"title,omitempty"`
	Author            string  `json:"author,omitempty"`
	Year              int     `json:"year,omitempty"`
	LanguageOrSubtech string  `json:"language_or_subtech,omitempty"`
}

// InstructionDirectives is the structured outcome of parsing a free-form
// instruction document.
type InstructionDirectives struct {
	AllowedTopics    []string `json:"allowed_topics,omitempty"`
	MinConfidence    float64  `json:"min_confidence,omitempty"`
	LanguageFirst    bool     `json:"language_first,omitempty"`
	ExtraCategories  []string `json:"extra_categories,omitempty"`
	FilenameTemplate string   `json:"filename_template,omitempty"`
}
