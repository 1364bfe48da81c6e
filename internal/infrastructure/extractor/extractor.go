// Package extractor turns raw ebook files into normalized documents.
// Metadata and text samples are best-effort: a corrupt or opaque container
// yields an error, a readable one with missing metadata yields a document
// with empty guesses.
package extractor

import (
	"context"
	"fmt"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

const defaultMaxSample = 4000

type Extractor struct {
	maxSample int
}

func New(maxSample int) *Extractor {
	if maxSample <= 0 {
		maxSample = defaultMaxSample
	}
	return &Extractor{maxSample: maxSample}
}

func (e *Extractor) Extract(ctx context.Context, path string) (domain.ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractedDocument{}, err
	}

	format, ok := domain.FormatForPath(path)
	if !ok {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrExtraction, "detect format",
			fmt.Errorf("unsupported format: %s", path))
	}

	var (
		doc domain.ExtractedDocument
		err error
	)
	switch format {
	case domain.FormatPDF:
		doc, err = e.readPDF(path)
	case domain.FormatEPUB:
		doc, err = e.readEPUB(path)
	case domain.FormatMOBI, domain.FormatAZW3:
		doc, err = e.readMOBI(path, format)
	case domain.FormatText:
		doc, err = e.readText(path)
	}
	if err != nil {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrExtraction, "read "+string(format), err)
	}

	doc.SourcePath = path
	doc.Format = format
	return doc, nil
}
