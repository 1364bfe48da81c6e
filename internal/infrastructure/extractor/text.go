package extractor

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

func (e *Extractor) readText(path string) (domain.ExtractedDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ExtractedDocument{}, err
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, int64(e.maxSample)))
	if err != nil {
		return domain.ExtractedDocument{}, err
	}
	// A truncated read can split a multi-byte rune; trim up to three
	// trailing bytes before validating.
	for i := 0; i < 3 && len(raw) > 0 && !utf8.Valid(raw); i++ {
		raw = raw[:len(raw)-1]
	}
	if !utf8.Valid(raw) {
		return domain.ExtractedDocument{}, fmt.Errorf("not valid utf-8 text: %s", path)
	}

	return domain.ExtractedDocument{
		TextSample: strings.TrimSpace(string(raw)),
	}, nil
}
