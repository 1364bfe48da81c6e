package extractor

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

var pdfDateYearRe = regexp.MustCompile(`D:(\d{4})`)

// readPDF pulls the Info dictionary and a plain-text sample. The pdf
// library panics on some malformed files, so the whole read is guarded.
func (e *Extractor) readPDF(path string) (doc domain.ExtractedDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("corrupt pdf: %w", err)
	}
	defer f.Close()

	info := reader.Trailer().Key("Info")
	doc.TitleGuess = pdfString(info.Key("Title"))
	doc.AuthorGuess = pdfString(info.Key("Author"))
	doc.RawMetadata = map[string]string{}
	if subject := pdfString(info.Key("Subject")); subject != "" {
		doc.RawMetadata["subject"] = subject
	}
	if created := pdfString(info.Key("CreationDate")); created != "" {
		doc.RawMetadata["creation_date"] = created
		if m := pdfDateYearRe.FindStringSubmatch(created); m != nil {
			doc.YearGuess, _ = strconv.Atoi(m[1])
		}
	}

	// Text extraction failing on an otherwise readable file is not fatal:
	// an empty sample is a legal document.
	if textReader, terr := reader.GetPlainText(); terr == nil {
		raw, _ := io.ReadAll(io.LimitReader(textReader, int64(e.maxSample)))
		doc.TextSample = strings.TrimSpace(string(raw))
	}
	return doc, nil
}

func pdfString(v pdf.Value) string {
	if v.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(v.Text())
}
