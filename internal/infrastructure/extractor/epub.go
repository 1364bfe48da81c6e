package extractor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

var yearRe = regexp.MustCompile(`\b(\d{4})\b`)

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Titles   []string `xml:"metadata>title"`
	Creators []string `xml:"metadata>creator"`
	Dates    []string `xml:"metadata>date"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// readEPUB parses the OPF package document for metadata and samples the
// first spine chapters for text.
func (e *Extractor) readEPUB(fpath string) (domain.ExtractedDocument, error) {
	archive, err := zip.OpenReader(fpath)
	if err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("corrupt epub: %w", err)
	}
	defer archive.Close()

	var container epubContainer
	if err := readZipXML(&archive.Reader, "META-INF/container.xml", &container); err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("corrupt epub container: %w", err)
	}
	if len(container.Rootfiles) == 0 {
		return domain.ExtractedDocument{}, fmt.Errorf("corrupt epub: no rootfile")
	}

	opfPath := container.Rootfiles[0].FullPath
	var pkg epubPackage
	if err := readZipXML(&archive.Reader, opfPath, &pkg); err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("corrupt epub package: %w", err)
	}

	var doc domain.ExtractedDocument
	doc.RawMetadata = map[string]string{}
	if len(pkg.Titles) > 0 {
		doc.TitleGuess = strings.TrimSpace(pkg.Titles[0])
	}
	if len(pkg.Creators) > 0 {
		doc.AuthorGuess = strings.TrimSpace(pkg.Creators[0])
	}
	if len(pkg.Dates) > 0 {
		doc.RawMetadata["date"] = pkg.Dates[0]
		if m := yearRe.FindStringSubmatch(pkg.Dates[0]); m != nil {
			doc.YearGuess, _ = strconv.Atoi(m[1])
		}
	}

	doc.TextSample = e.sampleEPUBText(&archive.Reader, pkg, path.Dir(opfPath))
	return doc, nil
}

// sampleEPUBText walks spine items in reading order and accumulates visible
// text until the sample bound is reached.
func (e *Extractor) sampleEPUBText(archive *zip.Reader, pkg epubPackage, opfDir string) string {
	hrefByID := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		if strings.Contains(item.MediaType, "xhtml") || strings.Contains(item.MediaType, "html") {
			hrefByID[item.ID] = item.Href
		}
	}

	var b strings.Builder
	for _, ref := range pkg.Spine {
		href, ok := hrefByID[ref.IDRef]
		if !ok {
			continue
		}
		chapterPath := href
		if opfDir != "." && opfDir != "" {
			chapterPath = path.Join(opfDir, href)
		}
		f, err := openZipEntry(archive, chapterPath)
		if err != nil {
			continue
		}
		appendVisibleText(&b, f, e.maxSample)
		f.Close()
		if b.Len() >= e.maxSample {
			break
		}
	}
	sample := strings.TrimSpace(b.String())
	if len(sample) > e.maxSample {
		sample = sample[:e.maxSample]
		// The cut can split a multi-byte rune; trim the partial tail.
		for i := 0; i < utf8.UTFMax-1 && len(sample) > 0 && !utf8.ValidString(sample); i++ {
			sample = sample[:len(sample)-1]
		}
	}
	return sample
}

func appendVisibleText(b *strings.Builder, r io.Reader, limit int) {
	tokenizer := html.NewTokenizer(r)
	skipDepth := 0
	for b.Len() < limit {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
}

func readZipXML(archive *zip.Reader, name string, out any) error {
	f, err := openZipEntry(archive, name)
	if err != nil {
		return err
	}
	defer f.Close()
	return xml.NewDecoder(f).Decode(out)
}

func openZipEntry(archive *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range archive.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("missing zip entry %q", name)
}
