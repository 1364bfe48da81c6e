package extractor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

// EXTH record types carrying useful metadata.
const (
	exthAuthor       = 100
	exthPublishDate  = 106
	exthUpdatedTitle = 503
)

// readMOBI parses the PalmDB and MOBI headers for metadata. The text body
// is PalmDOC/HUFF compressed, so the sample stays empty; classification
// then leans on the title and author guesses.
func (e *Extractor) readMOBI(path string, format domain.Format) (domain.ExtractedDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.ExtractedDocument{}, err
	}
	if len(raw) < 78+8 {
		return domain.ExtractedDocument{}, fmt.Errorf("corrupt %s: file too short", format)
	}
	if !bytes.Equal(raw[60:68], []byte("BOOKMOBI")) {
		return domain.ExtractedDocument{}, fmt.Errorf("corrupt %s: not a palm database", format)
	}

	var doc domain.ExtractedDocument
	doc.RawMetadata = map[string]string{}
	// Database name doubles as a short title when nothing better exists.
	if name := string(bytes.TrimRight(raw[0:32], "\x00")); name != "" {
		doc.TitleGuess = name
	}

	record0 := recordOffset(raw, 0)
	if record0 == 0 || int(record0)+132 > len(raw) {
		return doc, nil
	}
	mobi := raw[record0:]
	if !bytes.Equal(mobi[16:20], []byte("MOBI")) {
		return doc, nil
	}
	headerLen := binary.BigEndian.Uint32(mobi[20:24])

	// Full book name, when present, beats the truncated database name.
	// Offsets come from the file, so bounds are checked in 64-bit
	// arithmetic; uint32 sums can wrap.
	if len(mobi) >= 92 {
		nameOff := int64(binary.BigEndian.Uint32(mobi[84:88]))
		nameLen := int64(binary.BigEndian.Uint32(mobi[88:92]))
		if nameLen > 0 && nameOff+nameLen <= int64(len(mobi)) {
			doc.TitleGuess = string(mobi[nameOff : nameOff+nameLen])
		}
	}

	if len(mobi) >= 132 && binary.BigEndian.Uint32(mobi[128:132])&0x40 != 0 {
		exthStart := 16 + int64(headerLen)
		if exthStart < int64(len(mobi)) {
			readEXTH(mobi[exthStart:], &doc)
		}
	}
	return doc, nil
}

func readEXTH(exth []byte, doc *domain.ExtractedDocument) {
	if len(exth) < 12 || !bytes.Equal(exth[0:4], []byte("EXTH")) {
		return
	}
	count := binary.BigEndian.Uint32(exth[8:12])
	pos := 12
	for i := uint32(0); i < count && pos+8 <= len(exth); i++ {
		recType := binary.BigEndian.Uint32(exth[pos : pos+4])
		recLen := int(binary.BigEndian.Uint32(exth[pos+4 : pos+8]))
		if recLen < 8 || pos+recLen > len(exth) {
			return
		}
		value := string(exth[pos+8 : pos+recLen])
		switch recType {
		case exthAuthor:
			doc.AuthorGuess = value
		case exthUpdatedTitle:
			doc.TitleGuess = value
		case exthPublishDate:
			doc.RawMetadata["publish_date"] = value
			if m := yearRe.FindStringSubmatch(value); m != nil {
				doc.YearGuess, _ = strconv.Atoi(m[1])
			}
		}
		pos += recLen
	}
}

// recordOffset reads the data offset of record i from the PDB record list.
func recordOffset(raw []byte, i int) uint32 {
	numRecords := int(binary.BigEndian.Uint16(raw[76:78]))
	if i >= numRecords {
		return 0
	}
	entry := 78 + i*8
	if entry+4 > len(raw) {
		return 0
	}
	return binary.BigEndian.Uint32(raw[entry : entry+4])
}
