// Package encoding normalizes uploaded backup files to UTF-8.
//
// Backups produced by the browser are UTF-8, but files that went through a
// spreadsheet or a Windows text editor come back as UTF-16 or Windows-1252.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the encoding a reader was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
)

const sniffSize = 4096

var boms = []struct {
	mark    []byte
	charset Charset
}{
	{mark: []byte{0xEF, 0xBB, 0xBF}, charset: UTF8},
	{mark: []byte{0xFF, 0xFE}, charset: UTF16LE},
	{mark: []byte{0xFE, 0xFF}, charset: UTF16BE},
}

var decoders = map[Charset]xenc.Encoding{
	UTF16LE:     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	UTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	Windows1252: charmap.Windows1252,
	ISO88599:    charmap.ISO8859_9,
}

// chardet reports latin-1 for most Windows-1252 text.
var detected = map[string]Charset{
	"UTF-8":        UTF8,
	"ISO-8859-1":   Windows1252,
	"windows-1252": Windows1252,
	"ISO-8859-9":   ISO88599,
}

// NewUTF8Reader returns a reader yielding r as UTF-8 together with the
// charset it was decoded from. A UTF-8 byte order mark is dropped.
// Undetectable input is read as Windows-1252.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(head, bom.mark) {
			continue
		}

		if bom.charset == UTF8 {
			_, _ = br.Discard(len(bom.mark))
			return br, UTF8, nil
		}

		return transform.NewReader(br, decoders[bom.charset].NewDecoder()), bom.charset, nil
	}

	charset := sniff(head)
	if charset == UTF8 {
		return br, UTF8, nil
	}

	return transform.NewReader(br, decoders[charset].NewDecoder()), charset, nil
}

func sniff(head []byte) Charset {
	if utf8.Valid(head) {
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(head)
	if err != nil {
		return Windows1252
	}

	if c, ok := detected[result.Charset]; ok {
		return c
	}

	return Windows1252
}
