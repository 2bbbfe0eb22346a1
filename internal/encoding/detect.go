// Package encoding converts uploaded text files to UTF-8.
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

const sniffSize = 4096

// Charset names reported in Decoded.
const (
	CharsetUTF8     = "UTF-8"
	CharsetUTF16LE  = "UTF-16LE"
	CharsetUTF16BE  = "UTF-16BE"
	CharsetFallback = "windows-1252"
)

// Decoded is a UTF-8 view of the input plus the charset it was read as.
type Decoded struct {
	io.Reader
	Charset string
}

var boms = []struct {
	mark    []byte
	charset string
	dec     xenc.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, CharsetUTF8, nil},
	{[]byte{0xFF, 0xFE}, CharsetUTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, CharsetUTF16BE, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// chardetCharsets maps chardet results to decoders. Spreadsheet exports on
// Indonesian Windows machines are mostly windows-1252 when not UTF-8.
var chardetCharsets = map[string]xenc.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
	"UTF-16LE":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"UTF-16BE":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

// ToUTF8 sniffs the start of r and returns a reader producing UTF-8. It checks
// for a BOM, then for valid UTF-8, then asks chardet, and falls back to
// windows-1252.
func ToUTF8(r io.Reader) (Decoded, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return Decoded{}, fmt.Errorf("sniffing input: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.mark) {
			continue
		}

		if b.dec == nil {
			_, _ = br.Discard(len(b.mark))
			return Decoded{Reader: br, Charset: b.charset}, nil
		}

		return Decoded{Reader: transform.NewReader(br, b.dec.NewDecoder()), Charset: b.charset}, nil
	}

	if utf8.Valid(head) {
		return Decoded{Reader: br, Charset: CharsetUTF8}, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if res.Charset == CharsetUTF8 {
			return Decoded{Reader: br, Charset: CharsetUTF8}, nil
		}

		if enc, ok := chardetCharsets[res.Charset]; ok {
			return Decoded{Reader: transform.NewReader(br, enc.NewDecoder()), Charset: res.Charset}, nil
		}
	}

	return Decoded{Reader: transform.NewReader(br, charmap.Windows1252.NewDecoder()), Charset: CharsetFallback}, nil
}
