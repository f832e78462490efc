package fs

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"fh-go/internal/fh"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// lookupEncoding resolves a WHATWG encoding label such as "shift_jis" or
// "euc-jp" to a codec.
func lookupEncoding(name fh.Encoding) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(string(name))
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// classify determines the encoding of raw file bytes. Content with a NUL byte
// is treated as binary. A UTF-8 BOM wins, then valid UTF-8, then the
// fallback. A Shift-JIS fallback is only taken when lead/trail byte pairs
// make up more than 40% of the data.
func classify(data []byte, fallback fh.Encoding) (fh.Encoding, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return "", fh.ErrNotText
	}
	if bytes.HasPrefix(data, utf8BOM) {
		if !utf8.Valid(data[len(utf8BOM):]) {
			return "", fh.ErrNotText
		}
		return fh.EncodingUTF8BOM, nil
	}
	if utf8.Valid(data) {
		return fh.EncodingUTF8, nil
	}

	codec, err := lookupEncoding(fallback)
	if err != nil {
		return "", err
	}
	if name, _ := htmlindex.Name(codec); name == string(fh.EncodingShiftJIS) {
		if shiftJISScore(data)*10 <= len(data)*4 {
			return "", fh.ErrNotText
		}
	}
	return fallback, nil
}

// shiftJISScore counts the bytes that form plausible Shift-JIS double-byte
// characters.
func shiftJISScore(data []byte) int {
	score := 0
	for i := 0; i < len(data); i++ {
		b1 := data[i]
		if !(b1 >= 0x81 && b1 <= 0x9F) && !(b1 >= 0xE0 && b1 <= 0xEF) {
			continue
		}
		if i+1 >= len(data) {
			break
		}
		if b2 := data[i+1]; (b2 >= 0x40 && b2 <= 0x7E) || (b2 >= 0x80 && b2 <= 0xFC) {
			score += 2
			i++
		}
	}
	return score
}

// detect classifies data and decodes it. Bytes the detected encoding cannot
// decode make the data not text.
func detect(data []byte, fallback fh.Encoding) (string, fh.Encoding, error) {
	enc, err := classify(data, fallback)
	if err != nil {
		return "", "", err
	}
	text, err := decode(data, enc)
	if err != nil {
		return "", "", err
	}
	if enc != fh.EncodingUTF8 && enc != fh.EncodingUTF8BOM && strings.ContainsRune(text, utf8.RuneError) {
		return "", "", fmt.Errorf("invalid %s sequence: %w", enc, fh.ErrNotText)
	}
	return text, enc, nil
}

// decode converts raw bytes in enc to text.
func decode(data []byte, enc fh.Encoding) (string, error) {
	switch enc {
	case fh.EncodingUTF8:
		return string(data), nil
	case fh.EncodingUTF8BOM:
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}

	codec, err := lookupEncoding(enc)
	if err != nil {
		return "", err
	}
	out, err := codec.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", enc, err)
	}
	return string(out), nil
}

// encode converts text to bytes in enc. Characters enc cannot represent are
// an error rather than silently replaced.
func encode(text string, enc fh.Encoding) ([]byte, error) {
	switch enc {
	case fh.EncodingUTF8, "":
		return []byte(text), nil
	case fh.EncodingUTF8BOM:
		return append(append([]byte(nil), utf8BOM...), text...), nil
	}

	codec, err := lookupEncoding(enc)
	if err != nil {
		return nil, err
	}
	out, err := codec.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encoding as %s: %w", enc, err)
	}
	return out, nil
}
