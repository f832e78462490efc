package model

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"unicode/utf16"
)

// ContentHash identifies a content payload in the blob store.
// It is the SHA-256 digest of the exact UTF-8 bytes of the text and is stored
// as 64 lowercase hex characters.
type ContentHash [sha256.Size]byte

// HashContent returns the content hash of data.
func HashContent(data []byte) ContentHash {
	return ContentHash(sha256.Sum256(data))
}

// HashText returns the content hash of a decoded text payload.
func HashText(text string) ContentHash {
	return HashContent([]byte(text))
}

// CharCount returns the length of text in UTF-16 code units, the unit editors
// measure documents in. Characters outside the Basic Multilingual Plane
// count as two.
func CharCount(text string) int64 {
	var n int64
	for _, r := range text {
		n += int64(utf16.RuneLen(r))
	}
	return n
}

// ParseContentHash parses the hex form produced by String.
func ParseContentHash(s string) (ContentHash, error) {
	var h ContentHash
	if len(s) != hex.EncodedLen(len(h)) {
		return h, fmt.Errorf("invalid content hash length %d: %q", len(s), s)
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("invalid content hash %q: %w", s, err)
	}
	return h, nil
}

// String returns the lowercase hex form of the hash.
func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, for display.
func (h ContentHash) Short() string {
	return h.String()[:12]
}

// IsZero reports whether h is the zero value (not a real digest).
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// Value implements driver.Valuer.
func (h ContentHash) Value() (driver.Value, error) {
	return h.String(), nil
}

// Scan implements sql.Scanner.
func (h *ContentHash) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ContentHash", src)
	}
	parsed, err := ParseContentHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
