package fh

// Encoding names the on-disk text encoding of a file. History always stores
// decoded text; the encoding only matters when reading or writing the file.
type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingUTF8BOM  Encoding = "utf-8-bom"
	EncodingShiftJIS Encoding = "shift_jis"
)

// FilesystemManager provides the file operations the service needs.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Exists reports whether path currently exists. An error means the
	// answer is unknown, not that the file is missing.
	Exists(path string) (bool, error)

	// ReadText reads path and decodes it to text, reporting the encoding found.
	ReadText(path string) (string, Encoding, error)

	// WriteText encodes text with enc and atomically replaces path.
	WriteText(path string, text string, enc Encoding) error

	// DetectEncoding reports the encoding of an existing file.
	DetectEncoding(path string) (Encoding, error)

	// FindFiles lists the regular files under dir that are not ignored,
	// sorted by path.
	FindFiles(dir string, recursive bool) ([]string, error)
}
