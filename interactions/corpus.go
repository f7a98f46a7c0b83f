package interactions

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

//go:embed corpus.csv
var embeddedCorpus string

// EmbeddedCorpus returns the interaction corpus shipped with the binary.
func EmbeddedCorpus() string {
	return embeddedCorpus
}

// LoadCorpus returns the corpus text at path, or the embedded corpus when
// path is empty. Files that are not valid UTF-8 are decoded as ISO-8859-1.
func LoadCorpus(path string) (string, error) {
	if path == "" {
		return embeddedCorpus, nil
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to read corpus %s: %w", path, err)
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw)))
	if err != nil {
		return "", fmt.Errorf("failed to decode corpus %s: %w", path, err)
	}
	return string(decoded), nil
}
