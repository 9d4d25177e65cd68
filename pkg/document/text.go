package document

import (
	"fmt"
	"os"
	"strings"
)

// TextLoader loads plain-text files verbatim.
type TextLoader struct{}

// Load reads the file and counts its lines into the metadata.
func (l *TextLoader) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrLoad, path, err)
	}

	text := string(data)
	metadata := baseMetadata(path, "txt")
	metadata["line_count"] = strings.Count(text, "\n") + 1

	return &Document{
		Metadata: metadata,
		Text:     text,
	}, nil
}
