package document

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// MarkdownLoader loads markdown files. Headings are counted into the
// metadata so downstream consumers can tell structured documents from
// flat ones, but the text is kept verbatim so chunk offsets line up
// with the file on disk.
type MarkdownLoader struct{}

// Load reads the file and records its heading count.
func (l *MarkdownLoader) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrLoad, path, err)
	}

	text := string(data)

	headings := 0
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "#") {
			headings++
		}
	}

	metadata := baseMetadata(path, "md")
	metadata["heading_count"] = headings

	return &Document{
		Metadata: metadata,
		Text:     text,
	}, nil
}
