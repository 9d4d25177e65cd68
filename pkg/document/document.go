// Package document provides typed loaders that turn files on disk into
// raw text plus source metadata, keyed by file extension.
package document

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Document is the output of a loader: the full raw text of one source
// file together with its source metadata.
type Document struct {
	// Metadata always carries "source" (full path), "filename" and
	// "type" (extension without the dot), plus loader-specific fields.
	Metadata map[string]any

	// Text is the complete extracted text of the document.
	Text string
}

// Loader extracts text and metadata from a single file.
type Loader interface {
	// Load reads the file at path and returns its document form.
	Load(path string) (*Document, error)
}

// loaders maps a lowercased file extension to its loader.
var loaders = map[string]Loader{
	".txt": &TextLoader{},
	".md":  &MarkdownLoader{},
}

// SupportedExtensions returns the extensions with a registered loader,
// sorted so callers get a stable enumeration order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(loaders))
	for ext := range loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// LoaderFor returns the loader registered for the file's extension.
// An unregistered extension is a configuration error, not an I/O error.
func LoaderFor(path string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	return loader, nil
}

// Load resolves the loader for path and loads the document.
func Load(path string) (*Document, error) {
	loader, err := LoaderFor(path)
	if err != nil {
		return nil, err
	}
	return loader.Load(path)
}

// baseMetadata builds the metadata fields common to every loader.
func baseMetadata(path, docType string) map[string]any {
	return map[string]any{
		"source":   path,
		"filename": filepath.Base(path),
		"type":     docType,
	}
}
