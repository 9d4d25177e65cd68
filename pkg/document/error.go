package document

import "errors"

var (
	// ErrUnsupportedType is returned when no loader is registered for a
	// file's extension.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrLoad is returned when a registered loader cannot read or parse
	// its file.
	ErrLoad = errors.New("document load failed")
)
