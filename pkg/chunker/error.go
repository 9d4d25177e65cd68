package chunker

import "errors"

// ErrInvalidChunking is returned when chunk size and overlap cannot
// produce a terminating split.
var ErrInvalidChunking = errors.New("invalid chunking parameters")
