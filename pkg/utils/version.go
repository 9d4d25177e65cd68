// Package utils holds small shared helpers and build metadata.
package utils

// Build metadata, stamped by the release pipeline via -ldflags -X.
var (
	Version   = "dev"
	Sha       = "unknown"
	Buildtime = "unknown"
)
