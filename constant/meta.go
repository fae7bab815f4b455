// Package constant holds application identifiers and build metadata.
package constant

import _ "embed"

const (
	// Scrubdeck names the binary, the config file and the data directories.
	Scrubdeck = "scrubdeck"

	Version = "0.3.0"
)

// Build metadata, overridden through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// AsciiArtLogo is printed above the root command help.
//
//go:embed ascii.txt
var AsciiArtLogo string
