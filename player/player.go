// Package player drives an external mpv process over its JSON-IPC socket and
// reports what it does back to the playback core.
package player

import (
	"strings"
	"time"

	"github.com/scrubdeck/scrubdeck/playback"
)

var _ playback.Engine = (*MPV)(nil)

// Config selects the mpv executable and how often it is polled.
type Config struct {
	// Binary is the mpv executable name or path.
	Binary string
	// Interval is the cadence of periodic position updates.
	Interval time.Duration
	// SocketDir holds the IPC socket.
	SocketDir string
}

// IsLocal reports whether target names a file rather than a network stream.
func IsLocal(target string) bool {
	return !strings.Contains(strings.TrimSpace(target), "://")
}
