// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Media Engine - these keys select and tune the external mpv process driving playback.
const (
	PlayerBinary            = "player.binary"
	PlayerAutoplay          = "player.autoplay"
	PlayerResumeThreshold   = "player.resume_threshold"
	PlayerPeriodicInterval  = "player.periodic_interval_ms"
	PlayerDefaultVolume     = "player.default_volume"
	PlayerDefaultBrightness = "player.default_brightness"
)

// Scrubbing - these keys govern how drag gestures and key presses translate into seek targets.
const (
	ScrubSensitivity   = "scrub.sensitivity"
	ScrubVerticalScale = "scrub.vertical_scale"
	ScrubPreviewRate   = "scrub.preview_rate"
	ScrubStepSeconds   = "scrub.step_seconds"
	ScrubDeadZone      = "scrub.bottom_dead_zone"
)

// Progress Tracking - these keys tune discontinuity and stall detection.
const (
	ProgressDiscontinuityEpsilon = "progress.discontinuity_epsilon"
	ProgressStallTicks           = "progress.stall_ticks"
)

// Seek Failure Handling
const (
	SeekFailurePolicy = "seek.failure_policy"
)

// Resume Persistence - these keys configure where playback positions are remembered between sessions.
const (
	ResumeEnable       = "resume.enable"
	ResumeBackend      = "resume.backend"
	ResumeSaveInterval = "resume.save_interval"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
