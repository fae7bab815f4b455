package playback

import (
	"time"

	"github.com/scrubdeck/scrubdeck/key"
	"github.com/scrubdeck/scrubdeck/progress"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/spf13/viper"
)

// Options tune the core.
type Options struct {
	// Autoplay starts playback as soon as the item is ready.
	Autoplay bool
	// ResumeThreshold is the smallest resume position, in seconds, worth seeking to.
	ResumeThreshold float64

	Sensitivity   float64
	VerticalScale float64
	// PreviewRate caps engine seeks per second while scrubbing. Zero disables previews.
	PreviewRate    float64
	BottomDeadZone float64

	DiscontinuityEpsilon float64
	// StallTicks is the number of non-advancing samples that count as buffering.
	StallTicks int

	FailurePolicy seek.FailurePolicy

	Volume     float64
	Brightness float64
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Autoplay:             true,
		ResumeThreshold:      1,
		Sensitivity:          seek.DefaultSensitivity,
		VerticalScale:        seek.DefaultVerticalScale,
		PreviewRate:          8,
		BottomDeadZone:       0.1,
		DiscontinuityEpsilon: progress.DefaultEpsilon,
		StallTicks:           3,
		FailurePolicy:        seek.FailRemoteOnly,
		Volume:               1,
		Brightness:           0.5,
	}
}

// OptionsFromConfig reads Options from the loaded configuration.
func OptionsFromConfig() (Options, error) {
	policy, err := seek.ParseFailurePolicy(viper.GetString(key.SeekFailurePolicy))
	if err != nil {
		return Options{}, err
	}

	return Options{
		Autoplay:             viper.GetBool(key.PlayerAutoplay),
		ResumeThreshold:      viper.GetFloat64(key.PlayerResumeThreshold),
		Sensitivity:          viper.GetFloat64(key.ScrubSensitivity),
		VerticalScale:        viper.GetFloat64(key.ScrubVerticalScale),
		PreviewRate:          viper.GetFloat64(key.ScrubPreviewRate),
		BottomDeadZone:       viper.GetFloat64(key.ScrubDeadZone),
		DiscontinuityEpsilon: viper.GetFloat64(key.ProgressDiscontinuityEpsilon),
		StallTicks:           viper.GetInt(key.ProgressStallTicks),
		FailurePolicy:        policy,
		Volume:               viper.GetFloat64(key.PlayerDefaultVolume),
		Brightness:           viper.GetFloat64(key.PlayerDefaultBrightness),
	}, nil
}

// PeriodicInterval is the engine polling cadence from the configuration.
func PeriodicInterval() time.Duration {
	ms := viper.GetInt(key.PlayerPeriodicInterval)
	if ms <= 0 {
		return time.Second
	}
	return time.Duration(ms) * time.Millisecond
}
