// Package tui provides the terminal transport controls for a playback core.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/scrubdeck/scrubdeck/key"
	"github.com/scrubdeck/scrubdeck/playback"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/spf13/viper"
)

// Controller is the part of playback.Core the interface drives.
type Controller interface {
	UserRequestsPlayPause()
	UserBeginsDrag(axis seek.Axis, at seek.Location)
	UserDragChanged(delta float64)
	UserEndsDrag()
	UserSelectsSlider(fraction float64)
	ApplicationDidEnterBackground()
	ApplicationDidBecomeActive()
	Replay()
	Retry()
	Observe(obs playback.Observer)
	Snapshot() (playback.Snapshot, error)
}

var _ Controller = (*playback.Core)(nil)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Title string
	// StepSeconds is the jump applied by the arrow keys.
	StepSeconds float64
	// VolumeStep is the level change applied by the volume keys.
	VolumeStep    float64
	Sensitivity   float64
	VerticalScale float64
	Mouse         bool
}

// OptionsFromConfig fills Options from the loaded configuration.
func OptionsFromConfig(title string) *Options {
	return &Options{
		Title:         title,
		StepSeconds:   viper.GetFloat64(key.ScrubStepSeconds),
		VolumeStep:    0.05,
		Sensitivity:   viper.GetFloat64(key.ScrubSensitivity),
		VerticalScale: viper.GetFloat64(key.ScrubVerticalScale),
		Mouse:         true,
	}
}

// Run executes the Bubble Tea program until the user quits or ctx is done.
func Run(ctx context.Context, ctrl Controller, options *Options) error {
	bubble := newBubble(ctrl, options)
	ctrl.Observe(bubble.forward)

	programOptions := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	}
	if options.Mouse {
		programOptions = append(programOptions, tea.WithMouseCellMotion())
	}

	_, err := tea.NewProgram(bubble, programOptions...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
