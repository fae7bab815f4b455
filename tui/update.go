package tui

import (
	"fmt"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/scrubdeck/scrubdeck/internal/ui"
	"github.com/scrubdeck/scrubdeck/playback"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/scrubdeck/scrubdeck/status"
	"github.com/scrubdeck/scrubdeck/timefmt"
)

func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.refresh(), b.waitForEvent())
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := b.notifier.Update(msg); cmd != nil {
		return b, cmd
	}

	switch msg := msg.(type) {
	case error:
		b.lastError = msg
		b.setState(failedState)
		return b, nil
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case tea.FocusMsg:
		b.ctrl.ApplicationDidBecomeActive()
		return b, nil
	case tea.BlurMsg:
		b.ctrl.ApplicationDidEnterBackground()
		return b, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case snapshotMsg:
		b.snapshot = playback.Snapshot(msg)
		b.sync()
		return b, nil
	case eventMsg:
		return b, tea.Batch(b.handleEvent(playback.Event(msg)), b.waitForEvent())
	case tea.MouseMsg:
		if b.state == loadingState {
			return b, nil
		}
		return b, b.handleMouse(msg)
	case tea.KeyMsg:
		return b, b.handleKey(msg)
	}

	return b, nil
}

func (b *statefulBubble) sync() {
	if b.snapshot.Status != status.Failed {
		b.lastError = nil
	}
	b.setState(stateFor(b.snapshot.Status, b.snapshot.Ended))
}

func (b *statefulBubble) handleEvent(ev playback.Event) tea.Cmd {
	switch ev.Kind {
	case playback.EventStatus:
		b.snapshot.Status = ev.Change.To
		b.sync()
		return b.refresh()
	case playback.EventPosition:
		b.snapshot.Position = ev.Position
		b.snapshot.Dragging = seek.ControlNone
		b.snapshot.Label = timefmt.Label(ev.Position.CurrentSeconds, ev.Position.TotalSeconds)
	case playback.EventDragPreview:
		b.snapshot.Position = ev.Position
		b.snapshot.Dragging = ev.Control
		b.snapshot.Label = timefmt.DragLabel(ev.Position.CurrentSeconds, ev.Position.TotalSeconds)
	case playback.EventBuffered:
		b.snapshot.BufferedFraction = ev.BufferedFraction
	case playback.EventVolume:
		b.snapshot.Volume = ev.Level
	case playback.EventBrightness:
		b.snapshot.Brightness = ev.Level
	case playback.EventSeekFailed:
		return tea.Batch(ui.Notify("seek failed: "+ev.Err.Error()), b.refresh())
	case playback.EventEngineFailure:
		b.lastError = ev.Err
		b.setState(failedState)
	case playback.EventEndOfStream:
		b.snapshot.Ended = true
		b.sync()
	case playback.EventRejected:
		return ui.Notify(ev.Err.Error())
	}

	return nil
}

func (b *statefulBubble) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case bubblesKey.Matches(msg, b.keymap.forceQuit):
		return tea.Quit
	case bubblesKey.Matches(msg, b.keymap.quit):
		return tea.Quit
	case bubblesKey.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return nil
	}

	switch b.state {
	case playerState:
		return b.updatePlayer(msg)
	case endedState:
		return b.updateEnded(msg)
	case failedState:
		return b.updateFailed(msg)
	}

	return nil
}

func (b *statefulBubble) updatePlayer(msg tea.KeyMsg) tea.Cmd {
	switch {
	case bubblesKey.Matches(msg, b.keymap.playPause):
		b.ctrl.UserRequestsPlayPause()
	case bubblesKey.Matches(msg, b.keymap.forward):
		return b.step(b.options.StepSeconds)
	case bubblesKey.Matches(msg, b.keymap.backward):
		return b.step(-b.options.StepSeconds)
	case bubblesKey.Matches(msg, b.keymap.volumeUp):
		b.nudge(volumeSide, b.options.VolumeStep)
	case bubblesKey.Matches(msg, b.keymap.volumeDown):
		b.nudge(volumeSide, -b.options.VolumeStep)
	case bubblesKey.Matches(msg, b.keymap.brightnessUp):
		b.nudge(brightnessSide, b.options.VolumeStep)
	case bubblesKey.Matches(msg, b.keymap.brightnessDown):
		b.nudge(brightnessSide, -b.options.VolumeStep)
	}

	return nil
}

func (b *statefulBubble) updateEnded(msg tea.KeyMsg) tea.Cmd {
	switch {
	case bubblesKey.Matches(msg, b.keymap.replay):
		b.ctrl.Replay()
		return ui.Notify(fmt.Sprintf("replaying %s", b.title()))
	case bubblesKey.Matches(msg, b.keymap.playPause):
		b.ctrl.UserRequestsPlayPause()
	case bubblesKey.Matches(msg, b.keymap.backward):
		return b.step(-b.options.StepSeconds)
	}

	return nil
}

func (b *statefulBubble) updateFailed(msg tea.KeyMsg) tea.Cmd {
	if bubblesKey.Matches(msg, b.keymap.retry) {
		b.lastError = nil
		b.ctrl.Retry()
		return ui.Notify("retrying")
	}

	return nil
}
