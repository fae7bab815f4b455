package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/mo"
	"github.com/scrubdeck/scrubdeck/filesystem"
	"github.com/scrubdeck/scrubdeck/key"
	"github.com/scrubdeck/scrubdeck/log"
	"github.com/scrubdeck/scrubdeck/playback"
	"github.com/scrubdeck/scrubdeck/resume"
	"github.com/scrubdeck/scrubdeck/timefmt"
	"github.com/scrubdeck/scrubdeck/where"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// openResumeStore returns the configured store, or a throwaway one when
// resume is disabled.
func openResumeStore() (resume.Store, error) {
	if !viper.GetBool(key.ResumeEnable) {
		return resume.NewMemoryStore(), nil
	}

	backend := viper.GetString(key.ResumeBackend)
	dir := where.Config()
	if backend == resume.BackendSqlite {
		// sqlite writes through the OS, not through afero
		if !filesystem.IsOs() {
			backend = resume.BackendGache
		} else {
			dir = where.ResumeDB()
		}
	}

	return resume.NewStore(backend, dir)
}

// startPosition decides where playback begins. An explicit from wins;
// otherwise an unfinished remembered position is offered through ask.
func startPosition(saved mo.Option[resume.State], from, threshold float64, ask func(resume.State) (bool, error)) (float64, error) {
	if from >= 0 {
		return from, nil
	}

	state, ok := saved.Get()
	if !ok || state.Finished || state.PosSeconds <= threshold {
		return 0, nil
	}

	yes, err := ask(state)
	if err != nil {
		return 0, err
	}
	if !yes {
		return 0, nil
	}
	return state.PosSeconds, nil
}

// confirmResume asks on interactive terminals and resumes silently otherwise.
func confirmResume(always bool) func(resume.State) (bool, error) {
	return func(state resume.State) (bool, error) {
		if always || !term.IsTerminal(int(os.Stdin.Fd())) {
			return true, nil
		}

		name := state.Title
		if name == "" {
			name = state.URL
		}

		confirm := survey.Confirm{
			Message: fmt.Sprintf("Resume %s from %s?", name, timefmt.Position(state.PosSeconds, state.DurationSeconds)),
			Default: true,
		}
		var response bool
		err := survey.AskOne(&confirm, &response)
		return response, err
	}
}

// progressSaver persists positions off the control goroutine.
type progressSaver struct {
	recorder *resume.Recorder
	source   playback.Source
	events   chan playback.Event
	total    float64
}

func newProgressSaver(recorder *resume.Recorder, source playback.Source) *progressSaver {
	return &progressSaver{
		recorder: recorder,
		source:   source,
		events:   make(chan playback.Event, 16),
	}
}

func (s *progressSaver) observe(ev playback.Event) {
	switch ev.Kind {
	case playback.EventPosition, playback.EventEndOfStream:
		select {
		case s.events <- ev:
		default:
		}
	}
}

func (s *progressSaver) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.events:
			s.handle(ctx, ev)
		}
	}
}

func (s *progressSaver) handle(ctx context.Context, ev playback.Event) {
	switch ev.Kind {
	case playback.EventPosition:
		if ev.Position.TotalSeconds <= 0 {
			return
		}
		s.total = ev.Position.TotalSeconds
		if _, err := s.recorder.Record(ctx, s.source.URL, s.source.Title, ev.Position.CurrentSeconds, ev.Position.TotalSeconds); err != nil {
			log.Warnf("save resume position: %v", err)
		}
	case playback.EventEndOfStream:
		if err := s.recorder.Finish(ctx, s.source.URL, s.source.Title, s.total); err != nil {
			log.Warnf("save finished state: %v", err)
		}
	}
}

// flush writes the final position unless the item played to the end.
func (s *progressSaver) flush(snapshot playback.Snapshot) {
	pos := snapshot.Position
	if snapshot.Ended || pos.TotalSeconds <= 0 || pos.CurrentSeconds <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.recorder.Flush(ctx, s.source.URL, s.source.Title, pos.CurrentSeconds, pos.TotalSeconds); err != nil {
		log.Warnf("save resume position: %v", err)
	}
}
