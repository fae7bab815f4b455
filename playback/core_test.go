package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/scrubdeck/scrubdeck/progress"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/scrubdeck/scrubdeck/status"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.PreviewRate = 0
	return opts
}

var remote = Source{URL: "http://x/a.mp4"}

func TestLoadAndProgress(t *testing.T) {
	Convey("Given a running core", t, func() {
		h := startCore(testOptions())
		Reset(func() { h.stop() })

		Convey("Loading a source enters ReadyToPlay with an unknown duration", func() {
			h.core.LoadSource(remote)
			s := h.snapshot()
			So(s.Status, ShouldEqual, status.ReadyToPlay)
			So(s.Position, ShouldResemble, progress.Position{})
			So(s.Source, ShouldResemble, remote)
			So(h.engine.loaded(), ShouldResemble, []Source{remote})
			So(h.engine.lastPaused(), ShouldBeTrue)
		})

		Convey("Autoplay starts the engine once the item is ready", func() {
			h.playing(remote, 120)
			So(h.engine.lastPaused(), ShouldBeFalse)
		})

		Convey("Periodic and buffered updates are reflected exactly", func() {
			h.playing(remote, 120)
			h.core.PeriodicTimeUpdate(30, 120)
			h.core.BufferedRangeUpdate(0, 60)

			s := h.snapshot()
			So(s.Position, ShouldResemble, progress.Position{CurrentSeconds: 30, TotalSeconds: 120})
			So(s.BufferedFraction, ShouldEqual, 0.5)
			So(s.BufferedSeconds, ShouldEqual, 60)
			So(s.Label, ShouldEqual, "00:30/02:00")

			Convey("A repeated buffered update changes nothing", func() {
				h.core.BufferedRangeUpdate(0, 60)
				So(h.snapshot().BufferedFraction, ShouldEqual, 0.5)
				So(len(h.events.kinds(EventBuffered)), ShouldEqual, 1)
			})
		})

		Convey("Without autoplay the item waits in ReadyToPlay", func() {
			h.stop()
			opts := testOptions()
			opts.Autoplay = false
			h = startCore(opts)

			h.core.LoadSource(remote)
			h.core.ItemStatusChanged(ItemReadyToPlay, 120)
			So(h.snapshot().Status, ShouldEqual, status.ReadyToPlay)

			h.core.UserRequestsPlayPause()
			So(h.snapshot().Status, ShouldEqual, status.Playing)
		})
	})
}

func TestSeekLifecycle(t *testing.T) {
	Convey("Given a playing remote source", t, func() {
		h := startCore(testOptions())
		Reset(func() { h.stop() })
		h.playing(remote, 120)
		h.core.PeriodicTimeUpdate(30, 120)

		Convey("Selecting the slider pauses until the seek completes", func() {
			h.core.UserSelectsSlider(0.5)
			s := h.snapshot()
			So(s.Status, ShouldEqual, status.Paused)
			So(s.SeekInFlight, ShouldBeTrue)
			So(h.engine.seekTargets(), ShouldResemble, []float64{60})
			So(h.engine.lastPaused(), ShouldBeTrue)

			Convey("Periodic updates are ignored while the seek is in flight", func() {
				h.core.PeriodicTimeUpdate(31, 120)
				So(h.snapshot().Position.CurrentSeconds, ShouldEqual, 30)
			})

			Convey("Success restores Playing at the target", func() {
				So(h.engine.finishSeek(true), ShouldBeTrue)
				s := h.snapshot()
				So(s.Status, ShouldEqual, status.Playing)
				So(s.SeekInFlight, ShouldBeFalse)
				So(s.Position.CurrentSeconds, ShouldEqual, 60)
				So(h.engine.lastPaused(), ShouldBeFalse)
			})

			Convey("Failure on a remote source enters Failed", func() {
				So(h.engine.finishSeek(false), ShouldBeTrue)
				So(h.snapshot().Status, ShouldEqual, status.Failed)

				failures := h.events.kinds(EventSeekFailed)
				So(len(failures), ShouldEqual, 1)
				var failed *seek.SeekFailedError
				So(errors.As(failures[0].Err, &failed), ShouldBeTrue)
				So(failed.IsLocalFile, ShouldBeFalse)
			})

			Convey("Play/pause while seeking changes what the seek resumes into", func() {
				h.core.UserRequestsPlayPause()
				So(h.engine.finishSeek(true), ShouldBeTrue)
				So(h.snapshot().Status, ShouldEqual, status.Paused)
			})
		})

		Convey("A second slider selection coalesces into the in-flight seek", func() {
			h.core.UserSelectsSlider(0.2)
			h.core.UserSelectsSlider(0.7)
			So(h.engine.seekTargets(), ShouldResemble, []float64{24})

			So(h.engine.finishSeek(true), ShouldBeTrue)
			s := h.snapshot()
			So(s.Status, ShouldEqual, status.Paused)
			So(h.engine.seekTargets(), ShouldResemble, []float64{24, 84})

			So(h.engine.finishSeek(true), ShouldBeTrue)
			s = h.snapshot()
			So(s.Status, ShouldEqual, status.Playing)
			So(s.Position.CurrentSeconds, ShouldEqual, 84)
		})

		Convey("Loading a new source makes the old completion a no-op", func() {
			h.core.UserSelectsSlider(0.5)
			h.snapshot()

			next := Source{URL: "http://x/b.mp4"}
			h.core.LoadSource(next)
			So(h.engine.finishSeek(true), ShouldBeTrue)

			s := h.snapshot()
			So(s.Source, ShouldResemble, next)
			So(s.Status, ShouldEqual, status.ReadyToPlay)
			So(s.SeekInFlight, ShouldBeFalse)
			So(s.Position, ShouldResemble, progress.Position{})
		})

		Convey("An old completion during a scrub of the next source leaves the playhead alone", func() {
			h.core.UserSelectsSlider(0.9)
			So(h.engine.seekTargets(), ShouldResemble, []float64{108})

			h.playing(Source{URL: "http://x/b.mp4"}, 1000)
			h.core.PeriodicTimeUpdate(10, 1000)
			h.core.UserBeginsDrag(seek.Horizontal, seek.Location{X: 0.5, Y: 0.5})
			So(h.engine.finishSeek(true), ShouldBeTrue)
			h.core.UserEndsDrag()

			s := h.snapshot()
			So(s.Position, ShouldResemble, progress.Position{CurrentSeconds: 10, TotalSeconds: 1000})
			So(s.SeekInFlight, ShouldBeTrue)
			So(h.engine.seekTargets(), ShouldResemble, []float64{108, 10})

			So(h.engine.finishSeek(true), ShouldBeTrue)
			s = h.snapshot()
			So(s.Status, ShouldEqual, status.Playing)
			So(s.Position.CurrentSeconds, ShouldEqual, 10)
		})
	})

	Convey("Given a playing local file", t, func() {
		h := startCore(testOptions())
		Reset(func() { h.stop() })
		h.playing(Source{URL: "/media/a.mkv", IsLocalFile: true}, 120)

		Convey("A failed seek pauses silently", func() {
			h.core.UserSelectsSlider(0.5)
			So(h.engine.finishSeek(false), ShouldBeTrue)
			So(h.snapshot().Status, ShouldEqual, status.Paused)

			failures := h.events.kinds(EventSeekFailed)
			So(len(failures), ShouldEqual, 1)
			var failed *seek.SeekFailedError
			So(errors.As(failures[0].Err, &failed), ShouldBeTrue)
			So(failed.IsLocalFile, ShouldBeTrue)
		})
	})

	Convey("Seeking before the duration is known is rejected", t, func() {
		h := startCore(testOptions())
		Reset(func() { h.stop() })
		h.core.LoadSource(remote)
		h.core.UserSelectsSlider(0.5)

		s := h.snapshot()
		So(s.Status, ShouldEqual, status.ReadyToPlay)
		So(h.engine.seekTargets(), ShouldBeEmpty)

		rejected := h.events.kinds(EventRejected)
		So(len(rejected), ShouldEqual, 1)
		So(errors.Is(rejected[0].Err, seek.ErrInvalidDuration), ShouldBeTrue)
	})
}

func TestResumeFrom(t *testing.T) {
	Convey("A resume position past the threshold seeks once ready", t, func() {
		h := startCore(testOptions())
		Reset(func() { h.stop() })

		h.core.LoadSource(Source{URL: "http://x/a.mp4", ResumeFromSeconds: 50})
		h.core.ItemStatusChanged(ItemReadyToPlay, 100)

		s := h.snapshot()
		So(s.Status, ShouldEqual, status.Paused)
		So(h.engine.seekTargets(), ShouldResemble, []float64{50})

		So(h.engine.finishSeek(true), ShouldBeTrue)
		s = h.snapshot()
		So(s.Status, ShouldEqual, status.Playing)
		So(s.Position.CurrentSeconds, ShouldEqual, 50)
	})

	Convey("A resume position under the threshold is ignored", t, func() {
		h := startCore(testOptions())
		Reset(func() { h.stop() })
		h.playing(Source{URL: "http://x/a.mp4", ResumeFromSeconds: 0.5}, 100)
		So(h.engine.seekTargets(), ShouldBeEmpty)
	})
}

func TestBuffering(t *testing.T) {
	Convey("Given a playing source", t, func() {
		h := startCore(testOptions())
		Reset(func() { h.stop() })
		h.playing(remote, 120)
		h.core.PeriodicTimeUpdate(10, 120)

		Convey("Stalled samples enter Buffering and progress leaves it", func() {
			for i := 0; i < 3; i++ {
				h.core.PeriodicTimeUpdate(10, 120)
			}
			So(h.snapshot().Status, ShouldEqual, status.Buffering)
			So(h.engine.lastPaused(), ShouldBeFalse)

			h.core.PeriodicTimeUpdate(11, 120)
			So(h.snapshot().Status, ShouldEqual, status.Playing)
		})

		Convey("Buffer-empty and keep-up notifications drive Buffering", func() {
			h.core.PlaybackBufferEmpty(true)
			So(h.snapshot().Status, ShouldEqual, status.Buffering)

			h.core.PlaybackLikelyToKeepUp(true)
			So(h.snapshot().Status, ShouldEqual, status.Playing)
		})

		Convey("Samples collected while paused do not count as a stall", func() {
			h.core.UserRequestsPlayPause()
			for i := 0; i < 5; i++ {
				h.core.PeriodicTimeUpdate(10, 120)
			}
			h.core.UserRequestsPlayPause()
			h.core.PeriodicTimeUpdate(10, 120)
			So(h.snapshot().Status, ShouldEqual, status.Playing)
		})

		Convey("Pausing while buffering pauses", func() {
			h.core.PlaybackBufferEmpty(true)
			h.core.UserRequestsPlayPause()
			So(h.snapshot().Status, ShouldEqual, status.Paused)
		})
	})
}

func TestDrag(t *testing.T) {
	Convey("Given a playing source at a quarter", t, func() {
		h := startCore(testOptions())
		Reset(func() { h.stop() })
		h.playing(remote, 120)
		h.core.PeriodicTimeUpdate(30, 120)

		Convey("A horizontal drag scrubs and commits on release", func() {
			h.core.UserBeginsDrag(seek.Horizontal, seek.Location{X: 0.5, Y: 0.5})
			s := h.snapshot()
			So(s.Status, ShouldEqual, status.Paused)
			So(s.Dragging, ShouldEqual, seek.ControlScrub)

			// 99 * 12 velocity units move the target by 12 seconds.
			h.core.UserDragChanged(99 * 12)
			s = h.snapshot()
			So(s.Position.CurrentSeconds, ShouldAlmostEqual, 42, 1e-9)
			So(s.Label, ShouldEqual, "00:42|02:00")
			So(h.engine.seekTargets(), ShouldBeEmpty)
			So(len(h.events.kinds(EventDragPreview)), ShouldEqual, 1)

			h.core.UserEndsDrag()
			h.snapshot()
			targets := h.engine.seekTargets()
			So(len(targets), ShouldEqual, 1)
			So(targets[0], ShouldAlmostEqual, 42, 1e-9)

			So(h.engine.finishSeek(true), ShouldBeTrue)
			s = h.snapshot()
			So(s.Status, ShouldEqual, status.Playing)
			So(s.Dragging, ShouldEqual, seek.ControlNone)
			So(s.Position.CurrentSeconds, ShouldAlmostEqual, 42, 1e-9)
		})

		Convey("A huge drag is clamped to the end", func() {
			h.core.UserBeginsDrag(seek.Horizontal, seek.Location{X: 0.5, Y: 0.5})
			h.core.UserDragChanged(1e9)
			So(h.snapshot().Position.CurrentSeconds, ShouldEqual, 120)
		})

		Convey("A vertical drag on the right changes the volume", func() {
			h.stop()
			opts := testOptions()
			opts.Volume = 0.5
			h = startCore(opts)
			h.playing(remote, 120)

			h.core.UserBeginsDrag(seek.Vertical, seek.Location{X: 0.8, Y: 0.5})
			h.core.UserDragChanged(-1000)
			h.core.UserEndsDrag()

			s := h.snapshot()
			So(s.Volume, ShouldAlmostEqual, 0.6, 1e-9)
			So(h.engine.currentVolume(), ShouldAlmostEqual, 0.6, 1e-9)
			So(s.Status, ShouldEqual, status.Playing)
		})

		Convey("A vertical drag on the left changes the brightness", func() {
			h.core.UserBeginsDrag(seek.Vertical, seek.Location{X: 0.2, Y: 0.5})
			h.core.UserDragChanged(-2000)
			s := h.snapshot()
			So(s.Brightness, ShouldAlmostEqual, 0.7, 1e-9)
			So(len(h.events.kinds(EventBrightness)), ShouldEqual, 1)
		})

		Convey("A drag inside the control bar does nothing", func() {
			h.core.UserBeginsDrag(seek.Horizontal, seek.Location{X: 0.5, Y: 0.97})
			h.core.UserDragChanged(5000)
			h.core.UserEndsDrag()
			s := h.snapshot()
			So(s.Status, ShouldEqual, status.Playing)
			So(s.Position.CurrentSeconds, ShouldEqual, 30)
		})
	})

	Convey("With previews enabled the first change seeks immediately", t, func() {
		h := startCore(DefaultOptions())
		Reset(func() { h.stop() })
		h.playing(remote, 120)
		h.core.PeriodicTimeUpdate(30, 120)

		h.core.UserBeginsDrag(seek.Horizontal, seek.Location{X: 0.5, Y: 0.5})
		h.core.UserDragChanged(99 * 12)
		h.snapshot()
		So(len(h.engine.seekTargets()), ShouldEqual, 1)

		So(h.engine.finishSeek(true), ShouldBeTrue)
		So(h.snapshot().Status, ShouldEqual, status.Paused)

		h.core.UserEndsDrag()
		h.snapshot()
		So(len(h.engine.seekTargets()), ShouldEqual, 2)
		So(h.engine.finishSeek(true), ShouldBeTrue)
		So(h.snapshot().Status, ShouldEqual, status.Playing)
	})
}

func TestLifecycleEvents(t *testing.T) {
	Convey("Given a playing source", t, func() {
		h := startCore(testOptions())
		Reset(func() { h.stop() })
		h.playing(remote, 120)

		Convey("Background pauses and foreground resumes", func() {
			h.core.ApplicationDidEnterBackground()
			So(h.snapshot().Status, ShouldEqual, status.Paused)
			So(h.engine.lastPaused(), ShouldBeTrue)

			h.core.ApplicationDidBecomeActive()
			So(h.snapshot().Status, ShouldEqual, status.Playing)
			So(h.engine.lastPaused(), ShouldBeFalse)
		})

		Convey("End of stream pauses at the end and replay restarts", func() {
			h.core.PeriodicTimeUpdate(118, 120)
			h.core.EndOfStreamReached()

			s := h.snapshot()
			So(s.Status, ShouldEqual, status.Paused)
			So(s.Ended, ShouldBeTrue)
			So(s.Position.CurrentSeconds, ShouldEqual, 120)

			ends := h.events.kinds(EventEndOfStream)
			So(len(ends), ShouldEqual, 1)
			So(ends[0].EndOfStream.Source, ShouldResemble, remote)
			So(ends[0].EndOfStream.WasLocalFile, ShouldBeFalse)

			h.core.UserRequestsPlayPause()
			s = h.snapshot()
			So(s.Ended, ShouldBeFalse)
			So(h.engine.seekTargets(), ShouldResemble, []float64{0})

			So(h.engine.finishSeek(true), ShouldBeTrue)
			s = h.snapshot()
			So(s.Status, ShouldEqual, status.Playing)
			So(s.Position.CurrentSeconds, ShouldEqual, 0)
		})

		Convey("A seek cut short by the end of stream cannot move the playhead later", func() {
			h.core.PeriodicTimeUpdate(30, 120)
			h.core.UserSelectsSlider(0.5)
			So(h.engine.seekTargets(), ShouldResemble, []float64{60})
			h.core.EndOfStreamReached()

			h.core.UserBeginsDrag(seek.Horizontal, seek.Location{X: 0.5, Y: 0.5})
			So(h.engine.finishSeek(true), ShouldBeTrue)
			h.core.UserEndsDrag()

			s := h.snapshot()
			So(s.Position.CurrentSeconds, ShouldEqual, 120)
			So(h.engine.seekTargets(), ShouldResemble, []float64{60, 120})
		})

		Convey("An item failure enters Failed and play retries from the last position", func() {
			h.core.PeriodicTimeUpdate(40, 120)
			h.core.ItemStatusChanged(ItemFailed, 0)

			So(h.snapshot().Status, ShouldEqual, status.Failed)
			failures := h.events.kinds(EventEngineFailure)
			So(len(failures), ShouldEqual, 1)
			So(errors.Is(failures[0].Err, ErrItemFailed), ShouldBeTrue)
			var engineErr *EngineFailureError
			So(errors.As(failures[0].Err, &engineErr), ShouldBeTrue)

			h.core.UserRequestsPlayPause()
			s := h.snapshot()
			So(s.Status, ShouldEqual, status.ReadyToPlay)
			loads := h.engine.loaded()
			So(len(loads), ShouldEqual, 2)
			So(loads[1].ResumeFromSeconds, ShouldEqual, 40)
		})

		Convey("Playing from Failed is not possible without a reload", func() {
			h.core.EngineFailed(errors.New("ipc closed"))
			So(h.snapshot().Status, ShouldEqual, status.Failed)
			So(len(h.events.kinds(EventEngineFailure)), ShouldEqual, 1)
		})
	})

	Convey("A failing load surfaces an engine failure", t, func() {
		core := New(testOptions())
		engine := &fakeEngine{loadErr: errors.New("no such file")}
		core.Attach(engine)
		events := &recorder{}
		core.Observe(events.observe)

		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() { errc <- core.Run(ctx) }()
		Reset(func() { cancel(); <-errc })

		core.LoadSource(remote)
		s, err := core.Snapshot()
		So(err, ShouldBeNil)
		So(s.Status, ShouldEqual, status.Failed)
		So(len(events.kinds(EventEngineFailure)), ShouldEqual, 1)
	})
}

func TestRun(t *testing.T) {
	Convey("Run without an engine fails", t, func() {
		core := New(testOptions())
		So(core.Run(context.Background()), ShouldEqual, ErrNoEngine)
	})

	Convey("Snapshot after Run returned reports ErrClosed", t, func() {
		h := startCore(testOptions())
		h.stop()
		_, err := h.core.Snapshot()
		So(err, ShouldEqual, ErrClosed)
	})

	Convey("Status observers see changes after the engine did", t, func() {
		h := startCore(testOptions())
		Reset(func() { h.stop() })
		h.playing(remote, 120)

		changes := h.events.kinds(EventStatus)
		So(len(changes), ShouldEqual, 2)
		So(changes[0].Change, ShouldResemble, status.Change{From: status.Unknown, To: status.ReadyToPlay})
		So(changes[1].Change, ShouldResemble, status.Change{From: status.ReadyToPlay, To: status.Playing})
	})
}
