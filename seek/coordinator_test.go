package seek

import (
	"errors"
	"testing"

	"github.com/scrubdeck/scrubdeck/status"
	. "github.com/smartystreets/goconvey/convey"
)

func machineAt(s status.Status) *status.Machine {
	m := status.NewMachine()
	So(m.Request(status.ReadyToPlay), ShouldBeNil)
	if s != status.ReadyToPlay {
		So(m.Request(s), ShouldBeNil)
	}
	return m
}

func TestCoordinator(t *testing.T) {
	Convey("Given a remote source playing", t, func() {
		m := machineAt(status.Playing)
		c := NewCoordinator(m, FailRemoteOnly)
		c.SetSource(false)

		Convey("Begin pauses and Complete(ok) resumes playing", func() {
			h, err := c.Begin(0.5, 120)
			So(err, ShouldBeNil)
			So(h.Valid(), ShouldBeTrue)
			So(h.Coalesced(), ShouldBeFalse)
			So(m.Current(), ShouldEqual, status.Paused)
			So(c.InFlight(), ShouldBeTrue)

			req, _, ok := c.Pending()
			So(ok, ShouldBeTrue)
			So(req.TargetSeconds, ShouldEqual, 60)
			So(req.IssuedAtStatus, ShouldEqual, status.Playing)

			outcome, err := c.Complete(h, true)
			So(err, ShouldBeNil)
			So(outcome, ShouldEqual, OutcomeResumed)
			So(m.Current(), ShouldEqual, status.Playing)
			So(c.InFlight(), ShouldBeFalse)
		})

		Convey("A failed seek on a remote source enters Failed", func() {
			h, _ := c.Begin(0.5, 120)
			outcome, err := c.Complete(h, false)
			So(outcome, ShouldEqual, OutcomeFailed)

			var failed *SeekFailedError
			So(errors.As(err, &failed), ShouldBeTrue)
			So(failed.IsLocalFile, ShouldBeFalse)
			So(m.Current(), ShouldEqual, status.Failed)
		})

		Convey("An unknown duration is rejected without a transition", func() {
			_, err := c.Begin(0.5, 0)
			So(err, ShouldEqual, ErrInvalidDuration)
			So(m.Current(), ShouldEqual, status.Playing)
			So(c.InFlight(), ShouldBeFalse)
		})

		Convey("A second Begin coalesces into the in-flight seek", func() {
			first, _ := c.Begin(0.2, 100)
			second, err := c.Begin(0.7, 100)
			So(err, ShouldBeNil)
			So(second.Coalesced(), ShouldBeTrue)

			req, latest, _ := c.Pending()
			So(latest, ShouldResemble, second)
			So(req.TargetFraction, ShouldEqual, 0.7)
			So(req.IssuedAtStatus, ShouldEqual, status.Playing)

			Convey("The first completion is superseded and changes nothing", func() {
				outcome, err := c.Complete(first, true)
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, OutcomeSuperseded)
				So(m.Current(), ShouldEqual, status.Paused)
				So(c.InFlight(), ShouldBeTrue)

				outcome, _ = c.Complete(second, true)
				So(outcome, ShouldEqual, OutcomeResumed)
				So(m.Current(), ShouldEqual, status.Playing)
			})
		})

		Convey("A completion after Cancel is stale", func() {
			h, _ := c.Begin(0.5, 120)
			c.SetSource(true)
			So(m.Request(status.Playing), ShouldBeNil)

			outcome, err := c.Complete(h, false)
			So(err, ShouldBeNil)
			So(outcome, ShouldEqual, OutcomeStale)
			So(m.Current(), ShouldEqual, status.Playing)
		})

		Convey("SetResumeStatus overrides the restored status", func() {
			h, _ := c.Begin(0.5, 120)
			resume, ok := c.ResumeStatus()
			So(ok, ShouldBeTrue)
			So(resume, ShouldEqual, status.Playing)

			c.SetResumeStatus(status.Paused)
			_, err := c.Complete(h, true)
			So(err, ShouldBeNil)
			So(m.Current(), ShouldEqual, status.Paused)
		})
	})

	Convey("Given a local file", t, func() {
		m := machineAt(status.Playing)
		c := NewCoordinator(m, FailRemoteOnly)
		c.SetSource(true)

		Convey("A failed seek pauses silently", func() {
			h, _ := c.Begin(0.5, 120)
			outcome, err := c.Complete(h, false)
			So(outcome, ShouldEqual, OutcomeFailedSilent)

			var failed *SeekFailedError
			So(errors.As(err, &failed), ShouldBeTrue)
			So(failed.IsLocalFile, ShouldBeTrue)
			So(m.Current(), ShouldEqual, status.Paused)
		})
	})

	Convey("Buffering resumes into Playing", t, func() {
		m := machineAt(status.Playing)
		So(m.Request(status.Buffering), ShouldBeNil)
		c := NewCoordinator(m, FailRemoteOnly)

		h, _ := c.Begin(0.1, 10)
		_, err := c.Complete(h, true)
		So(err, ShouldBeNil)
		So(m.Current(), ShouldEqual, status.Playing)
	})

	Convey("Seeking from Failed is an invalid transition", t, func() {
		m := machineAt(status.Playing)
		So(m.Request(status.Failed), ShouldBeNil)
		c := NewCoordinator(m, FailRemoteOnly)

		_, err := c.Begin(0.5, 120)
		So(errors.Is(err, status.ErrInvalidTransition), ShouldBeTrue)
		So(c.InFlight(), ShouldBeFalse)
	})
}

func TestFailurePolicy(t *testing.T) {
	Convey("FailurePolicy", t, func() {
		So(FailurePolicyNames(), ShouldResemble, []string{"remote-only", "always", "never"})

		p, err := ParseFailurePolicy(" Always ")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, FailAlways)

		_, err = ParseFailurePolicy("sometimes")
		So(err, ShouldNotBeNil)

		So(FailRemoteOnly.Fails(false), ShouldBeTrue)
		So(FailRemoteOnly.Fails(true), ShouldBeFalse)
		So(FailAlways.Fails(true), ShouldBeTrue)
		So(FailNever.Fails(false), ShouldBeFalse)
	})
}
