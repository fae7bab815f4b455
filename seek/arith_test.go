package seek

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApplyHorizontalDrag(t *testing.T) {
	Convey("ApplyHorizontalDrag", t, func() {
		Convey("Velocity is converted to seconds through the sensitivity", func() {
			// 990/99 = 10 seconds of a 100 second medium.
			So(ApplyHorizontalDrag(0.5, 990, 100, 99), ShouldAlmostEqual, 0.6, 1e-9)
			So(ApplyHorizontalDrag(0.5, -990, 100, 99), ShouldAlmostEqual, 0.4, 1e-9)
		})

		Convey("Output always stays in [0,1]", func() {
			deltas := []float64{1e9, -1e9, math.MaxFloat64, -math.MaxFloat64, math.Inf(1), math.Inf(-1), math.NaN()}
			bases := []float64{-2, 0, 0.3, 1, 7, math.NaN()}
			for _, base := range bases {
				for _, d := range deltas {
					got := ApplyHorizontalDrag(base, d, 120, 99)
					So(got, ShouldBeBetweenOrEqual, 0, 1)
				}
			}
		})

		Convey("Extreme deltas pin to the ends", func() {
			So(ApplyHorizontalDrag(0.5, 1e9, 120, 99), ShouldEqual, 1)
			So(ApplyHorizontalDrag(0.5, -1e9, 120, 99), ShouldEqual, 0)
		})

		Convey("A non-positive sensitivity falls back to the default", func() {
			So(ApplyHorizontalDrag(0, 990, 100, 0), ShouldAlmostEqual, 0.1, 1e-9)
		})

		Convey("An unknown duration leaves the base untouched", func() {
			So(ApplyHorizontalDrag(0.25, 5000, 0, 99), ShouldEqual, 0.25)
			So(ApplyHorizontalDrag(3, 5000, math.NaN(), 99), ShouldEqual, 1)
		})
	})
}

func TestApplyVerticalDrag(t *testing.T) {
	Convey("ApplyVerticalDrag", t, func() {
		So(ApplyVerticalDrag(0.5, -1000, 10000), ShouldAlmostEqual, 0.6, 1e-9)
		So(ApplyVerticalDrag(0.5, 1000, 10000), ShouldAlmostEqual, 0.4, 1e-9)

		Convey("The result is not clamped", func() {
			So(ApplyVerticalDrag(0.9, -5000, 10000), ShouldAlmostEqual, 1.4, 1e-9)
		})

		Convey("A non-positive scale falls back to the default", func() {
			So(ApplyVerticalDrag(0, -10000, 0), ShouldAlmostEqual, 1, 1e-9)
		})
	})
}

func TestClassifyDrag(t *testing.T) {
	Convey("ClassifyDrag", t, func() {
		So(ClassifyDrag(Horizontal, Location{X: 0.2, Y: 0.5}, 0.1), ShouldEqual, ControlScrub)
		So(ClassifyDrag(Vertical, Location{X: 0.8, Y: 0.5}, 0.1), ShouldEqual, ControlVolume)
		So(ClassifyDrag(Vertical, Location{X: 0.2, Y: 0.5}, 0.1), ShouldEqual, ControlBrightness)
		So(ClassifyDrag(Horizontal, Location{X: 0.5, Y: 0.95}, 0.1), ShouldEqual, ControlNone)
		So(ControlVolume.String(), ShouldEqual, "volume")
		So(Vertical.String(), ShouldEqual, "vertical")
	})
}
