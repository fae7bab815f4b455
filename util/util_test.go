package util

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "record", "records"), ShouldEqual, "1 record")
		So(Quantify(2, "record", "records"), ShouldEqual, "2 records")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5, 0, 10), ShouldEqual, 5)
		So(Clamp(-1, 0, 10), ShouldEqual, 0)
		So(Clamp(11, 0, 10), ShouldEqual, 10)
	})

	Convey("Clamp01", t, func() {
		So(Clamp01(0.25), ShouldEqual, 0.25)
		So(Clamp01(1e9), ShouldEqual, 1)
		So(Clamp01(-1e9), ShouldEqual, 0)
		So(Clamp01(math.NaN()), ShouldEqual, 0)
		So(Clamp01(math.Inf(1)), ShouldEqual, 1)
	})

	Convey("Finite", t, func() {
		So(Finite(1), ShouldBeTrue)
		So(Finite(math.NaN()), ShouldBeFalse)
		So(Finite(math.Inf(-1)), ShouldBeFalse)
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})
}
