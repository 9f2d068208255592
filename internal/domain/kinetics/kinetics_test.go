package kinetics_test

import (
	"testing"

	"github.com/sentinela-io/sentinela/internal/domain/kinetics"
	"github.com/sentinela-io/sentinela/internal/domain/series"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGradientContract(t *testing.T) {
	Convey("Given a linear series", t, func() {
		s := series.New([]float64{0, 2, 4, 6, 8})

		Convey("When computing kinetics", func() {
			res, err := kinetics.Compute(s)

			Convey("Then velocity is constant and acceleration is zero", func() {
				So(err, ShouldBeNil)
				So(res.Velocity.Len(), ShouldEqual, s.Len())
				So(res.Acceleration.Len(), ShouldEqual, s.Len())
				for i := 0; i < s.Len(); i++ {
					So(res.Velocity.Values[i], ShouldEqual, 2)
					So(res.Acceleration.Values[i], ShouldEqual, 0)
				}
			})
		})
	})

	Convey("Given a quadratic series", t, func() {
		// f(i) = i^2: gradient is 2i in the interior, acceleration 2.
		s := series.New([]float64{0, 1, 4, 9, 16, 25})

		Convey("When computing kinetics", func() {
			res, err := kinetics.Compute(s)
			So(err, ShouldBeNil)

			Convey("Then interior velocity matches the analytic derivative", func() {
				for i := 1; i < s.Len()-1; i++ {
					So(res.Velocity.Values[i], ShouldEqual, float64(2*i))
				}
			})

			Convey("Then boundary velocity uses one-sided differences", func() {
				So(res.Velocity.Values[0], ShouldEqual, 1)
				So(res.Velocity.Values[s.Len()-1], ShouldEqual, 9)
			})

			Convey("Then interior acceleration is the constant curvature", func() {
				for i := 2; i < s.Len()-2; i++ {
					So(res.Acceleration.Values[i], ShouldEqual, 2)
				}
			})
		})
	})

	Convey("Given a series that is too short", t, func() {
		s := series.New([]float64{42})

		Convey("Then kinetics is refused", func() {
			_, err := kinetics.Compute(s)
			So(err, ShouldWrap, series.ErrInsufficientData)
		})
	})

	Convey("Given any input", t, func() {
		s := series.New([]float64{1, 5, 2})
		_, err := kinetics.Compute(s)
		So(err, ShouldBeNil)

		Convey("Then the input is never mutated", func() {
			So(s.Values, ShouldResemble, []float64{1, 5, 2})
		})
	})
}
