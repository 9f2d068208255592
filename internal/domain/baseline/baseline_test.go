package baseline_test

import (
	"math"
	"testing"

	"github.com/sentinela-io/sentinela/internal/domain/baseline"
	"github.com/sentinela-io/sentinela/internal/domain/series"
	. "github.com/smartystreets/goconvey/convey"
)

func TestChannelBasics(t *testing.T) {
	Convey("Given an estimator with window 3", t, func() {
		est, err := baseline.New(3)
		So(err, ShouldBeNil)

		Convey("When computing over a flat series", func() {
			s := series.New([]float64{20, 20, 20, 20, 20, 20, 20, 20, 20, 20})
			ch, err := est.Compute(s)

			Convey("Then lengths match and index 0 is undefined", func() {
				So(err, ShouldBeNil)
				So(ch.Baseline.Len(), ShouldEqual, s.Len())
				So(ch.Threshold.Len(), ShouldEqual, s.Len())
				So(math.IsNaN(ch.Threshold.Values[0]), ShouldBeTrue)
			})

			Convey("Then zero MAD collapses threshold onto baseline", func() {
				for i := 1; i < s.Len(); i++ {
					So(ch.Baseline.Values[i], ShouldEqual, 20)
					So(ch.Threshold.Values[i], ShouldEqual, 20)
				}
			})

			Convey("Then the flat latest value does not exceed", func() {
				So(ch.Exceeded(s.Last()), ShouldBeFalse)
			})
		})

		Convey("When computing over an empty series", func() {
			_, err := est.Compute(&series.Series{})
			So(err, ShouldWrap, series.ErrInsufficientData)
		})
	})

	Convey("Given a non-positive window", t, func() {
		_, err := baseline.New(0)
		So(err, ShouldWrap, series.ErrInvalidWindow)
	})
}

func TestNoLookAhead(t *testing.T) {
	Convey("Given two series that agree up to day 9 and diverge after", t, func() {
		a := make([]float64, 20)
		b := make([]float64, 20)
		for i := range a {
			a[i] = 20 + float64(i%3)
			b[i] = a[i]
		}
		for i := 10; i < 20; i++ {
			b[i] = 95 // future outbreak in b only
		}

		est, _ := baseline.New(3)
		chA, _ := est.Compute(series.New(a))
		chB, _ := est.Compute(series.New(b))

		Convey("Then thresholds through day 10 are identical", func() {
			// threshold[i] uses values < i, so indexes 1..10 see only the
			// common prefix and must be invariant to the future mutation.
			for i := 1; i <= 10; i++ {
				So(chB.Threshold.Values[i], ShouldEqual, chA.Threshold.Values[i])
				So(chB.Baseline.Values[i], ShouldEqual, chA.Baseline.Values[i])
			}
		})

		Convey("Then the channel eventually reacts, strictly after onset", func() {
			So(chB.Threshold.Values[11], ShouldBeGreaterThan, chA.Threshold.Values[11])
		})
	})
}

func TestShiftMonotonicity(t *testing.T) {
	Convey("Given a series and the same series shifted up by a constant", t, func() {
		base := []float64{18, 22, 19, 25, 21, 17, 23, 20, 24, 19, 22, 18}
		shifted := make([]float64, len(base))
		const c = 40.0
		for i, v := range base {
			shifted[i] = v + c
		}

		est, _ := baseline.New(3)
		chBase, _ := est.Compute(series.New(base))
		chShift, _ := est.Compute(series.New(shifted))

		Convey("Then the baseline moves by exactly c and the margin is unchanged", func() {
			for i := 1; i < len(base); i++ {
				So(chShift.Baseline.Values[i], ShouldAlmostEqual, chBase.Baseline.Values[i]+c, 1e-9)
				marginBase := chBase.Threshold.Values[i] - chBase.Baseline.Values[i]
				marginShift := chShift.Threshold.Values[i] - chShift.Baseline.Values[i]
				So(marginShift, ShouldAlmostEqual, marginBase, 1e-9)
			}
		})
	})
}

func TestMultiplierOption(t *testing.T) {
	Convey("Given estimators with different multipliers", t, func() {
		values := []float64{10, 30, 12, 28, 11, 29, 13, 27, 12, 30}
		loose, _ := baseline.New(2, baseline.WithMultiplier(5))
		tight, _ := baseline.New(2, baseline.WithMultiplier(1))

		chLoose, _ := loose.Compute(series.New(values))
		chTight, _ := tight.Compute(series.New(values))

		Convey("Then a larger multiplier yields a wider channel", func() {
			i := len(values) - 1
			So(chLoose.Threshold.Values[i], ShouldBeGreaterThan, chTight.Threshold.Values[i])
		})
	})
}
