package smoothing_test

import (
	"testing"

	"github.com/sentinela-io/sentinela/internal/domain/series"
	"github.com/sentinela-io/sentinela/internal/domain/smoothing"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSmoothContract(t *testing.T) {
	Convey("Given a daily series", t, func() {
		s := series.New([]float64{10, 20, 30, 40, 50})

		Convey("When smoothing with window 3", func() {
			out, err := smoothing.Smooth(s, 3)

			Convey("Then output length equals input length", func() {
				So(err, ShouldBeNil)
				So(out.Len(), ShouldEqual, s.Len())
			})

			Convey("Then heads use the partial window available", func() {
				So(out.Values[0], ShouldEqual, 10)        // one value
				So(out.Values[1], ShouldEqual, 15)        // mean(10,20)
				So(out.Values[2], ShouldEqual, 20)        // mean(10,20,30)
				So(out.Values[3], ShouldEqual, 30)        // mean(20,30,40)
				So(out.Values[4], ShouldEqual, 40)        // mean(30,40,50)
			})

			Convey("Then the input series is not mutated", func() {
				So(s.Values, ShouldResemble, []float64{10, 20, 30, 40, 50})
			})
		})

		Convey("When smoothing with window 1", func() {
			out, err := smoothing.Smooth(s, 1)

			Convey("Then the output equals the input exactly", func() {
				So(err, ShouldBeNil)
				So(out.Values, ShouldResemble, s.Values)
			})
		})

		Convey("When smoothing with a non-positive window", func() {
			_, err := smoothing.Smooth(s, 0)

			Convey("Then the window is rejected", func() {
				So(err, ShouldWrap, series.ErrInvalidWindow)
			})
		})
	})
}

func TestSmoothCausality(t *testing.T) {
	Convey("Given two series differing only in the future", t, func() {
		a := series.New([]float64{10, 10, 10, 10, 10, 10, 10, 10})
		b := series.New([]float64{10, 10, 10, 10, 10, 90, 90, 90})

		Convey("When both are smoothed", func() {
			sa, _ := smoothing.Smooth(a, 3)
			sb, _ := smoothing.Smooth(b, 3)

			Convey("Then smoothed values before the divergence are identical", func() {
				for i := 0; i < 5; i++ {
					So(sb.Values[i], ShouldEqual, sa.Values[i])
				}
			})
		})
	})
}

func TestSmoothTable(t *testing.T) {
	Convey("Given a two-term table", t, func() {
		tbl := series.NewTable(series.New(make([]float64, 4)).Dates)
		So(tbl.Add("alvo", []float64{0, 10, 20, 30}), ShouldBeNil)
		So(tbl.Add("sintomas", []float64{5, 5, 5, 5}), ShouldBeNil)

		Convey("When smoothing the table", func() {
			out, err := smoothing.SmoothTable(tbl, 2)

			Convey("Then every term is smoothed on the same index", func() {
				So(err, ShouldBeNil)
				So(out.Terms(), ShouldResemble, []string{"alvo", "sintomas"})
				alvo, _ := out.Series("alvo")
				So(alvo.Values, ShouldResemble, []float64{0, 5, 15, 25})
				flat, _ := out.Series("sintomas")
				So(flat.Values, ShouldResemble, []float64{5, 5, 5, 5})
			})
		})
	})
}

func TestWindowForTimeframe(t *testing.T) {
	Convey("Given timeframe labels", t, func() {
		So(smoothing.WindowForTimeframe("1m"), ShouldEqual, 5)
		So(smoothing.WindowForTimeframe("today 1-m"), ShouldEqual, 5)
		So(smoothing.WindowForTimeframe("3m"), ShouldEqual, 7)
		So(smoothing.WindowForTimeframe("12m"), ShouldEqual, 21)
		So(smoothing.WindowForTimeframe("anything-else"), ShouldEqual, 7)
	})
}
