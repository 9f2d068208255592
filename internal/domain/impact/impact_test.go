package impact_test

import (
	"math"
	"testing"

	"github.com/sentinela-io/sentinela/internal/domain/impact"
	"github.com/sentinela-io/sentinela/internal/domain/series"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConnectedMode(t *testing.T) {
	Convey("Given a normalizer with reference tables", t, func() {
		n := impact.New(
			impact.WithMode(impact.ModeConnected),
			impact.WithPopulations(map[string]float64{"BR-SP": 44_411_238}),
			impact.WithConnectivity(map[string]float64{"BR-SP": 0.85}),
		)

		Convey("When normalizing a known region", func() {
			score := n.Normalize(60, "BR-SP")

			Convey("Then the score is searching population per 100k connected residents", func() {
				wantWeight := 44_411_238 * 0.85 / 100_000
				So(score.RawScore, ShouldEqual, 60)
				So(score.PopulationWeight, ShouldAlmostEqual, wantWeight, 1e-9)
				So(score.NormalizedScore, ShouldAlmostEqual, 0.6*wantWeight, 1e-9)
			})
		})

		Convey("When normalizing an unknown region", func() {
			score := n.Normalize(60, "XX-ZZ")

			Convey("Then it degrades to the configured defaults, not a crash", func() {
				wantWeight := float64(impact.DefaultPopulation) * impact.DefaultConnectivity / 100_000
				So(score.PopulationWeight, ShouldAlmostEqual, wantWeight, 1e-9)
				So(score.NormalizedScore, ShouldAlmostEqual, 0.6*wantWeight, 1e-9)
			})
		})

		Convey("When normalizing zero interest", func() {
			score := n.Normalize(0, "BR-SP")

			Convey("Then the normalized score is zero", func() {
				So(score.NormalizedScore, ShouldEqual, 0)
			})
		})
	})
}

func TestLogWeightMode(t *testing.T) {
	Convey("Given the legacy log-weight normalizer", t, func() {
		n := impact.New(
			impact.WithMode(impact.ModeLogWeight),
			impact.WithPopulations(map[string]float64{"BR-RR": 652_713}),
		)

		Convey("When normalizing", func() {
			score := n.Normalize(50, "BR-RR")

			Convey("Then the weight is log10 of the population", func() {
				So(score.PopulationWeight, ShouldAlmostEqual, math.Log10(652_713), 1e-12)
				So(score.NormalizedScore, ShouldAlmostEqual, 50*math.Log10(652_713), 1e-9)
			})
		})
	})
}

func TestCustomDefaults(t *testing.T) {
	Convey("Given overridden fallbacks", t, func() {
		n := impact.New(impact.WithDefaults(2_000_000, 0.5))

		Convey("When looking up an unknown region", func() {
			pop, conn := n.Lookup("nowhere")

			Convey("Then the overridden defaults apply", func() {
				So(pop, ShouldEqual, 2_000_000)
				So(conn, ShouldEqual, 0.5)
			})
		})
	})

	Convey("Given invalid reference entries", t, func() {
		n := impact.New(
			impact.WithPopulations(map[string]float64{"bad": -5}),
			impact.WithConnectivity(map[string]float64{"bad": 1.7}),
		)

		Convey("Then invalid rows are dropped and defaults cover them", func() {
			pop, conn := n.Lookup("bad")
			So(pop, ShouldEqual, float64(impact.DefaultPopulation))
			So(conn, ShouldEqual, impact.DefaultConnectivity)
		})
	})
}

func TestParseMode(t *testing.T) {
	Convey("Given mode labels", t, func() {
		m, err := impact.ParseMode("connected")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, impact.ModeConnected)

		m, err = impact.ParseMode("logweight")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, impact.ModeLogWeight)

		m, err = impact.ParseMode("")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, impact.ModeConnected)

		_, err = impact.ParseMode("sqrt")
		So(err, ShouldWrap, series.ErrInvalidInput)
	})
}
