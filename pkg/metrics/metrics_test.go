package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sentinela-io/sentinela/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerConstruction(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When creating a manager with options", func() {
			m := metrics.NewManager(
				metrics.WithNamespace("testspace"),
				metrics.WithSubsystem("testsys"),
				metrics.WithHistogramBuckets([]float64{1, 5, 10}),
				metrics.WithPrometheusRegistry(reg),
			)

			Convey("Then the manager is created without panicking", func() {
				So(m, ShouldNotBeNil)
			})

			Convey("And the registry holds the registered collectors", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				// Counters do not appear until first increment, but gauges do.
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating two managers on separate registries", func() {
			m1 := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
			m2 := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then both construct independently", func() {
				So(m1, ShouldNotBeNil)
				So(m2, ShouldNotBeNil)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Then evaluation helpers never panic", func() {
			So(metrics.RecordEvaluationCompleted, ShouldNotPanic)
			So(metrics.RecordEvaluationDuplicate, ShouldNotPanic)
			So(metrics.RecordEvaluationFailed, ShouldNotPanic)
			So(func() { metrics.RecordPipelineLatency(12.5) }, ShouldNotPanic)
			So(func() { metrics.RecordClassification("NORMAL") }, ShouldNotPanic)
		})

		Convey("Then queue helpers never panic", func() {
			So(func() { metrics.UpdateQueueSize(3) }, ShouldNotPanic)
			So(func() { metrics.UpdateQueueCapacity(100) }, ShouldNotPanic)
			So(func() { metrics.UpdateQueueUtilization(0.03) }, ShouldNotPanic)
			So(metrics.RecordQueueEnqueue, ShouldNotPanic)
			So(metrics.RecordQueueDequeue, ShouldNotPanic)
			So(metrics.RecordQueueEnqueueError, ShouldNotPanic)
		})

		Convey("Then worker and watchboard helpers never panic", func() {
			So(func() { metrics.UpdateWorkerCount(4) }, ShouldNotPanic)
			So(func() { metrics.RecordWorkerProcessingLatency(2.0) }, ShouldNotPanic)
			So(metrics.RecordWorkerError, ShouldNotPanic)
			So(func() { metrics.UpdateWatchboardSize(27) }, ShouldNotPanic)
			So(metrics.RecordWatchboardUpdate, ShouldNotPanic)
		})

		Convey("Then HTTP helpers never panic", func() {
			So(func() { metrics.RecordHTTPRequest("evaluations", "POST", "202") }, ShouldNotPanic)
			So(func() { metrics.RecordHTTPRequestDuration("evaluations", "POST", "202", 1.2) }, ShouldNotPanic)
		})

		Convey("Then the shared registry is gatherable", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
