package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom naming", func() {
			m := NewManager(
				WithNamespace("ff"),
				WithSubsystem("test"),
				WithHistogramBuckets([]float64{1, 10}),
				WithPrometheusRegistry(registry),
			)
			m.analyses.Inc()

			Convey("Then collectors should use the configured names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "ff_test_analyses_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
				So(m.histogramBuckets, ShouldResemble, []float64{1, 10})
			})
		})

		Convey("When empty options are passed", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults should be kept", func() {
				So(m.namespace, ShouldEqual, "lineup")
				So(m.subsystem, ShouldEqual, "analysis")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording an analysis", func() {
			before := testutil.ToFloat64(globalManager.analyses)
			RecordAnalysis(4, 3, 0.2)

			Convey("Then the analyses counter should advance", func() {
				So(testutil.ToFloat64(globalManager.analyses), ShouldEqual, before+1)
			})
		})

		Convey("When recording recommendations", func() {
			before := testutil.ToFloat64(globalManager.recommendations.WithLabelValues("Start"))
			RecordRecommendation("Start", "QB", 19.97)
			RecordRecommendation("Bench", "TE", 12.38)

			Convey("Then each label should be counted separately", func() {
				So(testutil.ToFloat64(globalManager.recommendations.WithLabelValues("Start")), ShouldEqual, before+1)
			})
		})

		Convey("When recording zero unknown names", func() {
			before := testutil.ToFloat64(globalManager.unknownNames)
			RecordUnknownNames(0)
			RecordUnknownNames(2)

			Convey("Then only positive counts should be added", func() {
				So(testutil.ToFloat64(globalManager.unknownNames), ShouldEqual, before+2)
			})
		})

		Convey("When recording snapshot reloads", func() {
			RecordSnapshotReload("builtin", "ok", 1.5, 1700000000)
			RecordSnapshotReload("builtin", "error", 1.5, 1800000000)
			UpdateSnapshotPlayers(8)

			Convey("Then only successful reloads should move the timestamp", func() {
				So(testutil.ToFloat64(globalManager.snapshotLastUnix), ShouldEqual, 1700000000)
				So(testutil.ToFloat64(globalManager.snapshotPlayers), ShouldEqual, 8)
			})
		})

		Convey("When recording history pipeline metrics", func() {
			So(func() {
				UpdateQueueSize(3)
				UpdateQueueCapacity(64)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueDropped()
				UpdateWorkerCount(2)
				RecordWorkerProcessingLatency(0.4)
				RecordWorkerError()
				RecordHistorySaved()
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
		})

		Convey("When recording http and system metrics", func() {
			So(func() {
				RecordHTTPRequest("/api/analyze", "POST", "200")
				RecordHTTPRequestDuration("/api/analyze", "POST", "200", 1.2)
				RecordErrorByComponent("api", "bad_request")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the registry should expose lineup metrics", func() {
			RecordAnalysis(1, 1, 0.1)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(strings.Join(names, ","), ShouldContainSubstring, "lineup_analysis_analyses_total")
		})
	})
}

func TestConcurrentRecording(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.queueEnqueued)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				RecordQueueEnqueue()
			}()
		}
		wg.Wait()

		Convey("Then no increments should be lost", func() {
			So(testutil.ToFloat64(globalManager.queueEnqueued), ShouldEqual, before+50)
		})
	})
}
