package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the default namespace should be used", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "cutoff")
				So(manager.subsystem, ShouldEqual, "predictor")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.datasetRecords.Set(3)

			Convey("Then collectors should carry the custom names and labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_unit_dataset_records" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
						So(f.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 3.0)
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options receive empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "cutoff")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestPredictionRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording predictions by method", func() {
			before := testutil.ToFloat64(globalManager.predictions.WithLabelValues("normal_cdf"))
			RecordPrediction("normal_cdf")
			RecordPrediction("normal_cdf")

			Convey("Then the method counter should grow", func() {
				after := testutil.ToFloat64(globalManager.predictions.WithLabelValues("normal_cdf"))
				So(after-before, ShouldEqual, 2.0)
			})
		})

		Convey("When recording pipeline diagnostics", func() {
			below := testutil.ToFloat64(globalManager.belowThreshold)
			dup := testutil.ToFloat64(globalManager.duplicatesDropped)
			invalid := testutil.ToFloat64(globalManager.invalidObservations)
			malformed := testutil.ToFloat64(globalManager.malformedRecords)

			RecordBelowThreshold(4)
			RecordDuplicatesDropped(2)
			RecordInvalidObservations(1)
			RecordMalformedRecords(3)
			UpdateConsolidatedGroups(7)
			UpdateDatasetRecords(12)

			Convey("Then each collector should reflect the values", func() {
				So(testutil.ToFloat64(globalManager.belowThreshold)-below, ShouldEqual, 4.0)
				So(testutil.ToFloat64(globalManager.duplicatesDropped)-dup, ShouldEqual, 2.0)
				So(testutil.ToFloat64(globalManager.invalidObservations)-invalid, ShouldEqual, 1.0)
				So(testutil.ToFloat64(globalManager.malformedRecords)-malformed, ShouldEqual, 3.0)
				So(testutil.ToFloat64(globalManager.consolidatedGroups), ShouldEqual, 7.0)
				So(testutil.ToFloat64(globalManager.datasetRecords), ShouldEqual, 12.0)
			})
		})

		Convey("When recording request latency and errors", func() {
			reqs := testutil.ToFloat64(globalManager.predictionRequests)
			errs := testutil.ToFloat64(globalManager.predictionErrors)
			RecordPredictionRequest(1.5, 10)
			RecordPredictionError()

			Convey("Then the counters should grow", func() {
				So(testutil.ToFloat64(globalManager.predictionRequests)-reqs, ShouldEqual, 1.0)
				So(testutil.ToFloat64(globalManager.predictionErrors)-errs, ShouldEqual, 1.0)
			})
		})
	})
}

func TestBatchRecorders(t *testing.T) {
	Convey("Given batch queue and worker recorders", t, func() {
		UpdateQueueCapacity(64)
		UpdateQueueSize(5)
		UpdateWorkerCount(4)
		enq := testutil.ToFloat64(globalManager.queueEnqueue)
		rej := testutil.ToFloat64(globalManager.queueEnqueueErrors)
		RecordQueueEnqueue()
		RecordQueueEnqueueError()
		RecordBatchJob("ok")
		RecordWorkerProcessingLatency(0.7)
		So(func() { RecordWorkerError() }, ShouldNotPanic)

		So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64.0)
		So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 5.0)
		So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4.0)
		So(testutil.ToFloat64(globalManager.queueEnqueue)-enq, ShouldEqual, 1.0)
		So(testutil.ToFloat64(globalManager.queueEnqueueErrors)-rej, ShouldEqual, 1.0)
		So(testutil.ToFloat64(globalManager.batchJobs.WithLabelValues("ok")), ShouldBeGreaterThanOrEqualTo, 1.0)
	})
}

func TestHTTPRecordersAndHandler(t *testing.T) {
	Convey("Given HTTP recorders", t, func() {
		RecordHTTPRequest("/predict", "POST", "200")
		RecordHTTPRequestDuration("/predict", "POST", "200", 2.5)
		RecordHTTPError("/predict", "POST", "bad_request")
		RecordRateLimited("/predict")

		Convey("When the exposition handler is scraped", func() {
			rec := httptest.NewRecorder()
			Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then the recorded series should be exposed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := rec.Body.String()
				So(body, ShouldContainSubstring, "cutoff_predictor_http_requests_total")
				So(body, ShouldContainSubstring, "cutoff_predictor_rate_limited_total")
				So(body, ShouldContainSubstring, `error_type="bad_request"`)
			})
		})

		Convey("Then the registry should be the custom one", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestSystemRecorders(t *testing.T) {
	Convey("Given process level samples", t, func() {
		UpdateSystemMemoryUsage(2048)
		UpdateSystemGoroutineCount(17)

		Convey("Then the gauges should hold the latest sample", func() {
			So(testutil.ToFloat64(globalManager.systemMemoryUsage), ShouldEqual, 2048.0)
			So(testutil.ToFloat64(globalManager.systemGoroutines), ShouldEqual, 17.0)
			So(func() { RecordSystemGCPauseTime(0.4) }, ShouldNotPanic)
		})
	})
}
