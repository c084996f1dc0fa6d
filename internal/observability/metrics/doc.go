// Package metrics holds the Prometheus collectors of the API and the
// worker, registered with the default registry and served on /metrics.
//
//	start := time.Now()
//	// ... run the pipeline ...
//	metrics.RecordAnalysisCreated("url", true, time.Since(start))
package metrics

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
