// Package metrics provides the Prometheus business metrics of a digest run.
//
// All metrics are registered with the Prometheus default registry and exposed
// by the worker's /metrics endpoint.
//
//	metrics.RecordPapersFetched("quant-ph", len(papers))
//	metrics.RecordPost("hardware", metrics.StatusSuccess)
package metrics
