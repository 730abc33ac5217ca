// Package metrics provides build and preview-server metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks:
//
//	b := build.New(cfg, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The preview server registers a PrometheusRecorder and exposes it at /metrics
// through HTTPHandler. One-shot builds keep the NoopRecorder.
package metrics
