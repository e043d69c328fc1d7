// Package metric provides Prometheus metrics for servetls.
//
//   - prometheus.go: Registry with request, connection and certificate metrics
//   - collector.go: build_info collector
//
// Metrics are exposed at /metrics on the admin listener when one is
// configured. The TLS listener never serves them.
package metric
