// Package handler provides the admin HTTP endpoints.
//
//   - health.go: liveness and readiness checks
//   - handler.go: routing, JSON envelope and the /metrics mount
package handler
