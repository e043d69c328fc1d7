// Package httpserver provides the HTTPS file server and the admin listener.
//
// Server binds explicitly (Listen) before serving, so a busy port is reported
// as domain.ErrBind at startup. With a TLS config the raw TCP listener is
// optionally capped by netutil.LimitListener and then wrapped by
// tls.NewListener; every connection completes its handshake before the
// request handler sees it.
//
// Middleware chain for the file server (outermost first):
//
//	Recover -> RequestID -> Metrics -> AccessLog -> fileserver.Handler
//
// The admin router serves /health, /ready and /metrics behind NetworkACL.
package httpserver
