// Package shutdown stops servetls on SIGINT/SIGTERM.
//
// The server itself has no graceful-exit protocol: a stop request closes the
// listeners and gives in-flight transfers a bounded time to finish.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
