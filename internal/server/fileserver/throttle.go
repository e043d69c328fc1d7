package fileserver

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"
)

// throttledWriter paces response body writes through a token bucket.
// One limiter is created per response.
type throttledWriter struct {
	http.ResponseWriter
	ctx     context.Context
	limiter *rate.Limiter
}

func newThrottledWriter(ctx context.Context, w http.ResponseWriter, bytesPerSecond int) *throttledWriter {
	return &throttledWriter{
		ResponseWriter: w,
		ctx:            ctx,
		limiter:        rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond),
	}
}

// Write splits p into burst-sized chunks and waits for tokens before each one.
// A cancelled request context aborts the write.
func (w *throttledWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		chunk := min(len(p), w.limiter.Burst())
		if err := w.limiter.WaitN(w.ctx, chunk); err != nil {
			return written, err
		}
		n, err := w.ResponseWriter.Write(p[:chunk])
		written += n
		if err != nil {
			return written, err
		}
		p = p[chunk:]
	}
	return written, nil
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *throttledWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
