package httpserver

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/servetls/internal/core/domain"
	"github.com/yndnr/servetls/internal/infra/tlscert"
	"github.com/yndnr/servetls/internal/server/fileserver"
	"github.com/yndnr/servetls/internal/telemetry/metric"
)

type testTLS struct {
	server  *tls.Config
	trusted *tlscert.Pool
}

func newTestTLS(t *testing.T) testTLS {
	t.Helper()
	certPEM, keyPEM, err := tlscert.GenerateSelfSigned([]string{"localhost", "127.0.0.1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	kp, err := tlscert.FromPEM(certPEM, keyPEM)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := tlscert.ServerConfig(kp, "")
	if err != nil {
		t.Fatal(err)
	}
	pool := tlscert.NewEmptyPool()
	if err := pool.AddCertPEM(certPEM); err != nil {
		t.Fatal(err)
	}
	return testTLS{server: cfg, trusted: pool}
}

func (tt testTLS) client() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig:   tt.trusted.ClientConfig("", false),
			DisableKeepAlives: true,
		},
	}
}

// startServer listens on a loopback port and serves until the test ends.
func startServer(t *testing.T, cfg Config, h http.Handler) *Server {
	t.Helper()
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:0"
	}
	s := New(cfg, h)
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
		if err := <-done; err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	})
	return s
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			io.WriteString(w, "plain")
			return
		}
		io.WriteString(w, "ok")
	})
}

func TestServer_BeforeListen(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"}, okHandler())
	if s.Addr() != nil {
		t.Errorf("Addr() = %v before Listen", s.Addr())
	}
	if err := s.Serve(); !errors.Is(err, ErrNotListening) {
		t.Errorf("Serve() error = %v, want ErrNotListening", err)
	}
}

func TestServer_BindError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer busy.Close()

	s := New(Config{Addr: busy.Addr().String()}, okHandler())
	err = s.Listen()
	if !errors.Is(err, domain.ErrBind) {
		t.Fatalf("Listen() error = %v, want ErrBind", err)
	}
	if !domain.IsBindError(err) {
		t.Error("IsBindError() = false")
	}
}

func TestServer_PlainHTTP(t *testing.T) {
	s := startServer(t, Config{}, okHandler())

	resp, err := http.Get("http://" + s.Addr().String() + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "plain" {
		t.Errorf("body = %q", body)
	}
}

func TestServer_TLSHandshake(t *testing.T) {
	tt := newTestTLS(t)
	reg := metric.NewRegistry()
	s := startServer(t, Config{TLSConfig: tt.server, Metrics: reg}, okHandler())
	url := "https://" + s.Addr().String() + "/"

	t.Run("trusted client", func(t *testing.T) {
		resp, err := tt.client().Get(url)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || string(body) != "ok" {
			t.Errorf("status = %d body = %q", resp.StatusCode, body)
		}
		if resp.TLS == nil || resp.TLS.NegotiatedProtocol != "http/1.1" {
			t.Errorf("TLS state = %+v", resp.TLS)
		}
	})

	t.Run("untrusted client", func(t *testing.T) {
		client := &http.Client{Timeout: 5 * time.Second, Transport: &http.Transport{
			TLSClientConfig: tlscert.NewEmptyPool().ClientConfig("", false),
		}}
		if _, err := client.Get(url); err == nil {
			t.Fatal("Get() should fail when the self-signed chain is not trusted")
		}

		deadline := time.Now().Add(2 * time.Second)
		for testutil.ToFloat64(reg.HandshakeErrors) < 1 {
			if time.Now().After(deadline) {
				t.Fatal("handshake error was not counted")
			}
			time.Sleep(10 * time.Millisecond)
		}
	})

	t.Run("plain http to tls port", func(t *testing.T) {
		resp, err := http.Get("http://" + s.Addr().String() + "/")
		if err != nil {
			return
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	if testutil.ToFloat64(reg.ConnectionsTotal) < 1 {
		t.Error("connections were not counted")
	}
}

func TestServer_TLSMinVersion(t *testing.T) {
	tt := newTestTLS(t)
	tt.server.MinVersion = tls.VersionTLS13
	s := startServer(t, Config{TLSConfig: tt.server}, okHandler())

	cfg := tt.trusted.ClientConfig("", false)
	cfg.MaxVersion = tls.VersionTLS12
	conn, err := tls.Dial("tcp", s.Addr().String(), cfg)
	if err == nil {
		conn.Close()
		t.Fatal("TLS 1.2 client should be refused by a 1.3 floor")
	}
}

func newFileRouter(t *testing.T, files map[string]string) (http.Handler, *metric.Registry) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs, err := fileserver.New(dir, fileserver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { fs.Close() })

	reg := metric.NewRegistry()
	return NewRouter(&RouterConfig{Files: fs, Metrics: reg}), reg
}

func TestServer_ConcurrentClients(t *testing.T) {
	files := map[string]string{
		"a.txt": strings.Repeat("a", 256<<10),
		"b.txt": strings.Repeat("b", 256<<10),
	}
	router, reg := newFileRouter(t, files)
	tt := newTestTLS(t)
	s := startServer(t, Config{TLSConfig: tt.server, Metrics: reg}, router)
	client := tt.client()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for name, want := range files {
			wg.Add(1)
			go func(name, want string) {
				defer wg.Done()
				resp, err := client.Get(fmt.Sprintf("https://%s/%s", s.Addr(), name))
				if err != nil {
					t.Error(err)
					return
				}
				defer resp.Body.Close()
				got, err := io.ReadAll(resp.Body)
				if err != nil {
					t.Error(err)
					return
				}
				if string(got) != want {
					t.Errorf("%s: got %d bytes, want %d", name, len(got), len(want))
				}
			}(name, want)
		}
	}
	wg.Wait()

	if got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("GET", "200")); got != 20 {
		t.Errorf("requests_total{GET,200} = %v, want 20", got)
	}
}

func TestServer_AbortedTransferIsolated(t *testing.T) {
	files := map[string]string{
		"big.bin":   strings.Repeat("x", 8<<20),
		"small.txt": "still serving",
	}
	router, _ := newFileRouter(t, files)
	tt := newTestTLS(t)
	s := startServer(t, Config{TLSConfig: tt.server}, router)

	conn, err := tls.Dial("tcp", s.Addr().String(), tt.trusted.ClientConfig("", false))
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintf(conn, "GET /big.bin HTTP/1.1\r\nHost: localhost\r\n\r\n")
	if _, err := io.ReadFull(conn, make([]byte, 4096)); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	resp, err := tt.client().Get("https://" + s.Addr().String() + "/small.txt")
	if err != nil {
		t.Fatalf("Get() after aborted transfer error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "still serving" {
		t.Errorf("body = %q", body)
	}
}

func TestServer_RawTraversal(t *testing.T) {
	router, _ := newFileRouter(t, map[string]string{"a.txt": "a"})
	tt := newTestTLS(t)
	s := startServer(t, Config{TLSConfig: tt.server}, router)

	for _, target := range []string{"/../../etc/passwd", "/%2e%2e/%2e%2e/etc/passwd", "/missing.txt"} {
		conn, err := tls.Dial("tcp", s.Addr().String(), tt.trusted.ClientConfig("", false))
		if err != nil {
			t.Fatal(err)
		}
		fmt.Fprintf(conn, "GET %s HTTP/1.1\r\nHost: localhost\r\nConnection: close\r\n\r\n", target)
		resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
		if err != nil {
			conn.Close()
			t.Fatalf("%s: ReadResponse() error = %v", target, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		conn.Close()

		if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 403 or 404", target, resp.StatusCode)
		}
		if strings.Contains(string(body), "root:") {
			t.Errorf("%s: leaked contents outside the root", target)
		}
	}
}

func TestServer_MaxConnections(t *testing.T) {
	s := startServer(t, Config{MaxConnections: 1}, okHandler())
	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}

	for i := 0; i < 3; i++ {
		resp, err := client.Get("http://" + s.Addr().String() + "/")
		if err != nil {
			t.Fatalf("request %d error = %v", i, err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

func TestServer_ShutdownIdempotentServe(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"}, okHandler())
	if err := s.Listen(); err != nil {
		t.Fatal(err)
	}
	if err := s.Listen(); err != nil {
		t.Errorf("second Listen() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	time.Sleep(20 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after Shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}
