package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/servetls/internal/core/domain"
	"github.com/yndnr/servetls/internal/infra/confloader"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("listen = %s:%d, want localhost:8080", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Server.Root != "." {
		t.Errorf("Root = %q, want .", cfg.Server.Root)
	}
	if cfg.TLS.CertFile != "cert.pem" || cfg.TLS.KeyFile != "key.pem" {
		t.Errorf("TLS = %+v", cfg.TLS)
	}
	if cfg.TLS.MinVersion != "" {
		t.Errorf("MinVersion = %q, want platform default", cfg.TLS.MinVersion)
	}
	if !cfg.Server.DirectoryListing {
		t.Error("DirectoryListing should be enabled by default")
	}
	if got := strings.Join(cfg.Server.IndexFiles, ","); got != "index.html,index.htm" {
		t.Errorf("IndexFiles = %q", got)
	}
	if cfg.Server.WriteTimeout != 5*time.Minute {
		t.Errorf("WriteTimeout = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Admin.Addr != "" {
		t.Errorf("Admin.Addr = %q, want disabled", cfg.Admin.Addr)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestDefault_IndependentCopies(t *testing.T) {
	a := Default()
	a.Server.IndexFiles[0] = "changed.html"

	if b := Default(); b.Server.IndexFiles[0] != "index.html" {
		t.Error("Default() shares IndexFiles between calls")
	}
}

func TestServerSection_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"localhost", 8080, "localhost:8080"},
		{"0.0.0.0", 443, "0.0.0.0:443"},
		{"::1", 8443, "[::1]:8443"},
		{"", 8080, ":8080"},
	}

	for _, tt := range tests {
		s := ServerSection{Host: tt.host, Port: tt.port}
		if got := s.Addr(); got != tt.want {
			t.Errorf("Addr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		mutate   func(*ServerConfig)
		wantCode string
	}{
		{"defaults", func(c *ServerConfig) {}, ""},
		{"port zero", func(c *ServerConfig) { c.Server.Port = 0 }, domain.ErrConfig.Code},
		{"port too large", func(c *ServerConfig) { c.Server.Port = 70000 }, domain.ErrConfig.Code},
		{"empty root", func(c *ServerConfig) { c.Server.Root = "" }, domain.ErrConfig.Code},
		{"missing root", func(c *ServerConfig) { c.Server.Root = filepath.Join(dir, "absent") }, domain.ErrServedRoot.Code},
		{"root is file", func(c *ServerConfig) { c.Server.Root = file }, domain.ErrServedRoot.Code},
		{"negative timeout", func(c *ServerConfig) { c.Server.IdleTimeout = -time.Second }, domain.ErrConfig.Code},
		{"negative connections", func(c *ServerConfig) { c.Server.MaxConnections = -1 }, domain.ErrConfig.Code},
		{"negative rate", func(c *ServerConfig) { c.Server.MaxBytesPerSecond = -1 }, domain.ErrConfig.Code},
		{"index with slash", func(c *ServerConfig) { c.Server.IndexFiles = []string{"../index.html"} }, domain.ErrConfig.Code},
		{"empty cert", func(c *ServerConfig) { c.TLS.CertFile = "" }, domain.ErrConfig.Code},
		{"empty key", func(c *ServerConfig) { c.TLS.KeyFile = "" }, domain.ErrConfig.Code},
		{"tls 1.3 floor", func(c *ServerConfig) { c.TLS.MinVersion = "1.3" }, ""},
		{"tls 1.0 floor", func(c *ServerConfig) { c.TLS.MinVersion = "1.0" }, domain.ErrConfig.Code},
		{"admin addr", func(c *ServerConfig) { c.Admin.Addr = "127.0.0.1:9090" }, ""},
		{"admin allow list", func(c *ServerConfig) {
			c.Admin.Addr = "127.0.0.1:9090"
			c.Admin.AllowList = []string{"127.0.0.1", "10.0.0.0/8"}
		}, ""},
		{"admin allow list invalid", func(c *ServerConfig) {
			c.Admin.Addr = "127.0.0.1:9090"
			c.Admin.AllowList = []string{"localhost"}
		}, domain.ErrConfig.Code},
		{"admin addr without port", func(c *ServerConfig) { c.Admin.Addr = "localhost" }, domain.ErrConfig.Code},
		{"bad log level", func(c *ServerConfig) { c.Log.Level = "verbose" }, domain.ErrConfig.Code},
		{"bad log format", func(c *ServerConfig) { c.Log.Format = "xml" }, domain.ErrConfig.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Server.Root = dir
			tt.mutate(cfg)

			err := Verify(cfg)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				return
			}
			if got := domain.GetErrorCode(err); got != tt.wantCode {
				t.Fatalf("Verify() code = %q, want %q (err=%v)", got, tt.wantCode, err)
			}
			if !domain.IsConfigError(err) {
				t.Errorf("IsConfigError(%v) = false", err)
			}
		})
	}
}

func TestLoad_FileEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servetls.yaml")
	content := `
server:
  port: 9443
  root: ` + dir + `
tls:
  min_version: "1.2"
log:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERVETLS_TLS_KEY_FILE", "/etc/servetls/key.pem")

	cfg := Default()
	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(map[string]any{"server.host": "127.0.0.1"}),
	)
	if err := l.Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9443" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.TLS.KeyFile != "/etc/servetls/key.pem" {
		t.Errorf("KeyFile = %q", cfg.TLS.KeyFile)
	}
	if cfg.TLS.CertFile != DefaultCertFile {
		t.Errorf("CertFile = %q, want default", cfg.TLS.CertFile)
	}
	if cfg.TLS.MinVersion != "1.2" || cfg.Log.Format != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}
