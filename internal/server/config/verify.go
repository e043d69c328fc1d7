package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yndnr/servetls/internal/core/domain"
	"github.com/yndnr/servetls/internal/telemetry/logger"
)

// Verify validates the configuration.
//
// Invalid values return domain.ErrConfig; a served root that is missing or
// not a directory returns domain.ErrServedRoot.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyTLS(&cfg.TLS); err != nil {
		return err
	}
	if err := verifyAdmin(&cfg.Admin); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return invalid("server.port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.Root == "" {
		return invalid("server.root is required")
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return domain.ErrServedRoot.WithDetails(cfg.Root).WithCause(err)
	}
	if !info.IsDir() {
		return domain.ErrServedRoot.WithDetails(cfg.Root + " is not a directory")
	}

	durations := map[string]int64{
		"server.read_header_timeout": int64(cfg.ReadHeaderTimeout),
		"server.read_timeout":        int64(cfg.ReadTimeout),
		"server.write_timeout":       int64(cfg.WriteTimeout),
		"server.idle_timeout":        int64(cfg.IdleTimeout),
	}
	for key, d := range durations {
		if d < 0 {
			return invalid("%s must not be negative", key)
		}
	}

	if cfg.MaxHeaderBytes < 0 {
		return invalid("server.max_header_bytes must not be negative")
	}
	if cfg.MaxConnections < 0 {
		return invalid("server.max_connections must not be negative")
	}
	if cfg.MaxBytesPerSecond < 0 {
		return invalid("server.max_bytes_per_second must not be negative")
	}
	for _, name := range cfg.IndexFiles {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return invalid("server.index_files entry %q must be a plain file name", name)
		}
	}
	return nil
}

func verifyTLS(cfg *TLSSection) error {
	if cfg.CertFile == "" {
		return invalid("tls.cert_file is required")
	}
	if cfg.KeyFile == "" {
		return invalid("tls.key_file is required")
	}
	switch cfg.MinVersion {
	case "", "1.2", "1.3":
	default:
		return invalid("tls.min_version must be 1.2 or 1.3, got %q", cfg.MinVersion)
	}
	return nil
}

func verifyAdmin(cfg *AdminSection) error {
	if cfg.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return domain.ErrConfig.WithDetails("admin.addr").WithCause(err)
	}
	for _, entry := range cfg.AllowList {
		if _, _, err := net.ParseCIDR(entry); err == nil {
			continue
		}
		if net.ParseIP(entry) == nil {
			return invalid("admin.allow_list entry %q is not an IP or CIDR", entry)
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return invalid("log.level must be debug, info, warn or error, got %q", cfg.Level)
	}
	switch cfg.Format {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got %q", cfg.Format)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return domain.ErrConfig.WithDetails(fmt.Sprintf(format, args...))
}
