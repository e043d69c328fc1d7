// Package config defines the server configuration structure.
package config

import (
	"net"
	"strconv"
	"time"
)

// ServerConfig is the root configuration for servetls.
type ServerConfig struct {
	Server ServerSection `koanf:"server" json:"server" yaml:"server"`
	TLS    TLSSection    `koanf:"tls" json:"tls" yaml:"tls"`
	Admin  AdminSection  `koanf:"admin" json:"admin" yaml:"admin"`
	Log    LogSection    `koanf:"log" json:"log" yaml:"log"`
}

// ServerSection configures the HTTPS listener and the served directory.
type ServerSection struct {
	Host string `koanf:"host" json:"host" yaml:"host"`
	Port int    `koanf:"port" json:"port" yaml:"port"`

	// Root is the directory served recursively. Fixed at startup.
	Root string `koanf:"root" json:"root" yaml:"root"`

	// IndexFiles are tried in order when a directory is requested.
	IndexFiles []string `koanf:"index_files" json:"index_files" yaml:"index_files"`

	// DirectoryListing enables generated listings for directories without an index file.
	DirectoryListing bool `koanf:"directory_listing" json:"directory_listing" yaml:"directory_listing"`

	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" json:"read_header_timeout" yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `koanf:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" json:"idle_timeout" yaml:"idle_timeout"`
	MaxHeaderBytes    int           `koanf:"max_header_bytes" json:"max_header_bytes" yaml:"max_header_bytes"`

	// MaxConnections caps concurrently accepted connections. 0 means unlimited.
	MaxConnections int `koanf:"max_connections" json:"max_connections" yaml:"max_connections"`

	// MaxBytesPerSecond caps the body rate of a single response. 0 means unlimited.
	MaxBytesPerSecond int `koanf:"max_bytes_per_second" json:"max_bytes_per_second" yaml:"max_bytes_per_second"`
}

// Addr returns the listen address in host:port form.
func (s ServerSection) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// TLSSection configures the server certificate.
type TLSSection struct {
	CertFile string `koanf:"cert_file" json:"cert_file" yaml:"cert_file"`
	KeyFile  string `koanf:"key_file" json:"key_file" yaml:"key_file"`

	// MinVersion is "1.2", "1.3" or empty for the platform default.
	MinVersion string `koanf:"min_version" json:"min_version" yaml:"min_version"`
}

// AdminSection configures the plain-HTTP admin listener.
type AdminSection struct {
	// Addr enables /health, /ready and /metrics when set.
	Addr string `koanf:"addr" json:"addr" yaml:"addr"`

	// AllowList restricts admin clients to these IPs/CIDRs. Empty allows all.
	AllowList []string `koanf:"allow_list" json:"allow_list" yaml:"allow_list"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}
