package config

import "time"

// Default configuration values.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 8080
	DefaultRoot     = "."
	DefaultCertFile = "cert.pem"
	DefaultKeyFile  = "key.pem"

	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultReadTimeout       = 30 * time.Second
	DefaultWriteTimeout      = 5 * time.Minute
	DefaultIdleTimeout       = 60 * time.Second
	DefaultMaxHeaderBytes    = 64 << 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultIndexFiles returns the directory index candidates, in order.
func DefaultIndexFiles() []string {
	return []string{"index.html", "index.htm"}
}

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Host:              DefaultHost,
			Port:              DefaultPort,
			Root:              DefaultRoot,
			IndexFiles:        DefaultIndexFiles(),
			DirectoryListing:  true,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			ReadTimeout:       DefaultReadTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
			MaxHeaderBytes:    DefaultMaxHeaderBytes,
		},
		TLS: TLSSection{
			CertFile: DefaultCertFile,
			KeyFile:  DefaultKeyFile,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
