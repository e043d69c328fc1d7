// Package config provides the servetls server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values (localhost:8080, cert.pem, key.pem, ".")
//   - verify.go: validation (port range, served root, timeouts, TLS floor)
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
package config
