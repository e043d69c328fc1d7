// Package app assembles a running servetls process from a ServerConfig:
// certificate, served root, HTTPS listener, optional admin listener and
// the startup banner.
package app
