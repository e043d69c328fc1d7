// Package command defines the servetls command-line interface.
//
// It uses urfave/cli/v2. Running the binary without a subcommand serves
// files, so "servetls" alone behaves like "servetls serve".
//
// Commands:
//   - serve: start the HTTPS file server
//   - probe: connect to an HTTPS endpoint and report the negotiated TLS session
//   - gencert: write a self-signed certificate and key
//   - config: print or check the effective server configuration
//   - version: print build information
package command
