// Package tlscert handles the server certificate and TLS configuration.
//
// A KeyPair is loaded once at startup and served to every handshake through
// GetCertificate. ServerConfig builds the single shared *tls.Config used by
// the HTTPS listener. Pool collects trusted roots for outbound clients such
// as the probe command, and GenerateSelfSigned produces throwaway pairs for
// local use and tests.
package tlscert
