package tlscert

import (
	"crypto/tls"
	"fmt"

	"github.com/yndnr/servetls/internal/core/domain"
)

// ParseMinVersion maps "1.2" and "1.3" to TLS version constants.
// An empty string returns 0, leaving the floor to the platform default.
func ParseMinVersion(s string) (uint16, error) {
	switch s {
	case "":
		return 0, nil
	case "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	}
	return 0, domain.ErrConfig.WithDetails(fmt.Sprintf("unsupported tls.min_version %q", s))
}

// VersionName returns a human-readable TLS version.
func VersionName(v uint16) string {
	switch v {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	}
	return fmt.Sprintf("0x%04x", v)
}

// ServerConfig builds the server-side TLS configuration.
//
// Clients are not asked for a certificate and only HTTP/1.1 is offered via
// ALPN. Cipher suites are left to the platform defaults.
func ServerConfig(kp *KeyPair, minVersion string) (*tls.Config, error) {
	if kp == nil {
		return nil, domain.ErrCertificate.WithDetails("no key pair")
	}
	floor, err := ParseMinVersion(minVersion)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		GetCertificate: kp.GetCertificate,
		ClientAuth:     tls.NoClientCert,
		NextProtos:     []string{"http/1.1"},
		MinVersion:     floor,
	}, nil
}
