package tlscert

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"time"

	"github.com/yndnr/servetls/internal/core/domain"
)

// KeyPair is an immutable certificate/key pair loaded at startup.
type KeyPair struct {
	cert *tls.Certificate
}

// Load reads and validates a PEM certificate chain and its private key.
//
// A missing file, malformed PEM or a key that does not match the certificate
// returns domain.ErrCertificate.
func Load(certFile, keyFile string) (*KeyPair, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, domain.ErrCertificate.
			WithDetails("cert="+certFile+" key="+keyFile).
			WithCause(err)
	}
	return newKeyPair(cert)
}

// FromPEM builds a KeyPair from in-memory PEM blocks.
func FromPEM(certPEM, keyPEM []byte) (*KeyPair, error) {
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, domain.ErrCertificate.WithCause(err)
	}
	return newKeyPair(cert)
}

func newKeyPair(cert tls.Certificate) (*KeyPair, error) {
	if cert.Leaf == nil {
		if len(cert.Certificate) == 0 {
			return nil, domain.ErrCertificate.WithCause(errors.New("empty certificate chain"))
		}
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, domain.ErrCertificate.WithCause(err)
		}
		cert.Leaf = leaf
	}
	return &KeyPair{cert: &cert}, nil
}

// GetCertificate returns the loaded certificate.
// This implements tls.Config.GetCertificate.
func (kp *KeyPair) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return kp.cert, nil
}

// Leaf returns the parsed end-entity certificate.
func (kp *KeyPair) Leaf() *x509.Certificate {
	return kp.cert.Leaf
}

// NotAfter returns the expiry of the end-entity certificate.
func (kp *KeyPair) NotAfter() time.Time {
	return kp.cert.Leaf.NotAfter
}
