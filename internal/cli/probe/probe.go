package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yndnr/servetls/internal/infra/buildinfo"
	"github.com/yndnr/servetls/internal/infra/tlscert"
)

// DefaultTimeout bounds the whole probe when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Options configures a probe.
type Options struct {
	// URL is the target. A missing scheme defaults to https://.
	URL string

	// CAFile adds a PEM bundle to the system roots.
	CAFile string

	// Insecure skips certificate verification.
	Insecure bool

	Timeout time.Duration
}

// Report describes one probe result.
type Report struct {
	URL           string        `json:"url" yaml:"url"`
	Status        int           `json:"status" yaml:"status"`
	Protocol      string        `json:"protocol" yaml:"protocol"`
	TLSVersion    string        `json:"tls_version" yaml:"tls_version"`
	CipherSuite   string        `json:"cipher_suite" yaml:"cipher_suite"`
	ALPN          string        `json:"alpn,omitempty" yaml:"alpn,omitempty"`
	Subject       string        `json:"subject" yaml:"subject"`
	Issuer        string        `json:"issuer" yaml:"issuer"`
	DNSNames      []string      `json:"dns_names,omitempty" yaml:"dns_names,omitempty"`
	IPAddresses   []string      `json:"ip_addresses,omitempty" yaml:"ip_addresses,omitempty"`
	NotAfter      time.Time     `json:"not_after" yaml:"not_after"`
	ExpiresIn     time.Duration `json:"expires_in" yaml:"expires_in"`
	Verified      bool          `json:"verified" yaml:"verified"`
	ContentType   string        `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	ContentLength int64         `json:"content_length" yaml:"content_length"`
}

// NormalizeURL adds the https scheme when absent and rejects any other scheme.
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("probe: empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("probe: parse URL: %w", err)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("probe: unsupported scheme %q (want https)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("probe: URL %q has no host", raw)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// Probe issues a GET to opts.URL and reports the negotiated connection.
// The response body is drained and discarded.
func Probe(ctx context.Context, opts Options) (*Report, error) {
	u, err := NormalizeURL(opts.URL)
	if err != nil {
		return nil, err
	}

	pool := tlscert.NewPool()
	if opts.CAFile != "" {
		if err := pool.AddCertFile(opts.CAFile); err != nil {
			return nil, fmt.Errorf("probe: load CA: %w", err)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig:   pool.ClientConfig(u.Hostname(), opts.Insecure),
			DisableKeepAlives: true,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("probe: create request: %w", err)
	}
	req.Header.Set("User-Agent", "servetls-probe/"+buildinfo.Version)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	report := &Report{
		URL:           u.String(),
		Status:        resp.StatusCode,
		Protocol:      resp.Proto,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Verified:      !opts.Insecure,
	}
	if resp.TLS != nil {
		fillTLS(report, resp.TLS)
	}
	return report, nil
}

func fillTLS(r *Report, cs *tls.ConnectionState) {
	r.TLSVersion = tlscert.VersionName(cs.Version)
	r.CipherSuite = tls.CipherSuiteName(cs.CipherSuite)
	r.ALPN = cs.NegotiatedProtocol

	if len(cs.PeerCertificates) == 0 {
		return
	}
	leaf := cs.PeerCertificates[0]
	r.Subject = leaf.Subject.String()
	r.Issuer = leaf.Issuer.String()
	r.DNSNames = leaf.DNSNames
	for _, ip := range leaf.IPAddresses {
		r.IPAddresses = append(r.IPAddresses, ip.String())
	}
	r.NotAfter = leaf.NotAfter
	r.ExpiresIn = time.Until(leaf.NotAfter).Truncate(time.Second)
}
