// Package probe connects to an HTTPS endpoint and reports what was
// negotiated: TLS version, cipher suite, peer certificate and the HTTP
// response status. It backs the "servetls probe" command.
package probe
