// Package domain defines the error model for servetls.
//
// Every failure that crosses a package boundary is a *DomainError with a
// stable code. Startup failures fall into two classes that callers test for:
//
//   - ConfigError (SV-CONF-*): invalid settings, unreadable served root,
//     missing or mismatched certificate/key
//   - BindError (SV-NET-*): the listen address is unavailable
//
// Per-request outcomes (SV-FS-*, SV-HTTP-*) map onto HTTP status codes in
// the file server.
package domain
