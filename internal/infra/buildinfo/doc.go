// Package buildinfo exposes the version, commit and build time of the
// servetls binary. The values feed the `version` command and the
// servetls_build_info metric.
package buildinfo
