// Package fileserver serves a directory tree over HTTP.
//
// Every file is opened through an os.Root bound to the served directory, so
// neither ".." segments nor symlinks can reach outside it. Request paths
// containing ".." are rejected with 403 before touching the filesystem.
//
// Regular files are written with http.ServeContent, which supplies the
// content type, Last-Modified, conditional requests and byte ranges.
// Directories serve the first existing index file or a generated listing.
// Only GET and HEAD are implemented.
package fileserver
