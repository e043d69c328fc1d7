package fileserver

import (
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"syscall"

	"github.com/yndnr/servetls/internal/core/domain"
	"github.com/yndnr/servetls/internal/telemetry/logger"
)

var (
	errNotFound  = domain.ErrNotFound
	errForbidden = domain.ErrForbidden
	errInternal  = domain.ErrInternal
)

// Options configures a Handler.
type Options struct {
	// IndexFiles are tried in order when a directory is requested.
	IndexFiles []string

	// DirectoryListing generates an HTML index when no index file exists.
	// When false such directories return 403.
	DirectoryListing bool

	// MaxBytesPerSecond caps the body rate of each response. 0 disables it.
	MaxBytesPerSecond int

	Logger logger.Logger
}

// Handler serves files beneath a fixed root directory.
type Handler struct {
	root *os.Root
	opts Options
	log  logger.Logger
}

// New opens root and returns a Handler serving it.
// A root that is missing or not a directory returns domain.ErrServedRoot.
func New(root string, opts Options) (*Handler, error) {
	r, err := os.OpenRoot(root)
	if err != nil {
		return nil, domain.ErrServedRoot.WithDetails(root).WithCause(err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Handler{
		root: r,
		opts: opts,
		log:  log,
	}, nil
}

// Close releases the root directory handle.
func (h *Handler) Close() error {
	return h.root.Close()
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusNotImplemented, domain.ErrMethodNotImplemented)
		return
	}

	name, err := CleanPath(r.URL.Path)
	if err != nil {
		logger.L(r.Context(), h.log).Warn("path traversal rejected", "path", r.URL.Path)
		writeError(w, http.StatusForbidden, domain.ErrOutsideRoot)
		return
	}

	f, err := h.root.Open(name)
	if err != nil {
		h.writeOpenError(w, r, name, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.writeOpenError(w, r, name, err)
		return
	}

	if info.IsDir() {
		h.serveDir(w, r, f, name)
		return
	}

	if strings.HasSuffix(r.URL.Path, "/") || !info.Mode().IsRegular() {
		writeError(w, http.StatusNotFound, errNotFound)
		return
	}

	h.serveFile(w, r, f, info)
}

func (h *Handler) serveDir(w http.ResponseWriter, r *http.Request, dir *os.File, name string) {
	if !strings.HasSuffix(r.URL.Path, "/") {
		target := "/"
		if name != "." {
			target += name + "/"
		}
		w.Header().Set("Location", (&url.URL{Path: target, RawQuery: r.URL.RawQuery}).String())
		w.WriteHeader(http.StatusMovedPermanently)
		return
	}

	for _, index := range h.opts.IndexFiles {
		f, err := h.root.Open(path.Join(name, index))
		if err != nil {
			continue
		}
		info, err := f.Stat()
		if err != nil || !info.Mode().IsRegular() {
			f.Close()
			continue
		}
		h.serveFile(w, r, f, info)
		f.Close()
		return
	}

	if !h.opts.DirectoryListing {
		writeError(w, http.StatusForbidden, errForbidden)
		return
	}

	h.serveListing(w, r, dir, name)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, f *os.File, info fs.FileInfo) {
	if h.opts.MaxBytesPerSecond > 0 {
		w = newThrottledWriter(r.Context(), w, h.opts.MaxBytesPerSecond)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// writeOpenError maps a failed open to a status. Paths that leave the root
// through a symlink fail inside os.Root and are reported as forbidden.
func (h *Handler) writeOpenError(w http.ResponseWriter, r *http.Request, name string, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		writeError(w, http.StatusNotFound, errNotFound)
	default:
		logger.L(r.Context(), h.log).Debug("open failed", "path", name, "error", err)
		writeError(w, http.StatusForbidden, errForbidden)
	}
}

// writeError writes a plain-text error page tagged with the error code.
func writeError(w http.ResponseWriter, status int, derr *domain.DomainError) {
	w.Header().Set("X-Error-Code", derr.Code)
	http.Error(w, http.StatusText(status), status)
}
