package fileserver

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/yndnr/servetls/internal/telemetry/logger"
)

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE HTML>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Directory listing for {{.Path}}</title>
</head>
<body>
<h1>Directory listing for {{.Path}}</h1>
<hr>
<ul>
{{- range .Entries}}
<li><a href="{{.Href}}">{{.Display}}</a></li>
{{- end}}
</ul>
<hr>
</body>
</html>
`))

type listingEntry struct {
	Href    string
	Display string
}

type listingPage struct {
	Path    string
	Entries []listingEntry
}

// serveListing writes an HTML index of the directory name.
// Directories get a trailing "/" and symlinks a trailing "@".
func (h *Handler) serveListing(w http.ResponseWriter, r *http.Request, dir fs.ReadDirFile, name string) {
	entries, err := dir.ReadDir(-1)
	if err != nil {
		logger.L(r.Context(), h.log).Debug("read directory failed", "path", name, "error", err)
		writeError(w, http.StatusNotFound, errNotFound)
		return
	}

	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})

	page := listingPage{Path: r.URL.Path}
	for _, e := range entries {
		display, link := e.Name(), entryHref(e.Name())
		if h.isDir(path.Join(name, e.Name()), e) {
			display += "/"
			link += "/"
		}
		if e.Type()&fs.ModeSymlink != 0 {
			display = e.Name() + "@"
		}
		page.Entries = append(page.Entries, listingEntry{
			Href:    link,
			Display: display,
		})
	}

	var buf bytes.Buffer
	if err := listingTemplate.Execute(&buf, page); err != nil {
		logger.L(r.Context(), h.log).Error("render listing failed", "path", name, "error", err)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}

// entryHref escapes name as one relative path segment. ":" is escaped too,
// otherwise "a:b.txt" would parse as a URL with scheme "a".
func entryHref(name string) string {
	return strings.ReplaceAll(url.PathEscape(name), ":", "%3A")
}

// isDir follows symlinks that stay inside the root.
func (h *Handler) isDir(name string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := h.root.Stat(name)
	return err == nil && info.IsDir()
}
