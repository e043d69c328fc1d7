package fileserver

import (
	"path"
	"strings"

	"github.com/yndnr/servetls/internal/core/domain"
)

// CleanPath converts a decoded URL path into a name relative to the served root.
//
// Any ".." segment, a NUL byte or a backslash-separated ".." returns
// domain.ErrOutsideRoot. The root itself is returned as ".".
func CleanPath(urlPath string) (string, error) {
	if strings.IndexByte(urlPath, 0) >= 0 {
		return "", domain.ErrOutsideRoot.WithDetails("NUL in path")
	}

	segments := strings.FieldsFunc(urlPath, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, seg := range segments {
		if seg == ".." {
			return "", domain.ErrOutsideRoot.WithDetails(urlPath)
		}
	}

	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return ".", nil
	}
	return name, nil
}
