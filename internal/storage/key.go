package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// suffixLen is the random part of a ULID (its last 16 characters).
const suffixLen = 16

// NewKey builds "{field}-{epochMillis}-{suffix}{ext}".
// The suffix keeps two uploads in the same millisecond apart.
func NewKey(field, ext string, now time.Time) string {
	id := ulid.Make().String()
	suffix := strings.ToLower(id[len(id)-suffixLen:])
	return fmt.Sprintf("%s-%d-%s%s", field, now.UnixMilli(), suffix, normalizeExt(ext))
}

// ExtFromName returns the lower-cased extension of an uploaded file name.
func ExtFromName(name string) string {
	return normalizeExt(filepath.Ext(name))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
