// Package covers stores uploaded poster images. Upload failures are not
// fatal: the store reports a failure result and the caller proceeds with
// "no poster change" rather than aborting the whole submission.
package covers

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Result reports the outcome of one upload.
type Result struct {
	Stored bool   // false means the poster must not change
	Name   string // stored file name, "" when not stored
}

// Store writes posters into a flat directory on local disk.
type Store struct {
	dir string
}

// NewStore builds a Store rooted at dir, creating it if needed. A nil
// store is returned when the directory cannot be prepared; callers treat
// that like a permanently failing upload.
func NewStore(dir string) *Store {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("covers: cannot prepare dir %s: %v", dir, err)
		return nil
	}
	return &Store{dir: dir}
}

// Save writes the poster bytes under a sanitized name. Any failure is
// logged and reported as a non-stored result.
func (s *Store) Save(r io.Reader, name, contentType string) Result {
	if s == nil {
		return Result{}
	}
	safe := SafeFileName(name, contentType)
	if safe == "" {
		log.Printf("covers: rejected file name %q", name)
		return Result{}
	}
	f, err := os.Create(filepath.Join(s.dir, safe))
	if err != nil {
		log.Printf("covers: create %s failed: %v", safe, err)
		return Result{}
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		log.Printf("covers: write %s failed: %v", safe, err)
		_ = os.Remove(filepath.Join(s.dir, safe))
		return Result{}
	}
	return Result{Stored: true, Name: safe}
}

// extByType maps accepted poster content types to their file extension.
// Anything else is rejected.
var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SafeFileName lowercases the name, strips any path component, replaces
// everything outside [a-z0-9._-] with underscores and forces the extension
// implied by the content type. It returns "" for unsupported content types
// or names that sanitize to nothing.
func SafeFileName(name, contentType string) string {
	ext, ok := extByType[contentType]
	if !ok {
		return ""
	}
	base := strings.ToLower(filepath.Base(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	cleaned := strings.Trim(b.String(), "._-")
	if cleaned == "" {
		return ""
	}
	return cleaned + ext
}
