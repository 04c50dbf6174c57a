package project

import (
	"bytes"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSize is the per-file ceiling applied to every acquisition channel.
const DefaultMaxFileSize int64 = 800 * 1024

// DefaultIgnoreList entries are matched as plain substrings of the relative path.
var DefaultIgnoreList = []string{
	"node_modules",
	".git",
	"dist",
	"build",
	".next",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
}

var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".webp": true,
	".bmp": true, ".svgz": true, ".pdf": true, ".zip": true, ".gz": true, ".tar": true,
	".tgz": true, ".7z": true, ".rar": true, ".exe": true, ".dll": true, ".so": true,
	".dylib": true, ".bin": true, ".class": true, ".jar": true, ".wasm": true, ".o": true,
	".a": true, ".pyc": true, ".mp3": true, ".wav": true, ".ogg": true, ".flac": true,
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true, ".woff": true,
	".woff2": true, ".ttf": true, ".otf": true, ".eot": true, ".db": true, ".sqlite": true,
}

var binaryMIMEPrefixes = []string{"image/", "audio/", "video/"}

// SkipReason explains why a candidate was not accepted.
type SkipReason string

const (
	SkipIgnored    SkipReason = "ignored"
	SkipTooLarge   SkipReason = "too_large"
	SkipBinary     SkipReason = "binary"
	SkipReadFailed SkipReason = "read_failed"
)

// Filter decides which candidates make it into a snapshot.
type Filter struct {
	IgnoreList  []string
	IgnoreGlobs []string
	MaxFileSize int64
}

// NewFilter returns the default policy plus optional doublestar globs.
// A non-positive maxFileSize selects DefaultMaxFileSize.
func NewFilter(maxFileSize int64, globs []string) *Filter {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Filter{
		IgnoreList:  append([]string(nil), DefaultIgnoreList...),
		IgnoreGlobs: append([]string(nil), globs...),
		MaxFileSize: maxFileSize,
	}
}

// Ignored reports whether relPath hits the ignore list or a glob.
func (f *Filter) Ignored(relPath string) bool {
	for _, entry := range f.IgnoreList {
		if strings.Contains(relPath, entry) {
			return true
		}
	}
	for _, glob := range f.IgnoreGlobs {
		if ok, _ := doublestar.Match(glob, relPath); ok {
			return true
		}
	}
	return false
}

// TooLarge reports whether size exceeds the ceiling.
func (f *Filter) TooLarge(size int64) bool {
	return size > f.MaxFileSize
}

// BinaryByName checks the extension denylist.
func BinaryByName(name string) bool {
	return binaryExtensions[strings.ToLower(path.Ext(name))]
}

// BinaryByMIME checks for image, audio and video types.
func BinaryByMIME(mimeType string) bool {
	mimeType = strings.ToLower(mimeType)
	for _, prefix := range binaryMIMEPrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

// BinaryByContent scans for a NUL byte.
func BinaryByContent(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}

// check applies the pre-read filters and returns a skip reason, or "" to continue.
func (f *Filter) check(relPath string, size int64, mimeType string) SkipReason {
	switch {
	case f.Ignored(relPath):
		return SkipIgnored
	case f.TooLarge(size):
		return SkipTooLarge
	case BinaryByName(relPath) || BinaryByMIME(mimeType):
		return SkipBinary
	}
	return ""
}
