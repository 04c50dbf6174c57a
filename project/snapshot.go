package project

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// ProjectFile is one accepted source file. Path is unique within a Snapshot.
type ProjectFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Snapshot is either raw code or an ordered file set, never both.
type Snapshot struct {
	Code  string        `json:"code,omitempty"`
	Files []ProjectFile `json:"files,omitempty"`
}

// RawCode builds a text snapshot.
func RawCode(code string) Snapshot {
	return Snapshot{Code: code}
}

// FileSet builds a file-set snapshot. The slice is copied.
func FileSet(files []ProjectFile) Snapshot {
	return Snapshot{Files: append([]ProjectFile(nil), files...)}
}

// IsFileSet reports whether the snapshot carries files rather than raw code.
func (s Snapshot) IsFileSet() bool {
	return len(s.Files) > 0
}

// IsEmpty treats blank raw code and an empty file set alike as "no input".
func (s Snapshot) IsEmpty() bool {
	return len(s.Files) == 0 && strings.TrimSpace(s.Code) == ""
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s Snapshot) Clone() Snapshot {
	if s.IsFileSet() {
		return FileSet(s.Files)
	}
	return RawCode(s.Code)
}

// Digest hashes the snapshot content.
func (s Snapshot) Digest() uint64 {
	h := xxh3.New()
	if s.IsFileSet() {
		for _, f := range s.Files {
			_, _ = h.WriteString(f.Path)
			_, _ = h.Write([]byte{0})
			_, _ = h.WriteString(f.Content)
			_, _ = h.Write([]byte{0})
		}
		return h.Sum64()
	}
	_, _ = h.WriteString(s.Code)
	return h.Sum64()
}

// Label is a short human-readable name for history listings.
func (s Snapshot) Label() string {
	switch {
	case len(s.Files) == 1:
		return s.Files[0].Path
	case len(s.Files) > 1:
		root := s.Files[0].Path
		if i := strings.Index(root, "/"); i > 0 {
			return fmt.Sprintf("%s (%d files)", root[:i], len(s.Files))
		}
		return fmt.Sprintf("%d files", len(s.Files))
	}

	line := strings.TrimSpace(s.Code)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if runes := []rune(line); len(runes) > 40 {
		line = string(runes[:40]) + "..."
	}
	if line == "" {
		return "Snippet"
	}
	return "Snippet: " + line
}

// Identity tags a dispatch with the snapshot it was issued against. Generation changes
// on every input mutation, so identical content acquired twice still compares unequal.
type Identity struct {
	Generation uint64
	Digest     uint64
}
