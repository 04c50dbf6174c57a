package project

import (
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

// osEntry adapts a path on the local filesystem to TreeEntry.
type osEntry struct {
	path string
	info fs.FileInfo
}

// NewTreeEntry wraps a file or directory on disk.
func NewTreeEntry(path string) (TreeEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return &osEntry{path: path, info: info}, nil
}

func (e *osEntry) Name() string { return e.info.Name() }
func (e *osEntry) IsLeaf() bool { return !e.info.IsDir() }
func (e *osEntry) Size() int64 { return e.info.Size() }

func (e *osEntry) Read() ([]byte, error) {
	return os.ReadFile(e.path)
}

// Children lists directory entries in file-name order, as os.ReadDir returns them.
func (e *osEntry) Children() ([]TreeEntry, error) {
	dirEntries, err := os.ReadDir(e.path)
	if err != nil {
		return nil, err
	}

	children := make([]TreeEntry, 0, len(dirEntries))
	for _, d := range dirEntries {
		info, err := d.Info()
		if err != nil {
			continue
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			continue
		}
		children = append(children, &osEntry{path: filepath.Join(e.path, d.Name()), info: info})
	}
	return children, nil
}

// NewCandidate describes a single file on disk for click-upload.
func NewCandidate(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}

	return Candidate{
		Name:     info.Name(),
		Size:     info.Size(),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Read: func() ([]byte, error) {
			return os.ReadFile(path)
		},
	}, nil
}

// Acquire routes local paths to the matching channel: directories are dropped as trees,
// files are uploaded as one flat batch.
func (in *Input) Acquire(paths []string) (Report, error) {
	var candidates []Candidate
	var trees []TreeEntry

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return Report{}, fmt.Errorf("failed to access %s: %w", p, err)
		}
		if info.IsDir() {
			entry, err := NewTreeEntry(p)
			if err != nil {
				return Report{}, err
			}
			trees = append(trees, entry)
			continue
		}
		c, err := NewCandidate(p)
		if err != nil {
			return Report{}, err
		}
		candidates = append(candidates, c)
	}

	var report Report
	if len(candidates) > 0 {
		r := in.Upload(candidates)
		report.Accepted = append(report.Accepted, r.Accepted...)
		report.Skipped = append(report.Skipped, r.Skipped...)
	}
	if len(trees) > 0 {
		r := in.Drop(trees)
		report.Accepted = append(report.Accepted, r.Accepted...)
		report.Skipped = append(report.Skipped, r.Skipped...)
	}
	return report, nil
}
