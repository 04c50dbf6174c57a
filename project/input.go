package project

import (
	"path"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// ChangeKind tells listeners what kind of mutation produced a new Identity.
type ChangeKind int

const (
	ChangeText ChangeKind = iota
	ChangeFiles
	ChangeReplace
	ChangeReset
)

// Skipped records a candidate that did not make it into the snapshot.
type Skipped struct {
	Path   string
	Reason SkipReason
}

// Report summarizes one acquisition batch.
type Report struct {
	Accepted []string
	Skipped  []Skipped
}

// Input owns the current Snapshot and keeps raw text and file set mutually exclusive.
type Input struct {
	filter *Filter
	Drag   DragTracker

	mu         sync.RWMutex
	code       string
	files      []ProjectFile
	generation uint64
	listeners  []func(Identity, ChangeKind)
}

// NewInput builds an empty Input. A nil filter selects the default policy.
func NewInput(filter *Filter) *Input {
	if filter == nil {
		filter = NewFilter(0, nil)
	}
	return &Input{filter: filter}
}

// OnChange registers fn to run after every mutation, outside the Input lock.
func (in *Input) OnChange(fn func(Identity, ChangeKind)) {
	in.mu.Lock()
	in.listeners = append(in.listeners, fn)
	in.mu.Unlock()
}

// Snapshot returns a copy of the current snapshot.
func (in *Input) Snapshot() Snapshot {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.snapshotLocked()
}

// Identity returns the identity of the current snapshot.
func (in *Input) Identity() Identity {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return Identity{Generation: in.generation, Digest: in.snapshotLocked().Digest()}
}

// Current returns the snapshot together with its identity under one lock.
func (in *Input) Current() (Snapshot, Identity) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	snap := in.snapshotLocked()
	return snap, Identity{Generation: in.generation, Digest: snap.Digest()}
}

func (in *Input) snapshotLocked() Snapshot {
	if len(in.files) > 0 {
		return FileSet(in.files)
	}
	return RawCode(in.code)
}

// SetText replaces the manual text. Non-empty text clears the file set.
func (in *Input) SetText(text string) {
	in.mutate(ChangeText, func() {
		in.code = text
		if text != "" {
			in.files = nil
		}
	})
}

// Upload reads click-upload candidates in order and appends the accepted ones.
// Read failures skip the file; the rest of the batch continues.
func (in *Input) Upload(candidates []Candidate) Report {
	var report Report
	var accepted []ProjectFile

	for _, c := range candidates {
		relPath := c.path()
		if reason := in.filter.check(relPath, c.Size, c.MIMEType); reason != "" {
			report.skip(relPath, reason, c.Size)
			continue
		}

		content, err := c.Read()
		if err != nil {
			logrus.WithField("path", relPath).Warnf("could not read file: %v", err)
			report.skip(relPath, SkipReadFailed, c.Size)
			continue
		}
		if BinaryByContent(content) {
			report.skip(relPath, SkipBinary, c.Size)
			continue
		}

		accepted = append(accepted, ProjectFile{Name: c.Name, Path: relPath, Content: string(content)})
		report.Accepted = append(report.Accepted, relPath)
	}

	in.appendFiles(accepted)
	return report
}

// Drop expands entries depth-first and appends every accepted file in one step.
func (in *Input) Drop(entries []TreeEntry) Report {
	in.Drag.Dropped()

	var report Report
	var accepted []ProjectFile
	for _, entry := range entries {
		in.walk(entry, "", &accepted, &report)
	}

	in.appendFiles(accepted)
	return report
}

func (in *Input) walk(entry TreeEntry, prefix string, accepted *[]ProjectFile, report *Report) {
	relPath := prefix + entry.Name()

	if !entry.IsLeaf() {
		if in.filter.Ignored(relPath + "/") {
			report.skip(relPath, SkipIgnored, 0)
			return
		}
		children, err := entry.Children()
		if err != nil {
			logrus.WithField("path", relPath).Warnf("could not list directory: %v", err)
			report.skip(relPath, SkipReadFailed, 0)
			return
		}
		for _, child := range children {
			in.walk(child, relPath+"/", accepted, report)
		}
		return
	}

	if reason := in.filter.check(relPath, entry.Size(), ""); reason != "" {
		report.skip(relPath, reason, entry.Size())
		return
	}

	content, err := entry.Read()
	if err != nil {
		logrus.WithField("path", relPath).Warnf("could not read file: %v", err)
		report.skip(relPath, SkipReadFailed, entry.Size())
		return
	}
	if BinaryByContent(content) {
		report.skip(relPath, SkipBinary, entry.Size())
		return
	}

	*accepted = append(*accepted, ProjectFile{Name: path.Base(relPath), Path: relPath, Content: string(content)})
	report.Accepted = append(report.Accepted, relPath)
}

// appendFiles merges a batch into the file set. A path already present is replaced in place.
// A batch with at least one file clears the manual text.
func (in *Input) appendFiles(batch []ProjectFile) {
	if len(batch) == 0 {
		return
	}

	in.mutate(ChangeFiles, func() {
		index := make(map[string]int, len(in.files))
		for i, f := range in.files {
			index[f.Path] = i
		}
		for _, f := range batch {
			if i, ok := index[f.Path]; ok {
				in.files[i] = f
				continue
			}
			index[f.Path] = len(in.files)
			in.files = append(in.files, f)
		}
		in.code = ""
	})
}

// Replace installs snap wholesale, as history restoration does.
func (in *Input) Replace(snap Snapshot) {
	snap = snap.Clone()
	in.mutate(ChangeReplace, func() {
		in.code = ""
		in.files = nil
		if snap.IsFileSet() {
			in.files = snap.Files
		} else {
			in.code = snap.Code
		}
	})
}

// Reset clears text and files.
func (in *Input) Reset() {
	in.mutate(ChangeReset, func() {
		in.code = ""
		in.files = nil
	})
}

func (in *Input) mutate(kind ChangeKind, fn func()) {
	in.mu.Lock()
	fn()
	in.generation++
	id := Identity{Generation: in.generation, Digest: in.snapshotLocked().Digest()}
	listeners := append([]func(Identity, ChangeKind){}, in.listeners...)
	in.mu.Unlock()

	for _, l := range listeners {
		l(id, kind)
	}
}

func (r *Report) skip(relPath string, reason SkipReason, size int64) {
	r.Skipped = append(r.Skipped, Skipped{Path: relPath, Reason: reason})

	entry := logrus.WithFields(logrus.Fields{"path": relPath, "reason": reason})
	if reason == SkipTooLarge {
		entry = entry.WithField("size", humanize.Bytes(uint64(size)))
	}
	entry.Debug("skipped file")
}
