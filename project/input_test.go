package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textCandidate(relPath, content string) Candidate {
	return Candidate{
		Name:         filepath.Base(relPath),
		RelativePath: relPath,
		Size:         int64(len(content)),
		Read:         func() ([]byte, error) { return []byte(content), nil },
	}
}

type memEntry struct {
	name     string
	data     string
	children []TreeEntry
	err      error
}

func file(name, data string) *memEntry { return &memEntry{name: name, data: data} }

func dir(name string, children ...TreeEntry) *memEntry {
	return &memEntry{name: name, children: children}
}

func (m *memEntry) Name() string { return m.name }
func (m *memEntry) IsLeaf() bool { return m.children == nil }
func (m *memEntry) Size() int64 { return int64(len(m.data)) }
func (m *memEntry) Read() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.data), nil
}
func (m *memEntry) Children() ([]TreeEntry, error) { return m.children, nil }

func paths(files []ProjectFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestUpload_SkipsIgnoredPaths(t *testing.T) {
	in := NewInput(nil)

	report := in.Upload([]Candidate{
		textCandidate("app/main.ts", "export const a = 1"),
		textCandidate("app/node_modules/lib/index.js", "module.exports = {}"),
		textCandidate("app/util.ts", "export const b = 2"),
	})

	snap := in.Snapshot()
	assert.Equal(t, []string{"app/main.ts", "app/util.ts"}, paths(snap.Files))
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, SkipIgnored, report.Skipped[0].Reason)
}

func TestUpload_SizeAndBinaryFilters(t *testing.T) {
	in := NewInput(NewFilter(10, nil))

	in.Upload([]Candidate{
		textCandidate("big.go", "0123456789ABC"),
		textCandidate("logo.png", "x"),
		{Name: "clip", Size: 1, MIMEType: "video/mp4", Read: func() ([]byte, error) { return []byte("x"), nil }},
		textCandidate("nul.txt", "a\x00b"),
		textCandidate("ok.go", "package a"),
	})

	assert.Equal(t, []string{"ok.go"}, paths(in.Snapshot().Files))
}

func TestUpload_ReadFailureSkipsFile(t *testing.T) {
	in := NewInput(nil)

	report := in.Upload([]Candidate{
		{Name: "broken.go", Size: 3, Read: func() ([]byte, error) { return nil, errors.New("denied") }},
		textCandidate("fine.go", "package fine"),
	})

	assert.Equal(t, []string{"fine.go"}, report.Accepted)
	assert.Equal(t, []Skipped{{Path: "broken.go", Reason: SkipReadFailed}}, report.Skipped)
}

func TestUpload_AppendsAcrossBatches(t *testing.T) {
	in := NewInput(nil)

	in.Upload([]Candidate{textCandidate("a.go", "package a")})
	in.Upload([]Candidate{textCandidate("b.go", "package b"), textCandidate("a.go", "package a2")})

	snap := in.Snapshot()
	assert.Equal(t, []string{"a.go", "b.go"}, paths(snap.Files))
	assert.Equal(t, "package a2", snap.Files[0].Content)
}

func TestDrop_DepthFirstWithPrefixes(t *testing.T) {
	in := NewInput(nil)

	in.Drop([]TreeEntry{
		dir("proj",
			file("README.md", "# hi"),
			dir("src",
				file("a.ts", "a"),
				dir("lib", file("b.ts", "b")),
			),
			dir("node_modules", file("x.js", "x")),
			file("z.ts", "z"),
		),
		file("loose.go", "package loose"),
	})

	assert.Equal(t, []string{
		"proj/README.md",
		"proj/src/a.ts",
		"proj/src/lib/b.ts",
		"proj/z.ts",
		"loose.go",
	}, paths(in.Snapshot().Files))
	assert.Equal(t, "b.ts", in.Snapshot().Files[2].Name)
}

func TestDrop_ReadFailureIsNotFatal(t *testing.T) {
	in := NewInput(nil)

	report := in.Drop([]TreeEntry{
		dir("p", &memEntry{name: "bad.go", err: errors.New("io")}, file("good.go", "package good")),
	})

	assert.Equal(t, []string{"p/good.go"}, report.Accepted)
}

func TestDragTracker_NestedEnterLeave(t *testing.T) {
	var d DragTracker

	d.Enter()
	d.Enter()
	d.Leave()
	assert.True(t, d.Dragging())

	d.Leave()
	assert.False(t, d.Dragging())

	d.Leave()
	assert.False(t, d.Dragging())

	d.Enter()
	d.Enter()
	d.Dropped()
	assert.False(t, d.Dragging())
}

func TestInput_TextAndFilesAreExclusive(t *testing.T) {
	in := NewInput(nil)
	exclusive := func() {
		snap := in.Snapshot()
		assert.False(t, snap.Code != "" && len(snap.Files) > 0, "snapshot carries both text and files")
	}

	steps := []func(){
		func() { in.SetText("const x = 1") },
		func() { in.Upload([]Candidate{textCandidate("a.go", "package a")}) },
		func() { in.SetText("") },
		func() { in.SetText("let y") },
		func() { in.Drop([]TreeEntry{dir("d", file("b.go", "package b"))}) },
		func() { in.Upload([]Candidate{textCandidate("node_modules/x.js", "x")}) },
		func() { in.Replace(RawCode("print(1)")) },
		func() { in.Replace(FileSet([]ProjectFile{{Name: "c.go", Path: "c.go", Content: "package c"}})) },
		func() { in.SetText("again") },
		func() { in.Reset() },
	}
	for _, step := range steps {
		step()
		exclusive()
	}

	assert.True(t, in.Snapshot().IsEmpty())
}

func TestInput_EmptyBatchKeepsText(t *testing.T) {
	in := NewInput(nil)
	in.SetText("const x = 1")

	in.Upload([]Candidate{textCandidate(".git/config", "[core]")})

	assert.Equal(t, "const x = 1", in.Snapshot().Code)
}

func TestInput_IdentityChangesOnEveryMutation(t *testing.T) {
	in := NewInput(nil)
	var seen []ChangeKind
	in.OnChange(func(_ Identity, kind ChangeKind) { seen = append(seen, kind) })

	first := in.Identity()
	in.SetText("a")
	second := in.Identity()
	in.SetText("a")
	third := in.Identity()

	assert.NotEqual(t, first, second)
	assert.Equal(t, second.Digest, third.Digest)
	assert.NotEqual(t, second.Generation, third.Generation)

	in.Reset()
	assert.Equal(t, []ChangeKind{ChangeText, ChangeText, ChangeReset}, seen)
}

func TestSnapshot_EmptyAndLabel(t *testing.T) {
	assert.True(t, RawCode("  \n").IsEmpty())
	assert.True(t, FileSet(nil).IsEmpty())
	assert.False(t, RawCode("x").IsEmpty())

	assert.Equal(t, "Snippet: const x = 1", RawCode("const x = 1\nfoo()").Label())
	assert.Equal(t, "a.go", FileSet([]ProjectFile{{Path: "a.go"}}).Label())
	assert.Equal(t, "proj (2 files)", FileSet([]ProjectFile{{Path: "proj/a.go"}, {Path: "proj/b.go"}}).Label())
}

func TestSnapshot_LabelTruncatesOnRuneBoundary(t *testing.T) {
	line := "// " + strings.Repeat("مرحبا ", 10)
	label := RawCode(line + "\nx").Label()

	assert.True(t, utf8.ValidString(label))
	assert.Equal(t, "Snippet: "+string([]rune(line)[:40])+"...", label)

	short := "// مرحبا"
	assert.Equal(t, "Snippet: "+short, RawCode(short).Label())
}

func TestAcquire_LocalPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "node_modules"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "node_modules", "x.js"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "single.py"), []byte("print(1)"), 0644))

	in := NewInput(nil)
	report, err := in.Acquire([]string{filepath.Join(root, "single.py"), filepath.Join(root, "src")})
	require.NoError(t, err)

	assert.Equal(t, []string{"single.py", "src/main.go"}, report.Accepted)
	assert.Equal(t, []string{"single.py", "src/main.go"}, paths(in.Snapshot().Files))
}

func TestFilter_Globs(t *testing.T) {
	f := NewFilter(0, []string{"**/*.min.js", "vendor/**"})

	assert.True(t, f.Ignored("web/app.min.js"))
	assert.True(t, f.Ignored("vendor/pkg/a.go"))
	assert.False(t, f.Ignored("web/app.js"))
	assert.Equal(t, DefaultMaxFileSize, f.MaxFileSize)
}
