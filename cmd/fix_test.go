package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFixed_FileSet(t *testing.T) {
	dir := t.TempDir()
	fixed := &models.FixedContent{FileSet: true, Files: []models.FixedFile{
		{Path: "src/a.go", Content: "package a\n"},
		{Path: "b.go", Content: "package b\n"},
	}}

	require.NoError(t, writeFixed(dir, fixed))

	got, err := os.ReadFile(filepath.Join(dir, "src", "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(got))
	assert.FileExists(t, filepath.Join(dir, "b.go"))
}

func TestWriteFixed_RejectsEscapingPaths(t *testing.T) {
	dir := t.TempDir()
	fixed := &models.FixedContent{FileSet: true, Files: []models.FixedFile{{Path: "../evil.go", Content: "x"}}}

	err := writeFixed(filepath.Join(dir, "out"), fixed)
	assert.ErrorContains(t, err, "outside")
	assert.NoFileExists(t, filepath.Join(dir, "evil.go"))
}

func TestWriteFixed_RawCode(t *testing.T) {
	out := filepath.Join(t.TempDir(), "fixed.ts")
	require.NoError(t, writeFixed(out, &models.FixedContent{Code: "const x = 1;"}))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "const x = 1;", string(got))
}

func TestFixedText(t *testing.T) {
	assert.Equal(t, "code", fixedText(&models.FixedContent{Code: "code"}))
	assert.Equal(t, "File: a.go\nA\n\nFile: b.go\nB", fixedText(&models.FixedContent{FileSet: true, Files: []models.FixedFile{
		{Path: "a.go", Content: "A"},
		{Path: "b.go", Content: "B"},
	}}))
}
