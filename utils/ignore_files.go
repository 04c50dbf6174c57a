package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

// IgnoreFileName holds extra doublestar globs, one per line, in the project root.
const IgnoreFileName = ".revai-ignore"

// GetIgnorePatterns reads the patterns from .revai-ignore in cwd.
// A missing file yields an empty list; invalid globs are skipped with a warning.
func GetIgnorePatterns(cwd string) ([]string, error) {
	path := filepath.Join(cwd, IgnoreFileName)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", IgnoreFileName, err)
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// "dir/" ignores everything below dir
		if strings.HasSuffix(line, "/") {
			line += "**"
		}
		if !doublestar.ValidatePattern(line) {
			logrus.WithField("pattern", line).Warn("skipping invalid ignore pattern")
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}
	return patterns, nil
}
