package outline

import (
	"path"
	"sort"
	"strings"

	"github.com/meysamhadeli/revai/project"
)

var extensionLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".java": "java",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".cs":   "csharp",
	".rs":   "rust",
	".rb":   "ruby",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".h":    "cpp",
}

// GetSupportedLanguage maps a file path to a language tag, or "" when unknown.
func GetSupportedLanguage(filePath string) string {
	return extensionLanguages[strings.ToLower(path.Ext(filePath))]
}

// DetectLanguage picks the most common language of a file set. Ties resolve
// alphabetically. Raw code yields "" since it carries no file names.
func DetectLanguage(snap project.Snapshot) string {
	counts := make(map[string]int)
	for _, f := range snap.Files {
		if lang := GetSupportedLanguage(f.Path); lang != "" {
			counts[lang]++
		}
	}
	if len(counts) == 0 {
		return ""
	}

	langs := make([]string, 0, len(counts))
	for lang := range counts {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if counts[langs[i]] != counts[langs[j]] {
			return counts[langs[i]] > counts[langs[j]]
		}
		return langs[i] < langs[j]
	})
	return langs[0]
}
