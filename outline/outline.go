package outline

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/meysamhadeli/revai/project"
	"github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

//go:embed queries/*.json
var queryFiles embed.FS

// Symbol is one declaration found in a file.
type Symbol struct {
	Kind string
	Name string
	Line int
}

// FileOutline lists the symbols of one file.
type FileOutline struct {
	Path     string
	Language string
	Symbols  []Symbol
}

func grammar(language string) *sitter.Language {
	switch language {
	case "go":
		return golang.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "java":
		return java.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "csharp":
		return csharp.GetLanguage()
	}
	return nil
}

func loadQueries(language string) (map[string]string, error) {
	data, err := queryFiles.ReadFile("queries/" + language + ".json")
	if err != nil {
		return nil, err
	}
	queries := make(map[string]string)
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("failed to parse %s queries: %w", language, err)
	}
	return queries, nil
}

// ExtractSymbols parses sourceCode with the grammar for filePath. Unsupported languages
// return no symbols and no error.
func ExtractSymbols(ctx context.Context, filePath string, sourceCode []byte) ([]Symbol, error) {
	language := GetSupportedLanguage(filePath)
	lang := grammar(language)
	if lang == nil {
		return nil, nil
	}

	queries, err := loadQueries(language)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	defer tree.Close()

	var symbols []Symbol
	for kind, pattern := range queries {
		query, err := sitter.NewQuery([]byte(pattern), lang)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s query: %w", kind, err)
		}

		cursor := sitter.NewQueryCursor()
		cursor.Exec(query, tree.RootNode())
		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}
			for _, capture := range match.Captures {
				symbols = append(symbols, Symbol{
					Kind: kind,
					Name: capture.Node.Content(sourceCode),
					Line: int(capture.Node.StartPoint().Row) + 1,
				})
			}
		}
		cursor.Close()
		query.Close()
	}

	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].Line != symbols[j].Line {
			return symbols[i].Line < symbols[j].Line
		}
		return symbols[i].Name < symbols[j].Name
	})
	return symbols, nil
}

// Project outlines every file of a file-set snapshot in order.
func Project(ctx context.Context, snap project.Snapshot) []FileOutline {
	outlines := make([]FileOutline, 0, len(snap.Files))
	for _, f := range snap.Files {
		symbols, err := ExtractSymbols(ctx, f.Path, []byte(f.Content))
		if err != nil {
			logrus.WithField("path", f.Path).Warnf("outline skipped: %v", err)
		}
		outlines = append(outlines, FileOutline{
			Path:     f.Path,
			Language: GetSupportedLanguage(f.Path),
			Symbols:  symbols,
		})
	}
	return outlines
}
