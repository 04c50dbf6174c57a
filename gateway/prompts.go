package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/project"
)

const NoProjectContext = "No project code uploaded yet."

var instructions = map[models.Kind]string{
	models.KindReview: `You are a Senior Staff Software Engineer at a FAANG company. ` +
		`Analyze the {{language}} code and provide a JSON review. {{{locale}}}`,
	models.KindSecurityAudit: `You are a Principal Application Security Engineer. ` +
		`Audit the {{language}} code for vulnerabilities, map each to a CWE where one applies ` +
		`and describe the attack vector and mitigation. Return JSON. {{{locale}}}`,
	models.KindPerformanceAudit: `You are a Principal Performance Engineer. ` +
		`Find the bottlenecks in the {{language}} code, state their complexity and impact ` +
		`and provide optimized code for each. Return JSON. {{{locale}}}`,
	models.KindExplanation: `You are a CTO explaining a {{language}} codebase. ` +
		`Identify hidden patterns. Return JSON. {{{locale}}}`,
	models.KindGrowth: `You are a Product Manager and a Principal Engineer at a top tech firm. ` +
		`Analyze the {{language}} project and suggest strategic improvements. ` +
		`For each suggestion, provide a concrete code snippet (suggestedCode) that demonstrates the implementation logic. {{{locale}}}`,
	models.KindFix: `Refactor the {{language}} code based on the review. Maintain style. ` +
		`Minimal changes. Keep code in original programming language.` +
		`{{#fileSet}} Return every file you change with its original path.{{/fileSet}}`,
	models.KindChat: `You are a Senior Staff Software Engineer consulting on a codebase. ` +
		`Answer the developer's questions using the project context below. {{{locale}}}` +
		"\n\nProject context:\n{{{context}}}",
}

// LocaleDirective tells the model which language to write prose in.
func LocaleDirective(locale string) string {
	if strings.EqualFold(locale, "ar") {
		return "IMPORTANT: Respond ONLY in Arabic."
	}
	return "Respond in English."
}

func instruction(kind models.Kind, opts models.Options, extra map[string]any) (string, error) {
	tpl, ok := instructions[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	language := opts.Language
	if language == "" {
		language = "source"
	}
	data := map[string]any{"language": language, "locale": LocaleDirective(opts.Locale)}
	for k, v := range extra {
		data[k] = v
	}
	out, err := mustache.Render(tpl, data)
	if err != nil {
		return "", fmt.Errorf("error rendering %s instruction: %w", kind, err)
	}
	return out, nil
}

func renderFiles(files []project.ProjectFile, format string) string {
	parts := make([]string, len(files))
	for i, f := range files {
		parts[i] = fmt.Sprintf(format, f.Path, f.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Payload serializes a snapshot for an analysis request.
func Payload(snapshot project.Snapshot) string {
	if snapshot.IsFileSet() {
		return "Project Files:\n" + renderFiles(snapshot.Files, "%s:\n%s")
	}
	return "Code:\n" + snapshot.Code
}

func fixPayload(snapshot project.Snapshot, review *models.Review) (string, error) {
	encoded, err := json.Marshal(review)
	if err != nil {
		return "", fmt.Errorf("error encoding review: %w", err)
	}
	body := snapshot.Code
	if snapshot.IsFileSet() {
		body = renderFiles(snapshot.Files, "%s:\n%s")
	}
	return fmt.Sprintf("Review: %s\n\nCode:\n%s", encoded, body), nil
}

// ChatContext derives the chat context string from the current snapshot.
func ChatContext(snapshot project.Snapshot) string {
	if snapshot.IsEmpty() {
		return NoProjectContext
	}
	if snapshot.IsFileSet() {
		return renderFiles(snapshot.Files, "File %s:\n%s")
	}
	return snapshot.Code
}
