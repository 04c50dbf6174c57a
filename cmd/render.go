package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/meysamhadeli/revai/constants/lipgloss"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/utils"
)

// renderResult prints a settled analysis. Prose goes through glamour, scores through lipgloss.
func renderResult(w io.Writer, r models.Result, theme string, language string) {
	var md strings.Builder
	switch r.Kind {
	case models.KindReview:
		if r.Review == nil {
			return
		}
		writeReview(&md, r.Review, language)
	case models.KindSecurityAudit:
		if r.Security == nil {
			return
		}
		writeSecurity(&md, r.Security, language)
	case models.KindPerformanceAudit:
		if r.Performance == nil {
			return
		}
		writePerformance(&md, r.Performance, language)
	case models.KindExplanation:
		if r.Explanation == nil {
			return
		}
		writeExplanation(&md, r.Explanation)
	case models.KindGrowth:
		if r.Growth == nil {
			return
		}
		writeGrowth(&md, r.Growth, language)
	default:
		return
	}

	title := kindTitles[r.Kind]
	if score, ok := r.Score(); ok {
		title = fmt.Sprintf("%s  %s", title, lipgloss.ScoreStyle(score).Render(fmt.Sprintf("%.0f/100", score)))
	}
	fmt.Fprintln(w, lipgloss.BoxStyle.Render(title))
	fmt.Fprint(w, utils.RenderMarkdown(md.String(), theme))
}

func fence(md *strings.Builder, code string, language string) {
	if strings.TrimSpace(code) == "" {
		return
	}
	fmt.Fprintf(md, "```%s\n%s\n```\n\n", language, strings.TrimRight(code, "\n"))
}

func writeReview(md *strings.Builder, r *models.Review, language string) {
	fmt.Fprintf(md, "%s\n\n", r.ExecutiveSummary)
	for _, c := range r.Categories.Named() {
		fmt.Fprintf(md, "## %s (%.0f)\n\n%s\n\n", strings.ToUpper(c.Name[:1])+c.Name[1:], c.Score, c.Summary)
		for _, f := range c.Findings {
			fmt.Fprintf(md, "- **[%s] %s**", f.Severity, f.Issue)
			if f.LineReference != "" {
				fmt.Fprintf(md, " _(%s)_", f.LineReference)
			}
			fmt.Fprintf(md, "\n\n  %s\n\n", f.Description)
			fence(md, f.SuggestedFix, language)
		}
	}
}

func writeSecurity(md *strings.Builder, a *models.SecurityAudit, language string) {
	if len(a.Vulnerabilities) == 0 {
		md.WriteString("No vulnerabilities found.\n\n")
	}
	for _, v := range a.Vulnerabilities {
		fmt.Fprintf(md, "## [%s] %s", v.Severity, v.Type)
		if v.CWE != "" {
			fmt.Fprintf(md, " (%s)", v.CWE)
		}
		fmt.Fprintf(md, "\n\n%s\n\n**Attack vector:** %s\n\n**Mitigation:**\n\n", v.Description, v.AttackVector)
		if strings.Contains(v.Mitigation, "\n") {
			fence(md, v.Mitigation, language)
		} else {
			fmt.Fprintf(md, "%s\n\n", v.Mitigation)
		}
	}
	fmt.Fprintf(md, "## Data sensitivity\n\n%s\n\n## Compliance\n\n%s\n", a.DataSensitivityAnalysis, a.ComplianceSummary)
}

func writePerformance(md *strings.Builder, a *models.PerformanceAudit, language string) {
	if len(a.Bottlenecks) == 0 {
		md.WriteString("No bottlenecks found.\n\n")
	}
	for _, b := range a.Bottlenecks {
		fmt.Fprintf(md, "## [%s] %s: %s\n\n", b.Impact, b.Area, b.Bottleneck)
		if b.Complexity != "" {
			fmt.Fprintf(md, "Complexity: `%s`\n\n", b.Complexity)
		}
		fmt.Fprintf(md, "%s\n\n", b.Optimization)
		fence(md, b.OptimizedCode, language)
	}
	fmt.Fprintf(md, "## Resources\n\n%s\n\n## Scalability\n\n%s\n", a.ResourceAnalysis, a.ScalabilityVerdict)
}

func writeExplanation(md *strings.Builder, e *models.Explanation) {
	fmt.Fprintf(md, "# %s\n\n%s\n\n", e.Title, e.BriefSummary)
	if len(e.TechStack) > 0 {
		fmt.Fprintf(md, "**Tech stack:** %s\n\n", strings.Join(e.TechStack, ", "))
	}
	fmt.Fprintf(md, "**Pattern:** %s\n\n## Core flow\n\n%s\n\n", e.ArchitecturePattern, e.CoreLogicFlow)
	if len(e.KeyModules) > 0 {
		md.WriteString("## Key modules\n\n")
		for _, m := range e.KeyModules {
			fmt.Fprintf(md, "- **%s**: %s\n", m.Name, m.Responsibility)
		}
	}
}

func writeGrowth(md *strings.Builder, g *models.GrowthSuggestions, language string) {
	fmt.Fprintf(md, "_%s_\n\n", g.VisionStatement)
	for _, s := range g.Suggestions {
		fmt.Fprintf(md, "## %s\n\n%s · impact %s · complexity %s\n\n%s\n\n%s\n\n",
			s.Title, s.Category, s.Impact, s.Complexity, s.Description, s.Reasoning)
		fence(md, s.SuggestedCode, language)
	}
}

// renderFixed prints fixed code with syntax highlighting, one section per file.
func renderFixed(w io.Writer, fixed *models.FixedContent, theme string, language string) error {
	if !fixed.FileSet {
		return utils.RenderCode(w, fixed.Code, "", language, theme)
	}
	if len(fixed.Files) == 0 {
		fmt.Fprintln(w, lipgloss.Gray.Render("No files needed changes."))
		return nil
	}
	for _, f := range fixed.Files {
		fmt.Fprintln(w, lipgloss.BlueSky.Render("File: "+f.Path))
		if err := utils.RenderCode(w, f.Content, f.Path, language, theme); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}
