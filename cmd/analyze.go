package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/meysamhadeli/revai/constants/lipgloss"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/orchestrator"
	"github.com/meysamhadeli/revai/project"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var spinnerSequence = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func newSpinner() *pterm.SpinnerPrinter {
	return pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence(spinnerSequence...).WithDelay(100).WithRemoveWhenDone(true)
}

var kindTitles = map[models.Kind]string{
	models.KindReview:           "Code Review",
	models.KindSecurityAudit:    "Security Audit",
	models.KindPerformanceAudit: "Performance Audit",
	models.KindExplanation:      "Architecture Explanation",
	models.KindGrowth:           "Growth Suggestions",
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("text", "t", "", "Analyze this code snippet instead of files.")
	cmd.Flags().Bool("stdin", false, "Read the code snippet from standard input.")
	cmd.MarkFlagsMutuallyExclusive("text", "stdin")
}

func newAnalysisCommand(kind models.Kind, use string, short string, long string) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " [paths...]",
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleAnalysisCommand(cmd, args, []models.Kind{kind})
		},
	}
	addInputFlags(c)
	return c
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Run several analyses concurrently against the same input.",
	Long: `The 'analyze' command starts every selected analysis at once. Each kind runs independently:
one failing does not stop the others. Successful reviews and audits are added to the history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, _ := cmd.Flags().GetStringSlice("kinds")
		kinds := make([]models.Kind, 0, len(names))
		for _, name := range names {
			kind, err := models.ParseKind(strings.TrimSpace(name))
			if err != nil {
				return err
			}
			kinds = append(kinds, kind)
		}
		return handleAnalysisCommand(cmd, args, kinds)
	},
}

func init() {
	allKinds := make([]string, len(models.AnalysisKinds))
	for i, k := range models.AnalysisKinds {
		allKinds[i] = string(k)
	}
	addInputFlags(analyzeCmd)
	analyzeCmd.Flags().StringSlice("kinds", allKinds, "Analyses to run: review, security, performance, explanation, growth.")

	rootCmd.AddCommand(
		analyzeCmd,
		newAnalysisCommand(models.KindReview, "review", "Review code for bugs, security, performance, quality and maintainability.",
			`The 'review' command scores the code in five categories and lists findings with suggested fixes.
Run 'revai fix' afterwards to apply them.`),
		newAnalysisCommand(models.KindSecurityAudit, "security", "Audit code for vulnerabilities.",
			`The 'security' command lists vulnerabilities with CWE ids, attack vectors and mitigations.`),
		newAnalysisCommand(models.KindPerformanceAudit, "performance", "Audit code for performance bottlenecks.",
			`The 'performance' command lists bottlenecks by area and impact, with optimized code for each.`),
		newAnalysisCommand(models.KindExplanation, "explain", "Explain the architecture of a codebase.",
			`The 'explain' command summarizes the tech stack, architecture pattern, core flow and key modules.`),
		newAnalysisCommand(models.KindGrowth, "grow", "Suggest strategic improvements for a project.",
			`The 'grow' command proposes features and architectural improvements with example code.`),
	)
}

func handleAnalysisCommand(cmd *cobra.Command, args []string, kinds []models.Kind) error {
	deps, err := handleRootCommand(cmd, true)
	if err != nil {
		return err
	}
	defer deps.Close()

	if err := acquireInput(cmd, deps, args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var started []models.Kind
	for _, kind := range kinds {
		if deps.Orchestrator.Start(ctx, kind) {
			started = append(started, kind)
		}
	}
	if len(started) == 0 {
		fmt.Println(lipgloss.Yellow.Render("Nothing to analyze. Pass files or folders, --text or --stdin."))
		return nil
	}

	titles := make([]string, len(started))
	for i, k := range started {
		titles[i] = kindTitles[k]
	}
	spinner, _ := newSpinner().Start(fmt.Sprintf("Running %s on %s...", strings.Join(titles, ", "), deps.Input.Snapshot().Label()))
	deps.Orchestrator.Wait()
	_ = spinner.Stop()
	fmt.Print("\r")

	failed := 0
	for _, kind := range started {
		state := deps.Orchestrator.State(kind)
		switch state.Status {
		case orchestrator.Succeeded:
			renderResult(os.Stdout, state.Result, deps.Config.Theme, deps.Options().Language)
		case orchestrator.Failed:
			failed++
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%s failed: %v", kindTitles[kind], state.Err)))
		default:
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("%s was discarded.", kindTitles[kind])))
		}
	}

	deps.SaveWorkspace()
	deps.DisplayTokens()

	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, len(started))
	}
	return nil
}

// acquireInput replaces the workspace input when new code is given. Identical content keeps
// the settled results of earlier runs.
func acquireInput(cmd *cobra.Command, deps *RootDependencies, paths []string) error {
	text, _ := cmd.Flags().GetString("text")
	if fromStdin, _ := cmd.Flags().GetBool("stdin"); fromStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading standard input: %w", err)
		}
		text = string(data)
	}
	if text != "" && len(paths) > 0 {
		return fmt.Errorf("pass either a snippet or paths, not both")
	}
	if text == "" && len(paths) == 0 {
		return nil
	}

	scratch := project.NewInput(deps.Filter)
	if text != "" {
		scratch.SetText(text)
	} else {
		report, err := scratch.Acquire(paths)
		if err != nil {
			return err
		}
		printReport(report)
	}

	next := scratch.Snapshot()
	if next.IsEmpty() {
		return fmt.Errorf("no usable input: every file was skipped")
	}
	current := deps.Input.Snapshot()
	if next.IsFileSet() != current.IsFileSet() || next.Digest() != current.Digest() {
		deps.Input.Replace(next)
		deps.refreshOptions()
	}
	return nil
}

func printReport(report project.Report) {
	if len(report.Skipped) == 0 {
		return
	}
	lines := make([]string, 0, len(report.Skipped))
	for _, s := range report.Skipped {
		lines = append(lines, fmt.Sprintf("  %s (%s)", s.Path, s.Reason))
	}
	fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("Accepted %d files, skipped %d:\n%s",
		len(report.Accepted), len(report.Skipped), strings.Join(lines, "\n"))))
}
