package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/meysamhadeli/revai/constants/lipgloss"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/spf13/cobra"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply the suggested fixes of the last review.",
	Long: `The 'fix' command asks the model to rewrite the reviewed code with every suggested fix applied.
It needs a successful review of the current input. For a file set only changed files are returned.`,
	RunE: handleFixCommand,
}

func init() {
	fixCmd.Flags().Bool("again", false, "Request a new fix even if one is already stored.")
	fixCmd.Flags().Bool("copy", false, "Copy the fixed code to the clipboard.")
	fixCmd.Flags().StringP("out", "o", "", "Write the fixed code to this file, or this directory for a file set.")
	rootCmd.AddCommand(fixCmd)
}

func handleFixCommand(cmd *cobra.Command, _ []string) error {
	deps, err := handleRootCommand(cmd, true)
	if err != nil {
		return err
	}
	defer deps.Close()

	again, _ := cmd.Flags().GetBool("again")
	fixed := deps.Orchestrator.Fixed()
	if fixed == nil || again {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if !deps.Orchestrator.StartFix(ctx) {
			fmt.Println(lipgloss.Yellow.Render("No review of the current input to fix. Run 'revai review' first."))
			return nil
		}
		spinner, _ := newSpinner().Start("Applying fixes...")
		deps.Orchestrator.Wait()
		_ = spinner.Stop()
		fmt.Print("\r")

		if err := deps.Orchestrator.LastError(); err != nil {
			return err
		}
		fixed = deps.Orchestrator.Fixed()
		if fixed == nil {
			return fmt.Errorf("the fix was discarded because the input changed")
		}
		deps.SaveWorkspace()
		defer deps.DisplayTokens()
	}

	language := deps.Options().Language
	if err := renderFixed(os.Stdout, fixed, deps.Config.Theme, language); err != nil {
		return err
	}

	if copyOut, _ := cmd.Flags().GetBool("copy"); copyOut {
		if err := clipboard.WriteAll(fixedText(fixed)); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Println(lipgloss.Green.Render("Fixed code copied to the clipboard."))
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := writeFixed(out, fixed); err != nil {
			return err
		}
		fmt.Println(lipgloss.Green.Render("Fixed code written to " + out))
	}
	return nil
}

func fixedText(fixed *models.FixedContent) string {
	if !fixed.FileSet {
		return fixed.Code
	}
	parts := make([]string, len(fixed.Files))
	for i, f := range fixed.Files {
		parts[i] = fmt.Sprintf("File: %s\n%s", f.Path, f.Content)
	}
	return strings.Join(parts, "\n\n")
}

// writeFixed writes raw code to out, or every fixed file under the directory out.
// Paths that escape out are rejected.
func writeFixed(out string, fixed *models.FixedContent) error {
	if !fixed.FileSet {
		return os.WriteFile(out, []byte(fixed.Code), 0o644)
	}
	root, err := filepath.Abs(out)
	if err != nil {
		return err
	}
	for _, f := range fixed.Files {
		target := filepath.Join(root, filepath.FromSlash(f.Path))
		if rel, err := filepath.Rel(root, target); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("refusing to write %q outside %s", f.Path, out)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("error creating directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", f.Path, err)
		}
	}
	return nil
}
