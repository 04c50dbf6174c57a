package cmd

import (
	"context"
	"fmt"

	"github.com/meysamhadeli/revai/constants/lipgloss"
	"github.com/meysamhadeli/revai/outline"
	"github.com/meysamhadeli/revai/project"
	"github.com/spf13/cobra"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [paths...]",
	Short: "Print the declarations found in each file.",
	Long: `The 'outline' command parses files with tree-sitter and lists their functions, types and methods.
Without paths it outlines the files of the current workspace. The workspace is not changed.`,
	RunE: handleOutlineCommand,
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

func handleOutlineCommand(cmd *cobra.Command, args []string) error {
	deps, err := handleRootCommand(cmd, false)
	if err != nil {
		return err
	}
	defer deps.Close()

	snapshot := deps.Input.Snapshot()
	if len(args) > 0 {
		scratch := project.NewInput(deps.Filter)
		report, err := scratch.Acquire(args)
		if err != nil {
			return err
		}
		printReport(report)
		snapshot = scratch.Snapshot()
	}
	if !snapshot.IsFileSet() {
		fmt.Println(lipgloss.Yellow.Render("No files to outline."))
		return nil
	}

	for _, file := range outline.Project(context.Background(), snapshot) {
		if file.Language == "" {
			continue
		}
		fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("%s (%s)", file.Path, file.Language)))
		if len(file.Symbols) == 0 {
			fmt.Println(lipgloss.Gray.Render("  no declarations"))
			continue
		}
		for _, s := range file.Symbols {
			fmt.Printf("  %4d  %-10s %s\n", s.Line, s.Kind, s.Name)
		}
	}
	return nil
}
