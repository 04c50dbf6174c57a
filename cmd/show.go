package cmd

import (
	"fmt"
	"os"

	"github.com/meysamhadeli/revai/constants/lipgloss"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [kind]",
	Short: "Show a result of the current workspace without calling the model.",
	Long: `The 'show' command prints the result of the last analysis, or of the given kind
(review, security, performance, explanation, growth), for the current input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := handleRootCommand(cmd, false)
		if err != nil {
			return err
		}
		defer deps.Close()

		kind := deps.Orchestrator.View()
		if len(args) == 1 {
			if kind, err = models.ParseKind(args[0]); err != nil {
				return err
			}
		}
		if kind == "" {
			fmt.Println(lipgloss.Yellow.Render("No results yet. Run an analysis first."))
			return nil
		}

		result, ok := deps.Orchestrator.Result(kind)
		if !ok {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("No %s result for the current input.", kind)))
			return nil
		}
		fmt.Println(lipgloss.Gray.Render(deps.Input.Snapshot().Label()))
		renderResult(os.Stdout, result, deps.Config.Theme, deps.Options().Language)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
