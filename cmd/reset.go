package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/meysamhadeli/revai/constants/lipgloss"
	"github.com/meysamhadeli/revai/storage"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the current input and every result derived from it.",
	Long: `The 'reset' command clears the stored code, analysis results and fixed code of the workspace.
With --all it also removes the review history, the chat transcript and the stored preferences.`,
	RunE: handleResetCommand,
}

func init() {
	resetCmd.Flags().Bool("all", false, "Also clear history, chat and preferences.")
	resetCmd.Flags().BoolP("force", "f", false, "Reset without confirmation.")
	rootCmd.AddCommand(resetCmd)
}

func handleResetCommand(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")
	force, _ := cmd.Flags().GetBool("force")

	deps, err := handleRootCommand(cmd, false)
	if err != nil {
		return err
	}
	defer deps.Close()

	if all && !force {
		reader := bufio.NewReader(os.Stdin)
		fmt.Printf("Are you sure you want to delete %d history items and the chat transcript? (y/N): ", deps.History.Len())
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println(lipgloss.Yellow.Render("Reset cancelled."))
			return nil
		}
	}

	deps.Orchestrator.Reset()
	err = deps.workspace.Delete()
	if all {
		err = errors.Join(err,
			deps.History.Clear(),
			deps.Chat.Clear(),
			storage.NewValue[string](deps.Store, storage.KeyTheme).Delete(),
			storage.NewValue[string](deps.Store, storage.KeyLocale).Delete(),
		)
	}
	if err != nil {
		return fmt.Errorf("error resetting: %w", err)
	}

	if all {
		fmt.Println(lipgloss.Green.Render("✓ Workspace, history, chat and preferences cleared."))
	} else {
		fmt.Println(lipgloss.Green.Render("✓ Workspace cleared."))
	}
	return nil
}
