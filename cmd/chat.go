package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/meysamhadeli/revai/constants/lipgloss"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/utils"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the assistant about the current code.",
	Long: `The 'chat' command answers questions grounded in the code of the current workspace.
With a message it sends one turn and exits; without one it starts an interactive session.
The transcript is kept between runs until cleared with /reset or 'revai reset --all'.`,
	RunE: handleChatCommand,
}

func init() {
	addInputFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

func handleChatCommand(cmd *cobra.Command, args []string) error {
	deps, err := handleRootCommand(cmd, true)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Positional args are the message, so only --text and --stdin can change the input here.
	if err := acquireInput(cmd, deps, nil); err != nil {
		return err
	}
	defer deps.SaveWorkspace()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if len(args) > 0 {
		sendChatTurn(ctx, deps, strings.Join(args, " "))
		deps.DisplayTokens()
		return deps.Chat.LastError()
	}

	fmt.Println(lipgloss.BoxStyle.Render("/help  Help for chat"))
	if deps.Input.Snapshot().IsEmpty() {
		fmt.Println(lipgloss.Gray.Render("No project code loaded. Answers will not see your code."))
	} else {
		fmt.Println(lipgloss.Gray.Render("Context: " + deps.Input.Snapshot().Label()))
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		userInput, err := utils.InputPromptWithContext(ctx, reader)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				fmt.Println(lipgloss.Yellow.Render("Exiting..."))
				return nil
			}
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			continue
		}
		if userInput == "" {
			continue
		}

		handled, exit := findChatSubCommand(userInput, deps)
		if exit {
			return nil
		}
		if handled {
			continue
		}

		sendChatTurn(ctx, deps, userInput)
		deps.DisplayTokens()
	}
}

func sendChatTurn(ctx context.Context, deps *RootDependencies, utterance string) {
	spinner, _ := newSpinner().Start("Thinking...")
	reply, err := deps.Chat.Send(ctx, utterance)
	_ = spinner.Stop()
	fmt.Print("\r")

	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	fmt.Print(utils.RenderMarkdown(reply, deps.Config.Theme))
}

func findChatSubCommand(command string, deps *RootDependencies) (bool, bool) {
	switch command {
	case "/help":
		helps := "/clear  Clear screen\n/reset  Clear the chat transcript\n/history  Show the transcript\n/token  Token information\n/exit  Exit from revai"
		fmt.Println(lipgloss.BoxStyle.Render(helps))
		return true, false
	case "/clear":
		fmt.Print("\033[2J\033[H")
		return true, false
	case "/reset":
		if err := deps.Chat.Clear(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error clearing chat: %v", err)))
		} else {
			fmt.Println(lipgloss.Green.Render("Chat cleared."))
		}
		return true, false
	case "/history":
		printTranscript(deps)
		return true, false
	case "/token":
		deps.DisplayTokens()
		return true, false
	case "/exit":
		return false, true
	default:
		return false, false
	}
}

func printTranscript(deps *RootDependencies) {
	messages := deps.Chat.Messages()
	if len(messages) == 0 {
		fmt.Println(lipgloss.Gray.Render("No messages yet."))
		return
	}
	for _, m := range messages {
		if m.Role == models.ChatRoleUser {
			fmt.Println(lipgloss.BlueSky.Render("> " + m.Text))
			continue
		}
		fmt.Print(utils.RenderMarkdown(m.Text, deps.Config.Theme))
	}
}
