package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/meysamhadeli/revai/constants/lipgloss"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/history"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, restore and manage past reviews and audits.",
	Long: `The 'history' command manages the last 30 successful reviews, security audits and performance audits.
Every item keeps the code it was run on, so restoring one brings back both the code and the result.`,
	RunE: handleHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history items, newest first.",
	RunE:  handleHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored result without changing the workspace.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistoryItem(cmd, args[0], func(deps *RootDependencies, item history.Item) error {
			printItemHeader(item)
			renderResult(os.Stdout, item.Result, deps.Config.Theme, deps.Config.Language)
			return nil
		})
	},
}

var historyFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle the favorite flag of an item.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistoryItem(cmd, args[0], func(deps *RootDependencies, item history.Item) error {
			favorite, err := deps.History.ToggleFavorite(item.ID)
			if err != nil {
				return err
			}
			state := "removed from"
			if favorite {
				state = "added to"
			}
			fmt.Println(lipgloss.Green.Render(fmt.Sprintf("%s %s favorites.", shortID(item.ID), state)))
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an item.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistoryItem(cmd, args[0], func(deps *RootDependencies, item history.Item) error {
			if err := deps.History.Remove(item.ID); err != nil {
				return err
			}
			fmt.Println(lipgloss.Green.Render(fmt.Sprintf("Deleted %s.", shortID(item.ID))))
			return nil
		})
	},
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Make a stored item the current workspace input and result.",
	Long: `The 'restore' command replaces the current input with the code stored in the item and shows its result
as if the analysis had just finished. Other results of the workspace are cleared. The model is not called.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistoryItem(cmd, args[0], func(deps *RootDependencies, item history.Item) error {
			snapshot, result, err := deps.History.Restore(item.ID)
			if err != nil {
				return err
			}
			if err := deps.Orchestrator.Restore(snapshot, result); err != nil {
				return err
			}
			deps.refreshOptions()
			deps.SaveWorkspace()
			printItemHeader(item)
			renderResult(os.Stdout, result, deps.Config.Theme, deps.Options().Language)
			return nil
		})
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history items as JSON or YAML.",
	RunE:  handleHistoryExport,
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, historyListCmd, historyExportCmd} {
		c.Flags().String("since", "", "Only items since a date or phrase, e.g. 2026-01-02, yesterday, 3 days ago.")
		c.Flags().Bool("favorites", false, "Only favorite items.")
		c.Flags().String("kind", "", "Only items of this kind: review, security or performance.")
	}
	historyExportCmd.Flags().String("format", "json", "Export format: json or yaml.")
	historyExportCmd.Flags().StringP("out", "o", "", "Write to this file instead of standard output.")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyFavoriteCmd, historyDeleteCmd, historyRestoreCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func handleHistoryList(cmd *cobra.Command, _ []string) error {
	deps, err := handleRootCommand(cmd, false)
	if err != nil {
		return err
	}
	defer deps.Close()

	query, err := historyQuery(cmd, time.Now())
	if err != nil {
		return err
	}
	items := deps.History.List(query)
	if len(items) == 0 {
		fmt.Println(lipgloss.Gray.Render("No history items."))
		return nil
	}

	data := pterm.TableData{{"ID", "Kind", "Score", "Project", "When", ""}}
	for _, it := range items {
		star := ""
		if it.IsFavorite {
			star = "★"
		}
		data = append(data, []string{
			shortID(it.ID),
			string(it.Kind),
			lipgloss.ScoreStyle(it.Score).Render(fmt.Sprintf("%.0f", it.Score)),
			it.ProjectLabel,
			humanize.Time(it.Timestamp),
			star,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func handleHistoryExport(cmd *cobra.Command, _ []string) error {
	deps, err := handleRootCommand(cmd, false)
	if err != nil {
		return err
	}
	defer deps.Close()

	query, err := historyQuery(cmd, time.Now())
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	data, err := exportItems(deps.History.List(query), format)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("error writing export: %w", err)
	}
	fmt.Println(lipgloss.Green.Render("History exported to " + out))
	return nil
}

func withHistoryItem(cmd *cobra.Command, id string, fn func(*RootDependencies, history.Item) error) error {
	deps, err := handleRootCommand(cmd, false)
	if err != nil {
		return err
	}
	defer deps.Close()

	item, err := deps.History.Get(id)
	if err != nil {
		return fmt.Errorf("%w: %s", err, id)
	}
	return fn(deps, item)
}

func historyQuery(cmd *cobra.Command, now time.Time) (history.Query, error) {
	var q history.Query
	since, _ := cmd.Flags().GetString("since")
	t, err := parseSince(since, now)
	if err != nil {
		return q, err
	}
	q.Since = t
	q.FavoritesOnly, _ = cmd.Flags().GetBool("favorites")
	if kind, _ := cmd.Flags().GetString("kind"); kind != "" {
		k, err := models.ParseKind(kind)
		if err != nil {
			return q, err
		}
		if !k.Recorded() {
			return q, fmt.Errorf("%s results are not kept in history", k)
		}
		q.Kind = k
	}
	return q, nil
}

var sinceLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339, "2006/01/02"}

// parseSince accepts exact dates or English phrases such as "yesterday" and "3 days ago".
func parseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range sinceLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: not a date", s)
	}
	return r.Time, nil
}

// exportItems encodes items in the json tag layout for both formats.
func exportItems(items []history.Item, format string) ([]byte, error) {
	if items == nil {
		items = []history.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding history: %w", err)
	}
	switch format {
	case "json":
		return append(data, '\n'), nil
	case "yaml", "yml":
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("error encoding history: %w", err)
		}
		return yaml.Marshal(generic)
	default:
		return nil, fmt.Errorf("unsupported export format %q, use json or yaml", format)
	}
}

// shortID shows the random tail of an id; the leading characters encode the creation time.
func shortID(id string) string {
	if len(id) > 12 {
		return id[len(id)-12:]
	}
	return id
}

func printItemHeader(item history.Item) {
	fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("%s · %s · %s", shortID(item.ID), item.ProjectLabel,
		item.Timestamp.Local().Format(time.DateTime))))
}
