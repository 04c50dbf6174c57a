package cmd

import (
	"fmt"

	"github.com/meysamhadeli/revai/config"
	"github.com/meysamhadeli/revai/constants/lipgloss"
	"github.com/meysamhadeli/revai/storage"
	"github.com/spf13/cobra"
)

var prefKeys = map[string]string{
	"theme":  storage.KeyTheme,
	"locale": storage.KeyLocale,
}

var prefsCmd = &cobra.Command{
	Use:   "prefs [theme|locale] [value]",
	Short: "Show or persist the theme and locale preferences.",
	Long: `Without arguments 'prefs' prints the effective theme and locale. With a name and a value it stores
the preference so later invocations use it unless --theme or --locale is passed explicitly.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := handleRootCommand(cmd, false)
		if err != nil {
			return err
		}
		defer deps.Close()

		if len(args) == 0 {
			fmt.Println(lipgloss.BoxStyle.Render(fmt.Sprintf("theme: %s\nlocale: %s", deps.Config.Theme, deps.Config.Locale)))
			return nil
		}
		if len(args) != 2 {
			return fmt.Errorf("usage: revai prefs %s <value>", args[0])
		}
		return setPreference(deps.Store, deps.Config, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(prefsCmd)
}

// applyPreferences overlays stored preferences unless the flag was passed explicitly.
func applyPreferences(cmd *cobra.Command, cfg *config.Config, store storage.Store) {
	if !cmd.Flags().Changed("theme") {
		if theme, ok := storage.NewValue[string](store, storage.KeyTheme).Load(); ok && theme != "" {
			cfg.Theme = theme
		}
	}
	if !cmd.Flags().Changed("locale") {
		if locale, ok := storage.NewValue[string](store, storage.KeyLocale).Load(); ok && locale != "" {
			cfg.Locale = locale
		}
	}
}

func setPreference(store storage.Store, cfg *config.Config, name string, value string) error {
	key, ok := prefKeys[name]
	if !ok {
		return fmt.Errorf("unknown preference '%s' (use 'theme' or 'locale')", name)
	}

	candidate := *cfg
	if name == "theme" {
		candidate.Theme = value
	} else {
		candidate.Locale = value
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	if err := storage.NewValue[string](store, key).Save(value); err != nil {
		return err
	}
	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✓ %s set to %s", name, value)))
	return nil
}
