package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/meysamhadeli/revai/chat"
	"github.com/meysamhadeli/revai/config"
	"github.com/meysamhadeli/revai/constants/lipgloss"
	"github.com/meysamhadeli/revai/gateway"
	"github.com/meysamhadeli/revai/gateway/contracts"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/history"
	"github.com/meysamhadeli/revai/logging"
	"github.com/meysamhadeli/revai/orchestrator"
	"github.com/meysamhadeli/revai/outline"
	"github.com/meysamhadeli/revai/project"
	"github.com/meysamhadeli/revai/providers"
	providercontracts "github.com/meysamhadeli/revai/providers/contracts"
	pm "github.com/meysamhadeli/revai/providers/models"
	"github.com/meysamhadeli/revai/storage"
	"github.com/meysamhadeli/revai/token_management"
	contracts2 "github.com/meysamhadeli/revai/token_management/contracts"
	"github.com/meysamhadeli/revai/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootDependencies is everything a subcommand needs, built once per invocation.
type RootDependencies struct {
	Cwd             string
	Config          *config.Config
	Store           storage.Store
	Filter          *project.Filter
	Input           *project.Input
	History         *history.Store
	Gateway         contracts.IAnalysisGateway
	Orchestrator    *orchestrator.Orchestrator
	Chat            *chat.Session
	TokenManagement contracts2.ITokenManagement

	languageSet bool
	workspace   *storage.Value[orchestrator.Workspace]
	logCloser   io.Closer
}

var rootCmd = &cobra.Command{
	Use:   "revai",
	Short: "revai is an AI code review assistant for the terminal.",
	Long: `revai sends your code, pasted or read from files and folders, to a generative model and renders
structured reviews, security and performance audits, architecture explanations and growth suggestions.
Completed reviews and audits are kept in a rolling history and can be restored later. A persistent
chat lets you ask follow-up questions with your project as context.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println(lipgloss.BlueSky.Render("version: " + config.DefaultConfig.Version))
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
}

// handleRootCommand loads config, opens storage and restores the saved workspace.
// The model provider is only required when needsModel is set.
func handleRootCommand(cmd *cobra.Command, needsModel bool) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("error getting current working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(rootCmd, cwd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logCloser := logging.InitLogger(cfg.Log)

	storePath := cfg.Storage.Path
	if !filepath.IsAbs(storePath) {
		storePath = filepath.Join(cwd, storePath)
	}
	store, err := storage.Open(cfg.Storage.Driver, storePath)
	if err != nil {
		return nil, err
	}

	applyPreferences(cmd, cfg, store)

	deps := &RootDependencies{
		Cwd:             cwd,
		Config:          cfg,
		Store:           store,
		TokenManagement: token_management.NewTokenManager(),
		languageSet:     cmd.Flags().Changed("language"),
		workspace:       storage.NewValue[orchestrator.Workspace](store, storage.KeyWorkspace),
		logCloser:       logCloser,
	}

	var provider providercontracts.IModelProvider = unavailableProvider{}
	if needsModel {
		if err := cfg.ValidateProvider(); err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("invalid provider configuration: %w", err)
		}
		provider, err = providers.ChatProviderFactory(cfg.AIProviderConfig, deps.TokenManagement)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
	}

	globs, err := utils.GetIgnorePatterns(cwd)
	if err != nil {
		logrus.WithError(err).Warn("ignoring " + utils.IgnoreFileName)
	}
	filter := project.NewFilter(cfg.MaxFileSize, append(append([]string(nil), cfg.IgnorePatterns...), globs...))

	deps.Filter = filter
	deps.Input = project.NewInput(filter)
	deps.History = history.NewStore(store)
	deps.Gateway = gateway.NewGateway(provider)
	deps.Orchestrator = orchestrator.New(deps.Gateway, deps.Input, deps.History, deps.Options())
	deps.Chat = chat.NewSession(deps.Gateway, deps.Input, store, deps.Options())

	if ws, ok := deps.workspace.Load(); ok {
		deps.Orchestrator.Hydrate(ws)
		deps.refreshOptions()
	}
	return deps, nil
}

// Options derives the request options. Without an explicit --language the tag is detected
// from the file set when possible.
func (d *RootDependencies) Options() models.Options {
	language := d.Config.Language
	if !d.languageSet && d.Input != nil {
		if detected := outline.DetectLanguage(d.Input.Snapshot()); detected != "" {
			language = detected
		}
	}
	return models.Options{Language: language, Locale: d.Config.Locale}
}

func (d *RootDependencies) refreshOptions() {
	opts := d.Options()
	d.Orchestrator.SetOptions(opts)
	d.Chat.SetOptions(opts)
}

// SaveWorkspace persists the current input and settled results for the next invocation.
func (d *RootDependencies) SaveWorkspace() {
	if err := d.workspace.Save(d.Orchestrator.Workspace()); err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: could not save workspace: %v", err)))
	}
}

func (d *RootDependencies) DisplayTokens() {
	d.TokenManagement.DisplayTokens(d.Config.AIProviderConfig.Provider, d.Config.AIProviderConfig.Model)
}

func (d *RootDependencies) Close() error {
	var err error
	if d.Store != nil {
		err = d.Store.Close()
	}
	if d.logCloser != nil {
		err = errors.Join(err, d.logCloser.Close())
	}
	return err
}

// unavailableProvider backs offline commands that never call the model.
type unavailableProvider struct{}

func (unavailableProvider) Generate(context.Context, pm.GenerateRequest) (pm.GenerateResponse, error) {
	return pm.GenerateResponse{}, errors.New("no model provider configured for this command")
}
