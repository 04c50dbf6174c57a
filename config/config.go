package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"github.com/meysamhadeli/revai/logging"
	"github.com/meysamhadeli/revai/project"
	"github.com/meysamhadeli/revai/providers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// StorageConfig selects the persistence adapter.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// Config represents the structure of the configuration file
type Config struct {
	Version          string                      `mapstructure:"version"`
	Theme            string                      `mapstructure:"theme"`
	Locale           string                      `mapstructure:"locale"`
	Language         string                      `mapstructure:"language"`
	MaxFileSize      int64                       `mapstructure:"max_file_size"`
	IgnorePatterns   []string                    `mapstructure:"ignore_patterns"`
	Storage          StorageConfig               `mapstructure:"storage"`
	Log              logging.Config              `mapstructure:"log"`
	AIProviderConfig *providers.AIProviderConfig `mapstructure:"ai_provider_config"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:     "1.0.0",
	Theme:       "dracula",
	Locale:      "en",
	Language:    "typescript",
	MaxFileSize: project.DefaultMaxFileSize,
	Storage:     StorageConfig{Driver: "file", Path: ".revai"},
	Log:         logging.Config{Level: "warn", Format: "text", Output: "stderr"},
	AIProviderConfig: &providers.AIProviderConfig{
		Provider: "gemini",
		Timeout:  5 * time.Minute,
	},
}

var (
	themes        = []string{"dracula", "dark", "light", "tokyo-night", "pink", "ascii", "notty"}
	locales       = []string{"en", "ar"}
	drivers       = []string{"file", "sqlite", "memory"}
	formats       = []string{"text", "json"}
	providerNames = []string{"gemini", "ollama"}
)

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs layers defaults, the config file, environment variables and flags.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("revai-config")
		v.AddConfigPath(cwd)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if rootCmd != nil {
		bindFlags(v, rootCmd)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &config, nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("locale", DefaultConfig.Locale)
	v.SetDefault("language", DefaultConfig.Language)
	v.SetDefault("max_file_size", DefaultConfig.MaxFileSize)
	v.SetDefault("ignore_patterns", []string{})
	v.SetDefault("storage.driver", DefaultConfig.Storage.Driver)
	v.SetDefault("storage.path", DefaultConfig.Storage.Path)
	v.SetDefault("log.level", DefaultConfig.Log.Level)
	v.SetDefault("log.format", DefaultConfig.Log.Format)
	v.SetDefault("log.output", DefaultConfig.Log.Output)
	v.SetDefault("ai_provider_config.provider", DefaultConfig.AIProviderConfig.Provider)
	v.SetDefault("ai_provider_config.base_url", DefaultConfig.AIProviderConfig.BaseURL)
	v.SetDefault("ai_provider_config.model", DefaultConfig.AIProviderConfig.Model)
	v.SetDefault("ai_provider_config.api_key", "")
	v.SetDefault("ai_provider_config.timeout", DefaultConfig.AIProviderConfig.Timeout)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("REVAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("theme", "REVAI_THEME")
	_ = v.BindEnv("locale", "REVAI_LOCALE")
	_ = v.BindEnv("log.level", "REVAI_LOG_LEVEL")
	_ = v.BindEnv("ai_provider_config.provider", "REVAI_PROVIDER")
	_ = v.BindEnv("ai_provider_config.base_url", "REVAI_BASE_URL")
	_ = v.BindEnv("ai_provider_config.model", "REVAI_MODEL")
	_ = v.BindEnv("ai_provider_config.api_key", "REVAI_API_KEY", "GEMINI_API_KEY")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag("theme", flags.Lookup("theme"))
	_ = v.BindPFlag("locale", flags.Lookup("locale"))
	_ = v.BindPFlag("language", flags.Lookup("language"))
	_ = v.BindPFlag("max_file_size", flags.Lookup("max_file_size"))
	_ = v.BindPFlag("storage.driver", flags.Lookup("storage"))
	_ = v.BindPFlag("log.level", flags.Lookup("log_level"))
	_ = v.BindPFlag("ai_provider_config.provider", flags.Lookup("provider"))
	_ = v.BindPFlag("ai_provider_config.base_url", flags.Lookup("base_url"))
	_ = v.BindPFlag("ai_provider_config.model", flags.Lookup("model"))
	_ = v.BindPFlag("ai_provider_config.api_key", flags.Lookup("api_key"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to a configuration file (JSON or YAML).")

	flags.String("theme", DefaultConfig.Theme, "Output theme for highlighted code and markdown (e.g., 'dracula', 'dark', 'light').")
	flags.String("locale", DefaultConfig.Locale, "Language of the returned prose: 'en' or 'ar'.")
	flags.StringP("language", "l", DefaultConfig.Language, "Advisory source language tag sent with every analysis.")
	flags.Int64("max_file_size", DefaultConfig.MaxFileSize, "Largest accepted file in bytes.")
	flags.String("storage", DefaultConfig.Storage.Driver, "Persistence driver: 'file', 'sqlite' or 'memory'.")
	flags.String("log_level", DefaultConfig.Log.Level, "Log level (e.g., 'debug', 'info', 'warn').")

	flags.String("provider", DefaultConfig.AIProviderConfig.Provider, "The name of the AI provider: 'gemini' or 'ollama'.")
	flags.String("base_url", "", "The base URL of the AI provider. Empty selects the provider default.")
	flags.String("model", "", "The name of the model used for analysis. Empty selects the provider default.")
	flags.String("api_key", "", "The API key used to authenticate with the AI provider.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// Validate checks structural settings. Provider credentials are checked separately by
// ValidateProvider since offline commands do not need them.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("theme", c.Theme, oneOf(themes)),
		criterio.Run("locale", c.Locale, oneOf(locales)),
		c.validateMaxFileSize(),
		c.validateIgnorePatterns(),
		criterio.Run("storage.driver", c.Storage.Driver, oneOf(drivers)),
		criterio.Run("log.format", strings.ToLower(c.Log.Format), oneOf(formats)),
	)
}

// ValidateProvider checks the settings needed to reach the model.
func (c *Config) ValidateProvider() error {
	if c.AIProviderConfig == nil {
		return criterio.NewFieldErrors("ai_provider_config", fmt.Errorf("is required"))
	}
	p := c.AIProviderConfig
	var errs criterio.FieldErrorsBuilder
	if err := oneOf(providerNames)(p.Provider); err != nil {
		errs = errs.Append("ai_provider_config.provider", err)
	}
	if p.Provider == "gemini" && p.ApiKey == "" {
		errs = errs.Append("ai_provider_config.api_key", fmt.Errorf("is required for gemini (set REVAI_API_KEY or GEMINI_API_KEY)"))
	}
	if p.Timeout < 0 {
		errs = errs.Append("ai_provider_config.timeout", fmt.Errorf("must not be negative"))
	}
	return errs.ToError()
}

func (c *Config) validateIgnorePatterns() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("ignore_patterns[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	return errs.ToError()
}

func oneOf(allowed []string) func(string) error {
	return func(value string) error {
		if slices.Contains(allowed, value) {
			return nil
		}
		return fmt.Errorf("must be one of %s, got %q", strings.Join(allowed, ", "), value)
	}
}

func (c *Config) validateMaxFileSize() error {
	if c.MaxFileSize <= 0 {
		return criterio.NewFieldErrors("max_file_size", fmt.Errorf("must be positive"))
	}
	return nil
}
