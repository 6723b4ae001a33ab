package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ppiankov/paperscout/internal/embedding"
	"github.com/ppiankov/paperscout/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// version is overridden at build time with -ldflags "-X ...cli.version=..."
var version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "paperscout",
	Short: "Paperscout - semantic search over conference proceedings",
	Long: `Paperscout walks a bibliographic index for a set of conferences and years,
enriches every paper with its publisher abstract when one can be found, and
ranks the papers by semantic similarity to a free-text research interest.

Progress is streamed after every (conference, year) pair, so long searches
show partial results as they accumulate.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Paperscout.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "paperscout v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.paperscout/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and PAPERSCOUT_* variables
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if err := registerDefaults(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.paperscout")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	configureEnv(viper.GetViper())

	err := viper.MergeInConfig()
	switch {
	case err == nil:
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	case errors.As(err, new(viper.ConfigFileNotFoundError)):
	default:
		if cfgFile != "" || !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// configureEnv maps PAPERSCOUT_* variables onto config keys, so
// PAPERSCOUT_SCORING_THRESHOLD overrides scoring.threshold. API keys are never
// written as defaults and have to be bound explicitly.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("PAPERSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"embedding.primary.api_key", "embedding.fallback.api_key"} {
		_ = v.BindEnv(key)
	}
}

// registerDefaults makes every config key known to v, so environment
// variables can override keys the config file does not mention
func registerDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return err
	}
	var defaults map[string]any
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return err
	}
	return v.MergeConfigMap(defaults)
}

// loadConfig resolves the effective configuration: flags and environment
// over the config file over defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	for _, p := range []*model.ProviderConfig{&cfg.Embedding.Primary, &cfg.Embedding.Fallback} {
		if p.APIKey == "" {
			p.APIKey = embedding.APIKeyFromEnv(p.Provider)
		}
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && strings.EqualFold(p.Provider, "ollama") {
			p.BaseURL = baseURL
		}
	}

	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	return cfg, nil
}

// logWriter is where absorbed failures are reported
func logWriter(cfg *model.Config) io.Writer {
	if cfg.Output.Verbose {
		return os.Stderr
	}
	return io.Discard
}
