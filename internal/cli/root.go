package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/rumorguard/internal/logging"
	"github.com/ppiankov/rumorguard/internal/model"
)

const version = "rumorguard v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rumorguard",
	Short: "RumorGuard - disaster rumor triage and fact-check alerts",
	Long: `RumorGuard accepts claims circulating during a disaster, scores them
for misinformation risk and sends only the risky ones to a fact-check
model. Every claim becomes an alert in a live feed served over HTTP.

The risk score is a heuristic, not a probability. A verdict of "unverified"
means the claim was not escalated or the model gave no clear answer.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.rumorguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	registerDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.rumorguard")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// RUMORGUARD_SERVER_ADDR overrides server.addr, and so on
	viper.SetEnvPrefix("RUMORGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so env overrides
// apply during Unmarshal even when no config file sets them.
func registerDefaults(v *viper.Viper, cfg *model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults(v, "", tree)

	// omitempty keys never reach the tree
	for _, key := range []string{"llm.image_model", "llm.api_key", "llm.base_url", "llm.http_proxy", "llm.https_proxy", "llm.no_proxy", "simulator.target_url", "simulator.claims_file"} {
		v.SetDefault(key, "")
	}
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig resolves the effective configuration from defaults, the config
// file, environment and bound flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyProviderEnv(cfg, os.Getenv)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if cfg.Pipeline.EscalationThreshold < 0 || cfg.Pipeline.EscalationThreshold > 1 {
		return nil, fmt.Errorf("pipeline.escalation_threshold must be within [0,1], got %v", cfg.Pipeline.EscalationThreshold)
	}
	return cfg, nil
}

// applyProviderEnv fills the API key and base URL from the conventional
// per-provider environment variables when the config leaves them empty.
func applyProviderEnv(cfg *model.Config, getenv func(string) string) {
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "gemini", "":
			cfg.LLM.APIKey = getenv("GEMINI_API_KEY")
		case "openai":
			cfg.LLM.APIKey = getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.LLM.BaseURL == "" && strings.EqualFold(cfg.LLM.Provider, "ollama") {
		cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
	}
}

func initLogging(cfg *model.Config) error {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Logging.Format)
	return nil
}
