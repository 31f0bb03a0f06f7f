package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/urlsum/internal/model"
)

// Keys hidden from or omitted in the YAML form that must still be known to viper
var extraKeys = []string{
	"http.http_proxy",
	"http.https_proxy",
	"http.no_proxy",
	"twitter.bearer_token",
	"llm.model",
	"llm.api_key",
	"llm.base_url",
}

// registerDefaults makes every config key known to v with its default value,
// so env-only overrides are picked up by Unmarshal
func registerDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}

	setDefaults(v, "", tree)
	for _, key := range extraKeys {
		v.SetDefault(key, "")
	}
	return nil
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

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage urlsum configuration",
	Long: `Manage urlsum configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (URLSUM_*, BEARER_TOKEN, provider API keys)
3. Config file (~/.urlsum/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after applying defaults, config file, env vars and flags. Secrets are never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", configFile)
		} else {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, string(yamlData))
		_, _ = fmt.Fprintf(out, "# twitter bearer token: %s\n", setOrUnset(cfg.Twitter.BearerToken))
		_, _ = fmt.Fprintf(out, "# llm api key:          %s\n", setOrUnset(cfg.LLM.APIKey))
		return nil
	},
}

func setOrUnset(secret string) string {
	if secret == "" {
		return "not set"
	}
	return "set"
}

var configInitOutput string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file (default ~/.urlsum/config.yaml) with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		configPath := configInitOutput
		if configPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("error finding home directory: %w", err)
			}
			configPath = filepath.Join(home, ".urlsum", "config.yaml")
		}

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'urlsum config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		yamlData, err := yaml.Marshal(model.DefaultConfig())
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		printf := func(format string, a ...any) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(f, format, a...)
		}

		printf("# urlsum configuration file\n")
		printf("#\n")
		printf("# Configuration hierarchy (highest to lowest priority):\n")
		printf("#   1. CLI flags\n")
		printf("#   2. Environment variables (URLSUM_*, e.g. URLSUM_SERVE_REPLICAS=4)\n")
		printf("#   3. This config file\n")
		printf("#   4. Built-in defaults\n")
		printf("#\n")
		printf("# wikipedia.api_url may contain {lang}, taken from the article host.\n")
		printf("# llm.provider: huggingface, openai, anthropic, ollama, extractive\n\n")
		printf("%s", yamlData)
		printf("\n# Secrets are read from the environment only:\n")
		printf("#   export BEARER_TOKEN=...            # Twitter API v2\n")
		printf("#   export HF_TOKEN=hf_...\n")
		printf("#   export OPENAI_API_KEY=sk-...\n")
		printf("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
		printf("#   export OLLAMA_BASE_URL=http://localhost:11434\n")
		if err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "✓ Created default configuration: %s\n", configPath)
		_, _ = fmt.Fprintf(out, "\nTo view the effective configuration:\n  urlsum config show\n")
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "", "write the config file to this path")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
