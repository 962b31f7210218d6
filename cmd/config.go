package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/user/csrf-diag/pkg/adk"
	"github.com/user/csrf-diag/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration (AI provider, report format, remediation variables)",
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the API key for a provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		key, _ := cmd.Flags().GetString("key")
		if key == "" {
			return errors.New("--key is required")
		}

		return updateConfig(cmd, func(cfg *config.Config) error {
			cfg.SetAPIKey(strings.ToLower(provider), key)
			return nil
		}, fmt.Sprintf("API key saved for provider: %s", provider))
	},
}

var setModelCmd = &cobra.Command{
	Use:   "set-model",
	Short: "Set the active provider and model for 'assist'",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		model, _ := cmd.Flags().GetString("model")

		return updateConfig(cmd, func(cfg *config.Config) error {
			if provider != "" {
				cfg.SelectedProvider = strings.ToLower(provider)
			}
			if model != "" {
				cfg.SelectedModel = model
			}
			return nil
		}, "Active model updated")
	},
}

var setVarCmd = &cobra.Command{
	Use:   "set-var NAME VALUE",
	Short: "Set a remediation template variable (e.g. TokenEndpoint, Platform)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateConfig(cmd, func(cfg *config.Config) error {
			if cfg.Report.Vars == nil {
				cfg.Report.Vars = make(map[string]string)
			}
			cfg.Report.Vars[args[0]] = args[1]
			return nil
		}, fmt.Sprintf("Variable %s set", args[0]))
	},
}

var setFormatCmd = &cobra.Command{
	Use:   "set-format text|json",
	Short: "Set the default report format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateConfig(cmd, func(cfg *config.Config) error {
			if err := validateFormat(args[0]); err != nil {
				return err
			}
			cfg.Report.Format = args[0]
			return nil
		}, fmt.Sprintf("Default report format: %s", args[0]))
	},
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration with API keys masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		masked := *cfg
		masked.Providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
		for name, p := range cfg.Providers {
			masked.Providers[name] = config.ProviderConfig{APIKey: maskKey(p.APIKey)}
		}
		data, err := yaml.Marshal(&masked)
		if err != nil {
			return err
		}
		path, _ := config.GetConfigPath()
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, data)
		return nil
	},
}

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List available models from the configured provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		provider := cfg.SelectedProvider
		apiKey := cfg.GetAPIKey(provider)
		if apiKey == "" {
			return fmt.Errorf("no API key found for %s", provider)
		}

		ctx := context.Background()
		p, err := adk.NewProvider(ctx, provider, apiKey, "")
		if err != nil {
			return fmt.Errorf("initializing provider: %w", err)
		}
		if closer, ok := p.(interface{ Close() }); ok {
			defer closer.Close()
		}

		models, err := p.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("fetching models: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Available Models (%s):\n", provider)
		for _, m := range models {
			mark := " "
			if m == cfg.SelectedModel {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %s\n", mark, m)
		}
		return nil
	},
}

func updateConfig(cmd *cobra.Command, mutate func(*config.Config) error, done string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := mutate(cfg); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func init() {
	setKeyCmd.Flags().StringP("provider", "p", "gemini", "Provider (gemini)")
	setKeyCmd.Flags().StringP("key", "k", "", "API Key")

	setModelCmd.Flags().StringP("provider", "p", "", "Provider (gemini)")
	setModelCmd.Flags().StringP("model", "m", "", "Model name")

	configCmd.AddCommand(setKeyCmd, setModelCmd, setVarCmd, setFormatCmd, showConfigCmd, listModelsCmd)
	rootCmd.AddCommand(configCmd)
}
