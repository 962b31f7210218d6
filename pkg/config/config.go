package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/csrf-diag/pkg/engine"
)

// EnvConfigPath overrides the config file location
const EnvConfigPath = "CSRF_DIAG_CONFIG"

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
}

// ReportConfig controls report rendering and the remediation catalog
type ReportConfig struct {
	Format       string            `yaml:"format"`
	TemplatesDir string            `yaml:"templates_dir,omitempty"`
	Vars         map[string]string `yaml:"vars,omitempty"`
}

type Config struct {
	SelectedProvider string                    `yaml:"selected_provider"`
	SelectedModel    string                    `yaml:"selected_model"`
	Providers        map[string]ProviderConfig `yaml:"providers"`
	Report           ReportConfig              `yaml:"report"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		SelectedProvider: "gemini",
		SelectedModel:    "gemini-pro",
		Providers:        make(map[string]ProviderConfig),
		Report:           ReportConfig{Format: "text"},
	}
}

func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".csrf-diag", "config.yaml"), nil
}

func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(path)
}

// LoadConfigFrom reads the config at path, returning defaults if it does not exist
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	if cfg.Report.Format == "" {
		cfg.Report.Format = "text"
	}
	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(cfg, path)
}

// SaveConfigTo writes cfg to path with owner-only permissions (it holds API keys)
func SaveConfigTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) SetAPIKey(provider, key string) {
	p := c.Providers[provider]
	p.APIKey = key
	c.Providers[provider] = p
}

func (c *Config) GetAPIKey(provider string) string {
	return c.Providers[provider].APIKey
}

// Remediation builds the recommendation catalog: built-in rules, the
// configured variables, then any YAML templates from the templates dir.
// templatesDir, when non-empty, takes precedence over the configured one.
func (c *Config) Remediation(templatesDir string) (*engine.RemediationEngine, error) {
	r := engine.NewRemediationEngine()
	for k, v := range c.Report.Vars {
		r.SetVar(k, v)
	}

	dir := templatesDir
	if dir == "" {
		dir = c.Report.TemplatesDir
	}
	if dir == "" {
		return r, nil
	}
	if strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[2:])
		}
	}
	if err := r.LoadTemplates(dir); err != nil {
		return nil, fmt.Errorf("load remediation templates from %s: %w", dir, err)
	}
	return r, nil
}
