package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nikogura/suture-assessor/pkg/scorer"
	"github.com/pkg/errors"
)

const (
	// ProviderGemini writes summative comments with Gemini.
	ProviderGemini = "gemini"
	// ProviderAnthropic writes summative comments with Claude.
	ProviderAnthropic = "anthropic"

	defaultAssessmentModel  = "gemini-2.5-pro"
	defaultInlineLimitBytes = 20 << 20
	defaultConcurrency      = 2
)

// Config represents the application configuration.
type Config struct {
	GeminiAPIKey     string          `json:"gemini_api_key"`
	AnthropicAPIKey  string          `json:"anthropic_api_key,omitempty"`
	Models           ModelsConfig    `json:"models,omitempty"`
	SummaryProvider  string          `json:"summary_provider,omitempty"`
	RubricLocation   string          `json:"rubric_location,omitempty"`
	Distribution     map[int]float64 `json:"distribution,omitempty"`
	TiePolicy        string          `json:"tie_policy,omitempty"`
	InlineLimitBytes int64           `json:"inline_limit_bytes,omitempty"`
	Pandoc           PandocConfig    `json:"pandoc"`
	Defaults         DefaultConfig   `json:"defaults"`
}

// ModelsConfig holds model selection for item assessment and summaries.
type ModelsConfig struct {
	Assessment string `json:"assessment,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// PandocConfig holds pandoc-related configuration.
type PandocConfig struct {
	TemplatePath string `json:"template_path,omitempty"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir   string `json:"output_dir"`
	Concurrency int    `json:"concurrency,omitempty"`
}

// GetAssessmentModel returns the assessment model or default if not specified.
func (c *Config) GetAssessmentModel() (model string) {
	if c.Models.Assessment != "" {
		model = c.Models.Assessment
		return model
	}
	model = defaultAssessmentModel
	return model
}

// GetSummaryModel returns the summary model. An empty string means the
// provider's default.
func (c *Config) GetSummaryModel() (model string) {
	if c.Models.Summary != "" {
		model = c.Models.Summary
		return model
	}
	if c.SummaryProvider == ProviderGemini || c.SummaryProvider == "" {
		model = c.GetAssessmentModel()
	}
	return model
}

// TargetDistribution returns the configured grading curve, or the default
// curve when none is set.
func (c *Config) TargetDistribution() (d scorer.Distribution, err error) {
	if len(c.Distribution) == 0 {
		d = scorer.DefaultDistribution()
		return d, err
	}
	d, err = scorer.NewDistribution(c.Distribution)
	return d, err
}

// Policy returns the configured tie policy.
func (c *Config) Policy() (policy scorer.TiePolicy, err error) {
	policy, err = scorer.ParseTiePolicy(c.TiePolicy)
	return policy, err
}

// DefaultPath returns $HOME/.suture-assessor/config.json.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, ".suture-assessor", "config.json")
	return path, err
}

// Load reads configuration from file with environment variable overrides.
func Load(configPath string) (cfg Config, err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	// Read config file
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("config file not found: %s (run 'suture-assessor init' to create)", path)
			return cfg, err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	// Parse JSON
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return cfg, err
	}

	// Override with environment variables if set
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.GeminiAPIKey = apiKey
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.AnthropicAPIKey = apiKey
	}

	// Validate required fields
	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks that all required configuration is present and fills in
// defaults. A bad distribution is reported as a scorer.InvalidDistributionError.
func (c *Config) Validate() (err error) {
	if c.GeminiAPIKey == "" {
		err = errors.New("gemini_api_key is required (set in config or GEMINI_API_KEY env var)")
		return err
	}

	switch c.SummaryProvider {
	case "":
		c.SummaryProvider = ProviderGemini
	case ProviderGemini:
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			err = errors.New("anthropic_api_key is required when summary_provider is anthropic (set in config or ANTHROPIC_API_KEY env var)")
			return err
		}
	default:
		err = errors.Errorf("summary_provider must be %q or %q, got %q", ProviderGemini, ProviderAnthropic, c.SummaryProvider)
		return err
	}

	// Check rubric file exists
	if c.RubricLocation != "" {
		_, err = os.Stat(c.RubricLocation)
		if os.IsNotExist(err) {
			err = errors.Errorf("rubric file not found: %s", c.RubricLocation)
			return err
		}
		err = nil
	}

	_, err = c.TargetDistribution()
	if err != nil {
		return err
	}

	_, err = c.Policy()
	if err != nil {
		return err
	}

	if c.InlineLimitBytes < 0 {
		err = errors.New("inline_limit_bytes must not be negative")
		return err
	}
	if c.InlineLimitBytes == 0 {
		c.InlineLimitBytes = defaultInlineLimitBytes
	}

	// Set defaults if not specified
	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "./assessments"
	}
	if c.Defaults.Concurrency < 1 {
		c.Defaults.Concurrency = defaultConcurrency
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return err
	}

	defaultConfig := Config{
		GeminiAPIKey:     "your-gemini-api-key",
		SummaryProvider:  ProviderGemini,
		Models:           ModelsConfig{Assessment: defaultAssessmentModel},
		Distribution:     scorer.DefaultDistribution().Map(),
		TiePolicy:        string(scorer.TiesShareScore),
		InlineLimitBytes: defaultInlineLimitBytes,
		Defaults: DefaultConfig{
			OutputDir:   filepath.Join(homeDir, "Documents", "Assessments"),
			Concurrency: defaultConcurrency,
		},
	}

	// Write to file
	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
