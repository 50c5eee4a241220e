package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Docs      DocsConfig
	Output    OutputConfig
	Generator GeneratorConfig
	S3        S3Config
	Log       LogConfig
}

// DocsConfig holds discovery-document source settings.
type DocsConfig struct {
	Dir string `mapstructure:"dir"`

	// When S3Bucket is set, documents are listed and downloaded from
	// s3://<bucket>/<prefix> instead of the local directory.
	S3Bucket string `mapstructure:"s3_bucket"`
	S3Prefix string `mapstructure:"s3_prefix"`
}

// OutputConfig holds output artifact settings.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`

	// When S3Bucket is set, the written artifacts are additionally
	// archived under runs/<run-id>/ in that bucket.
	S3Bucket string `mapstructure:"s3_bucket"`
}

// GeneratorProviderConfig holds settings for a single LLM provider.
type GeneratorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxTokens    int    `mapstructure:"max_tokens"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// GeneratorConfig holds LLM generation settings with multi-provider support.
type GeneratorConfig struct {
	// Legacy flat fields (backwards-compatible)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxTokens    int    `mapstructure:"max_tokens"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   GeneratorProviderConfig `mapstructure:"primary"`
	Secondary GeneratorProviderConfig `mapstructure:"secondary"`
	Tertiary  GeneratorProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (g *GeneratorConfig) PrimaryConfig() *GeneratorProviderConfig {
	if g.Primary.Provider != "" {
		return &g.Primary
	}
	return &GeneratorProviderConfig{
		Provider:     g.Provider,
		APIKey:       g.APIKey,
		DefaultModel: g.DefaultModel,
		MaxTokens:    g.MaxTokens,
		TimeoutSecs:  g.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (g *GeneratorConfig) SecondaryConfig() *GeneratorProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (g *GeneratorConfig) TertiaryConfig() *GeneratorProviderConfig {
	if g.Tertiary.Provider != "" {
		return &g.Tertiary
	}
	return nil
}

// S3Config holds AWS S3 settings shared by the docs source and the archive.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the ARCHGEN_
// prefix. A .env file in the working directory, if present, is loaded first.
func Load() (*Config, error) {
	// Missing .env is the common case and not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ARCHGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Docs defaults
	v.SetDefault("docs.dir", "discovery-docs")
	v.SetDefault("docs.s3_bucket", "")
	v.SetDefault("docs.s3_prefix", "")

	// Output defaults
	v.SetDefault("output.dir", "outputs")
	v.SetDefault("output.s3_bucket", "")

	// Generator defaults (legacy flat)
	v.SetDefault("generator.provider", "claude")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.default_model", "claude-3-5-sonnet-20240620")
	v.SetDefault("generator.max_tokens", 4000)
	v.SetDefault("generator.timeout_secs", 120)

	// Generator primary/secondary/tertiary defaults
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("generator."+tier+".provider", "")
		v.SetDefault("generator."+tier+".api_key", "")
		v.SetDefault("generator."+tier+".default_model", "")
		v.SetDefault("generator."+tier+".max_tokens", 4000)
		v.SetDefault("generator."+tier+".timeout_secs", 120)
	}

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"docs.dir":                          "ARCHGEN_DOCS_DIR",
		"docs.s3_bucket":                    "ARCHGEN_DOCS_S3_BUCKET",
		"docs.s3_prefix":                    "ARCHGEN_DOCS_S3_PREFIX",
		"output.dir":                        "ARCHGEN_OUTPUT_DIR",
		"output.s3_bucket":                  "ARCHGEN_OUTPUT_S3_BUCKET",
		"generator.provider":                "ARCHGEN_GENERATOR_PROVIDER",
		"generator.api_key":                 "ARCHGEN_GENERATOR_API_KEY",
		"generator.default_model":           "ARCHGEN_GENERATOR_DEFAULT_MODEL",
		"generator.max_tokens":              "ARCHGEN_GENERATOR_MAX_TOKENS",
		"generator.timeout_secs":            "ARCHGEN_GENERATOR_TIMEOUT_SECS",
		"generator.primary.provider":        "ARCHGEN_GENERATOR_PRIMARY_PROVIDER",
		"generator.primary.api_key":         "ARCHGEN_GENERATOR_PRIMARY_API_KEY",
		"generator.primary.default_model":   "ARCHGEN_GENERATOR_PRIMARY_DEFAULT_MODEL",
		"generator.primary.max_tokens":      "ARCHGEN_GENERATOR_PRIMARY_MAX_TOKENS",
		"generator.primary.timeout_secs":    "ARCHGEN_GENERATOR_PRIMARY_TIMEOUT_SECS",
		"generator.secondary.provider":      "ARCHGEN_GENERATOR_SECONDARY_PROVIDER",
		"generator.secondary.api_key":       "ARCHGEN_GENERATOR_SECONDARY_API_KEY",
		"generator.secondary.default_model": "ARCHGEN_GENERATOR_SECONDARY_DEFAULT_MODEL",
		"generator.secondary.max_tokens":    "ARCHGEN_GENERATOR_SECONDARY_MAX_TOKENS",
		"generator.secondary.timeout_secs":  "ARCHGEN_GENERATOR_SECONDARY_TIMEOUT_SECS",
		"generator.tertiary.provider":       "ARCHGEN_GENERATOR_TERTIARY_PROVIDER",
		"generator.tertiary.api_key":        "ARCHGEN_GENERATOR_TERTIARY_API_KEY",
		"generator.tertiary.default_model":  "ARCHGEN_GENERATOR_TERTIARY_DEFAULT_MODEL",
		"generator.tertiary.max_tokens":     "ARCHGEN_GENERATOR_TERTIARY_MAX_TOKENS",
		"generator.tertiary.timeout_secs":   "ARCHGEN_GENERATOR_TERTIARY_TIMEOUT_SECS",
		"s3.region":                         "ARCHGEN_S3_REGION",
		"s3.endpoint":                       "ARCHGEN_S3_ENDPOINT",
		"s3.access_key":                     "ARCHGEN_S3_ACCESS_KEY",
		"s3.secret_key":                     "ARCHGEN_S3_SECRET_KEY",
		"log.level":                         "ARCHGEN_LOG_LEVEL",
		"log.format":                        "ARCHGEN_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	cfg.Docs = DocsConfig{
		Dir:      v.GetString("docs.dir"),
		S3Bucket: v.GetString("docs.s3_bucket"),
		S3Prefix: v.GetString("docs.s3_prefix"),
	}
	cfg.Output = OutputConfig{
		Dir:      v.GetString("output.dir"),
		S3Bucket: v.GetString("output.s3_bucket"),
	}
	cfg.Generator = GeneratorConfig{
		Provider:     v.GetString("generator.provider"),
		APIKey:       v.GetString("generator.api_key"),
		DefaultModel: v.GetString("generator.default_model"),
		MaxTokens:    v.GetInt("generator.max_tokens"),
		TimeoutSecs:  v.GetInt("generator.timeout_secs"),
		Primary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.primary.provider"),
			APIKey:       v.GetString("generator.primary.api_key"),
			DefaultModel: v.GetString("generator.primary.default_model"),
			MaxTokens:    v.GetInt("generator.primary.max_tokens"),
			TimeoutSecs:  v.GetInt("generator.primary.timeout_secs"),
		},
		Secondary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.secondary.provider"),
			APIKey:       v.GetString("generator.secondary.api_key"),
			DefaultModel: v.GetString("generator.secondary.default_model"),
			MaxTokens:    v.GetInt("generator.secondary.max_tokens"),
			TimeoutSecs:  v.GetInt("generator.secondary.timeout_secs"),
		},
		Tertiary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.tertiary.provider"),
			APIKey:       v.GetString("generator.tertiary.api_key"),
			DefaultModel: v.GetString("generator.tertiary.default_model"),
			MaxTokens:    v.GetInt("generator.tertiary.max_tokens"),
			TimeoutSecs:  v.GetInt("generator.tertiary.timeout_secs"),
		},
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
