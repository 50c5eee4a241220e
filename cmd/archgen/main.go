// Command archgen generates a reference architecture proposal from local or
// S3-hosted discovery documents using an LLM provider.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"archgen/internal/config"
	"archgen/internal/docs"
	"archgen/internal/generator"
	"archgen/internal/output"
	"archgen/internal/port"
	"archgen/internal/service"
	s3storage "archgen/internal/storage/s3"

	// Provider registration.
	_ "archgen/internal/generator/claude"
	_ "archgen/internal/generator/gemini"
	_ "archgen/internal/generator/openai"
)

var (
	// Flags
	docsDir   string
	outDir    string
	modelName string
	maxTokens int
	provider  string
	verbose   bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "archgen",
	Short: "Generate a reference architecture from discovery documents",
	Long: `archgen reads discovery documents (.md, .txt, .pdf) from a directory or an
S3 prefix, sends them to an LLM provider, and writes the proposed
architecture as a Mermaid diagram, a written explanation, and the raw
provider response.

Configuration comes from ARCHGEN_* environment variables (a .env file is
honored); flags override the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), cmd)
	},
}

func init() {
	rootCmd.Flags().StringVar(&docsDir, "docs-dir", "discovery-docs", "directory containing discovery documents")
	rootCmd.Flags().StringVar(&outDir, "out-dir", "outputs", "directory for generated artifacts")
	rootCmd.Flags().StringVar(&modelName, "model", "claude-3-5-sonnet-20240620", "model identifier")
	rootCmd.Flags().IntVar(&maxTokens, "max-tokens", 4000, "maximum output tokens")
	rootCmd.Flags().StringVar(&provider, "provider", "claude", "generator provider (claude, gemini, openai)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags override environment configuration.
	if cmd.Flags().Changed("docs-dir") {
		cfg.Docs.Dir = docsDir
	}
	if cmd.Flags().Changed("out-dir") {
		cfg.Output.Dir = outDir
	}
	primary := cfg.Generator.PrimaryConfig()
	if cmd.Flags().Changed("provider") {
		primary.Provider = provider
		// Without an explicit --model, let the provider's own default apply.
		if !cmd.Flags().Changed("model") {
			primary.DefaultModel = ""
		}
	}
	// Only an explicit --model is threaded through the generate call; the
	// configured model reaches each provider via its own constructor, so a
	// fallback provider is never asked for another vendor's model.
	requestModel := ""
	if cmd.Flags().Changed("model") {
		primary.DefaultModel = modelName
		requestModel = modelName
	}
	if cmd.Flags().Changed("max-tokens") {
		primary.MaxTokens = maxTokens
	}

	gen, err := buildGenerator(cfg, primary)
	if err != nil {
		return err
	}

	// One S3 client serves both the docs source and the output archive.
	var objectStorage port.ObjectStorage
	if cfg.Docs.S3Bucket != "" || cfg.Output.S3Bucket != "" {
		objectStorage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	pdfExtractor := docs.NewPDFExtractor()
	var source port.DocumentSource
	docsDesc := cfg.Docs.Dir
	if cfg.Docs.S3Bucket != "" {
		source = docs.NewS3Source(objectStorage, cfg.Docs.S3Bucket, cfg.Docs.S3Prefix, pdfExtractor)
		docsDesc = "s3://" + cfg.Docs.S3Bucket + "/" + cfg.Docs.S3Prefix
	} else {
		source = docs.NewLoader(cfg.Docs.Dir, pdfExtractor)
	}

	var archive port.ObjectStorage
	if cfg.Output.S3Bucket != "" {
		archive = objectStorage
	}

	svc := service.NewRunService(service.RunParams{
		Source:        source,
		Generator:     gen,
		Writer:        output.NewWriter(cfg.Output.Dir),
		DocsDesc:      docsDesc,
		Provider:      primary.Provider,
		Model:         requestModel,
		MaxTokens:     primary.MaxTokens,
		Archive:       archive,
		ArchiveBucket: cfg.Output.S3Bucket,
		Logger:        logger,
		Console:       os.Stdout,
	})

	_, err = svc.Run(ctx)
	return err
}

// buildGenerator constructs the primary provider and, when secondary or
// tertiary providers are configured, wraps them in a fallback chain.
func buildGenerator(cfg *config.Config, primary *config.GeneratorProviderConfig) (port.Generator, error) {
	first, err := generator.New(primary)
	if err != nil {
		return nil, err
	}
	generators := []port.Generator{first}
	names := []string{primary.Provider}

	for _, tier := range []*config.GeneratorProviderConfig{
		cfg.Generator.SecondaryConfig(),
		cfg.Generator.TertiaryConfig(),
	} {
		if tier == nil {
			continue
		}
		g, err := generator.New(tier)
		if err != nil {
			return nil, err
		}
		generators = append(generators, g)
		names = append(names, tier.Provider)
	}

	if len(generators) == 1 {
		return first, nil
	}
	return generator.NewFallback(generators, names, logger), nil
}
