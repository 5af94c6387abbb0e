package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"slidedeck/internal/config"
	"slidedeck/internal/generator"
	"slidedeck/internal/pkg/logger"
	"slidedeck/internal/storage"
	"slidedeck/internal/version"
)

const serviceName = "schemagen"

type options struct {
	templatesDir string
	outDir       string
	pattern      string
	watch        bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "schemagen",
		Short: "Generate JSON Schema artifacts for presentation templates",
		Long: `schemagen scans the templates directory, converts the content schema of
every registered layout to JSON Schema and writes one <template>.json
artifact per template to the configured store.

Flags override TEMPLATES_DIR, SCHEMAS_DIR and LAYOUT_PATTERN.
`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.templatesDir, "templates-dir", "", "directory holding one subdirectory per template")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "artifact directory for the localfs store")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "doublestar pattern selecting layout files")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "regenerate whenever templates change")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return err
	}
	if opts.templatesDir != "" {
		cfg.TemplatesDir = opts.templatesDir
	}
	if opts.outDir != "" {
		cfg.SchemasDir = opts.outDir
	}
	if opts.pattern != "" {
		cfg.LayoutPattern = opts.pattern
	}

	if cfg.LogFile != "" {
		f, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		cfg.Log.File = f
	}
	cfg.Log.Output = cmd.ErrOrStderr()
	log := logger.New(cfg.Log)

	if opts.outDir != "" && cfg.Storage.Provider != config.ProviderLocalFS {
		log.Warn("--out-dir only applies to the localfs store", "provider", cfg.Storage.Provider)
	}

	store, err := storage.NewProvider(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize storage provider", "error", err.Error())
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	gen := generator.New(cfg.TemplatesDir, store,
		generator.WithPattern(cfg.LayoutPattern),
		generator.WithLogger(log),
	)

	if opts.watch {
		return gen.Watch(ctx, generator.DefaultDebounce, nil)
	}

	sum, err := gen.Run(ctx)
	if err != nil {
		log.Error("schema generation failed", "error", err.Error())
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d templates, %d written, %d slides, %d skipped, %d failed\n",
		sum.Templates, sum.Written, sum.Slides, sum.Skipped, sum.Failed)
	return nil
}
