// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/qquill2md/internal/backup"
	"github.com/pdiddy/qquill2md/internal/export"
	"github.com/pdiddy/qquill2md/internal/logging"
	"github.com/pdiddy/qquill2md/pkg/types"
)

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := exportConfig(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Verbose {
		fmt.Fprintf(out, "Loading data from %s...\n", cfg.InputPath)
	}
	b, err := backup.Load(cfg.InputPath)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		fmt.Fprintf(out, "Found %d marks to process\n", b.Marks.Len())
	}

	var (
		opts    []export.Option
		summary export.Summary
	)
	if cfg.Catalog {
		store, err := openCatalog(ctx, cfg, log)
		if err != nil {
			log.Warn("catalog unavailable", zap.String("catalog", cfg.CatalogPath()), zap.Error(err))
		} else {
			defer store.Close()
			opts = append(opts, export.WithRecorder(store))
			defer finishCatalog(store, &summary, log)
		}
	}

	progress := io.Discard
	if cfg.Verbose {
		progress = out
	}

	exporter := export.New(cfg, log, opts...)
	summary, err = exporter.ExportAll(ctx, b, progress)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		if summary.HasFailures() {
			fmt.Fprintf(out, "Export completed with %d failed note(s)\n", len(summary.Failed))
		} else {
			fmt.Fprintln(out, "Export completed successfully!")
		}
		fmt.Fprintf(out, "Markdown files saved to: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "Resources saved to: %s\n", cfg.ResourcesDir())
	} else {
		fmt.Fprintf(out, "Exported %d markdown files to %s\n", len(summary.Exported), cfg.OutputDir)
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d of %d note(s) failed: %s",
			len(summary.Failed), summary.Total(), strings.Join(summary.FailedKeys(), ", "))
	}
	return nil
}

// exportConfig resolves flags, config file, and environment into one
// ExportConfig. Field values may be comma- or space-separated; when --fields
// is given, positionals after the input file are further field names
// ("backup.json --fields id title tags").
func exportConfig(cmd *cobra.Command, args []string) (types.ExportConfig, error) {
	extra := args[1:]
	if len(extra) > 0 && !cmd.Flags().Changed("fields") {
		return types.ExportConfig{}, fmt.Errorf("unexpected arguments %q: only one backup file may be given", extra)
	}

	cfg := types.ExportConfig{
		InputPath: args[0],
		OutputDir: viper.GetString("output"),
		Fields:    splitFields(slices.Concat(viper.GetStringSlice("fields"), extra)),
		Verbose:   viper.GetBool("verbose"),
		Catalog:   viper.GetBool("catalog"),
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = types.DefaultOutputDir
	}
	if viper.GetBool("ephemeris") {
		cfg = cfg.WithEphemeris()
	}
	return cfg, nil
}

func splitFields(values []string) []string {
	var fields []string
	for _, v := range values {
		fields = append(fields, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})...)
	}
	return fields
}
