// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/qquill2md/internal/catalog"
	"github.com/pdiddy/qquill2md/internal/export"
	"github.com/pdiddy/qquill2md/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the notes recorded by the last cataloged export",
	Long: `Catalog reads <output>/catalog.db, written by an export run with --catalog,
and lists the notes of the most recent run with their status, image count,
and Markdown path. Use --export to dump the run as YAML or JSON.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	path := filepath.Join(viper.GetString("output"), types.CatalogFile)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no catalog at %s (run an export with --catalog first)", path)
	}

	store, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	status, _ := cmd.Flags().GetString("status")
	title, _ := cmd.Flags().GetString("title")
	limit, _ := cmd.Flags().GetInt("limit")
	opts := catalog.QueryOptions{
		Status: types.ExportStatus(status),
		Title:  title,
		Limit:  limit,
	}

	ctx := context.Background()
	out := cmd.OutOrStdout()

	format, _ := cmd.Flags().GetString("export")
	switch format {
	case "":
	case "yaml":
		return store.DumpYAML(ctx, opts, out)
	case "json":
		return store.DumpJSON(ctx, opts, out)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	notes, err := store.Notes(ctx, opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(notes)
	}

	if len(notes) == 0 {
		fmt.Fprintln(out, "No notes found.")
		return nil
	}

	fmt.Fprintf(out, "%-14s  %-20s  %-30s  %-8s  %s\n", "Key", "ID", "Title", "Status", "Images")
	for _, n := range notes {
		fmt.Fprintf(out, "%-14s  %-20s  %-30s  %-8s  %d\n",
			n.Key, truncate(n.ID, 20), truncate(n.Title, 30), n.Status, n.Images)
	}
	fmt.Fprintf(out, "\n%d notes\n", len(notes))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// openCatalog opens the run catalog and starts a new run in it.
func openCatalog(ctx context.Context, cfg types.ExportConfig, log *zap.Logger) (*catalog.Store, error) {
	store, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		return nil, err
	}
	runID, err := store.BeginRun(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Debug("catalog run started", zap.String("run", runID), zap.String("catalog", store.Path()))
	return store, nil
}

// finishCatalog stamps the run with its final counts. Catalog failures never
// fail the export.
func finishCatalog(store *catalog.Store, summary *export.Summary, log *zap.Logger) {
	if err := store.FinishRun(context.Background(), len(summary.Exported), len(summary.Failed)); err != nil {
		log.Warn("catalog finish failed", zap.Error(err))
	}
}

func init() {
	catalogCmd.Flags().String("status", "", "filter by status: exported or failed")
	catalogCmd.Flags().String("title", "", "filter by title substring")
	catalogCmd.Flags().Int("limit", 0, "maximum notes to list (0 = all)")
	catalogCmd.Flags().Bool("json", false, "output notes as JSON")
	catalogCmd.Flags().String("export", "", "dump the run as yaml or json")

	rootCmd.AddCommand(catalogCmd)
}
