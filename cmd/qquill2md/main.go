// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the qquill2md CLI, which converts a
// QQuill/SpellBook JSON backup into one Markdown file per note.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/qquill2md/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd converts a backup; subcommands inspect the result.
var rootCmd = &cobra.Command{
	Use:   "qquill2md <backup.json>",
	Short: "Convert QQuill/SpellBook JSON backup to Markdown files",
	Long: `qquill2md reads a QQuill/SpellBook JSON backup and writes one Markdown
file per note. Each file starts with YAML front matter, followed by the
note title, its timestamp, its images, its content, and the element tree.
Embedded base64 images are decoded into <output>/resources/.`,
	Example: `  qquill2md data/SpellBook_Backup_2024-02-10.json
  qquill2md data/backup.json --output ./my_notes --ephemeris
  qquill2md data/backup.json --fields id,title,created_at,tags
  qquill2md data/backup.json --fields id title created_at tags`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runExport,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./qquill2md.yaml or ~/.config/qquill2md/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", types.DefaultOutputDir, "output directory for markdown files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	rootCmd.Flags().BoolP("ephemeris", "e", false, "include ephemeris data in the front matter")
	rootCmd.Flags().StringSliceP("fields", "f", types.DefaultFields(), "fields to include in YAML front matter (comma- or space-separated)")
	rootCmd.Flags().Bool("catalog", false, "record the run in <output>/"+types.CatalogFile)

	for _, name := range []string{"output", "verbose"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	for _, name := range []string{"ephemeris", "fields", "catalog"} {
		_ = viper.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("qquill2md")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "qquill2md"))
		}
	}

	viper.SetEnvPrefix("QQUILL2MD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
