// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/qquill2md/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [dir]",
	Short: "Check exported notes for broken front matter and image links",
	Long: `Verify walks an export directory (default: --output), parses the front
matter of every Markdown note, and checks that every image it references
exists. It exits non-zero when any problem is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString("output")
		if len(args) == 1 {
			dir = args[0]
		}

		out := cmd.OutOrStdout()
		report, err := verify.Dir(dir, out)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Checked %d notes, %d image links, %d problems\n",
			report.Notes, report.Images, len(report.Problems))
		if !report.OK() {
			return fmt.Errorf("%d problem(s) found in %s", len(report.Problems), dir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
