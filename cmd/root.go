package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldermover/foldermover/internal/common"
)

var rootCmd = &cobra.Command{
	Use:   "foldermover",
	Short: "Migrate large folder trees between remotes via a zip-staged pipeline",
	Long: "foldermover moves large file trees between two remotes that the Transfer Agent\n" +
		"understands, using an S3-compatible Staging Store as a crash-safe intermediate\n" +
		"buffer. Each run is one of three independent, resumable stages: map, zip, unzip.",
	Version: common.Version,
}

// Execute runs the root command, exiting non-zero on fatal startup failure
// (spec section 6: "non-zero on fatal startup failure").
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(zipCmd)
	rootCmd.AddCommand(unzipCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(envCmd)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List recognized environment variables and their defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, ev := range common.VisibleEnvironmentVariables {
			fmt.Printf("%-28s default=%-12q %s\n", ev.Name, ev.DefaultValue, ev.Description)
		}
		return nil
	},
}
