package cmd

import (
	"github.com/spf13/cobra"

	"github.com/foldermover/foldermover/internal/app"
	"github.com/foldermover/foldermover/internal/zipper"
)

var zipCmd = &cobra.Command{
	Use:   "zip",
	Short: "Build and upload store-only zip archives for every mapped folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New("zipper")
		if err != nil {
			return err
		}
		defer a.Close()

		return zipper.New(a).Run(a.Context())
	},
}
