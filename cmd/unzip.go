package cmd

import (
	"github.com/spf13/cobra"

	"github.com/foldermover/foldermover/internal/app"
	"github.com/foldermover/foldermover/internal/unzipper"
)

var unzipCmd = &cobra.Command{
	Use:   "unzip",
	Short: "Download, verify, extract, and merge every uploaded archive into the destination",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New("unzipper")
		if err != nil {
			return err
		}
		defer a.Close()

		return unzipper.New(a).Run(a.Context())
	},
}
