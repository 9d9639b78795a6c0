package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/foldermover/foldermover/internal/app"
	"github.com/foldermover/foldermover/internal/manifest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print each folder's current zip/unzip progress from the Staging Store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New("status")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := a.Context()
		mstore := manifest.NewStore(a.Staging, a.Config.S3Prefix)

		folders, ok, err := mstore.ReadFolderIndex(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no folder index found; has the mapper run?")
			return nil
		}

		bold := color.New(color.Bold)
		for _, folder := range folders {
			zp, err := a.Progress.LoadFolderProgress(ctx, folder)
			if err != nil {
				return err
			}
			up, err := a.Progress.LoadUnzipProgress(ctx, folder)
			if err != nil {
				return err
			}

			bold.Println(folder)
			fmt.Printf("  zip:   %s  archives=%d files=%d\n", boolLabel(zp.FolderComplete), zp.CompletedKeys.Len(), zp.CompletedFiles.Len())
			fmt.Printf("  unzip: %s  processed=%d\n", boolLabel(up.FolderComplete), up.ProcessedKeys.Len())
		}
		return nil
	},
}

func boolLabel(complete bool) string {
	if complete {
		return color.GreenString("complete")
	}
	return color.YellowString("in progress")
}
