package cmd

import (
	"github.com/spf13/cobra"

	"github.com/foldermover/foldermover/internal/app"
	"github.com/foldermover/foldermover/internal/mapper"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Discover source folders and classify their files into normal and large lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New("mapper")
		if err != nil {
			return err
		}
		defer a.Close()

		return mapper.New(a).Run(a.Context())
	},
}
