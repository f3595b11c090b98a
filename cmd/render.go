package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choromap/internal/pipeline"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the choropleth map widget to an HTML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := pipeline.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		out := renderOut
		if out == "" {
			out = cfg.Render.OutPath
		}

		f, err := os.Create(out)
		if err != nil {
			return eris.Wrapf(err, "create output file %s", out)
		}
		defer func() { _ = f.Close() }()

		if err := result.Map.WriteHTML(f); err != nil {
			return err
		}

		zap.L().Info("widget written",
			zap.String("path", out),
			zap.Int("regions", len(result.Regions)),
			zap.Strings("layers", result.Map.LayerGroups()),
		)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output HTML path (default from config)")
	rootCmd.AddCommand(renderCmd)
}
