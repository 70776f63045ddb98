package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/painel-enem/enem-cli/internal/pipeline"
)

var pipelines = pipeline.NewRegistry()

func pipelineEnv() pipeline.Env {
	return pipeline.Env{
		DataDir:      cfg.Data.Dir,
		ProcessedDir: cfg.Data.ProcessedPath(),
	}
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Build the processed snapshot artifacts",
	Long:  "Each subcommand runs one preprocessing pipeline: it reads the raw source from the data directory and publishes its artifacts under the processed directory.",
}

var preprocessAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The pipelines share no state and publish disjoint artifacts,
		// so they can run side by side.
		g, ctx := errgroup.WithContext(cmd.Context())
		for _, p := range pipelines.All() {
			g.Go(func() error {
				return pipeline.Run(ctx, pipelineEnv(), p)
			})
		}
		return g.Wait()
	},
}

func init() {
	for _, p := range pipelines.All() {
		preprocessCmd.AddCommand(&cobra.Command{
			Use:   p.Name(),
			Short: fmt.Sprintf("Build %s", strings.Join(p.Artifacts(), ", ")),
			RunE: func(cmd *cobra.Command, args []string) error {
				return pipeline.Run(cmd.Context(), pipelineEnv(), p)
			},
		})
	}
	preprocessCmd.AddCommand(preprocessAllCmd)
	rootCmd.AddCommand(preprocessCmd)
}
