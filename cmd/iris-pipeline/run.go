package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/askiada/iris-pipeline/internal/config"
	"github.com/askiada/iris-pipeline/pkg/iris"
	"github.com/askiada/iris-pipeline/pkg/pipeline/drawer"
	"github.com/askiada/iris-pipeline/pkg/pipeline/measure"
	"github.com/askiada/iris-pipeline/pkg/pipeline/model"
	"github.com/askiada/iris-pipeline/pkg/solid/download"
	"github.com/askiada/iris-pipeline/pkg/solid/kmeans"
)

var runFlags struct {
	config  string
	graph   string
	metrics string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once",
	Example: `  iris-pipeline run -c run.yaml
  iris-pipeline run -c run.yaml --graph iris.dot --metrics iris.prom`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(runFlags.config)
	if err != nil {
		return err //nolint:wrapcheck
	}

	def, err := newDefinition(cfg, logger)
	if err != nil {
		return err
	}

	res, err := execute(ctx, def, cfg, runFlags.graph, runFlags.metrics)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s succeeded in %s\n", res.RunID, res.Duration)
	fmt.Fprintf(cmd.OutOrStdout(), "dataset: %s\n", res.DatasetPath)
	fmt.Fprintf(cmd.OutOrStdout(), "output notebook: %s\n", res.OutputNotebook.URI)

	return nil
}

// newDefinition wires the solids and the file manager resource described by cfg.
func newDefinition(cfg *config.RunConfig, logger *zap.Logger) (*iris.Definition, error) {
	files, err := cfg.NewFileManager()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	kmeansOpts := []kmeans.Option{kmeans.WithLogger(logger)}
	if cfg.Notebook.OutputDir != "" {
		kmeansOpts = append(kmeansOpts, kmeans.WithOutputDir(cfg.Resolve(cfg.Notebook.OutputDir)))
	}

	def, err := iris.NewDefinition(
		download.New(cfg.BaseDir, download.WithLogger(logger)),
		kmeans.New(cfg.Resolve(cfg.Notebook.Path), cfg.BaseDir, cfg.NewRunner(), kmeansOpts...),
		files,
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to define pipeline")
	}

	return def, nil
}

func execute(ctx context.Context, def *iris.Definition, cfg *config.RunConfig, graphFile, metricsFile string) (*iris.Result, error) {
	msr := measure.NewDefaultMeasure()
	pipeOpts := []model.PipelineOption{measure.PipelineMeasure(msr)}
	if graphFile != "" {
		pipeOpts = append(pipeOpts, drawer.PipelineDrawer(drawer.NewDOTDrawer(graphFile), msr))
	}

	res, err := iris.Execute(ctx, def, iris.RunConfig{
		Fetch: download.Config{
			URL:              cfg.Solids.DownloadFile.Config.URL,
			Path:             cfg.Solids.DownloadFile.Config.Path,
			EmitResolvedPath: cfg.Solids.DownloadFile.Config.EmitResolvedPath,
		},
		Cluster: kmeans.Config{ClusterCount: cfg.ClusterCount()},
	}, iris.WithLogger(logger), iris.WithPipelineOptions(pipeOpts...))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if metricsFile != "" {
		err = measure.WriteTextfile(msr, metricsFile)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to write metrics to %s", metricsFile)
		}
	}

	return res, nil
}
