package iris

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/iris-pipeline/pkg/pipeline"
	"github.com/askiada/iris-pipeline/pkg/pipeline/model"
	"github.com/askiada/iris-pipeline/pkg/resource"
	"github.com/askiada/iris-pipeline/pkg/solid"
	"github.com/askiada/iris-pipeline/pkg/solid/download"
	"github.com/askiada/iris-pipeline/pkg/solid/kmeans"
)

// RunConfig holds the configuration of every solid for one run.
type RunConfig struct {
	Fetch   download.Config
	Cluster kmeans.Config
}

// Result is what a successful run produced.
type Result struct {
	RunID string
	// DatasetPath is the output of download_file, as given to k_means_iris.
	DatasetPath    string
	Notebook       kmeans.Notebook
	OutputNotebook resource.FileHandle
	Duration       time.Duration
}

type execution struct {
	logger       *zap.Logger
	runID        string
	pipelineOpts []model.PipelineOption
}

type Option func(e *execution)

// WithLogger sets the logger of the run.
func WithLogger(logger *zap.Logger) Option {
	return func(e *execution) {
		e.logger = logger
	}
}

// WithRunID sets the identifier of the run. A random UUID is used otherwise.
func WithRunID(runID string) Option {
	return func(e *execution) {
		e.runID = runID
	}
}

// WithPipelineOptions adds options to the underlying pipeline, such as measure.PipelineMeasure.
func WithPipelineOptions(opts ...model.PipelineOption) Option {
	return func(e *execution) {
		e.pipelineOpts = append(e.pipelineOpts, opts...)
	}
}

// NotebookKey is the key the executed notebook of a run is stored under.
func NotebookKey(runID string) string {
	return runID + "/" + kmeans.Name + ".ipynb"
}

// Execute runs the pipeline once. Steps run one after the other: k_means_iris only starts once download_file
// has output a path. The first error stops the run and is returned, prefixed with the name of the failing step.
func Execute(ctx context.Context, def *Definition, cfg RunConfig, opts ...Option) (*Result, error) {
	if def == nil {
		return nil, errors.Wrap(ErrMissingDependency, "definition")
	}

	exec := &execution{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(exec)
	}
	if exec.runID == "" {
		exec.runID = uuid.NewString()
	}

	logger := exec.logger.With(zap.String("pipeline", Name), zap.String("run_id", exec.runID))
	res := &Result{RunID: exec.runID}
	start := time.Now()

	pipe, err := build(ctx, def, cfg, exec, res)
	if err != nil {
		return nil, err
	}

	logger.Info("run started")

	err = pipe.Run()
	res.Duration = time.Since(start)
	if err != nil {
		logger.Error("run failed", zap.Error(err), zap.Duration("duration", res.Duration))

		return nil, errors.Wrapf(err, "run %s failed", exec.runID)
	}

	logger.Info("run succeeded",
		zap.String("output_notebook", res.OutputNotebook.URI),
		zap.Duration("duration", res.Duration),
	)

	return res, nil
}

func build(ctx context.Context, def *Definition, cfg RunConfig, exec *execution, res *Result) (*pipeline.Pipeline, error) {
	pipe, err := pipeline.New(ctx, exec.pipelineOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	fetched, err := pipeline.AddRootStep(pipe, download.Name, func(ctx context.Context, rootChan chan<- string) error {
		path, err := def.fetch.Execute(ctx, solid.Nothing{}, cfg.Fetch)
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case rootChan <- path:
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add %s", download.Name)
	}

	clustered, err := pipeline.AddStepOneToOne(pipe, kmeans.Name, fetched, func(ctx context.Context, path string) (kmeans.Notebook, error) {
		res.DatasetPath = path

		return def.cluster.Execute(ctx, path, cfg.Cluster)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add %s", kmeans.Name)
	}

	err = pipeline.AddSink(pipe, OutputNotebookStep, clustered, func(ctx context.Context, notebook kmeans.Notebook) error {
		handle, err := def.files.WriteFile(ctx, NotebookKey(exec.runID), notebook.Path)
		if err != nil {
			return errors.Wrap(err, "unable to store output notebook")
		}

		res.Notebook = notebook
		res.OutputNotebook = handle

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to add %s", OutputNotebookStep)
	}

	return pipe, nil
}
