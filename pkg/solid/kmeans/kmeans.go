// Package kmeans provides the k_means_iris solid. The clustering itself is done by an external notebook,
// the solid only threads its input and configuration through to a notebook Runner.
package kmeans

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/iris-pipeline/pkg/solid"
)

const (
	// Name is the name of the solid in the pipeline.
	Name = "k_means_iris"
	// DefaultClusterCount is used when no cluster count is configured.
	DefaultClusterCount = 3

	// ParamPath is the notebook parameter holding the local path to the dataset.
	ParamPath = "path"
	// ParamClusterCount is the notebook parameter holding the number of clusters to find.
	ParamClusterCount = "cluster_count"
)

// Config is the configuration of the solid.
type Config struct {
	// ClusterCount is the number of clusters to find. Zero means DefaultClusterCount.
	ClusterCount int
}

// Notebook is an executed notebook.
type Notebook struct {
	Path         string
	ClusterCount int
}

// Solid runs the k-means notebook on a dataset.
type Solid struct {
	notebook  string
	workDir   string
	outputDir string
	runner    Runner
	logger    *zap.Logger
}

type Option func(s *Solid)

// WithOutputDir sets the directory executed notebooks are written to. It defaults to the working directory.
func WithOutputDir(dir string) Option {
	return func(s *Solid) {
		s.outputDir = dir
	}
}

// WithLogger sets the logger of the solid.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Solid) {
		s.logger = logger
	}
}

// New creates the solid running notebook with runner. The notebook runs in workDir, so relative dataset paths
// are resolved against it.
func New(notebook, workDir string, runner Runner, opts ...Option) *Solid {
	s := &Solid{
		notebook:  notebook,
		workDir:   workDir,
		outputDir: workDir,
		runner:    runner,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Info describes the solid.
func (s *Solid) Info() solid.Info {
	return solid.Info{
		Name:        Name,
		Description: "Runs the k-means notebook " + filepath.Base(s.notebook),
		Input:       "path (string): local path to the Iris dataset",
		Output:      "notebook: the executed notebook",
		Config: []solid.Field{
			{
				Name: "config", Type: "int", Default: strconv.Itoa(DefaultClusterCount),
				Description: "The number of clusters to find",
			},
		},
	}
}

// Execute runs the notebook with path and the cluster count as parameters.
func (s *Solid) Execute(ctx context.Context, path string, cfg Config) (Notebook, error) {
	count := cfg.ClusterCount
	if count == 0 {
		count = DefaultClusterCount
	}

	run := NotebookRun{
		Notebook: s.notebook,
		Output:   filepath.Join(s.outputDir, fmt.Sprintf("%s-%s.ipynb", Name, uuid.NewString())),
		WorkDir:  s.workDir,
		Parameters: map[string]any{
			ParamPath:         path,
			ParamClusterCount: count,
		},
	}

	s.logger.Info("running notebook",
		zap.String("notebook", run.Notebook),
		zap.String("path", path),
		zap.Int("cluster_count", count),
	)

	err := s.runner.Run(ctx, run)
	if err != nil {
		return Notebook{}, errors.Wrapf(err, "unable to run notebook %s", s.notebook)
	}

	s.logger.Debug("notebook executed", zap.String("output", run.Output))

	return Notebook{Path: run.Output, ClusterCount: count}, nil
}

var _ solid.Solid[string, Config, Notebook] = (*Solid)(nil)
