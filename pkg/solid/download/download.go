// Package download provides the download_file solid: it retrieves a file over HTTP and stores it locally.
package download

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/iris-pipeline/pkg/solid"
)

const (
	// Name is the name of the solid in the pipeline.
	Name = "download_file"
	// LegacyOutputPath is the output of the solid unless Config.EmitResolvedPath is set.
	// The k-means notebook reads this file from its working directory.
	LegacyOutputPath = "iris.data"
)

// ErrUnexpectedStatus is returned when the server does not answer with a 2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Config is the configuration of the solid.
type Config struct {
	// URL is the URL from which to download the file.
	URL string
	// Path is the path to which to download the file, relative to the base directory of the solid.
	Path string
	// EmitResolvedPath makes the solid output the path the file was written to instead of LegacyOutputPath.
	EmitResolvedPath bool
}

// Solid downloads a file from a URL to a path.
type Solid struct {
	baseDir string
	client  *http.Client
	logger  *zap.Logger
}

type Option func(s *Solid)

// WithHTTPClient sets the client used to download the file. It defaults to http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Solid) {
		s.client = client
	}
}

// WithLogger sets the logger of the solid.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Solid) {
		s.logger = logger
	}
}

// New creates the solid. Relative paths are resolved against baseDir.
func New(baseDir string, opts ...Option) *Solid {
	s := &Solid{
		baseDir: baseDir,
		client:  http.DefaultClient,
		logger:  zap.NewNop(),
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
		Description: "A simple utility solid that downloads a file from a URL to a path",
		Output:      "path (string): the path to which the file was downloaded",
		Config: []solid.Field{
			{Name: "url", Type: "string", Required: true, Description: "The URL from which to download the file"},
			{Name: "path", Type: "string", Required: true, Description: "The path to which to download the file"},
			{
				Name: "emit_resolved_path", Type: "bool", Default: "false",
				Description: "Output the resolved path instead of " + LegacyOutputPath,
			},
		},
	}
}

// ResolvePath returns the path a file configured with path is written to.
func (s *Solid) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(s.baseDir, path)
}

// Execute downloads cfg.URL to cfg.Path. An existing file is overwritten.
// Nothing is retried and a partially written file is left in place.
func (s *Solid) Execute(ctx context.Context, _ solid.Nothing, cfg Config) (string, error) {
	outputPath := s.ResolvePath(cfg.Path)

	err := s.retrieve(ctx, cfg.URL, outputPath)
	if err != nil {
		return "", err
	}

	s.logger.Info("file downloaded", zap.String("path", outputPath), zap.String("url", cfg.URL))

	if cfg.EmitResolvedPath {
		return outputPath, nil
	}

	return LegacyOutputPath, nil
}

func (s *Solid) retrieve(ctx context.Context, url, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "unable to create request for %s", url)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(ErrUnexpectedStatus, "get %s: %s", url, resp.Status)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", outputPath)
	}
	defer file.Close()

	_, err = io.Copy(file, resp.Body)
	if err != nil {
		return errors.Wrapf(err, "unable to write %s", outputPath)
	}

	return errors.Wrapf(file.Close(), "unable to close %s", outputPath)
}

var _ solid.Solid[solid.Nothing, Config, string] = (*Solid)(nil)
