// Package config loads the run configuration of the iris pipeline.
//
// The file follows the shape of a dagster run config:
//
//	solids:
//	  download_file:
//	    config:
//	      url: https://archive.ics.uci.edu/ml/machine-learning-databases/iris/iris.data
//	      path: iris.data
//	  k_means_iris:
//	    config: 3
//	resources:
//	  file_manager:
//	    config:
//	      base_dir: storage
//	notebook:
//	  path: iris-kmeans_2.ipynb
//
// Relative paths are resolved against the directory holding the file.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/iris-pipeline/pkg/resource"
	"github.com/askiada/iris-pipeline/pkg/solid/kmeans"
)

const (
	// RunnerPapermill runs the notebook with the papermill command line.
	RunnerPapermill = "papermill"

	DefaultNotebook       = "iris-kmeans_2.ipynb"
	DefaultStorageBaseDir = "storage"
)

var (
	ErrMissingField      = errors.New("missing required field")
	ErrUnsupportedRunner = errors.New("unsupported notebook runner")
)

// RunConfig is the configuration of one run of the pipeline.
type RunConfig struct {
	Solids    Solids    `yaml:"solids"`
	Resources Resources `yaml:"resources"`
	Notebook  Notebook  `yaml:"notebook"`

	// BaseDir is the directory relative paths are resolved against.
	BaseDir string `yaml:"-"`
}

type Solids struct {
	DownloadFile DownloadFile `yaml:"download_file"`
	KMeansIris   KMeansIris   `yaml:"k_means_iris"`
}

type DownloadFile struct {
	Config DownloadFileConfig `yaml:"config"`
}

type DownloadFileConfig struct {
	URL              string `yaml:"url"`
	Path             string `yaml:"path"`
	EmitResolvedPath bool   `yaml:"emit_resolved_path"`
}

type KMeansIris struct {
	// Config is the number of clusters to find.
	Config *int `yaml:"config"`
}

type Resources struct {
	FileManager FileManager `yaml:"file_manager"`
}

type FileManager struct {
	Config FileManagerConfig `yaml:"config"`
}

// FileManagerConfig selects object storage when S3 is set, the local filesystem otherwise.
type FileManagerConfig struct {
	BaseDir string    `yaml:"base_dir"`
	S3      *S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type Notebook struct {
	Path      string `yaml:"path"`
	Runner    string `yaml:"runner"`
	Binary    string `yaml:"binary"`
	Kernel    string `yaml:"kernel"`
	OutputDir string `yaml:"output_dir"`
}

// Load reads the run configuration from path.
func Load(path string) (*RunConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open run config %s", path)
	}
	defer file.Close()

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve directory of %s", path)
	}

	cfg, err := Parse(file, abs)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid run config %s", path)
	}

	return cfg, nil
}

// Parse decodes a run configuration, applies the defaults and validates it.
// Unknown keys are rejected.
func Parse(r io.Reader, baseDir string) (*RunConfig, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read run config")
	}

	cfg := &RunConfig{}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	err = dec.Decode(cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "unable to decode run config")
	}

	cfg.BaseDir = baseDir
	cfg.setDefaults()

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *RunConfig) setDefaults() {
	if c.Solids.KMeansIris.Config == nil {
		count := kmeans.DefaultClusterCount
		c.Solids.KMeansIris.Config = &count
	}
	if c.Resources.FileManager.Config.BaseDir == "" {
		c.Resources.FileManager.Config.BaseDir = DefaultStorageBaseDir
	}
	if c.Notebook.Path == "" {
		c.Notebook.Path = DefaultNotebook
	}
	if c.Notebook.Runner == "" {
		c.Notebook.Runner = RunnerPapermill
	}
}

// Validate checks the fields the pipeline cannot run without. Values are not validated further.
func (c *RunConfig) Validate() error {
	if c.Solids.DownloadFile.Config.URL == "" {
		return errors.Wrap(ErrMissingField, "solids.download_file.config.url")
	}
	if c.Solids.DownloadFile.Config.Path == "" {
		return errors.Wrap(ErrMissingField, "solids.download_file.config.path")
	}
	if c.Notebook.Runner != RunnerPapermill {
		return errors.Wrapf(ErrUnsupportedRunner, "%q", c.Notebook.Runner)
	}
	if s3 := c.Resources.FileManager.Config.S3; s3 != nil {
		err := s3.objectConfig().Validate()
		if err != nil {
			return errors.Wrap(err, "resources.file_manager.config.s3")
		}
	}

	return nil
}

// Resolve returns path when it is absolute, path relative to the base directory otherwise.
func (c *RunConfig) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(c.BaseDir, path)
}

// ClusterCount returns the configured number of clusters.
func (c *RunConfig) ClusterCount() int {
	if c.Solids.KMeansIris.Config == nil {
		return kmeans.DefaultClusterCount
	}

	return *c.Solids.KMeansIris.Config
}

func (s *S3Config) objectConfig() resource.ObjectConfig {
	return resource.ObjectConfig{
		Endpoint:  s.Endpoint,
		AccessKey: s.AccessKey,
		SecretKey: s.SecretKey,
		Region:    s.Region,
		Bucket:    s.Bucket,
		Prefix:    s.Prefix,
		UseSSL:    s.UseSSL,
	}
}

// NewFileManager builds the file manager resource described by the configuration.
func (c *RunConfig) NewFileManager() (resource.FileManager, error) {
	fmCfg := c.Resources.FileManager.Config
	if fmCfg.S3 != nil {
		fm, err := resource.NewObjectFileManager(fmCfg.S3.objectConfig())
		if err != nil {
			return nil, errors.Wrap(err, "unable to create object file manager")
		}

		return fm, nil
	}

	fm, err := resource.NewLocalFileManager(c.Resolve(fmCfg.BaseDir))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create local file manager")
	}

	return fm, nil
}

// NewRunner builds the notebook runner described by the configuration.
func (c *RunConfig) NewRunner() kmeans.Runner {
	return &kmeans.PapermillRunner{
		Binary: c.Notebook.Binary,
		Kernel: c.Notebook.Kernel,
	}
}
