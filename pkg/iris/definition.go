package iris

import (
	"github.com/pkg/errors"

	"github.com/askiada/iris-pipeline/pkg/resource"
	"github.com/askiada/iris-pipeline/pkg/solid"
	"github.com/askiada/iris-pipeline/pkg/solid/download"
	"github.com/askiada/iris-pipeline/pkg/solid/kmeans"
)

const (
	// Name is the name of the pipeline.
	Name = "iris_pipeline"
	// OutputNotebookStep is the step storing the executed notebook.
	OutputNotebookStep = "output_notebook"
)

var ErrMissingDependency = errors.New("missing pipeline dependency")

type (
	// FetchSolid downloads the dataset and outputs its path.
	FetchSolid = solid.Solid[solid.Nothing, download.Config, string]
	// ClusterSolid clusters the dataset found at its input path.
	ClusterSolid = solid.Solid[string, kmeans.Config, kmeans.Notebook]
)

// Definition is the static description of the pipeline. It is not modified once created.
type Definition struct {
	fetch   FetchSolid
	cluster ClusterSolid
	files   resource.FileManager
}

// NewDefinition creates the pipeline definition.
func NewDefinition(fetch FetchSolid, cluster ClusterSolid, files resource.FileManager) (*Definition, error) {
	switch {
	case fetch == nil:
		return nil, errors.Wrap(ErrMissingDependency, "fetch solid")
	case cluster == nil:
		return nil, errors.Wrap(ErrMissingDependency, "cluster solid")
	case files == nil:
		return nil, errors.Wrap(ErrMissingDependency, "file manager")
	}

	return &Definition{
		fetch:   fetch,
		cluster: cluster,
		files:   files,
	}, nil
}

// Edge connects the output of a step to the input of another one.
type Edge struct {
	From  string
	To    string
	Input string
}

// Description lists the solids of the pipeline and how they are wired.
type Description struct {
	Name   string
	Solids []solid.Info
	Edges  []Edge
}

// Describe returns the description of the pipeline.
func (d *Definition) Describe() Description {
	return Description{
		Name: Name,
		Solids: []solid.Info{
			d.fetch.Info(),
			d.cluster.Info(),
			{
				Name:        OutputNotebookStep,
				Description: "Stores the executed notebook with the file manager resource",
				Input:       "notebook: the executed notebook",
			},
		},
		Edges: []Edge{
			{From: download.Name, To: kmeans.Name, Input: kmeans.ParamPath},
			{From: kmeans.Name, To: OutputNotebookStep, Input: "notebook"},
		},
	}
}
