package kmeans

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// NotebookRun describes one execution of a notebook.
type NotebookRun struct {
	// Notebook is the path of the notebook to execute.
	Notebook string
	// Output is the path the executed notebook is written to.
	Output string
	// WorkDir is the working directory of the kernel.
	WorkDir string
	// Parameters are injected into the notebook before it runs.
	Parameters map[string]any
}

// Runner executes notebooks.
type Runner interface {
	Run(ctx context.Context, run NotebookRun) error
}

// DefaultPapermillBinary is the papermill executable looked up in PATH.
const DefaultPapermillBinary = "papermill"

// PapermillRunner executes notebooks with the papermill command line.
type PapermillRunner struct {
	// Binary is the papermill executable. It defaults to DefaultPapermillBinary.
	Binary string
	// Kernel overrides the kernel declared by the notebook when set.
	Kernel string
}

// Args returns the papermill arguments for run. Parameters are sorted by name.
func (r *PapermillRunner) Args(run NotebookRun) []string {
	args := []string{run.Notebook, run.Output}

	names := make([]string, 0, len(run.Parameters))
	for name := range run.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		args = append(args, "-p", name, fmt.Sprint(run.Parameters[name]))
	}

	if run.WorkDir != "" {
		args = append(args, "--cwd", run.WorkDir)
	}
	if r.Kernel != "" {
		args = append(args, "-k", r.Kernel)
	}

	return args
}

// Run executes papermill and waits for it. The error carries what papermill wrote to stderr.
func (r *PapermillRunner) Run(ctx context.Context, run NotebookRun) error {
	binary := r.Binary
	if binary == "" {
		binary = DefaultPapermillBinary
	}

	stderr := &bytes.Buffer{}
	cmd := exec.CommandContext(ctx, binary, r.Args(run)...)
	cmd.Stderr = stderr

	err := cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return errors.Wrapf(err, "%s failed", binary)
		}

		return errors.Wrapf(err, "%s failed: %s", binary, msg)
	}

	return nil
}

var _ Runner = (*PapermillRunner)(nil)
