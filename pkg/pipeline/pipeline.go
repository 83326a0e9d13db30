package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/iris-pipeline/pkg/pipeline/model"
)

// Pipeline is a pipeline of steps.
type Pipeline struct {
	ctx       context.Context //nolint:containedctx // steps are started by Run with this context
	cancel    context.CancelFunc
	errs      *stepErrors
	opts      []model.PipelineOption
	startTime time.Time
	goFn      []func(ctx context.Context)
}

// New creates a new pipeline.
func New(ctx context.Context, opts ...model.PipelineOption) (*Pipeline, error) {
	dCtx, cancel := context.WithCancel(ctx)
	pipe := &Pipeline{
		ctx:       dCtx,
		cancel:    cancel,
		errs:      &stepErrors{},
		startTime: time.Now(),
		opts:      opts,
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			cancel()

			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Run starts the pipeline and waits for it to finish.
// A pipeline can only run once.
func (p *Pipeline) Run() error {
	defer p.cancel()

	for _, fn := range p.goFn {
		go fn(p.ctx)
	}

	// Wait for all steps to finish.
	err := waitForPipeline(p.errs.all()...)
	if err != nil {
		return err
	}

	return p.finishRun()
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

// afterStep runs the AfterStep hook of every option, keeping the first error.
func (p *Pipeline) afterStep(step *model.StepInfo, err error) error {
	elapsed := time.Since(p.startTime)
	for _, opt := range p.opts {
		optErr := opt.AfterStep(step, elapsed)
		if optErr != nil && err == nil {
			err = errors.Wrap(optErr, "unable to run after step function")
		}
	}

	return err
}

// register adds the goroutine of a step. It is started by Run.
func (p *Pipeline) register(name string, stepFn func(ctx context.Context) error, cleanup func()) {
	errC := make(chan error, 1)
	p.errs.add(newStepErrC(name, errC))
	p.goFn = append(p.goFn, func(ctx context.Context) {
		defer func() {
			if cleanup != nil {
				cleanup()
			}
			close(errC)
		}()

		err := stepFn(ctx)
		if err != nil {
			errC <- err
		}
	})
}
