package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/iris-pipeline/pkg/pipeline/model"
)

func prepareRootStep[O any](pipe *Pipeline, step *model.Step[O], opts ...StepOption[O]) error {
	for _, opt := range opts {
		opt(step)
	}
	if step.Details.Concurrent < 1 {
		step.Details.Concurrent = 1
	}
	for _, opt := range pipe.opts {
		err := opt.PrepareStep(model.StartStep, step.Details)
		if err != nil {
			return errors.Wrap(err, "unable to run before step function")
		}
	}

	return nil
}

// AddRootStep adds a step producing values without any input. The output channel is closed once stepFn returns.
// stepFn should give up sending when ctx is done.
func AddRootStep[O any](p *Pipeline, name string, stepFn func(ctx context.Context, rootChan chan<- O) error, opts ...StepOption[O]) (*model.Step[O], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	output := make(chan O)
	step := &model.Step[O]{
		Details: &model.StepInfo{
			Type: model.RootStepType,
			Name: name,
		},
		Output: output,
	}

	err := prepareRootStep(p, step, opts...)
	if err != nil {
		return nil, err
	}

	p.register(name, func(ctx context.Context) error {
		return p.afterStep(step.Details, stepFn(ctx, output))
	}, func() {
		close(output)
	})

	return step, nil
}
