package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/iris-pipeline/pkg/pipeline/model"
)

func runSink[I any](ctx context.Context, opts []model.PipelineOption, input *model.Step[I], step *model.StepInfo, sinkFn func(ctx context.Context, input I) error) error {
	for {
		startIter := time.Now()
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // decorated with the step name by the pipeline
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}
			startFn := time.Now()
			err := sinkFn(ctx, in)
			if err != nil {
				return err
			}
			endFn := time.Since(startFn)

			for _, opt := range opts {
				err := opt.OnSinkOutput(input.Details, step, time.Since(startIter)-endFn, endFn)
				if err != nil {
					return errors.Wrap(err, "unable to run on sink output function")
				}
			}
		}
	}
}

// AddSink adds a step consuming every value of input. It is the end of a branch of the pipeline.
func AddSink[I any](pipe *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input I) error) error {
	if pipe == nil {
		return ErrPipelineMustBeSet
	}
	if input == nil {
		return ErrInputMustBeSet
	}
	step := &model.StepInfo{
		Type:       model.SinkStepType,
		Name:       name,
		Concurrent: 1,
	}
	for _, opt := range pipe.opts {
		err := opt.PrepareSink(input.Details, step)
		if err != nil {
			return errors.Wrap(err, "unable to run before sink function")
		}
	}

	pipe.register(name, func(ctx context.Context) error {
		return pipe.afterStep(step, runSink(ctx, pipe.opts, input, step, sinkFn))
	}, nil)

	return nil
}
