package pipeline_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/iris-pipeline/pkg/pipeline"
	"github.com/askiada/iris-pipeline/pkg/pipeline/model"
)

func TestAddRootStepNilPipe(t *testing.T) {
	t.Parallel()

	_, err := pipeline.AddRootStep(nil, "root step", func(ctx context.Context, rootChan chan<- int) error {
		return emit(ctx, rootChan, 10)
	})
	require.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)
}

func TestAddStepOneToOneNilPipe(t *testing.T) {
	t.Parallel()

	_, err := pipeline.AddStepOneToOne(nil, "step", &model.Step[int]{}, func(_ context.Context, input int) (int, error) {
		return input, nil
	})
	require.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)
}

func TestAddStepOneToOneNilInput(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(t.Context())
	require.NoError(t, err)

	_, err = pipeline.AddStepOneToOne(pipe, "step", (*model.Step[int])(nil), func(_ context.Context, input int) (int, error) {
		return input, nil
	})
	require.ErrorIs(t, err, pipeline.ErrInputMustBeSet)
}

func TestAddSinkNilInput(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(t.Context())
	require.NoError(t, err)

	err = pipeline.AddSink(pipe, "sink", (*model.Step[int])(nil), func(_ context.Context, _ int) error {
		return nil
	})
	require.ErrorIs(t, err, pipeline.ErrInputMustBeSet)

	err = pipeline.AddSink(nil, "sink", &model.Step[int]{}, func(_ context.Context, _ int) error {
		return nil
	})
	require.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)
}

func TestRootStepOneToOneSink(t *testing.T) {
	t.Parallel()

	for name, concurrent := range map[string]int{"sequential": 1, "concurrent": 3} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pipe, err := pipeline.New(t.Context())
			require.NoError(t, err)

			root, err := pipeline.AddRootStep(pipe, "root", func(ctx context.Context, rootChan chan<- int) error {
				return emit(ctx, rootChan, 10)
			})
			require.NoError(t, err)

			step, err := pipeline.AddStepOneToOne(pipe, "plus one", root, func(_ context.Context, input int) (int, error) {
				return input + 1, nil
			}, pipeline.StepConcurrency[int](concurrent))
			require.NoError(t, err)
			assert.Equal(t, concurrent, step.Details.Concurrent)

			var (
				mu  sync.Mutex
				got []int
			)
			require.NoError(t, pipeline.AddSink(pipe, "sink", step, collect(t, &mu, &got)))

			require.NoError(t, pipe.Run())
			assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)
		})
	}
}

func TestRootStepErrorStopsDownstream(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(t.Context())
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", func(_ context.Context, _ chan<- string) error {
		return assert.AnError
	})
	require.NoError(t, err)

	var called atomic.Bool

	step, err := pipeline.AddStepOneToOne(pipe, "step", root, func(_ context.Context, input string) (string, error) {
		called.Store(true)

		return input, nil
	})
	require.NoError(t, err)
	require.NoError(t, pipeline.AddSink(pipe, "sink", step, func(_ context.Context, _ string) error {
		called.Store(true)

		return nil
	}))

	err = pipe.Run()
	require.ErrorIs(t, err, assert.AnError)
	assert.EqualError(t, err, "root: "+assert.AnError.Error())
	assert.False(t, called.Load())
}

func TestStepError(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(t.Context())
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", func(ctx context.Context, rootChan chan<- int) error {
		return emit(ctx, rootChan, 10)
	})
	require.NoError(t, err)

	step, err := pipeline.AddStepOneToOne(pipe, "step", root, func(_ context.Context, input int) (int, error) {
		if input == 5 {
			return 0, assert.AnError
		}

		return input, nil
	})
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		got []int
	)
	require.NoError(t, pipeline.AddSink(pipe, "sink", step, collect(t, &mu, &got)))

	err = pipe.Run()
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "step: ")
}

func TestSinkError(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(t.Context())
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", func(ctx context.Context, rootChan chan<- int) error {
		return emit(ctx, rootChan, 10)
	})
	require.NoError(t, err)

	err = pipeline.AddSink(pipe, "sink", root, func(_ context.Context, input int) error {
		if input == 2 {
			return assert.AnError
		}

		return nil
	})
	require.NoError(t, err)

	err = pipe.Run()
	require.ErrorIs(t, err, assert.AnError)
	assert.EqualError(t, err, "sink: "+assert.AnError.Error())
}

func TestRunCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	pipe, err := pipeline.New(ctx)
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", func(ctx context.Context, rootChan chan<- int) error {
		for i := 0; ; i++ {
			if i == 5 {
				cancel()
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rootChan <- i:
			}
		}
	})
	require.NoError(t, err)
	require.NoError(t, pipeline.AddSink(pipe, "sink", root, func(_ context.Context, _ int) error {
		return nil
	}))

	err = pipe.Run()
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipelineOptionLifecycle(t *testing.T) {
	t.Parallel()

	lc := newLifecycle()
	pipe, err := pipeline.New(t.Context(), lc)
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "download_file", func(ctx context.Context, rootChan chan<- int) error {
		return emit(ctx, rootChan, 1)
	})
	require.NoError(t, err)
	step, err := pipeline.AddStepOneToOne(pipe, "k_means_iris", root, func(_ context.Context, input int) (int, error) {
		return input, nil
	})
	require.NoError(t, err)
	require.NoError(t, pipeline.AddSink(pipe, "output_notebook", step, func(_ context.Context, _ int) error {
		return nil
	}))

	require.NoError(t, pipe.Run())

	assert.Equal(t, []string{
		"new",
		"prepare start->download_file",
		"prepare download_file->k_means_iris",
		"prepare sink k_means_iris->output_notebook",
		"finish",
	}, lc.events)
	assert.Equal(t, map[string]bool{"download_file": true, "k_means_iris": true, "output_notebook": true}, lc.after)
}
