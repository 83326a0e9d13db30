package pipeline_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/askiada/iris-pipeline/pkg/pipeline/model"
)

func emit(ctx context.Context, rootChan chan<- int, total int) error {
	for i := range total {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rootChan <- i:
		}
	}

	return nil
}

func collect(t *testing.T, mu *sync.Mutex, got *[]int) func(ctx context.Context, in int) error {
	t.Helper()

	return func(_ context.Context, in int) error {
		mu.Lock()
		defer mu.Unlock()

		*got = append(*got, in)

		return nil
	}
}

// lifecycle records the hooks called by the pipeline.
type lifecycle struct {
	mu     sync.Mutex
	events []string
	after  map[string]bool
}

func newLifecycle() *lifecycle {
	return &lifecycle{after: map[string]bool{}}
}

func (l *lifecycle) record(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)
}

func (l *lifecycle) New() error {
	l.record("new")

	return nil
}

func (l *lifecycle) PrepareStep(parent, step *model.StepInfo) error {
	l.record("prepare " + parent.Name + "->" + step.Name)

	return nil
}

func (l *lifecycle) OnStepOutput(_, _ *model.StepInfo, _, _ time.Duration) error { return nil }

func (l *lifecycle) PrepareSink(parent, step *model.StepInfo) error {
	l.record("prepare sink " + parent.Name + "->" + step.Name)

	return nil
}

func (l *lifecycle) OnSinkOutput(_, _ *model.StepInfo, _, _ time.Duration) error { return nil }

func (l *lifecycle) AfterStep(step *model.StepInfo, _ time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.after[step.Name] = true

	return nil
}

func (l *lifecycle) Finish() error {
	l.record("finish")

	return nil
}
