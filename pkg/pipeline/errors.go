package pipeline

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("p must be set")
	ErrInputMustBeSet    = errors.New("input must be set")
)

// stepErrC is the error channel of one step goroutine. It is closed once the step has stopped.
type stepErrC struct {
	step string
	c    <-chan error
}

func newStepErrC(step string, c <-chan error) *stepErrC {
	return &stepErrC{step: step, c: c}
}

// stepErrors holds the error channel of every registered step.
type stepErrors struct {
	mu   sync.Mutex
	list []*stepErrC
}

func (se *stepErrors) add(ec *stepErrC) {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.list = append(se.list, ec)
}

func (se *stepErrors) all() []*stepErrC {
	se.mu.Lock()
	defer se.mu.Unlock()

	return append([]*stepErrC(nil), se.list...)
}

// mergeErrors fans the step error channels into one, prefixing every error with the step name.
// The output is closed once every step channel is closed. It can hold one error per step,
// so forwarding never blocks when the reader stops early.
func mergeErrors(ecs ...*stepErrC) <-chan error {
	out := make(chan error, len(ecs))

	var wg sync.WaitGroup
	wg.Add(len(ecs))
	for _, ec := range ecs {
		go func() {
			defer wg.Done()
			if ec.c == nil {
				return
			}
			for err := range ec.c {
				out <- errors.Wrap(err, ec.step)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// waitForPipeline returns the first error sent by a step, or nil once every step has stopped.
func waitForPipeline(ecs ...*stepErrC) error {
	for err := range mergeErrors(ecs...) {
		if err != nil {
			return err
		}
	}

	return nil
}
