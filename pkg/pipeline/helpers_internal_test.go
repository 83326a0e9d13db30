package pipeline

import (
	"testing"

	"github.com/askiada/iris-pipeline/pkg/pipeline/model"
)

// feedStep returns a step named name whose output sends 0..total-1 and is then closed.
func feedStep(t *testing.T, name string, total int) *model.Step[int] {
	t.Helper()

	out := make(chan int)
	go func() {
		defer close(out)
		for i := range total {
			out <- i
		}
	}()

	return &model.Step[int]{Output: out, Details: &model.StepInfo{Name: name}}
}

// drain reads c until it is closed.
func drain[T any](c chan T) []T {
	res := []T{}
	for v := range c {
		res = append(res, v)
	}

	return res
}
