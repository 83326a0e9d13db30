package pipeline

import (
	"time"

	"github.com/askiada/iris-pipeline/pkg/pipeline/model"
)

// nopOption implements model.PipelineOption and does nothing.
type nopOption struct{}

func (nopOption) New() error { return nil }

func (nopOption) PrepareStep(_, _ *model.StepInfo) error { return nil }

func (nopOption) OnStepOutput(_, _ *model.StepInfo, _, _ time.Duration) error { return nil }

func (nopOption) PrepareSink(_, _ *model.StepInfo) error { return nil }

func (nopOption) OnSinkOutput(_, _ *model.StepInfo, _, _ time.Duration) error { return nil }

func (nopOption) AfterStep(_ *model.StepInfo, _ time.Duration) error { return nil }

func (nopOption) Finish() error { return nil }

var _ model.PipelineOption = nopOption{}
