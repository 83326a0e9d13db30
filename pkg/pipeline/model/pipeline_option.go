package model

import "time"

// PipelineOption observes a pipeline run, e.g. to measure or draw it.
// Hooks returning an error make the step, or the run for New and Finish, fail.
type PipelineOption interface {
	// New is called once, when the pipeline is created.
	New() error

	// PrepareStep is called when a root step or a one-to-one step is added after parentStep.
	// Root steps have StartStep as parent.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepOutput is called each time step sends a value computed from a value of parentStep.
	// iterationDuration includes the time spent waiting for the input.
	OnStepOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error

	// PrepareSink is called when a sink is added after parentStep.
	PrepareSink(parentStep, step *StepInfo) error
	// OnSinkOutput is called each time the sink has consumed a value of parentStep.
	OnSinkOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error

	// AfterStep is called once step has stopped, with the time elapsed since the pipeline was created.
	AfterStep(step *StepInfo, totalDuration time.Duration) error
	// Finish is called once every step has stopped without error.
	Finish() error
}
