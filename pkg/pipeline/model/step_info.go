package model

type stepType string

const (
	RootStepType   stepType = "root"
	NormalStepType stepType = "step"
	SinkStepType   stepType = "sink"
)

// StepInfo describes a step independently of the type of the values it outputs.
type StepInfo struct {
	Type       stepType
	Name       string
	Concurrent int
}

var (
	// StartStep is the virtual parent of every root step.
	StartStep = &StepInfo{Name: "start"}
	// EndStep is the virtual child of every sink.
	EndStep = &StepInfo{Name: "end"}
)

// Step is a pipeline step producing values of type O on Output.
type Step[O any] struct {
	Output  chan O
	Details *StepInfo
}
