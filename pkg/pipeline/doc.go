// Package pipeline provides a pipeline for processing data.
//
// The pipeline package offers a way to process data using a series of steps. Each step performs a specific
// operation on the data and passes it to the next step through a channel. A pipeline always starts with one or
// more root steps, which produce values, and ends with sinks, which consume them.
//
// Steps are registered first and only start when Run is called. Every step runs in its own goroutine, and a
// step with a concurrency greater than one fans its work out over several goroutines.
//
// The pipeline stops on the first encountered error: the run context is cancelled, the remaining steps drain,
// and Run returns the error decorated with the name of the step that produced it.
//
// Options implementing model.PipelineOption observe the pipeline lifecycle. The measure and drawer packages
// provide options to time every step and to render the pipeline as a graph.
package pipeline
