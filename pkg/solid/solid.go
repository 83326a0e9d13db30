// Package solid defines the unit of work composed into the iris pipeline.
//
// A solid is a named computation with a typed input, a typed configuration and a typed output. It does not
// know how it is scheduled: the iris package feeds its input from the output of the previous solid.
package solid

import "context"

// Solid is a named unit of work.
type Solid[I, C, O any] interface {
	// Info describes the solid and its configuration.
	Info() Info
	// Execute runs the solid once.
	Execute(ctx context.Context, input I, cfg C) (O, error)
}

// Field describes one configuration key of a solid.
type Field struct {
	Name        string
	Type        string
	Required    bool
	Default     string
	Description string
}

// Info describes a solid.
type Info struct {
	Name        string
	Description string
	Input       string
	Output      string
	Config      []Field
}

// Nothing is the input of a solid that does not depend on another one.
type Nothing struct{}
