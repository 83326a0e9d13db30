// Package measure times the steps of a pipeline.
package measure
