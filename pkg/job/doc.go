// Package job opens a .job file and its .out companion and runs an
// interpreter between them; it is the unit of work the worker pool
// schedules onto its bounded set of goroutines.
package job
