// Package walker enumerates .job files in a directory, non-recursively.
package walker
