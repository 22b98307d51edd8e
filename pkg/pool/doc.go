// Package pool bounds how many job runners execute concurrently.
package pool
