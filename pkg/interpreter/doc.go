// Package interpreter dispatches commands produced by pkg/command against
// a pkg/kvstore.Store, one job's command stream at a time.
package interpreter
