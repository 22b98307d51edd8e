// Package log provides the process-wide structured logger used for all
// diagnostic output: invalid commands, failed store operations, failed
// backups, and the WAIT "Waiting..." notice.
//
// Init must be called once before any command is processed; until then the
// zero-value zerolog.Logger discards everything. WithComponent and WithJob
// return child loggers carrying a component or job-file field, matching the
// component-scoped logger pattern used throughout this codebase.
package log
