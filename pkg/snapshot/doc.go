// Package snapshot bounds and performs the asynchronous backup writes
// requested by the BACKUP command.
package snapshot
