// Package job implements the per-job unit of work: open a .job file and
// its companion .out file, run an Interpreter between them, and close
// both. This is the goroutine body the worker pool schedules.
package job

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cuemby/kvsd/pkg/events"
	"github.com/cuemby/kvsd/pkg/interpreter"
	"github.com/cuemby/kvsd/pkg/kvstore"
	"github.com/cuemby/kvsd/pkg/metrics"
)

// Runner executes one job file to completion against a shared Store.
type Runner struct {
	Store       *kvstore.Store
	Backups     interpreter.BackupRequester
	MaxBackups  int
	Diagnostics zerolog.Logger
	Broker      *events.Broker
	Wait        interpreter.Waiter
}

// Run opens jobPath for reading, derives and opens its .out companion
// for writing, and drives an Interpreter between them. A failure to open
// either artifact skips the job with a diagnostic rather than touching
// the Store.
func (r *Runner) Run(jobPath string) error {
	outPath, err := outputPath(jobPath)
	if err != nil {
		r.Diagnostics.Error().Err(err).Str("job", jobPath).Msg("failed to derive output path")
		return err
	}

	in, err := os.Open(jobPath)
	if err != nil {
		r.Diagnostics.Error().Err(err).Str("job", jobPath).Msg("failed to open job file")
		return fmt.Errorf("job: open %s: %w", jobPath, err)
	}
	defer in.Close()

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		r.Diagnostics.Error().Err(err).Str("job", jobPath).Str("out", outPath).Msg("failed to create output file")
		return fmt.Errorf("job: create %s: %w", outPath, err)
	}
	defer out.Close()

	r.publish(events.EventJobStarted, jobPath, "")

	ip := &interpreter.Interpreter{
		Store:       r.Store,
		Backups:     r.Backups,
		JobName:     jobPath,
		MaxBackups:  r.MaxBackups,
		Diagnostics: r.Diagnostics,
		Wait:        r.Wait,
	}

	timer := metrics.NewTimer()

	if err := ip.Run(in, out); err != nil {
		timer.ObserveDuration(metrics.JobDuration)
		metrics.JobsTotal.WithLabelValues("error").Inc()
		r.Diagnostics.Error().Err(err).Str("job", jobPath).Msg("job failed")
		r.publish(events.EventJobFailed, jobPath, err.Error())
		return err
	}

	if err := out.Sync(); err != nil {
		timer.ObserveDuration(metrics.JobDuration)
		metrics.JobsTotal.WithLabelValues("error").Inc()
		r.Diagnostics.Error().Err(err).Str("job", jobPath).Msg("failed to flush output file")
		return err
	}

	timer.ObserveDuration(metrics.JobDuration)
	metrics.JobsTotal.WithLabelValues("success").Inc()
	r.publish(events.EventJobCompleted, jobPath, outPath)
	return nil
}

func (r *Runner) publish(t events.EventType, jobName, message string) {
	if r.Broker == nil {
		return
	}
	r.Broker.Publish(&events.Event{Type: t, JobName: jobName, Message: message})
}

// outputPath derives the .out companion of a .job file by replacing the
// trailing ".job" suffix; it fails if the job path does not end in
// ".job".
func outputPath(jobPath string) (string, error) {
	if !strings.HasSuffix(jobPath, ".job") {
		return "", fmt.Errorf("job: path %q does not end in .job", jobPath)
	}
	return strings.TrimSuffix(jobPath, ".job") + ".out", nil
}
