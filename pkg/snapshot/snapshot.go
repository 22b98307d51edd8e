// Package snapshot materializes point-in-time copies of a Store to
// numbered backup files, enforcing a process-wide cap on how many
// backups may be written concurrently. A snapshot is copied out from
// under the store's locks synchronously, then written to disk from a
// detached goroutine so the caller is never held up by file I/O.
package snapshot

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/kvsd/pkg/events"
	"github.com/cuemby/kvsd/pkg/kvstore"
	"github.com/cuemby/kvsd/pkg/metrics"
)

// Manager schedules and bounds concurrent snapshot writes. The zero
// value is not usable; construct with NewManager.
type Manager struct {
	diagnostics zerolog.Logger
	broker      *events.Broker

	mu     sync.Mutex
	issued map[string]int // per-job sequence counter

	semOnce sync.Once
	sem     chan struct{} // process-wide in-flight cap, sized on first Request
}

// NewManager creates a Manager that logs to diagnostics and, if broker
// is non-nil, publishes snapshot lifecycle events to it.
func NewManager(diagnostics zerolog.Logger, broker *events.Broker) *Manager {
	return &Manager{
		diagnostics: diagnostics,
		broker:      broker,
		issued:      make(map[string]int),
	}
}

// Request materializes store's current state to a numbered .bck file
// derived from jobName. It blocks until fewer than maxBackups snapshots
// are in flight process-wide, then hands the write to a detached
// goroutine so the caller is not held up by file I/O. The cap is sized
// from the first call's maxBackups; every job in a single kvsd run is
// started with the same configured value, so this is not a practical
// limitation.
func (m *Manager) Request(jobName string, maxBackups int, store kvstore.Snapshotter) error {
	if maxBackups <= 0 {
		return fmt.Errorf("snapshot: max_backups must be positive, got %d", maxBackups)
	}
	m.semOnce.Do(func() {
		m.sem = make(chan struct{}, maxBackups)
	})

	m.sem <- struct{}{}
	metrics.SnapshotsInFlight.Inc()

	m.mu.Lock()
	m.issued[jobName]++
	seq := m.issued[jobName]
	m.mu.Unlock()

	pairs := store.Snapshot()
	path := backupPath(jobName, seq)
	id := uuid.New()
	logger := m.diagnostics.With().Str("snapshot_id", id.String()).Str("path", path).Logger()

	m.publish(events.EventSnapshotRequested, jobName, path)
	go m.write(path, pairs, jobName, logger)
	return nil
}

func (m *Manager) write(path string, pairs []kvstore.Pair, jobName string, logger zerolog.Logger) {
	defer func() {
		<-m.sem
		metrics.SnapshotsInFlight.Dec()
	}()

	if err := writeBackupFile(path, pairs); err != nil {
		logger.Error().Err(err).Msg("failed to write backup file")
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		m.publish(events.EventSnapshotFailed, jobName, err.Error())
		return
	}
	logger.Debug().Msg("backup written")
	metrics.SnapshotsTotal.WithLabelValues("success").Inc()
	m.publish(events.EventSnapshotCompleted, jobName, path)
}

func (m *Manager) publish(t events.EventType, jobName, message string) {
	if m.broker == nil {
		return
	}
	m.broker.Publish(&events.Event{Type: t, JobName: jobName, Message: message})
}

// backupPath strips a trailing ".job" from jobFile and appends the
// sequence suffix, e.g. "jobs/a.job" with seq 2 becomes "jobs/a-2.bck".
// Only a trailing ".job" is stripped, so a directory component that
// happens to contain the substring ".job" is left alone.
func backupPath(jobFile string, seq int) string {
	base := strings.TrimSuffix(jobFile, ".job")
	return fmt.Sprintf("%s-%d.bck", base, seq)
}

// writeBackupFile performs the actual backup write; it is a package
// variable so tests can substitute an instrumented version to observe
// in-flight concurrency without depending on file-write timing.
var writeBackupFile = func(path string, pairs []kvstore.Pair) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("create backup file %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&sb, "(%s, %s)\n", p.Key, p.Value)
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("write backup file %s: %w", path, err)
	}
	return nil
}
