// Package pool dispatches job files across a bounded number of workers:
// spawn up to max_threads workers, join all of them, then spawn the next
// batch, rather than a continuously-fed work-stealing pool — job
// completion order is unconstrained either way.
package pool

import (
	"sync"

	"github.com/rs/zerolog"
)

// Runner executes one job path to completion. It is satisfied by
// (*job.Runner).Run.
type Runner func(jobPath string) error

// Pool dispatches job paths to Runner with at most maxThreads running
// concurrently.
type Pool struct {
	maxThreads  int
	run         Runner
	diagnostics zerolog.Logger
}

// New creates a Pool bounded to maxThreads concurrent workers. A
// maxThreads of less than 1 is treated as 1.
func New(maxThreads int, run Runner, diagnostics zerolog.Logger) *Pool {
	if maxThreads < 1 {
		maxThreads = 1
	}
	return &Pool{maxThreads: maxThreads, run: run, diagnostics: diagnostics}
}

// Run dispatches every path in jobPaths in batches of at most
// maxThreads, waiting for each batch to fully complete before starting
// the next. All workers share whatever Store and Snapshot Manager the
// Runner closure was built against; the Pool itself holds no KV state.
func (p *Pool) Run(jobPaths []string) {
	for start := 0; start < len(jobPaths); start += p.maxThreads {
		end := start + p.maxThreads
		if end > len(jobPaths) {
			end = len(jobPaths)
		}
		p.runBatch(jobPaths[start:end])
	}
}

func (p *Pool) runBatch(batch []string) {
	var wg sync.WaitGroup
	for _, path := range batch {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			if err := p.run(path); err != nil {
				p.diagnostics.Error().Err(err).Str("job", path).Msg("job did not complete successfully")
			}
		}(path)
	}
	wg.Wait()
}
