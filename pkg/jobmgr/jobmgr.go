// Package jobmgr tracks named, cancellable units of work. The bot uses it to
// keep at most one interaction flow per user and channel and to let users or
// owners stop flows that are waiting for input.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(func(msg string) {
//	    logger.Debug("job: ", msg)
//	})
//
//	err := jm.Run(ctx, "guild:channel:user", func(ctx context.Context) error {
//	    // block until ctx is cancelled or the work is done
//	    return nil
//	})
//
//	// elsewhere
//	_ = jm.Stop("guild:channel:user")
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrJobRunning is returned when a job with the same name is active.
	ErrJobRunning = errors.New("job is already running")
	// ErrJobNotRunning is returned by Stop for unknown names.
	ErrJobNotRunning = errors.New("job not running")
	// ErrStopped is the cancellation cause of jobs ended through Stop.
	ErrStopped = errors.New("job stopped")
)

// Job represents a running unit of work.
// Jobs are added and removed by Manager automatically.
type Job struct {
	Name    string
	Started time.Time
	cancel  context.CancelCauseFunc
}

// StatusReporter receives lifecycle events for jobs.
// Example messages:
//
//	running:setup
//	error:setup:context canceled
//	done:setup
type StatusReporter func(string)

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	Reporter StatusReporter
}

// NewManager creates a new Manager.
// The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// Run executes runner in the calling goroutine under name and blocks until it
// returns. The context passed to runner is cancelled by Stop or when ctx ends.
func (m *Manager) Run(ctx context.Context, name string, runner func(ctx context.Context) error) error {
	jobCtx, job, err := m.add(ctx, name)
	if err != nil {
		return err
	}
	defer m.remove(name, job)

	m.report("running:" + name)
	err = runner(jobCtx)
	if err != nil {
		m.report("error:" + name + ":" + err.Error())
	} else {
		m.report("done:" + name)
	}
	return err
}

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotRunning, name)
	}
	job.cancel(ErrStopped)
	delete(m.jobs, name)
	return nil
}

// Running reports whether a job with name is active.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
}

// List returns the active job names, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
// Example:
//
//	"Running jobs: a, b"
//
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) add(parent context.Context, name string) (context.Context, *Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[name]; exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	ctx, cancel := context.WithCancelCause(parent)
	job := &Job{Name: name, Started: time.Now(), cancel: cancel}
	m.jobs[name] = job
	return ctx, job, nil
}

// remove deletes the entry only if it still belongs to job; Stop may already
// have removed it and a new job may have taken the name.
func (m *Manager) remove(name string, job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.jobs[name]; ok && cur == job {
		delete(m.jobs, name)
	}
	job.cancel(nil)
}

// report delivers lifecycle messages to the reporter if present.
func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
