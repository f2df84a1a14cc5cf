// Package jobmgr runs named background jobs, immediately or after a delay,
// and tracks them until they finish.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(log)
//
//	err := jm.StartAfter("expire:123", time.Minute, func(ctx context.Context) error {
//	    return deleteMessage(ctx)
//	})
//
//	// on shutdown, run what is still pending and wait for it
//	_ = jm.Shutdown(ctx)
//
// There is no retry logic and no persistence: pending jobs live in memory.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrShutdown is returned when a job is started after Shutdown.
var ErrShutdown = errors.New("job manager is shut down")

// Job represents a pending or running unit of work.
// Jobs are added and removed by Manager automatically.
type Job struct {
	Name   string
	Due    time.Time
	cancel context.CancelFunc
	fire   chan struct{}
	once   sync.Once
}

func (j *Job) trigger() {
	j.once.Do(func() { close(j.fire) })
}

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	closed bool
	wg     sync.WaitGroup
	log    zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		jobs: make(map[string]*Job),
		log:  log,
	}
}

// StartAsync runs a job in a separate goroutine and returns immediately.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	return m.StartAfter(name, 0, runner)
}

// StartAfter runs runner once delay has passed. A job with the same name
// must not be pending or running. Jobs are removed automatically after
// completion (success or failure).
func (m *Manager) StartAfter(name string, delay time.Duration, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		Name:   name,
		Due:    time.Now().Add(delay),
		cancel: cancel,
		fire:   make(chan struct{}),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		return ErrShutdown
	}
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("job '%s' is already scheduled", name)
	}
	m.jobs[name] = job
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(ctx, job, delay, runner)
	return nil
}

func (m *Manager) run(ctx context.Context, job *Job, delay time.Duration, runner func(ctx context.Context) error) {
	defer m.wg.Done()
	defer m.remove(job)
	defer job.cancel()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-job.fire:
	case <-ctx.Done():
		m.log.Debug().Str("job", job.Name).Msg("job stopped before it ran")
		return
	}

	if err := runner(ctx); err != nil {
		m.log.Warn().Err(err).Str("job", job.Name).Msg("job failed")
		return
	}
	m.log.Debug().Str("job", job.Name).Msg("job done")
}

func (m *Manager) remove(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobs[job.Name] == job {
		delete(m.jobs, job.Name)
	}
}

// Stop cancels a pending or running job by name.
// If the job is not known, an error is returned.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}

	job.cancel()
	delete(m.jobs, name)
	return nil
}

// List returns the names of pending and running jobs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Shutdown refuses new jobs, runs every pending job now and waits for all
// of them until ctx is done.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	for _, job := range m.jobs {
		job.trigger()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
