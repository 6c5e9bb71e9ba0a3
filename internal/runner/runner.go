// Package runner launches a generated project's install and start commands
// as supervised background tasks.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/paperstack-cli/internal/stack"
)

// Status is a task's lifecycle position.
type Status string

const (
	StatusInstalling Status = "installing"
	StatusRunning    Status = "running"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// ErrCanceled is reported by tasks stopped through Cancel or their context.
var ErrCanceled = errors.New("task canceled")

// Recipe is the command sequence for one project: every Install step runs
// to completion, then Start runs until it exits.
type Recipe struct {
	Install []stack.Step `json:"install"`
	Start   stack.Step   `json:"start"`
}

// RecipeFor returns the run recipe of s.
func RecipeFor(s stack.Stack) Recipe {
	return Recipe{Install: s.Install, Start: s.Start}
}

// Task is one supervised run.
type Task struct {
	ID        string
	Dir       string
	Recipe    Recipe
	StartedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
	output *tailBuffer

	mu       sync.Mutex
	status   Status
	err      error
	finished time.Time
}

// Done is closed once the task has stopped.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the terminal error; nil while running or after success.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Status returns the current lifecycle position.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Cancel stops the task. It is safe to call more than once.
func (t *Task) Cancel() { t.cancel() }

// Output returns the most recent combined stdout and stderr.
func (t *Task) Output() string { return t.output.String() }

// Info is a point-in-time view for reporting.
type Info struct {
	ID         string    `json:"id"`
	Dir        string    `json:"dir"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Output     string    `json:"output"`
}

// Info snapshots the task.
func (t *Task) Info() Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	info := Info{
		ID:         t.ID,
		Dir:        t.Dir,
		Status:     t.status,
		StartedAt:  t.StartedAt,
		FinishedAt: t.finished,
		Output:     t.output.String(),
	}
	if t.err != nil {
		info.Error = t.err.Error()
	}
	return info
}

func (t *Task) setStatus(s Status) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

func (t *Task) finish(s Status, err error) {
	t.mu.Lock()
	t.status, t.err, t.finished = s, err, time.Now()
	t.mu.Unlock()
	close(t.done)
}

func (t *Task) finishedAt() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished, !t.finished.IsZero()
}

// Supervisor owns running tasks.
type Supervisor struct {
	timeout    time.Duration
	log        *slog.Logger
	retention  time.Duration
	removeDirs bool

	mu    sync.Mutex
	tasks map[string]*Task
}

// NewSupervisor bounds every task by timeout; zero means no limit.
func NewSupervisor(timeout time.Duration, log *slog.Logger) *Supervisor {
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{timeout: timeout, log: log, tasks: make(map[string]*Task)}
}

// SetRetention makes Prune drop tasks that finished more than keep ago.
// With removeDirs their working directories are deleted as well. A zero
// keep retains tasks for the supervisor's lifetime.
func (s *Supervisor) SetRetention(keep time.Duration, removeDirs bool) {
	s.mu.Lock()
	s.retention, s.removeDirs = keep, removeDirs
	s.mu.Unlock()
}

// Prune forgets finished tasks past the retention window as of now and
// returns them. Start calls it before registering a new task.
func (s *Supervisor) Prune(now time.Time) []*Task {
	s.mu.Lock()
	if s.retention <= 0 {
		s.mu.Unlock()
		return nil
	}
	var pruned []*Task
	for id, t := range s.tasks {
		if at, done := t.finishedAt(); done && now.Sub(at) > s.retention {
			delete(s.tasks, id)
			pruned = append(pruned, t)
		}
	}
	removeDirs := s.removeDirs
	s.mu.Unlock()

	for _, t := range pruned {
		if !removeDirs {
			continue
		}
		if err := os.RemoveAll(t.Dir); err != nil {
			s.log.Warn("remove run dir", "task", t.ID, "dir", t.Dir, "error", err)
		}
	}
	return pruned
}

// Start launches recipe in dir. ctx bounds the task's whole lifetime, so
// pass a long-lived context rather than a request-scoped one.
func (s *Supervisor) Start(ctx context.Context, dir string, recipe Recipe) *Task {
	var cancel context.CancelFunc
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	t := &Task{
		ID:        uuid.NewString(),
		Dir:       dir,
		Recipe:    recipe,
		StartedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
		output:    newTailBuffer(64 << 10),
		status:    StatusInstalling,
	}
	s.Prune(t.StartedAt)
	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()

	go s.supervise(ctx, t)
	return t
}

func (s *Supervisor) supervise(ctx context.Context, t *Task) {
	defer t.cancel()
	log := s.log.With("task", t.ID, "dir", t.Dir)
	for _, step := range t.Recipe.Install {
		log.Info("install step", "command", step.Command)
		if err := s.runStep(ctx, t, step); err != nil {
			s.end(ctx, log, t, fmt.Errorf("install %v: %w", step.Command, err))
			return
		}
	}
	t.setStatus(StatusRunning)
	log.Info("start step", "command", t.Recipe.Start.Command)
	if err := s.runStep(ctx, t, t.Recipe.Start); err != nil {
		s.end(ctx, log, t, fmt.Errorf("start %v: %w", t.Recipe.Start.Command, err))
		return
	}
	s.end(ctx, log, t, nil)
}

func (s *Supervisor) end(ctx context.Context, log *slog.Logger, t *Task, err error) {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		log.Info("task canceled")
		t.finish(StatusCanceled, ErrCanceled)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		log.Warn("task timed out", "timeout", s.timeout)
		t.finish(StatusFailed, fmt.Errorf("task timed out after %s: %w", s.timeout, ctx.Err()))
	case err != nil:
		log.Warn("task failed", "error", err)
		t.finish(StatusFailed, err)
	default:
		log.Info("task finished")
		t.finish(StatusSucceeded, nil)
	}
}

func (s *Supervisor) runStep(ctx context.Context, t *Task, step stack.Step) error {
	if len(step.Command) == 0 {
		return errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, step.Command[0], step.Command[1:]...)
	cmd.Dir = filepath.Join(t.Dir, filepath.FromSlash(step.Dir))
	cmd.Stdout = t.output
	cmd.Stderr = t.output
	cmd.WaitDelay = 5 * time.Second
	return cmd.Run()
}

// Get returns the task with id.
func (s *Supervisor) Get(id string) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

// List returns every known task, oldest first.
func (s *Supervisor) List() []*Task {
	s.mu.Lock()
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// Shutdown cancels every task and waits for them until ctx expires.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	tasks := s.List()
	for _, t := range tasks {
		t.Cancel()
	}
	for _, t := range tasks {
		select {
		case <-t.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
