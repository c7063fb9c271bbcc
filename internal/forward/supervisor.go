package forward

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nvm/kshell/internal/logger"
)

// HostPublisher announces active forwards by hostname (mDNS). Implemented by
// the mdns package; nil-safe via the Supervisor's optional wiring.
type HostPublisher interface {
	Register(id, hostname string, localPort int) error
	Unregister(id string)
}

// Supervisor owns the active port-forward tasks. Registration order is
// iteration order, and indexes handed to Get/Stop refer to it.
//
// The supervisor itself is owned by the single interactive-loop goroutine;
// only each task's output buffer is shared with a background reader.
type Supervisor struct {
	tasks     []*Task
	publisher HostPublisher
	nextID    int
	ids       map[*Task]string
}

// NewSupervisor creates an empty Supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		ids: make(map[*Task]string),
	}
}

// SetPublisher attaches a hostname publisher. Tasks added afterwards are
// announced as <pod>.local on their first local port.
func (s *Supervisor) SetPublisher(p HostPublisher) {
	s.publisher = p
}

// Add registers a task and starts draining its output. No deduplication:
// multiple forwards to the same pod and port are tracked independently.
func (s *Supervisor) Add(t *Task) {
	id := fmt.Sprintf("pf-%d", s.nextID)
	s.nextID++
	s.ids[t] = id
	s.tasks = append(s.tasks, t)

	go t.readOutput()

	if s.publisher != nil {
		if err := s.publisher.Register(id, t.Pod, t.LocalPort()); err != nil {
			logger.Warn("Failed to publish forward hostname", map[string]any{
				"pod":   t.Pod,
				"error": err.Error(),
			})
		}
	}

	logger.Info("Port-forward started", map[string]any{
		"pod":   t.Pod,
		"ports": t.Ports,
	})
}

// List returns the active tasks in registration order.
func (s *Supervisor) List() []*Task {
	return append([]*Task(nil), s.tasks...)
}

// Get returns the task at index i, or nil when i is out of range.
func (s *Supervisor) Get(i int) *Task {
	if i < 0 || i >= len(s.tasks) {
		return nil
	}
	return s.tasks[i]
}

// Count returns the number of active tasks.
func (s *Supervisor) Count() int {
	return len(s.tasks)
}

// Stop removes the task at index i and terminates its process. An index out
// of range is a no-op success; a process that already exited on its own is
// also success, since termination races are expected.
func (s *Supervisor) Stop(i int) error {
	if i < 0 || i >= len(s.tasks) {
		return nil
	}

	t := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.unpublish(t)

	logger.Info("Port-forward stopped", map[string]any{
		"pod":   t.Pod,
		"ports": t.Ports,
	})

	return t.proc.Kill()
}

// StopAll terminates every tracked task and leaves the set empty regardless
// of individual outcomes. The first real termination error is returned.
// Called on quit and on cluster switch.
func (s *Supervisor) StopAll() error {
	tasks := s.tasks
	s.tasks = nil

	var g errgroup.Group
	for _, t := range tasks {
		g.Go(t.proc.Kill)
		s.unpublish(t)
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to stop port-forwards: %w", err)
	}
	return nil
}

func (s *Supervisor) unpublish(t *Task) {
	id, ok := s.ids[t]
	delete(s.ids, t)
	if ok && s.publisher != nil {
		s.publisher.Unregister(id)
	}
}
