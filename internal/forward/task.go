package forward

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Task is one supervised port-forward: the target pod, the local:remote port
// pairs being forwarded, the external process, and its accumulated output.
//
// The output buffer has exactly one writer (the reader goroutine draining the
// process) and is guarded by a per-task mutex, so inspecting a task never
// serializes unrelated forwards against each other.
type Task struct {
	Pod   string
	Ports []string

	proc Process

	mu     sync.Mutex
	output strings.Builder
}

// NewTask wraps an already-started process. Start on the owning Supervisor
// begins draining its output.
func NewTask(pod string, ports []string, proc Process) *Task {
	return &Task{
		Pod:   pod,
		Ports: append([]string(nil), ports...),
		proc:  proc,
	}
}

// Start launches the kubectl port-forward child for pod/ports and returns
// the ready-to-register task. namespace may be empty for the current
// kubeconfig default.
func Start(sp Spawner, pod, namespace string, ports []string) (*Task, error) {
	args := []string{"port-forward"}
	if namespace != "" {
		args = append(args, "-n", namespace)
	}
	args = append(args, pod)
	args = append(args, ports...)

	proc, err := sp.Spawn("kubectl", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn port-forward for pod %s: %w", pod, err)
	}

	return NewTask(pod, ports, proc), nil
}

// String renders the task for listings: "pod (8080:80, 9090:9090)".
func (t *Task) String() string {
	return fmt.Sprintf("%s (%s)", t.Pod, strings.Join(t.Ports, ", "))
}

// Output snapshots the accumulated process output. It never blocks the
// background writer for longer than one append's critical section.
func (t *Task) Output() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.output.String()
}

// LocalPort returns the local side of the first forwarded port pair, or 0
// when it cannot be parsed.
func (t *Task) LocalPort() int {
	if len(t.Ports) == 0 {
		return 0
	}
	local := t.Ports[0]
	if idx := strings.Index(local, ":"); idx != -1 {
		local = local[:idx]
	}
	port, err := strconv.Atoi(local)
	if err != nil {
		return 0
	}
	return port
}

// readOutput drains the process's combined output into the buffer until EOF.
// It is the buffer's only writer.
func (t *Task) readOutput() {
	buf := make([]byte, 4096)
	for {
		n, err := t.proc.Output().Read(buf)
		if n > 0 {
			t.mu.Lock()
			t.output.Write(buf[:n])
			t.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}
