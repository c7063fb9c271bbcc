// Package forward supervises background port-forward child processes. Each
// task wraps one external process (kubectl port-forward) together with a live
// buffer of its combined output, fed by a dedicated reader goroutine.
package forward

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Process is a killable external process with a readable combined-output
// stream.
type Process interface {
	// Output is the process's combined stdout+stderr. It reaches EOF when
	// the process exits.
	Output() io.Reader
	// Kill requests termination. Killing a process that has already exited
	// is success, not failure.
	Kill() error
	// Wait blocks until the process exits.
	Wait() error
}

// Spawner starts external processes. The production implementation runs real
// commands; tests substitute a fake.
type Spawner interface {
	Spawn(name string, args ...string) (Process, error)
}

// ExecSpawner runs commands via os/exec.
type ExecSpawner struct{}

// Spawn starts the command with stdout and stderr joined into one stream.
func (ExecSpawner) Spawn(name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	p := &execProcess{
		cmd:  cmd,
		out:  pr,
		done: make(chan struct{}),
	}

	go func() {
		p.waitErr = cmd.Wait()
		// Closing the write end delivers EOF to the output reader
		pw.Close()
		close(p.done)
	}()

	return p, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	out     *io.PipeReader
	done    chan struct{}
	waitErr error
}

func (p *execProcess) Output() io.Reader {
	return p.out
}

func (p *execProcess) Kill() error {
	err := p.cmd.Process.Kill()
	if err == nil || errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *execProcess) Wait() error {
	<-p.done
	return p.waitErr
}
