// Package repl implements the interactive loop: line editing and history,
// alias expansion, command dispatch against the session, and rendering.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/chzyer/readline"

	"github.com/nvm/kshell/internal/forward"
	"github.com/nvm/kshell/internal/healthcheck"
	"github.com/nvm/kshell/internal/session"
)

// interruptPollInterval is how often an in-flight cluster call checks the
// interrupt flag.
const interruptPollInterval = 100 * time.Millisecond

// ContextSource exposes the kubeconfig view the context command needs:
// the available contexts, the file's current-context, and each context's
// configured namespace. Satisfied by k8s.Resolver.
type ContextSource interface {
	Contexts() ([]string, error)
	CurrentContext() (string, error)
	DefaultNamespace(contextName string) (string, error)
}

// Repl reads lines, expands aliases, and dispatches commands. One command is
// fully processed before the next line is read.
type Repl struct {
	session  *session.Session
	contexts ContextSource

	spawner     forward.Spawner
	prober      *healthcheck.Prober
	copyText    func(string) error
	out         io.Writer
	historyFile string

	rl *readline.Instance
}

// New creates a Repl over the given session. historyFile may be empty, in
// which case history goes to a file in the temp directory.
func New(sess *session.Session, contexts ContextSource, historyFile string) *Repl {
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".kshell_history")
	}
	return &Repl{
		session:     sess,
		contexts:    contexts,
		spawner:     forward.ExecSpawner{},
		prober:      healthcheck.NewProber(2*time.Second, 5),
		copyText:    clipboard.WriteAll,
		out:         sess.Out(),
		historyFile: historyFile,
	}
}

// SetSpawner overrides how port-forward processes are started. Tests use
// this to avoid spawning real kubectl processes.
func (r *Repl) SetSpawner(sp forward.Spawner) {
	r.spawner = sp
}

// SetCopyFunc overrides the clipboard write used by the copy command.
func (r *Repl) SetCopyFunc(f func(string) error) {
	r.copyText = f
}

// SetProber overrides the tunnel prober used by the check command.
func (r *Repl) SetProber(p *healthcheck.Prober) {
	r.prober = p
}

// Run drives the interactive loop until quit, EOF, or context cancellation.
// Outstanding port-forwards are stopped on the way out.
func (r *Repl) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              r.session.Prompt(),
		HistoryFile:         r.historyFile,
		AutoComplete:        r.completer(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "quit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	for {
		select {
		case <-ctx.Done():
			return r.session.Close()
		default:
		}

		rl.SetPrompt(r.session.Prompt())

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			return r.session.Close()
		} else if err != nil {
			closeErr := r.session.Close()
			return errors.Join(fmt.Errorf("reading input: %w", err), closeErr)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := r.Execute(ctx, input); err != nil {
			if errors.Is(err, ErrQuit) {
				return r.session.Close()
			}
			fmt.Fprintln(r.out, err)
		}
	}
}

// interruptContext derives a context cancelled when the session's interrupt
// flag trips, so a Ctrl-C aborts an in-flight cluster call instead of only
// the current input line.
func (r *Repl) interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ticker := time.NewTicker(interruptPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if r.session.Interrupt.Triggered() {
					cancel()
					return
				}
			}
		}
	}()
	return ctx, cancel
}

func (r *Repl) completer() *readline.PrefixCompleter {
	aliasNames := func(string) []string {
		aliases := r.session.Aliases.List()
		names := make([]string, 0, len(aliases))
		for _, a := range aliases {
			names = append(names, a.Name)
		}
		return names
	}
	contextNames := func(string) []string {
		names, err := r.contexts.Contexts()
		if err != nil {
			return nil
		}
		return names
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("context", readline.PcItemDynamic(contextNames)),
		readline.PcItem("ctx", readline.PcItemDynamic(contextNames)),
		readline.PcItem("namespace"),
		readline.PcItem("ns"),
		readline.PcItem("pods"),
		readline.PcItem("nodes"),
		readline.PcItem("deployments"),
		readline.PcItem("services"),
		readline.PcItem("replicasets"),
		readline.PcItem("statefulsets"),
		readline.PcItem("configmaps"),
		readline.PcItem("secrets"),
		readline.PcItem("jobs"),
		readline.PcItem("up"),
		readline.PcItem("containers"),
		readline.PcItem("alias"),
		readline.PcItem("unalias", readline.PcItemDynamic(aliasNames)),
		readline.PcItem("aliases"),
		readline.PcItem("forward"),
		readline.PcItem("pf"),
		readline.PcItem("forwards"),
		readline.PcItem("pfs"),
		readline.PcItem("output"),
		readline.PcItem("check"),
		readline.PcItem("stopforward"),
		readline.PcItem("stoppf"),
		readline.PcItem("copy"),
		readline.PcItem("env"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
		readline.PcItem("exit"),
	)
}

func filterInput(r rune) (rune, bool) {
	// Ctrl-Z would suspend with readline's raw mode still active.
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}
