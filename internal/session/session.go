// Package session holds the state every shell command executes against: the
// active cluster and namespace, the current object selection, the alias set,
// and the supervised port-forward tasks.
//
// The session is owned by the single interactive-loop goroutine. The only
// cross-goroutine sharing happens inside its sub-components (each forward
// task's output buffer, and the interrupt flag) and over the alias reload
// channel, which other goroutines feed with QueueAliasReload and the owning
// goroutine drains between commands.
package session

import (
	"fmt"
	"io"
	"os"

	"github.com/nvm/kshell/internal/alias"
	"github.com/nvm/kshell/internal/config"
	"github.com/nvm/kshell/internal/forward"
	"github.com/nvm/kshell/internal/interrupt"
	"github.com/nvm/kshell/internal/k8s"
	"github.com/nvm/kshell/internal/logger"
)

// ClusterResolver looks up clusters by kubeconfig context name. Satisfied by
// k8s.Resolver; tests substitute a fake.
type ClusterResolver interface {
	Resolve(contextName string) (*k8s.Cluster, error)
}

// Session is the aggregate the command dispatch mutates. All user-facing
// messages go to out; the prompt is recomputed after every mutation.
type Session struct {
	resolver ClusterResolver

	cluster   *k8s.Cluster
	namespace string

	selector  *Selector
	Aliases   *alias.Expander
	Forwards  *forward.Supervisor
	Interrupt *interrupt.Signal

	cfg     *config.Config
	cfgPath string

	// reloads carries externally-edited alias sets from the config watcher
	// goroutine to the owning goroutine. Capacity 1: only the newest
	// pending set matters.
	reloads chan []alias.Alias

	out    io.Writer
	prompt string
}

// New creates a session from loaded configuration. The configured context,
// if any, is activated immediately; a context that no longer resolves is
// reported and the session starts with no active cluster.
func New(resolver ClusterResolver, cfg *config.Config, cfgPath string, sig *interrupt.Signal, out io.Writer) *Session {
	if out == nil {
		out = os.Stdout
	}

	s := &Session{
		resolver:  resolver,
		namespace: cfg.Namespace,
		selector:  NewSelector(out),
		Forwards:  forward.NewSupervisor(),
		Interrupt: sig,
		cfg:       cfg,
		cfgPath:   cfgPath,
		reloads:   make(chan []alias.Alias, 1),
		out:       out,
	}

	s.Aliases = alias.NewExpander(cfg.Aliases, s.persistAliases)

	if cfg.Context != "" {
		if err := s.SwitchCluster(cfg.Context); err != nil {
			s.warnSave(err)
		}
	}

	s.recomputePrompt()
	return s
}

// Out returns the writer user-facing messages go to.
func (s *Session) Out() io.Writer {
	return s.out
}

// Prompt returns the current prompt string.
func (s *Session) Prompt() string {
	return s.prompt
}

// Cluster returns the active cluster, or nil when none is active.
func (s *Session) Cluster() *k8s.Cluster {
	return s.cluster
}

// Namespace returns the active namespace, "" when none is set.
func (s *Session) Namespace() string {
	return s.namespace
}

// Selection returns the currently selected object.
func (s *Session) Selection() Selection {
	return s.selector.Current()
}

// RecordList replaces the session's resource list with a fresh fetch.
func (s *Session) RecordList(l k8s.ResourceList) {
	s.selector.RecordList(l)
}

// LastList returns the most recently fetched resource list.
func (s *Session) LastList() k8s.ResourceList {
	return s.selector.LastList()
}

// SelectByIndex selects the i-th item of the last fetched list and
// recomputes the prompt.
func (s *Session) SelectByIndex(i int) {
	s.selector.SelectByIndex(i)
	s.recomputePrompt()
}

// ClearSelection empties the selection and recomputes the prompt.
func (s *Session) ClearSelection() {
	s.selector.Clear()
	s.recomputePrompt()
}

// CurrentPodName returns the selected pod's name, false when the selection
// is not a pod.
func (s *Session) CurrentPodName() (string, bool) {
	return s.selector.CurrentPodName()
}

// SwitchCluster resolves and activates the named kubeconfig context. A
// failed lookup is reported to the user and leaves the session with no
// active cluster but otherwise untouched: namespace and selection survive,
// and nothing is persisted. On success the new context/namespace pair is
// persisted; a persistence failure is returned for the caller to decide on
// and does not undo the switch.
func (s *Session) SwitchCluster(name string) error {
	cluster, err := s.resolver.Resolve(name)
	if err != nil {
		fmt.Fprintf(s.out, "Couldn't load context %s, now no current context. Error: %v\n", name, err)
		s.cluster = nil
		s.recomputePrompt()
		return nil
	}

	s.cluster = cluster
	logger.Info("Switched context", map[string]any{
		"context":   name,
		"namespace": s.namespace,
	})

	err = s.persistState()
	s.recomputePrompt()
	return err
}

// SwitchNamespace activates the named namespace ("" clears it). When the
// selected object sits in a different, defined namespace than the new one,
// the selection is cleared so follow-up commands cannot act on an object
// outside the active namespace; a selection without a namespace (a node) is
// kept.
func (s *Session) SwitchNamespace(name string) error {
	sel := s.selector.Current()
	if !sel.Empty() && sel.Namespace != "" && name != "" && sel.Namespace != name {
		s.selector.Clear()
	}

	s.namespace = name

	err := s.persistState()
	s.recomputePrompt()
	return err
}

// RunOnCluster invokes op against the active cluster. With no active
// cluster it reports and does nothing. A failure returned by op is reported
// to the user; the session stays usable either way. The return value says
// whether op ran and succeeded.
func (s *Session) RunOnCluster(op func(*k8s.Cluster) error) bool {
	if s.cluster == nil {
		fmt.Fprintln(s.out, "Need to have an active context")
		return false
	}

	if err := op(s.cluster); err != nil {
		fmt.Fprintln(s.out, err)
		return false
	}
	return true
}

// Close terminates every outstanding port-forward. Called on quit.
func (s *Session) Close() error {
	return s.Forwards.StopAll()
}

// Summary renders the session for the env command.
func (s *Session) Summary() string {
	clusterName := "none"
	if s.cluster != nil {
		clusterName = s.cluster.Name
	}
	namespace := s.namespace
	if namespace == "" {
		namespace = "none"
	}
	selected := "none"
	if sel := s.selector.Current(); !sel.Empty() {
		selected = fmt.Sprintf("%s %s", sel.Kind, sel.Name)
	}

	return fmt.Sprintf(
		"Session {\n  Current Context: %s\n  Namespace: %s\n  Selected: %s\n  Aliases: %d\n  Port Forwards: %d\n  Config File: %s\n}",
		clusterName, namespace, selected,
		len(s.Aliases.List()), s.Forwards.Count(), s.cfgPath,
	)
}

// QueueAliasReload hands an externally-edited alias set to the owning
// goroutine, replacing any set still pending. Safe to call from the config
// watcher goroutine; nothing is touched here beyond the channel.
func (s *Session) QueueAliasReload(aliases []alias.Alias) {
	for {
		select {
		case s.reloads <- aliases:
			return
		case <-s.reloads:
		}
	}
}

// ApplyPendingReload installs a queued alias set, if any, and reports
// whether one was applied. Must run on the goroutine that owns the session;
// the command loop calls it before each command.
func (s *Session) ApplyPendingReload() bool {
	select {
	case aliases := <-s.reloads:
		s.ReloadAliases(aliases)
		return true
	default:
		return false
	}
}

// ReloadAliases swaps in an externally-edited alias set without persisting
// it back. Must run on the goroutine that owns the session.
func (s *Session) ReloadAliases(aliases []alias.Alias) {
	s.Aliases.Replace(aliases)
	s.cfg.Aliases = aliases
}

// WarnSaveError reports a persistence failure to the user without killing
// the session; the in-memory state is already updated.
func (s *Session) WarnSaveError(err error) {
	s.warnSave(err)
}

func (s *Session) warnSave(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(s.out, "Warning: %v (state kept in memory)\n", err)
}

func (s *Session) persistState() error {
	if s.cluster != nil {
		s.cfg.Context = s.cluster.Name
	} else {
		s.cfg.Context = ""
	}
	s.cfg.Namespace = s.namespace
	return s.cfg.Save(s.cfgPath)
}

func (s *Session) persistAliases(aliases []alias.Alias) error {
	s.cfg.Aliases = aliases
	return s.cfg.Save(s.cfgPath)
}

func (s *Session) recomputePrompt() {
	clusterName := ""
	if s.cluster != nil {
		clusterName = s.cluster.Name
	}
	s.prompt = buildPrompt(clusterName, s.namespace, s.selector.Current())
}
