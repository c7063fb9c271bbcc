package repl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nvm/kshell/internal/forward"
	"github.com/nvm/kshell/internal/k8s"
)

// ErrQuit is returned by Execute when the operator asks to leave.
var ErrQuit = errors.New("quit")

// Execute expands and runs a single input line. Bad input comes back as an
// error for the loop to print; the session itself stays usable.
func (r *Repl) Execute(ctx context.Context, line string) error {
	r.session.ApplyPendingReload()
	r.session.Interrupt.Reset()

	line = r.expandLine(line)

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if idx, err := strconv.Atoi(cmd); err == nil {
		r.session.SelectByIndex(idx)
		return nil
	}

	switch cmd {
	case "help", "?":
		r.showHelp()
		return nil
	case "quit", "exit", "q":
		return ErrQuit
	case "context", "ctx":
		return r.cmdContext(args)
	case "namespace", "ns":
		return r.cmdNamespace(args)
	case "pods", "nodes", "deployments", "services", "replicasets",
		"statefulsets", "configmaps", "secrets", "jobs":
		return r.cmdList(ctx, cmd)
	case "up":
		r.session.ClearSelection()
		return nil
	case "containers":
		return r.cmdContainers()
	case "alias":
		return r.cmdAlias(args)
	case "unalias":
		return r.cmdUnalias(args)
	case "aliases":
		r.renderAliases()
		return nil
	case "forward", "pf":
		return r.cmdForward(args)
	case "forwards", "pfs":
		r.renderForwards()
		return nil
	case "output":
		return r.cmdOutput(args)
	case "check":
		return r.cmdCheck(ctx, args)
	case "stopforward", "stoppf":
		return r.cmdStopForward(args)
	case "copy":
		return r.cmdCopy()
	case "env":
		fmt.Fprintln(r.out, r.session.Summary())
		return nil
	default:
		return fmt.Errorf("unknown command: %s (try 'help')", cmd)
	}
}

// expandLine applies alias expansion until nothing expands. Only immediate
// self-expansion is guarded against; see the alias package.
func (r *Repl) expandLine(line string) string {
	prev := ""
	for {
		exp := r.session.Aliases.Expand(line, prev)
		if exp.Alias == nil {
			return line
		}
		prev = exp.Alias.Name
		line = exp.Alias.Expansion + exp.Rest
	}
}

func (r *Repl) cmdContext(args []string) error {
	if len(args) == 0 {
		names, err := r.contexts.Contexts()
		if err != nil {
			return fmt.Errorf("listing contexts: %w", err)
		}
		r.renderContexts(names)
		return nil
	}

	// Forwards hold connections into the old cluster; take them down first.
	if err := r.session.Forwards.StopAll(); err != nil {
		fmt.Fprintf(r.out, "Warning: stopping forwards: %v\n", err)
	}

	name := args[0]
	r.session.WarnSaveError(r.session.SwitchCluster(name))

	// With no namespace of our own yet, adopt the one the kubeconfig
	// context names.
	if r.session.Cluster() != nil && r.session.Namespace() == "" {
		if ns, err := r.contexts.DefaultNamespace(name); err == nil && ns != "" {
			r.session.WarnSaveError(r.session.SwitchNamespace(ns))
		}
	}
	return nil
}

func (r *Repl) cmdNamespace(args []string) error {
	if len(args) == 0 {
		ns := r.session.Namespace()
		if ns == "" {
			ns = "none"
		}
		fmt.Fprintln(r.out, ns)
		return nil
	}

	name := args[0]
	if name == "none" {
		name = ""
	}
	r.session.WarnSaveError(r.session.SwitchNamespace(name))
	return nil
}

func (r *Repl) cmdList(parent context.Context, kindWord string) error {
	ctx, cancel := r.interruptContext(parent)
	defer cancel()

	ns := r.session.Namespace()
	r.session.RunOnCluster(func(c *k8s.Cluster) error {
		var list k8s.ResourceList
		var err error
		switch kindWord {
		case "pods":
			list, err = c.ListPods(ctx, ns)
		case "nodes":
			list, err = c.ListNodes(ctx)
		case "deployments":
			list, err = c.ListDeployments(ctx, ns)
		case "services":
			list, err = c.ListServices(ctx, ns)
		case "replicasets":
			list, err = c.ListReplicaSets(ctx, ns)
		case "statefulsets":
			list, err = c.ListStatefulSets(ctx, ns)
		case "configmaps":
			list, err = c.ListConfigMaps(ctx, ns)
		case "secrets":
			list, err = c.ListSecrets(ctx, ns)
		case "jobs":
			list, err = c.ListJobs(ctx, ns)
		}
		if err != nil {
			return err
		}

		r.session.RecordList(list)
		r.renderList(list)
		return nil
	})
	return nil
}

func (r *Repl) cmdContainers() error {
	sel := r.session.Selection()
	if sel.Kind != k8s.KindPod {
		fmt.Fprintln(r.out, "Need an active pod")
		return nil
	}
	for _, name := range sel.Containers {
		fmt.Fprintln(r.out, name)
	}
	return nil
}

func (r *Repl) cmdAlias(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: alias <name> <expansion...>")
	}
	r.session.WarnSaveError(r.session.Aliases.Add(args[0], strings.Join(args[1:], " ")))
	return nil
}

func (r *Repl) cmdUnalias(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: unalias <name>")
	}
	removed, err := r.session.Aliases.Remove(args[0])
	if !removed {
		fmt.Fprintf(r.out, "No alias named %s\n", args[0])
		return nil
	}
	r.session.WarnSaveError(err)
	return nil
}

func (r *Repl) cmdForward(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: forward <local:remote>...")
	}
	for _, p := range args {
		if err := validatePortPair(p); err != nil {
			return err
		}
	}

	pod, ok := r.session.CurrentPodName()
	if !ok {
		fmt.Fprintln(r.out, "Need an active pod")
		return nil
	}

	t, err := forward.Start(r.spawner, pod, r.session.Selection().Namespace, args)
	if err != nil {
		return fmt.Errorf("starting port-forward: %w", err)
	}
	r.session.Forwards.Add(t)
	fmt.Fprintf(r.out, "Forwarding %s\n", t)
	return nil
}

func (r *Repl) cmdOutput(args []string) error {
	i, err := taskIndex(args, "output")
	if err != nil {
		return err
	}
	t := r.session.Forwards.Get(i)
	if t == nil {
		fmt.Fprintln(r.out, "No active forward for that index")
		return nil
	}
	fmt.Fprint(r.out, t.Output())
	return nil
}

func (r *Repl) cmdCheck(parent context.Context, args []string) error {
	i, err := taskIndex(args, "check")
	if err != nil {
		return err
	}
	t := r.session.Forwards.Get(i)
	if t == nil {
		fmt.Fprintln(r.out, "No active forward for that index")
		return nil
	}
	port := t.LocalPort()
	if port == 0 {
		fmt.Fprintf(r.out, "Cannot determine local port of %s\n", t)
		return nil
	}

	ctx, cancel := r.interruptContext(parent)
	defer cancel()
	fmt.Fprintln(r.out, r.prober.Probe(ctx, port))
	return nil
}

func (r *Repl) cmdStopForward(args []string) error {
	i, err := taskIndex(args, "stopforward")
	if err != nil {
		return err
	}
	t := r.session.Forwards.Get(i)
	if t == nil {
		fmt.Fprintln(r.out, "No active forward for that index")
		return nil
	}
	if err := r.session.Forwards.Stop(i); err != nil {
		return fmt.Errorf("stopping forward: %w", err)
	}
	fmt.Fprintf(r.out, "Stopped %s\n", t)
	return nil
}

func (r *Repl) cmdCopy() error {
	sel := r.session.Selection()
	if sel.Empty() {
		fmt.Fprintln(r.out, "Nothing selected")
		return nil
	}
	if err := r.copyText(sel.Name); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	fmt.Fprintf(r.out, "Copied %s\n", sel.Name)
	return nil
}

func (r *Repl) showHelp() {
	fmt.Fprint(r.out, `Commands:
  context, ctx [name]        list contexts, or switch to one
  namespace, ns [name]       show or switch the namespace ('none' clears it)
  pods | nodes | deployments | services | replicasets | statefulsets |
  configmaps | secrets | jobs
                             fetch and list objects of that kind
  <number>                   select the numbered object from the last list
  up                         clear the selection
  containers                 container names of the selected pod
  alias <name> <expansion>   define shorthand expanded before parsing
  unalias <name>             remove an alias
  aliases                    list aliases
  forward, pf <l:r>...       port-forward the selected pod
  forwards, pfs              list active forwards
  output <n>                 print a forward's accumulated output
  check <n>                  probe a forward's local port
  stopforward, stoppf <n>    stop one forward
  copy                       selected object name to clipboard
  env                        show the session
  help, ?                    this message
  quit, exit, q              stop all forwards and leave
`)
}

func taskIndex(args []string, cmd string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s <n>", cmd)
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("usage: %s <n>", cmd)
	}
	return i, nil
}

func validatePortPair(s string) error {
	for _, part := range strings.SplitN(s, ":", 2) {
		if _, err := strconv.Atoi(part); err != nil {
			return fmt.Errorf("invalid port specification %q (want local:remote)", s)
		}
	}
	return nil
}
