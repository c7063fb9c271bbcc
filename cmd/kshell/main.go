package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"k8s.io/klog/v2"

	"github.com/nvm/kshell/internal/config"
	"github.com/nvm/kshell/internal/interrupt"
	"github.com/nvm/kshell/internal/k8s"
	"github.com/nvm/kshell/internal/logger"
	"github.com/nvm/kshell/internal/mdns"
	"github.com/nvm/kshell/internal/repl"
	"github.com/nvm/kshell/internal/session"
)

var (
	configDir      = flag.String("c", "", "Directory holding the kshell config file (default: user config dir)")
	startContext   = flag.String("C", "", "Kubeconfig context to activate on start")
	startNamespace = flag.String("n", "", "Namespace to activate on start")
	execCommand    = flag.String("e", "", "Run a single command and exit")
	verbose        = flag.Bool("v", false, "Enable verbose logging")
	logFormat      = flag.String("log-format", "text", "Log format: text or json")
	showVersion    = flag.Bool("version", false, "Show version and exit")
	appVersion     = "0.1.0" // Set via ldflags during build
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("kshell version %s\n", appVersion)
		os.Exit(0)
	}

	cfgPath, err := resolveConfigPath(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config path: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	var logLevel logger.Level
	var logOutput io.Writer

	if *verbose {
		logLevel = logger.LevelDebug
		logOutput = os.Stderr
	} else {
		logLevel = logger.LevelInfo
		logOutput = io.Discard // Silence logger to keep the prompt clean
	}

	var logFmt logger.Format
	switch *logFormat {
	case "json":
		logFmt = logger.FormatJSON
	default:
		logFmt = logger.FormatText
	}

	logger.Init(logLevel, logFmt, logOutput)

	// Route klog (used by kubernetes client-go) through our logger so cluster
	// client output cannot corrupt the readline prompt. klog writes through
	// both SetOutput and the logr interface; configure both.
	klog.LogToStderr(false)
	if *verbose {
		klogLogger := logger.New(logger.LevelDebug, logFmt, os.Stderr)
		klog.SetOutput(logger.NewKlogWriter(klogLogger))
		klog.SetLogger(logr.New(logger.NewLogrAdapter(klogLogger)))
	} else {
		klog.SetOutput(io.Discard)
		silentLogger := logger.New(logger.LevelError+1, logFmt, io.Discard)
		klog.SetLogger(logr.New(logger.NewLogrAdapter(silentLogger)))
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = &config.Config{}
	}

	if *startContext != "" {
		cfg.Context = *startContext
	}
	if *startNamespace != "" {
		cfg.Namespace = *startNamespace
	}

	resolver := k8s.NewResolver()
	sess := session.New(resolver, cfg, cfgPath, interrupt.Shared(), os.Stdout)

	publisher := mdns.NewPublisher(cfg.MDNS)
	defer publisher.Stop()
	sess.Forwards.SetPublisher(publisher)
	if cfg.MDNS {
		logger.Info("mDNS hostname publishing enabled", map[string]any{
			"domain": mdns.Hostname("<pod>"),
		})
	}

	r := repl.New(sess, resolver, cfg.HistoryFile)

	if *execCommand != "" {
		runOneShot(r, sess, *execCommand)
		return
	}

	// External edits to the config file (another kshell, or a hand-edited
	// alias list) flow back into the running session. The watcher runs on
	// its own goroutine, so it only queues; the command loop applies the
	// reload between commands.
	watcher, err := config.NewWatcher(cfgPath, func(newCfg *config.Config) error {
		sess.QueueAliasReload(newCfg.Aliases)
		return nil
	})
	if err != nil {
		logger.Warn("Failed to set up config watcher", map[string]any{
			"error": err.Error(),
		})
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	if err := r.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// runOneShot executes a single command line (possibly several commands
// separated by semicolons) and stops all forwards before returning.
func runOneShot(r *repl.Repl, sess *session.Session, line string) {
	defer func() {
		if err := sess.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}()

	for _, cmd := range strings.Split(line, ";") {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		if err := r.Execute(context.Background(), cmd); err != nil {
			if err == repl.ErrQuit {
				return
			}
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func resolveConfigPath(dir string) (string, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "kshell")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Clean(abs), config.DefaultFileName), nil
}
