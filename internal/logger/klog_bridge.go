package logger

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/go-logr/logr"
)

// KlogWriter is an io.Writer that routes klog text output through the
// structured logger. client-go writes connection errors and retry chatter
// through klog; left alone it would land on stderr mid-prompt. It is
// thread-safe for concurrent writes.
type KlogWriter struct {
	logger *Logger
	buffer *bytes.Buffer
	mu     sync.Mutex
}

// NewKlogWriter creates a writer suitable for klog.SetOutput.
func NewKlogWriter(logger *Logger) *KlogWriter {
	return &KlogWriter{
		logger: logger,
		buffer: &bytes.Buffer{},
	}
}

// Write implements io.Writer. Partial lines are buffered until a newline
// arrives.
func (w *KlogWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer.Write(p)

	for {
		line, err := w.buffer.ReadString('\n')
		if err != nil {
			if err == io.EOF && line != "" {
				w.buffer.WriteString(line)
			}
			break
		}
		w.processLine(strings.TrimSpace(line))
	}

	return len(p), nil
}

// processLine parses a klog line and routes it to the matching level.
// klog format: "I1124 12:34:56.789012   12345 file.go:123] message"
// where the first character is the severity (I/W/E/F).
func (w *KlogWriter) processLine(line string) {
	if line == "" {
		return
	}

	message := line
	if idx := strings.Index(line, "] "); idx != -1 {
		message = line[idx+2:]
	}

	fields := map[string]any{"source": "k8s-client"}

	switch line[0] {
	case 'W':
		w.logger.Warn(message, fields)
	case 'E', 'F':
		w.logger.Error(message, fields)
	default:
		// Info and anything unrecognized is noise at our level
		w.logger.Debug(message, fields)
	}
}

// LogrAdapter implements logr.LogSink so structured klog v2 output (which
// bypasses klog.SetOutput) also flows through the structured logger.
type LogrAdapter struct {
	logger *Logger
	name   string
}

// NewLogrAdapter creates a sink suitable for klog.SetLogger.
func NewLogrAdapter(logger *Logger) logr.LogSink {
	return &LogrAdapter{logger: logger}
}

// Init implements logr.LogSink.
func (l *LogrAdapter) Init(info logr.RuntimeInfo) {}

// Enabled maps logr V-levels onto our levels: V(0) is Info, V(1+) is Debug.
func (l *LogrAdapter) Enabled(level int) bool {
	if level == 0 {
		return l.logger.level <= LevelInfo
	}
	return l.logger.level <= LevelDebug
}

// Info logs a non-error message with the given key/value pairs.
func (l *LogrAdapter) Info(level int, msg string, keysAndValues ...any) {
	fields := l.kvToMap(keysAndValues)
	if level == 0 {
		l.logger.Info(msg, fields)
	} else {
		l.logger.Debug(msg, fields)
	}
}

// Error logs an error message with the given key/value pairs.
func (l *LogrAdapter) Error(err error, msg string, keysAndValues ...any) {
	fields := l.kvToMap(keysAndValues)
	if err != nil {
		fields["error"] = err.Error()
	}
	l.logger.Error(msg, fields)
}

// WithValues returns the sink unchanged; per-call key/values carry the
// context we need.
func (l *LogrAdapter) WithValues(keysAndValues ...any) logr.LogSink {
	return l
}

// WithName returns a sink with the name appended, dot-separated.
func (l *LogrAdapter) WithName(name string) logr.LogSink {
	n := *l
	if l.name == "" {
		n.name = name
	} else {
		n.name = l.name + "." + name
	}
	return &n
}

func (l *LogrAdapter) kvToMap(keysAndValues []any) map[string]any {
	fields := map[string]any{"source": "k8s-client"}
	if l.name != "" {
		fields["logger"] = l.name
	}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
