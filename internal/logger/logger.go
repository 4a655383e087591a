package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color" // Colored console output per log level
)

// Colorized writers for the different log levels.
// Info is green for normal progress, Warn is bright magenta for caution,
// Error is red for failures and Debug is cyan.
var (
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgHiMagenta)
	errorColor = color.New(color.FgRed)
	debugColor = color.New(color.FgCyan)
)

// timestampLayout is the layout of each line in rs_install.log.
const timestampLayout = "2006-01-02 15:04:05,000"

// Logger writes every message twice: colored to the console, and plain with
// a timestamp to the install log file once one has been opened.
type Logger struct {
	mu      sync.Mutex
	console io.Writer
	file    io.WriteCloser
	debug   bool
	now     func() time.Time
}

// New returns a Logger printing to console. Debug messages are dropped
// unless enableDebug is set.
func New(console io.Writer, enableDebug bool) *Logger {
	if console == nil {
		console = io.Discard
	}
	return &Logger{
		console: console,
		debug:   enableDebug,
		now:     time.Now,
	}
}

// OpenFile starts mirroring messages into path. The file is opened in append
// mode and created if missing; it is never truncated.
func (l *Logger) OpenFile(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
	}
	l.file = f
	return nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Info logs informational progress.
func (l *Logger) Info(format string, a ...any) {
	l.write(infoColor, "[INFO]", format, a...)
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(format string, a ...any) {
	l.write(warnColor, "[WARN]", format, a...)
}

// Error logs a failure. Callers still return the error; logging is not handling.
func (l *Logger) Error(format string, a ...any) {
	l.write(errorColor, "[ERROR]", format, a...)
}

// Debug logs only when debug output was requested.
func (l *Logger) Debug(format string, a ...any) {
	if !l.debug {
		return
	}
	l.write(debugColor, "[DEBUG]", format, a...)
}

// Banner prints free-form text to the console only, without level prefix.
func (l *Logger) Banner(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprint(l.console, text)
}

func (l *Logger) write(c *color.Color, level, format string, a ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, a...), "\n")

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = c.Fprintf(l.console, "%s %s\n", level, msg)
	if l.file != nil {
		_, _ = fmt.Fprintf(l.file, "%s %s %s\n", l.now().Format(timestampLayout), level, msg)
	}
}
