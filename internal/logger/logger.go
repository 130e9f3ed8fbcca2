// Package logger provides verbose logging for sitesearch.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to show each search round-trip and merge.
// Errors are printed regardless of verbosity.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// level tags a line. Quiet levels print only in verbose mode.
type level struct {
	tag   string
	quiet bool
}

var (
	levelDebug = level{tag: "DEBUG", quiet: true}
	levelInfo  = level{tag: "INFO", quiet: true}
	levelWarn  = level{tag: "WARN", quiet: true}
	levelError = level{tag: "ERROR"}
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l.quiet && !verbose {
		return
	}
	fmt.Fprintf(output, "["+l.tag+"] "+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) { logf(levelDebug, format, args...) }

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) { logf(levelInfo, format, args...) }

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) { logf(levelWarn, format, args...) }

// Error prints an error message. It is printed even when verbose mode is off.
func Error(format string, args ...any) { logf(levelError, format, args...) }

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// warnWriter sends each write to Warn.
type warnWriter struct {
	prefix string
}

func (w warnWriter) Write(p []byte) (int, error) {
	Warn("%s%s", w.prefix, strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// StdLogger returns a *log.Logger whose lines are logged as warnings.
// It suits APIs such as http.Server.ErrorLog that want a standard logger.
func StdLogger(prefix string) *log.Logger {
	return log.New(warnWriter{prefix: prefix}, "", 0)
}
