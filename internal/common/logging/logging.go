package logging

import (
	"log"
	"strings"
	"sync"
)

// ============================================================
// Verbose filters
// ============================================================

var (
	mu          sync.RWMutex
	verboseAll  bool
	verboseMods map[string]bool
)

// SetVerbose configures debug output from a VERBOSE-style value:
//   - "" or "false": debug output off
//   - "true", "1" or "all": everything
//   - "composer,export.Export": the composer module and one method of export
func SetVerbose(value string) {
	mu.Lock()
	defer mu.Unlock()

	verboseAll = false
	verboseMods = make(map[string]bool)

	switch strings.TrimSpace(value) {
	case "", "false", "0":
		return
	case "true", "1", "all":
		verboseAll = true
		return
	}

	for _, filter := range strings.Split(value, ",") {
		if filter = strings.ToLower(strings.TrimSpace(filter)); filter != "" {
			verboseMods[filter] = true
		}
	}
}

// IsVerbose reports whether debug output is on for module, or for the single
// method when method is not empty.
func IsVerbose(module, method string) bool {
	mu.RLock()
	defer mu.RUnlock()

	if verboseAll {
		return true
	}
	module = strings.ToLower(module)
	if method != "" && verboseMods[module+"."+strings.ToLower(method)] {
		return true
	}
	return verboseMods[module]
}

// ============================================================
// Module logger
// ============================================================

// Logger prefixes every line with the level and its module tag, e.g.
// "[WARN] [COMPOSER] ...".
type Logger struct {
	module string
	tag    string
}

func New(module string) *Logger {
	return &Logger{
		module: module,
		tag:    "[" + strings.ToUpper(module) + "] ",
	}
}

func (l *Logger) Info(format string, v ...any) {
	log.Printf("[INFO] "+l.tag+format, v...)
}

func (l *Logger) Warn(format string, v ...any) {
	log.Printf("[WARN] "+l.tag+format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	log.Printf("[ERROR] "+l.tag+format, v...)
}

// Debug logs only when verbose output is enabled for the module or method.
func (l *Logger) Debug(method, format string, v ...any) {
	if IsVerbose(l.module, method) {
		log.Printf("[DEBUG] "+l.tag+method+": "+format, v...)
	}
}
