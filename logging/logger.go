package logging

import (
	"sync"
)

// Logger is a type that is responsible for storing and logging output from
// the compiler as necessary
type Logger struct {
	errorCount int // Total encountered errors
	LogLevel   int

	// warnings is a list of all warnings to be logged at the end of compilation
	warnings []LogMessage

	// sink accumulates the plain one-line form of every compile message so
	// that the driver (and tests) can inspect diagnostics independently of
	// the console rendering
	sink []string

	// m is the mutex used to synchronize the printing of error messages
	m *sync.Mutex
}

// Enumeration of the different log levels
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and closing compilation notification (success/fail)
	LogLevelWarning        // errors, warnings, and closing message
	LogLevelVerbose        // errors, warnings, compiler version and progress summary, closing message (DEFAULT)
)

// newLogger creates a new logger struct
func newLogger(loglevel int) Logger {
	return Logger{
		LogLevel: loglevel,
		m:        &sync.Mutex{},
	}
}

// handleMsg prompts the logger to process a message -- messages can arrive
// from concurrent compilations so printing is serialized behind a mutex
func (l *Logger) handleMsg(lm LogMessage) {
	l.m.Lock()

	if cm, ok := lm.(*CompileMessage); ok {
		l.sink = append(l.sink, cm.Plain())
	}

	if lm.isError() {
		l.errorCount++

		if l.LogLevel > LogLevelSilent {
			displayEndPhase(false)
			lm.display()
		}
	} else {
		l.warnings = append(l.warnings, lm)
	}

	l.m.Unlock()
}

// flushWarnings displays all stored warnings at the end of compilation
func (l *Logger) flushWarnings() {
	if l.LogLevel >= LogLevelWarning {
		for _, w := range l.warnings {
			w.display()
		}
	}
}
