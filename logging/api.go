package logging

// logger is a global reference to a shared Logger (created/initialized with
// the compiler, but separated for general usage)
var logger Logger

// Initialize initializes the global logger with the provided log level
func Initialize(loglevelname string) {
	var loglevel int
	switch loglevelname {
	case "silent":
		loglevel = LogLevelSilent
	case "error":
		loglevel = LogLevelError
	case "warning":
		loglevel = LogLevelWarning
	// everything else (including invalid log levels) should default to verbose
	default:
		loglevel = LogLevelVerbose
	}

	logger = newLogger(loglevel)
}

// ShouldProceed indicates whether or not the log module has encountered any
// errors.  Each phase of compilation checks this before the next phase runs.
func ShouldProceed() bool {
	return logger.errorCount == 0
}

// ErrorCount returns the number of errors logged so far
func ErrorCount() int {
	return logger.errorCount
}

// Diagnostics returns the accumulated plain-form diagnostic lines
func Diagnostics() []string {
	return logger.sink
}

// LogCompileError logs a compilation error (user-induced, bad code)
func LogCompileError(lctx *LogContext, message string, kind int, pos *TextPosition) {
	logger.handleMsg(&CompileMessage{
		Message:  message,
		Kind:     kind,
		Position: pos,
		Context:  lctx,
		IsError:  true,
	})
}

// LogCompileWarning logs a compilation warning (user-induced, problematic code)
func LogCompileWarning(lctx *LogContext, message string, kind int, pos *TextPosition) {
	logger.handleMsg(&CompileMessage{
		Message:  message,
		Kind:     kind,
		Position: pos,
		Context:  lctx,
		IsError:  false,
	})
}

// LogConfigError logs an error related to project or compiler configuration
func LogConfigError(kind, message string) {
	logger.handleMsg(&ConfigError{Kind: kind, Message: message})
}

// LogBeginPhase displays the beginning of a compilation phase
func LogBeginPhase(phase string) {
	if logger.LogLevel == LogLevelVerbose {
		displayBeginPhase(phase)
	}
}

// LogEndPhase displays the end of the current compilation phase
func LogEndPhase() {
	if logger.LogLevel == LogLevelVerbose {
		displayEndPhase(ShouldProceed())
	}
}

// LogFinished displays the closing compilation message and flushes warnings
func LogFinished() {
	logger.flushWarnings()

	if logger.LogLevel > LogLevelSilent {
		displayCompilationFinished(ShouldProceed(), logger.errorCount, len(logger.warnings))
	}
}
