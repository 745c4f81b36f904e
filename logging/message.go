package logging

import "fmt"

// TextPosition represents a selection of text in a source file over which an
// error or warning occurred.  All lines and columns are 1-based.
type TextPosition struct {
	StartLn, StartCol int
	EndLn, EndCol     int
}

// PositionOfSpan creates a text position spanning two other positions
func PositionOfSpan(start, end *TextPosition) *TextPosition {
	return &TextPosition{
		StartLn:  start.StartLn,
		StartCol: start.StartCol,
		EndLn:    end.EndLn,
		EndCol:   end.EndCol,
	}
}

// LogContext stores the contextual information for a compile message
type LogContext struct {
	// FilePath is the path of the file the message originated in
	FilePath string
}

// LogMessage is the interface that all loggable messages conform to
type LogMessage interface {
	display()
	isError() bool
}

// Enumeration of compile message kinds, mirroring the front-end's error
// taxonomy: one kind per phase plus usage problems
const (
	LMKToken      = iota // lexical errors: malformed literals, bad bytes
	LMKSyntax            // parse errors: unexpected token, end-name mismatch
	LMKName              // name resolution: undefined, ambiguous
	LMKTyping            // type errors: incompatible operands, bad arity
	LMKConstraint        // static constraint violations
	LMKUsage             // pragma and representation misuse
)

// CompileMessage represents a message about the user's code: an error or a
// warning produced by any phase of compilation
type CompileMessage struct {
	Message  string
	Kind     int
	Position *TextPosition
	Context  *LogContext
	IsError  bool
}

func (cm *CompileMessage) isError() bool {
	return cm.IsError
}

/// Plain renders the message in the canonical `file:line:col: error: msg` form
// used by the diagnostic sink (and by editors/tools scraping the output)
func (cm *CompileMessage) Plain() string {
	tag := "warning"
	if cm.IsError {
		tag = "error"
	}

	if cm.Position == nil {
		return fmt.Sprintf("%s: %s: %s", cm.Context.FilePath, tag, cm.Message)
	}

	return fmt.Sprintf("%s:%d:%d: %s: %s",
		cm.Context.FilePath, cm.Position.StartLn, cm.Position.StartCol, tag, cm.Message)
}

// ConfigError represents an error in the compiler's configuration: bad paths,
// malformed project files, unopenable inputs
type ConfigError struct {
	Kind    string
	Message string
}

func (ce *ConfigError) isError() bool {
	return true
}
