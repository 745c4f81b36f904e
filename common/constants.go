package common

const (
	// SpecFileExtension is the extension of Ada package specification files
	SpecFileExtension = ".ads"

	// BodyFileExtension is the extension of Ada body files
	BodyFileExtension = ".adb"

	// ProjectFileName is the name of the optional project configuration file
	// searched for next to the input file
	ProjectFileName = "ada-proj.toml"

	// DefaultOutputPath is the output path used when neither the command line
	// nor the project file names one
	DefaultOutputPath = "output.ll"

	AdacVersion = "0.1.0"
)

// Default target description lines placed at the top of every emitted module.
// A project file may override both.
const (
	DefaultTargetTriple = "x86_64-pc-linux-gnu"
	DefaultDataLayout   = "e-m:e-p270:32:32-p271:32:32-p272:64:64-i64:64-f80:128-n8:16:32:64-S128"
)
