package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ComedicChimera/olive"

	"adac/build"
	"adac/common"
	"adac/logging"
	"adac/mods"
)

// Execute runs the main `adac` application.  The process exits 0 when the
// requested action succeeds and 1 otherwise.
func Execute() {
	// set up the argument parser and all its commands and arguments
	cli := olive.NewCLI("adac", "adac compiles Ada source into LLVM IR", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warning", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "compile a compilation unit", true)
	buildCmd.AddPrimaryArg("file", "the source file to compile", true)
	buildCmd.AddStringArg("output", "o", "the path of the emitted IR module", false)
	buildCmd.AddStringArg("include", "I", "extra spec search directories, path-list separated", false)
	buildCmd.AddFlag("dump-ast", "da", "print the parsed tree instead of compiling")

	cli.AddSubcommand("version", "print the adac version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(1)
	}

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		if !execBuildCommand(subResult, result.Arguments["loglevel"].(string)) {
			os.Exit(1)
		}
	case "version":
		logging.PrintInfoMessage("Adac Version", common.AdacVersion)
	}
}

// execBuildCommand executes the build subcommand and handles all its errors
func execBuildCommand(result *olive.ArgParseResult, loglevel string) bool {
	logging.Initialize(loglevel)

	srcRelPath, _ := result.PrimaryArg()
	srcPath, err := filepath.Abs(srcRelPath)
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return false
	}

	proj, ok := mods.LoadProject(srcPath)
	if !ok {
		return false
	}

	// command-line values take precedence over the project file
	if outVal, given := result.Arguments["output"]; given {
		proj.OutputPath = outVal.(string)
	}
	if incVal, given := result.Arguments["include"]; given {
		for _, dir := range strings.Split(incVal.(string), string(os.PathListSeparator)) {
			if dir != "" {
				proj.IncludeDirs = append(proj.IncludeDirs, dir)
			}
		}
	}

	if loglevel == "verbose" {
		logging.DisplayCompileHeader(common.AdacVersion, targetOf(proj))
	}

	c := build.NewCompiler(srcPath, proj)
	c.DumpAST = result.HasFlag("dump-ast")

	ok = c.Compile()
	logging.LogFinished()
	return ok
}

func targetOf(proj *mods.Project) string {
	if proj.TargetTriple != "" {
		return proj.TargetTriple
	}
	return common.DefaultTargetTriple
}
