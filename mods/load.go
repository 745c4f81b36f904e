package mods

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"adac/common"
	"adac/logging"
	"adac/sem"
)

// Project holds the effective build configuration: the project file's values
// after validation, with defaults filled in.  Command-line flags override
// individual fields after loading.
type Project struct {
	// Name identifies the project in messages; defaults to the directory name
	Name string

	// RootDir is the directory the project file was found in (or the input
	// file's directory when there is no project file)
	RootDir string

	TargetTriple string
	DataLayout   string

	// IncludeDirs are searched, in order, for `with`ed package specs
	IncludeDirs []string

	OutputPath string

	// Suppressed is the default check-suppression mask applied to the library
	// scope before resolution
	Suppressed uint32
}

// tomlProject is the project file as it is encoded in TOML
type tomlProject struct {
	Name         string   `toml:"name"`
	TargetTriple string   `toml:"target-triple"`
	DataLayout   string   `toml:"data-layout"`
	IncludeDirs  []string `toml:"include-dirs"`
	Output       string   `toml:"output"`
	Suppress     []string `toml:"suppress"`
}

// LoadProject reads the optional project file next to the input source file.
// A missing file is not an error: the returned project carries the defaults.
// A present but malformed file is a configuration error.
func LoadProject(srcPath string) (*Project, bool) {
	rootDir := filepath.Dir(srcPath)
	proj := &Project{
		Name:       filepath.Base(rootDir),
		RootDir:    rootDir,
		OutputPath: common.DefaultOutputPath,
	}

	f, err := os.Open(filepath.Join(rootDir, common.ProjectFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return proj, true
		}
		logging.LogConfigError("Project", "unable to open project file: "+err.Error())
		return nil, false
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		logging.LogConfigError("Project", "error reading project file: "+err.Error())
		return nil, false
	}

	tomlProj := &tomlProject{}
	if err := toml.Unmarshal(buff, tomlProj); err != nil {
		logging.LogConfigError("Project", "error parsing project file: "+err.Error())
		return nil, false
	}

	if !applyProjectFile(proj, tomlProj) {
		return nil, false
	}
	return proj, true
}

// applyProjectFile validates the file's values and moves them onto the
// effective project
func applyProjectFile(proj *Project, tomlProj *tomlProject) bool {
	if tomlProj.Name != "" {
		proj.Name = tomlProj.Name
	}
	if tomlProj.TargetTriple != "" {
		proj.TargetTriple = tomlProj.TargetTriple
	}
	if tomlProj.DataLayout != "" {
		proj.DataLayout = tomlProj.DataLayout
	}
	if tomlProj.Output != "" {
		proj.OutputPath = tomlProj.Output
	}

	for _, dir := range tomlProj.IncludeDirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(proj.RootDir, dir)
		}
		finfo, err := os.Stat(dir)
		if err != nil || !finfo.IsDir() {
			logging.LogConfigError("Project", "include directory `"+dir+"` does not exist")
			return false
		}
		proj.IncludeDirs = append(proj.IncludeDirs, dir)
	}

	for _, name := range tomlProj.Suppress {
		bit, known := sem.CheckNames[common.FoldName(name)]
		if !known {
			logging.LogConfigError("Project", "unknown check name `"+name+"` in suppress list")
			return false
		}
		proj.Suppressed |= bit
	}

	return true
}

// SearchDirs is the spec probe order: the source file's own directory first,
// then the configured include directories
func (p *Project) SearchDirs() []string {
	return append([]string{p.RootDir}, p.IncludeDirs...)
}
