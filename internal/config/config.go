// Package config holds the options bundle a Spindle document is
// parsed with. The parser itself only reads LoadPaths, Filename and
// Line; Style and PrecompiledLocation ride along untouched for the
// evaluation and caching stages.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RCFileName is the project configuration file looked up next to a
// document being compiled.
const RCFileName = ".spindle.yaml"

// Options is the configuration bundle for one compilation.
type Options struct {
	// Style selects the output formatting mode; forwarded to the
	// evaluation stage
	Style string `yaml:"style"`

	// LoadPaths is the ordered list of import search directories
	LoadPaths []string `yaml:"load_paths"`

	// PrecompiledLocation is the compiled-output cache directory;
	// forwarded to the caching stage
	PrecompiledLocation string `yaml:"precompiled_location"`

	// Filename is the source file being parsed, used for
	// diagnostics and relative import resolution
	Filename string `yaml:"-"`

	// Line is the starting line-number offset, for parsing
	// fragments embedded in another document; 0 for whole files
	Line int `yaml:"-"`
}

// New returns the default options: nested output style and the
// current directory as the only load path.
func New() *Options {
	return &Options{
		Style:     "nested",
		LoadPaths: []string{"."},
	}
}

// SearchDirs returns the import search directories for this
// compilation: the document's own directory, when known, ahead of the
// configured load paths.
func (o *Options) SearchDirs() []string {
	if o.Filename == "" {
		return o.LoadPaths
	}
	return append([]string{filepath.Dir(o.Filename)}, o.LoadPaths...)
}

// LoadRC merges settings from dir's RC file into the options, when
// one exists. Fields absent from the file keep their current values.
func (o *Options) LoadRC(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, RCFileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", RCFileName, err)
	}

	var rc Options
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return fmt.Errorf("parsing %s: %w", RCFileName, err)
	}
	if rc.Style != "" {
		o.Style = rc.Style
	}
	if len(rc.LoadPaths) > 0 {
		o.LoadPaths = rc.LoadPaths
	}
	if rc.PrecompiledLocation != "" {
		o.PrecompiledLocation = rc.PrecompiledLocation
	}
	return nil
}
