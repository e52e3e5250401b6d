// Package importer resolves @import targets against an ordered list
// of search directories. It is the import-resolution collaborator of
// the parser: the parser hands it a target name plus the directories
// to search, and receives either an absolute path or a not-found
// error it re-wraps as a syntax error on the importing line.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Ext is the Spindle source extension.
const Ext = ".spin"

// CSSExt marks targets that pass through to the output untouched.
const CSSExt = ".css"

// ErrNotFound is the sentinel for unresolvable import targets.
var ErrNotFound = errors.New("import not found")

// NotFoundError reports an import target no search directory
// contains.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("File to import not found or unreadable: %s.", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Resolve finds the file an @import target names. Each search
// directory may be a literal path or a glob pattern (doublestar
// syntax, so "styles/**" works); directories are tried in order, and
// within a directory the partial "_name.spin" shadows "name.spin".
//
// A target already carrying the .css extension is returned as-is for
// passthrough. A bare target that resolves nowhere falls back to
// "name.css" passthrough; only a target explicitly naming the .spin
// extension fails hard when missing.
func Resolve(name string, searchDirs []string) (string, error) {
	target := name
	explicit := false
	switch {
	case strings.HasSuffix(target, CSSExt):
		return target, nil
	case strings.HasSuffix(target, Ext):
		target = strings.TrimSuffix(target, Ext)
		explicit = true
	}

	base := filepath.Base(target)
	dir := filepath.Dir(target)
	for _, searchDir := range expand(searchDirs) {
		for _, candidate := range []string{"_" + base + Ext, base + Ext} {
			path := filepath.Join(searchDir, dir, candidate)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return filepath.Abs(path)
			}
		}
	}

	if !explicit {
		return target + CSSExt, nil
	}
	return "", &NotFoundError{Name: name}
}

// expand widens glob-pattern search directories into the concrete
// directories they match, preserving order and dropping non-matches.
// Literal paths pass through even when they do not exist yet, so the
// not-found error names the import rather than the load path.
func expand(searchDirs []string) []string {
	var dirs []string
	for _, dir := range searchDirs {
		if !strings.ContainsAny(dir, "*?[{") {
			dirs = append(dirs, dir)
			continue
		}
		matches, err := doublestar.FilepathGlob(dir)
		if err != nil {
			continue
		}
		for _, match := range matches {
			if info, statErr := os.Stat(match); statErr == nil && info.IsDir() {
				dirs = append(dirs, match)
			}
		}
	}
	return dirs
}
