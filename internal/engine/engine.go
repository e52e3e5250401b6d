// Package engine is the document-level driver: it owns the
// options-in, AST-out entry points and the recursive expansion of
// deferred file imports. Evaluation of the finished tree into CSS
// happens in a later stage, not here.
package engine

import (
	"fmt"
	"os"
	"strings"

	"bennypowers.dev/spindle/internal/ast"
	"bennypowers.dev/spindle/internal/config"
	"bennypowers.dev/spindle/internal/log"
	"bennypowers.dev/spindle/internal/parser"
	"bennypowers.dev/spindle/internal/syntax"
)

// Parse parses source text under the given options. A nil options
// bundle gets the defaults.
func Parse(source string, options *config.Options) (*ast.Root, error) {
	if options == nil {
		options = config.New()
	}
	return parser.New(options).Parse(source)
}

// ParseFile reads and parses one document, setting the options'
// Filename so diagnostics and relative imports resolve against it.
func ParseFile(path string, options *config.Options) (*ast.Root, error) {
	if options == nil {
		options = config.New()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	opts := *options
	opts.Filename = path
	opts.Line = 0
	return Parse(string(data), &opts)
}

// ExpandImports recursively parses every deferred FileImport in the
// tree and attaches the imported document as the node's subtree.
// Import cycles are detected along the chain of files currently being
// expanded and reported as a syntax error on the importing line.
func ExpandImports(root *ast.Root, options *config.Options) error {
	var active []string
	if options != nil && options.Filename != "" {
		active = append(active, options.Filename)
	}
	return expand(root, options, active)
}

func expand(node ast.Node, options *config.Options, active []string) error {
	for _, child := range node.ChildNodes() {
		imp, ok := child.(*ast.FileImport)
		if !ok {
			if err := expand(child, options, active); err != nil {
				return err
			}
			continue
		}
		for _, seen := range active {
			if seen == imp.Path {
				return syntax.Errorf(imp.Line(), "Circular import: %s.",
					strings.Join(append(active, imp.Path), " imports "))
			}
		}
		log.Debug("expanding import %s", imp.Path)
		imported, err := ParseFile(imp.Path, options)
		if err != nil {
			return err
		}
		if err := expand(imported, options, append(active, imp.Path)); err != nil {
			return err
		}
		imp.Imported = imported
	}
	return nil
}
