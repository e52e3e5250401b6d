// Command spindle parses Spindle documents and reports syntax errors,
// optionally dumping the parsed tree. Evaluation to CSS lives in a
// later stage; this binary only drives the front end.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/spindle/internal/ast"
	"bennypowers.dev/spindle/internal/config"
	"bennypowers.dev/spindle/internal/engine"
	"bennypowers.dev/spindle/internal/log"
	"bennypowers.dev/spindle/internal/version"
)

func main() {
	var (
		check       = flag.Bool("check", false, "only check syntax, print nothing on success")
		expand      = flag.Bool("expand-imports", false, "recursively parse imported files")
		loadPaths   = flag.String("load-path", "", "colon-separated import search directories")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersion())
		return
	}
	if *verbose {
		log.SetLevel(log.LevelDebug)
	}

	target := flag.Arg(0)
	rcDir := "."
	if target != "" && target != "-" {
		rcDir = filepath.Dir(target)
	}

	options := config.New()
	if err := options.LoadRC(rcDir); err != nil {
		log.Warn("%v", err)
	}
	if *loadPaths != "" {
		options.LoadPaths = filepath.SplitList(*loadPaths)
	}

	root, err := parseTarget(target, options)
	if err == nil && *expand {
		err = engine.ExpandImports(root, options)
	}
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	if !*check {
		fmt.Print(ast.Dump(root))
	}
}

// parseTarget parses the named file, or stdin when no argument was
// given.
func parseTarget(path string, options *config.Options) (*ast.Root, error) {
	if path == "" || path == "-" {
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return engine.Parse(string(source), options)
	}
	if !strings.HasSuffix(path, ".spin") {
		log.Warn("%s does not have the .spin extension", path)
	}
	return engine.ParseFile(path, options)
}
