// Command fsc is the one-shot CLI driver: read a FeatherScala source file,
// run it through lexer -> parser -> analyzer -> codegen, and write the
// generated C translation unit.
//
// Grounded on the teacher's cmd/funxy/main.go: a thin main() that dispatches
// on os.Args, a panic recovery wrapper gated by a DEBUG env var, and
// -o/--output style flag handling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/featherscala/fsc/internal/analyzer"
	"github.com/featherscala/fsc/internal/buildconfig"
	"github.com/featherscala/fsc/internal/cache"
	"github.com/featherscala/fsc/internal/codegen"
	"github.com/featherscala/fsc/internal/config"
	"github.com/featherscala/fsc/internal/diagnostics"
	"github.com/featherscala/fsc/internal/parser"
	"github.com/featherscala/fsc/internal/session"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-o output.c] <source%s>\n", os.Args[0], config.SourceFileExt)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	var sourcePath, outputPath string
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 >= len(args) {
				usage()
				os.Exit(2)
			}
			outputPath = args[i+1]
			i++
		case "-debug", "--debug":
			os.Setenv("DEBUG", "1")
		default:
			if sourcePath == "" {
				sourcePath = args[i]
			}
		}
	}

	if sourcePath == "" {
		usage()
		os.Exit(2)
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %s\n", sourcePath, err)
		os.Exit(1)
	}

	sess := session.New()

	cfg, err := buildconfig.Load(filepath.Join(filepath.Dir(sourcePath), "fscconfig.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsc [%s]: %s\n", sess, err)
		os.Exit(1)
	}

	if outputPath == "" {
		outputPath = filepath.Join(cfg.OutDir, filepath.Base(config.TrimSourceExt(sourcePath))+".c")
	}

	bc, cacheErr := cache.Open(filepath.Join(cfg.OutDir, ".fsc-cache.db"))
	if cacheErr == nil {
		defer bc.Close()
	}

	key := cache.Key(source, config.Version)
	if bc != nil {
		if hit, ok, err := bc.Get(key); err == nil && ok {
			if err := os.WriteFile(outputPath, []byte(hit), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %s: %s\n", outputPath, err)
				os.Exit(1)
			}
			fmt.Printf("%s -> %s (cached)\n", sourcePath, outputPath)
			return
		}
	}

	c, err := Compile(sourcePath, string(source))
	if err != nil {
		if errs, ok := err.(parseErrors); ok {
			diagnostics.RenderAll(os.Stderr, []error(errs), string(source))
		} else {
			diagnostics.Render(os.Stderr, err, string(source))
		}
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, []byte(c), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %s\n", outputPath, err)
		os.Exit(1)
	}
	if bc != nil {
		_ = bc.Put(key, c)
	}

	fmt.Printf("%s -> %s\n", sourcePath, outputPath)
}

// parseErrors wraps the parser's batch of syntax errors so main can tell
// them apart from the single fatal TypeError/CodeGenError the later stages
// raise.
type parseErrors []error

func (e parseErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Compile runs the full pipeline over one file's source and returns the
// generated C translation unit.
func Compile(file, source string) (string, error) {
	prog, errs := parser.Parse(file, source)
	if len(errs) > 0 {
		return "", parseErrors(errs)
	}

	a := analyzer.New()
	if err := a.Check(prog); err != nil {
		return "", err
	}

	return codegen.Generate(prog, a.Info)
}
