// Borfi evaluates Borf modules and expressions.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/eaburns/borf/ast"
	"github.com/eaburns/borf/diag"
	"github.com/eaburns/borf/driver"
	"github.com/eaburns/borf/eval"
	"github.com/eaburns/borf/mod"
	"github.com/eaburns/borf/prelude"
)

var (
	expr        = flag.String("e", "", "evaluate the expression and print its value")
	preludeDir  = flag.String("prelude", "", "directory of modules to load before evaluating")
	recoverErrs = flag.Bool("recover", false, "report multiple parse errors per file")
	maxErrors   = flag.Int("max-errors", ast.DefaultMaxErrors, "maximum parse errors reported per file with -recover")
	workers     = flag.Int("j", 0, "maximum number of files parsed concurrently (0 is GOMAXPROCS)")
	verbose     = flag.Bool("v", false, "enable verbose output")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if *expr == "" && len(flag.Args()) == 0 {
		usage()
		os.Exit(1)
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "", 0)
	}
	in := eval.New(eval.Config{Stdout: os.Stdout, Log: logger})
	ctx := context.Background()
	if *preludeDir != "" {
		vprintf("loading prelude %s\n", *preludeDir)
		cfg := prelude.Config{Workers: *workers, Log: logger}
		if err := prelude.Load(ctx, in, *preludeDir, cfg); err != nil {
			die("failed to load prelude", err)
		}
	}

	if len(flag.Args()) > 0 {
		for _, m := range parse(ctx, flag.Args()) {
			vprintf("evaluating @%s\n", m.Name)
			v, err := in.EvalModule(m)
			if err != nil {
				die("", err)
			}
			vprintf("%s\n", v)
		}
	}
	if *expr != "" {
		v, err := in.EvalString(*expr)
		if err != nil {
			die("", err)
		}
		fmt.Println(v)
	}
}

// parse parses the files and returns their modules in dependency order.
// It dies after reporting every file's errors if any file fails.
func parse(ctx context.Context, paths []string) []*ast.Module {
	pcfg := ast.Config{Recover: *recoverErrs, MaxErrors: *maxErrors}
	var mods []*ast.Module
	var failed bool
	for _, r := range driver.ParseFiles(ctx, paths, pcfg, driver.Config{Workers: *workers}) {
		if r.Err != nil {
			report(r.Err)
			failed = true
			continue
		}
		mods = append(mods, r.Module)
	}
	if failed {
		os.Exit(1)
	}
	mods, err := mod.Order(mods)
	if err != nil {
		die("", err)
	}
	return mods
}

func report(err error) {
	var de *diag.Error
	if errors.As(err, &de) {
		fmt.Fprint(flag.CommandLine.Output(), de.Report())
		return
	}
	fmt.Fprintln(flag.CommandLine.Output(), err)
}

func vprintf(f string, vs ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, f, vs...)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
	fmt.Fprintf(out, "%s [flags] [files...]\n", os.Args[0])
	flag.PrintDefaults()
}

func die(s string, err error) {
	if s != "" {
		fmt.Fprintf(flag.CommandLine.Output(), "%s: ", s)
	}
	report(err)
	os.Exit(1)
}
