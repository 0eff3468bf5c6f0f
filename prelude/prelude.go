// Package prelude loads a directory of Borf modules
// into the global frame of an interpreter.
package prelude

import (
	"context"
	"io"
	"log"

	"github.com/eaburns/borf/ast"
	"github.com/eaburns/borf/driver"
	"github.com/eaburns/borf/eval"
	"github.com/eaburns/borf/mod"
)

// Config configures Load.
type Config struct {
	// Workers is the maximum number of files parsed concurrently.
	// If zero, runtime.GOMAXPROCS(0) is used.
	Workers int

	// Log receives a notice for each file that fails to parse.
	// If nil, notices are discarded.
	Log *log.Logger
}

// Load parses the .borf files of dir and evaluates
// every declaration of every module in the global frame of in.
// Modules are evaluated after the modules that they depend on.
//
// Files that fail to parse are logged and skipped.
// An error listing dir, ordering the modules,
// or evaluating a declaration stops the load.
func Load(ctx context.Context, in *eval.Interp, dir string, cfg Config) error {
	lg := cfg.Log
	if lg == nil {
		lg = log.New(io.Discard, "", 0)
	}
	paths, err := mod.SrcFiles(dir)
	if err != nil {
		return err
	}
	var mods []*ast.Module
	for _, r := range driver.ParseFiles(ctx, paths, ast.Config{}, driver.Config{Workers: cfg.Workers}) {
		if r.Err != nil {
			lg.Printf("skipping %s: %s", r.Name, r.Err)
			continue
		}
		mods = append(mods, r.Module)
	}
	if mods, err = mod.Order(mods); err != nil {
		return err
	}
	for _, m := range mods {
		lg.Printf("loading @%s", m.Name)
		for _, d := range m.Decls {
			if _, err := in.EvalDecl(d, in.Global()); err != nil {
				return err
			}
		}
	}
	return nil
}
