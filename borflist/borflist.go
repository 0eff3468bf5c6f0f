// The borflist command lists the Borf modules under the given directory
// in dependency order, dependencies first.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eaburns/borf/ast"
	"github.com/eaburns/borf/driver"
	"github.com/eaburns/borf/mod"
)

var workers = flag.Int("j", 0, "maximum number of files parsed concurrently (0 is GOMAXPROCS)")

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	root, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		die(err)
	}
	var paths []string
	for _, dir := range borfDirs(root) {
		ps, err := mod.SrcFiles(dir)
		if err != nil {
			die(err)
		}
		paths = append(paths, ps...)
	}

	var mods []*ast.Module
	files := make(map[*ast.Module]string)
	for _, r := range driver.ParseFiles(context.Background(), paths, ast.Config{}, driver.Config{Workers: *workers}) {
		if r.Err != nil {
			die(r.Err)
		}
		mods = append(mods, r.Module)
		files[r.Module] = r.Name
	}
	mods, err = mod.Order(mods)
	if err != nil {
		die(err)
	}
	for _, m := range mods {
		path := files[m]
		if rel, err := filepath.Rel(root, path); err == nil {
			path = rel
		}
		fmt.Printf("@%s\t%s\n", m.Name, path)
	}
}

// borfDirs returns root and its subdirectories
// that contain .borf source files.
func borfDirs(root string) []string {
	f, err := os.Open(root)
	if err != nil {
		die(err)
	}
	defer f.Close()

	finfo, err := f.Stat()
	if err != nil {
		die(err)
	}
	if !finfo.IsDir() {
		return nil
	}

	finfos, err := f.Readdir(-1)
	if err != nil {
		die(err)
	}
	var dirs []string
	hasSrc := false
	for _, finfo := range finfos {
		path := filepath.Join(root, finfo.Name())
		if strings.HasSuffix(path, mod.Ext) {
			hasSrc = true
		}
		dirs = append(dirs, borfDirs(path)...)
	}
	if hasSrc {
		dirs = append(dirs, root)
	}
	return dirs
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
	fmt.Fprintf(out, "%s [flags] <directory>\n", os.Args[0])
	flag.PrintDefaults()
}

func die(err error) {
	fmt.Fprintln(flag.CommandLine.Output(), err)
	os.Exit(1)
}
