package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/eaburns/borf/ast"
	"github.com/eaburns/borf/driver"
	"github.com/eaburns/borf/grammar"
	"github.com/eaburns/peggy/peg"
	"github.com/eaburns/pretty"
)

var (
	tree        = flag.Bool("tree", false, "print the parse tree instead of the AST")
	recoverErrs = flag.Bool("recover", false, "continue parsing after errors")
)

func main() {
	flag.Parse()
	pretty.Indent = "    "

	var jobs []driver.Job
	if flag.NArg() == 0 {
		jobs = append(jobs, driver.Job{Name: "", Read: readAll(os.Stdin)})
	} else {
		for _, file := range flag.Args() {
			jobs = append(jobs, driver.Job{Name: file, Read: readFile(file)})
		}
	}
	if *tree {
		for _, j := range jobs {
			printTree(j)
		}
		return
	}
	var failed bool
	parse := driver.Parser(ast.Config{Recover: *recoverErrs})
	for _, r := range driver.Run(context.Background(), jobs, parse, driver.Config{}) {
		if r.Err != nil {
			printErr(r.Err)
			failed = true
		}
		if r.Module == nil {
			continue
		}
		fmt.Println(r.Module.Loc())
		pretty.Print(r.Module)
		fmt.Println("")
	}
	if failed {
		os.Exit(1)
	}
}

// printTree prints the generic parse tree of the job's text.
func printTree(j driver.Job) {
	text, err := j.Read()
	if err != nil {
		die(err)
	}
	n, err := grammar.Borf.Parse(text, grammar.File, grammar.Options{})
	if err != nil {
		die(err)
	}
	fmt.Println(j.Name)
	pretty.Print(n.Peg())
	fmt.Println("")
}

func readAll(r io.Reader) func() (string, error) {
	return func() (string, error) {
		data, err := io.ReadAll(r)
		return string(data), err
	}
}

func readFile(path string) func() (string, error) {
	return func() (string, error) {
		data, err := os.ReadFile(path)
		return string(data), err
	}
}

func printErr(err error) {
	if pe, ok := err.(interface{ Tree() *peg.Fail }); ok && pe.Tree() != nil {
		peg.PrettyWrite(os.Stdout, pe.Tree())
		fmt.Println("")
	}
	fmt.Println(err)
}

func die(err error) {
	printErr(err)
	os.Exit(1)
}
