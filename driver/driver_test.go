package driver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/eaburns/borf/ast"
	"github.com/eaburns/borf/diag"
)

func TestRunOrder(t *testing.T) {
	const n = 2000
	jobs := make([]Job, n)
	for i := range jobs {
		name := "M" + strconv.Itoa(i)
		jobs[i] = Job{Name: name, Text: "@" + name + ": { }"}
	}
	p := Parser(ast.Config{})
	parse := func(name, text string) (*ast.Module, error) {
		time.Sleep(time.Duration(rand.Intn(200)) * time.Microsecond)
		return p(name, text)
	}
	results := Run(context.Background(), jobs, parse, Config{Workers: 16})
	if len(results) != n {
		t.Fatalf("got %d results, want %d", len(results), n)
	}
	for i, r := range results {
		if r.Index != i || r.Name != jobs[i].Name {
			t.Fatalf("results[%d] is job %d (%s)", i, r.Index, r.Name)
		}
		if r.Err != nil {
			t.Fatalf("results[%d].Err=%s", i, r.Err)
		}
		if want := "M" + strconv.Itoa(i); r.Module.Name != want {
			t.Errorf("results[%d].Module.Name=%s, want %s", i, r.Module.Name, want)
		}
	}
}

func TestRunReadError(t *testing.T) {
	readErr := errors.New("no such input")
	var parsed []string
	jobs := []Job{
		{Name: "a", Text: "@A: { }"},
		{Name: "b", Read: func() (string, error) { return "", readErr }},
		{Name: "c", Read: func() (string, error) { return "@C: { }", nil }},
	}
	parse := func(name, text string) (*ast.Module, error) {
		parsed = append(parsed, name)
		return ast.NewParser(ast.Config{}).ParseString(name, text)
	}
	// One worker, so parse is never called concurrently.
	results := Run(context.Background(), jobs, parse, Config{Workers: 1})
	var e *diag.Error
	if !errors.As(results[1].Err, &e) || e.Kind != diag.Io || !errors.Is(e, readErr) {
		t.Errorf("results[1].Err=%v, want an Io error", results[1].Err)
	}
	if results[1].Module != nil {
		t.Errorf("results[1].Module=%v, want nil", results[1].Module)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("got errors %v and %v, want nil", results[0].Err, results[2].Err)
	}
	for _, name := range parsed {
		if name == "b" {
			t.Errorf("b was parsed")
		}
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := []Job{{Name: "a", Text: "@A: { }"}}
	results := Run(ctx, jobs, Parser(ast.Config{}), Config{Workers: 1})
	// Either the job started before noticing the cancel, or it was not run.
	if r := results[0]; r.Err != nil && !errors.Is(r.Err, context.Canceled) {
		t.Errorf("results[0].Err=%v, want nil or context.Canceled", r.Err)
	}
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, src := range []string{"@A: { fn f: Int = 1 }", "@B: { fn g: Int = }", "@C: { }"} {
		path := filepath.Join(dir, fmt.Sprintf("%d.borf", i))
		if err := os.WriteFile(path, []byte(src), 0666); err != nil {
			t.Fatalf("failed to write %s: %s", path, err)
		}
		paths = append(paths, path)
	}
	paths = append(paths, filepath.Join(dir, "missing.borf"))
	results := ParseFiles(context.Background(), paths, ast.Config{}, Config{})
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	if r := results[0]; r.Err != nil || r.Module.Name != "A" {
		t.Errorf("results[0]=%+v, want module A", r)
	}
	if r := results[1]; r.Err == nil {
		t.Errorf("results[1].Err=nil, want a parse error")
	}
	if r := results[2]; r.Err != nil || r.Module.Name != "C" {
		t.Errorf("results[2]=%+v, want module C", r)
	}
	var e *diag.Error
	if r := results[3]; !errors.As(r.Err, &e) || e.Kind != diag.Io || !errors.Is(e, os.ErrNotExist) {
		t.Errorf("results[3].Err=%v, want an Io error", r.Err)
	}
}
