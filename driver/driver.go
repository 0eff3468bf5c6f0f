// Package driver parses independent inputs in parallel
// and returns the results in submission order.
package driver

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/eaburns/borf/ast"
	"github.com/eaburns/borf/diag"
)

// A Job is a single input to parse.
type Job struct {
	// Name is the path of the input, used in locations.
	Name string

	// Read returns the source text.
	// If Read is nil, Text is the source.
	Read func() (string, error)
	Text string
}

// A Result is the outcome of a Job.
type Result struct {
	// Index is the index of the Job.
	Index  int
	Name   string
	Module *ast.Module
	// Err is non-nil if the Job failed to read or parse.
	// A recovering parse may have both a Module and an Err.
	Err error
}

// A ParseFunc parses the text of a named input.
// It must be safe to call concurrently.
type ParseFunc func(name, text string) (*ast.Module, error)

// Config configures Run.
type Config struct {
	// Workers is the maximum number of concurrent parses.
	// If zero, runtime.GOMAXPROCS(0) is used.
	Workers int
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

// Run parses the Jobs concurrently.
// The returned slice has one Result per Job, in Job order,
// regardless of the order in which the parses finish.
//
// Every Job is read before any is parsed.
// A Job that fails to read has a diag.Io error
// and is not parsed.
// Jobs not yet started when ctx is done have ctx's error;
// started Jobs run to completion.
func Run(ctx context.Context, jobs []Job, parse ParseFunc, cfg Config) []Result {
	results := make([]Result, len(jobs))
	texts := make([]string, len(jobs))
	var todo []int
	for i, j := range jobs {
		results[i] = Result{Index: i, Name: j.Name}
		if j.Read == nil {
			texts[i] = j.Text
			todo = append(todo, i)
			continue
		}
		text, err := j.Read()
		if err != nil {
			results[i].Err = diag.IoError(j.Name, err)
			continue
		}
		texts[i] = text
		todo = append(todo, i)
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, cfg.workers())
	for _, i := range todo {
		i := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				results[i].Err = gctx.Err()
				return nil
			}
			defer func() { <-sem }()
			// Each goroutine writes only its own slot.
			results[i].Module, results[i].Err = parse(jobs[i].Name, texts[i])
			return nil
		})
	}
	g.Wait()
	return results
}

// ParseFiles reads and parses the files concurrently.
// Each file is parsed as a module with a Parser configured by pcfg.
func ParseFiles(ctx context.Context, paths []string, pcfg ast.Config, cfg Config) []Result {
	jobs := make([]Job, len(paths))
	for i, path := range paths {
		path := path
		jobs[i] = Job{
			Name: path,
			Read: func() (string, error) {
				data, err := os.ReadFile(path)
				return string(data), err
			},
		}
	}
	return Run(ctx, jobs, Parser(pcfg), cfg)
}

// Parser returns a ParseFunc that parses modules
// with a new ast.Parser for each input.
func Parser(pcfg ast.Config) ParseFunc {
	return func(name, text string) (*ast.Module, error) {
		return ast.NewParser(pcfg).ParseString(name, text)
	}
}
