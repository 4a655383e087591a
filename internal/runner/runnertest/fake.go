// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"sync"

	"rs-public-install/internal/runner"
)

// Result is the scripted outcome of one command line.
type Result struct {
	Code   int    // Exit status reported by Run
	Stdout string // Output returned by Output
	Err    error  // Start failure
}

// Fake records every command and answers from a table keyed by the
// rendered command line. Unknown commands succeed with no output.
type Fake struct {
	mu      sync.Mutex
	results map[string][]Result
	calls   []runner.Command
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{results: make(map[string][]Result)}
}

// On scripts the results for line. When several results are given they are
// consumed in order and the last one repeats.
func (f *Fake) On(line string, results ...Result) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[line] = append(f.results[line], results...)
	return f
}

// Calls returns every command seen so far.
func (f *Fake) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Command(nil), f.calls...)
}

// Lines returns the rendered command lines seen so far.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Count returns how many times line was run.
func (f *Fake) Count(line string) int {
	n := 0
	for _, l := range f.Lines() {
		if l == line {
			n++
		}
	}
	return n
}

// Run implements runner.Runner.
func (f *Fake) Run(_ context.Context, cmd runner.Command) (int, error) {
	res := f.next(cmd)
	if res.Err != nil {
		return -1, res.Err
	}
	return res.Code, nil
}

// Output implements runner.Runner.
func (f *Fake) Output(_ context.Context, cmd runner.Command) ([]byte, error) {
	res := f.next(cmd)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Code != 0 {
		return []byte(res.Stdout), fmt.Errorf("%s: exit status %d", cmd, res.Code)
	}
	return []byte(res.Stdout), nil
}

func (f *Fake) next(cmd runner.Command) Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)

	line := cmd.String()
	queue := f.results[line]
	if len(queue) == 0 {
		return Result{}
	}
	res := queue[0]
	if len(queue) > 1 {
		f.results[line] = queue[1:]
	}
	return res
}
