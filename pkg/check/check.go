// Package check resolves a descriptor's install requirements against a
// package index.
//
// Each requirement is looked up concurrently by a bounded pool of workers.
// Lookup failures are recorded per requirement rather than aborting the
// run; only context cancellation stops a check early.
//
//	checker := check.New(pypi.NewClient(backend, ttl, ""), check.Options{})
//	report, err := checker.Check(ctx, d)
//	for _, r := range report.Results {
//	    fmt.Println(r.Requirement, r.Status, r.Best)
//	}
package check

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matzehuels/distmeta/pkg/descriptor"
	derrors "github.com/matzehuels/distmeta/pkg/errors"
	"github.com/matzehuels/distmeta/pkg/integrations"
	"github.com/matzehuels/distmeta/pkg/integrations/pypi"
	"github.com/matzehuels/distmeta/pkg/observability"
)

// DefaultWorkers is the number of concurrent index lookups.
const DefaultWorkers = 8

// Status is the outcome of checking one requirement.
type Status string

const (
	StatusOK          Status = "ok"          // a released version satisfies the constraint
	StatusUnsatisfied Status = "unsatisfied" // the project exists but no release matches
	StatusMissing     Status = "missing"     // the index doesn't know the project
	StatusError       Status = "error"       // the lookup failed
)

// Fetcher looks packages up in an index. *pypi.Client implements it.
type Fetcher interface {
	FetchPackage(ctx context.Context, name string, refresh bool) (*pypi.PackageInfo, error)
}

// Options configures a Checker.
type Options struct {
	Workers int                  // Concurrent lookups (default: 8)
	Refresh bool                 // Bypass cached index data
	Logger  func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Result is the check outcome for one requirement. Summary, License and
// Requires describe the latest release and are set whenever the index knows
// the project.
type Result struct {
	Requirement descriptor.Requirement `json:"requirement"`
	Status      Status                 `json:"status"`
	Latest      string                 `json:"latest,omitempty"` // newest release in the index
	Best        string                 `json:"best,omitempty"`   // newest release satisfying the constraint
	Summary     string                 `json:"summary,omitempty"`
	License     string                 `json:"license,omitempty"`
	Requires    []string               `json:"requires,omitempty"` // runtime dependencies, normalized
	Error       string                 `json:"error,omitempty"`
}

// Report collects results in the descriptor's requirement order.
type Report struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Results []Result `json:"results"`
}

// OK reports whether every requirement resolved to a satisfying release.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.Status != StatusOK {
			return false
		}
	}
	return true
}

// Count returns how many results have the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Err returns a joined UNSATISFIED_REQUIREMENT error naming every failed
// requirement, or nil when the report is OK.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Status == StatusOK {
			continue
		}
		msg := string(res.Status)
		if res.Error != "" {
			msg += ": " + res.Error
		}
		errs = append(errs, derrors.New(derrors.ErrCodeUnsatisfied, "%s: %s", res.Requirement, msg))
	}
	return errors.Join(errs...)
}

// Checker resolves requirements against an index.
type Checker struct {
	fetcher Fetcher
	opts    Options
}

// New creates a Checker using fetcher for index lookups.
func New(fetcher Fetcher, opts Options) *Checker {
	return &Checker{fetcher: fetcher, opts: opts.WithDefaults()}
}

type job struct {
	index int
	req   descriptor.Requirement
}

// Check looks up every install requirement of d. The returned error is
// non-nil only if ctx was canceled.
func (c *Checker) Check(ctx context.Context, d *descriptor.Descriptor) (*Report, error) {
	report := &Report{
		Name:    d.Name,
		Version: d.Version,
		Results: make([]Result, len(d.InstallRequires)),
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	for range min(c.opts.Workers, max(len(d.InstallRequires), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				report.Results[j.index] = c.checkOne(ctx, j.req)
			}
		}()
	}

	var err error
feed:
	for i, r := range d.InstallRequires {
		select {
		case jobs <- job{index: i, req: r}:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (c *Checker) checkOne(ctx context.Context, req descriptor.Requirement) Result {
	start := time.Now()
	res := Result{Requirement: req}

	info, err := c.fetcher.FetchPackage(ctx, req.Name, c.opts.Refresh)
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		res.Status = StatusMissing
	case err != nil:
		res.Status = StatusError
		res.Error = err.Error()
		c.opts.Logger("lookup failed: %s: %v", req.Name, err)
	default:
		res.Latest = info.Version
		res.Summary = info.Summary
		res.License = info.License
		res.Requires = info.Dependencies
		versions := info.Versions
		if len(versions) == 0 && info.Version != "" {
			versions = []string{info.Version}
		}
		if best, ok := req.Best(versions); ok {
			res.Status = StatusOK
			res.Best = best
		} else {
			res.Status = StatusUnsatisfied
		}
	}

	observability.Build().OnCheck(ctx, req.String(), string(res.Status), time.Since(start))
	return res
}
