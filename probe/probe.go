package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Prober performs a lightweight handshake against one external dependency.
// Implementations must honor ctx cancellation and release every connection
// they open, on every exit path.
type Prober interface {
	// Name identifies the dependency ("postgres", "redis").
	Name() string
	// Addr returns the probed address for diagnostics. Never includes
	// credentials.
	Addr() string
	// Check attempts the handshake. A nil return means reachable.
	Check(ctx context.Context) error
}

// DependencyUnreachableError reports a dependency that did not respond
// within the probe timeout. Fatal at startup; the caller may retry with
// backoff before giving up, since transient unavailability during container
// orchestration start-up is expected.
type DependencyUnreachableError struct {
	Dependency string
	Addr       string
	Err        error
}

// Error implements the error interface
func (e *DependencyUnreachableError) Error() string {
	return fmt.Sprintf("%s unreachable at %s: %v", e.Dependency, e.Addr, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DependencyUnreachableError) Unwrap() error {
	return e.Err
}

// IsDependencyUnreachable checks if an error is a DependencyUnreachableError
func IsDependencyUnreachable(err error) bool {
	var depErr *DependencyUnreachableError
	return errors.As(err, &depErr)
}

// Result is the outcome of probing one dependency.
type Result struct {
	Dependency string
	Addr       string
	Duration   time.Duration
	Err        error
}

// Healthy reports whether the dependency responded.
func (r Result) Healthy() bool {
	return r.Err == nil
}

// Report aggregates the outcome of one connectivity validation pass.
// Results appear in prober order regardless of completion order.
type Report struct {
	Results []Result
}

// Healthy reports whether every dependency responded.
func (r Report) Healthy() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// Err returns all probe failures combined, or nil when every dependency
// responded.
func (r Report) Err() error {
	var err error
	for _, res := range r.Results {
		err = multierr.Append(err, res.Err)
	}
	return err
}

// ValidateConnectivity probes every dependency concurrently. Each probe is
// bounded by timeout and by ctx; there is no ordering requirement between
// probes and no internal retry - retry policy belongs to the caller. The
// call returns once every probe has completed or timed out.
func ValidateConnectivity(ctx context.Context, timeout time.Duration, probers ...Prober) Report {
	results := make([]Result, len(probers))
	done := make(chan int, len(probers))

	for i, p := range probers {
		go func(i int, p Prober) {
			defer func() { done <- i }()

			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			err := p.Check(probeCtx)
			if err != nil {
				err = &DependencyUnreachableError{
					Dependency: p.Name(),
					Addr:       p.Addr(),
					Err:        err,
				}
			}
			results[i] = Result{
				Dependency: p.Name(),
				Addr:       p.Addr(),
				Duration:   time.Since(start),
				Err:        err,
			}
		}(i, p)
	}

	for range probers {
		<-done
	}

	return Report{Results: results}
}
