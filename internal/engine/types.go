package engine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"stagesync.dev/stagesync/internal/index"
)

// Outcome is the per-element result of a merge pass
type Outcome string

const (
	// OutcomeUpToDate indicates nothing changed for the element
	OutcomeUpToDate Outcome = "UP_TO_DATE"
	// OutcomeMerged indicates the working tree now reflects the merged state
	OutcomeMerged Outcome = "MERGED"
	// OutcomeDeleted indicates the element no longer exists remotely
	OutcomeDeleted Outcome = "DELETED"
	// OutcomeConflict indicates the working file holds conflict markers
	OutcomeConflict Outcome = "CONFLICT"
)

// DefaultParallelism is the number of elements processed concurrently
const DefaultParallelism = 8

// Options configures a merge pass
type Options struct {
	// IncludeWorkingTree makes existing working files authoritative for the
	// local side. When false, decisions use index hashes only.
	IncludeWorkingTree bool
	// OutDir is prefixed to every element key to form its working-tree path
	OutDir string
	// Parallelism bounds concurrent element processing; <= 0 uses the default
	Parallelism int
}

// DefaultOptions returns the options used by the merge command
func DefaultOptions() Options {
	return Options{
		IncludeWorkingTree: true,
		Parallelism:        DefaultParallelism,
	}
}

func (o Options) parallelism() int {
	if o.Parallelism <= 0 {
		return DefaultParallelism
	}
	return o.Parallelism
}

// Result holds the outcome of one MergeStages call.
// Keys whose realization failed are absent from Outcomes and present in
// Failures; they must be retried by a later pass.
type Result struct {
	Outcomes map[string]Outcome
	Failures map[string]error
	// Local is the engine's working copy of the local index, including
	// entries synthesized for elements that only exist remotely
	Local *index.Index

	mu sync.Mutex
}

func newResult(local *index.Index) *Result {
	return &Result{
		Outcomes: make(map[string]Outcome),
		Failures: make(map[string]error),
		Local:    local,
	}
}

func (r *Result) record(key string, outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outcomes[key] = outcome
}

func (r *Result) fail(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures[key] = err
}

// Keys returns the resolved element keys in sorted order
func (r *Result) Keys() []string {
	keys := lo.Keys(r.Outcomes)
	slices.Sort(keys)
	return keys
}

// Conflicts returns the keys with a CONFLICT outcome in sorted order
func (r *Result) Conflicts() []string {
	return lo.Filter(r.Keys(), func(key string, _ int) bool {
		return r.Outcomes[key] == OutcomeConflict
	})
}

// Count returns how many elements resolved to outcome
func (r *Result) Count(outcome Outcome) int {
	return lo.CountBy(lo.Values(r.Outcomes), func(o Outcome) bool {
		return o == outcome
	})
}

// AllMerged reports whether no element ended in conflict
func (r *Result) AllMerged() bool {
	return r.Count(OutcomeConflict) == 0
}

// HasUpdates reports whether any element changed state
func (r *Result) HasUpdates() bool {
	return lo.SomeBy(lo.Values(r.Outcomes), func(o Outcome) bool {
		return o == OutcomeMerged || o == OutcomeDeleted || o == OutcomeConflict
	})
}

// Err combines the per-element failures, or returns nil if there were none
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	keys := lo.Keys(r.Failures)
	slices.Sort(keys)

	var result *multierror.Error
	for _, key := range keys {
		result = multierror.Append(result, fmt.Errorf("%s: %w", key, r.Failures[key]))
	}
	return result.ErrorOrNil()
}
