// Copyright 2026 The soltrace Authors
// This file is part of the soltrace library.
//
// The soltrace library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The soltrace library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the soltrace library. If not, see <http://www.gnu.org/licenses/>.

package soltrace

import "context"

// TraceOptions configures a single Trace call. The zero value runs the
// plain pipeline: no filters, no callbacks, default trace parameters.
type TraceOptions struct {
	// TraceParams is passed to debug_traceTransaction unmodified.
	TraceParams map[string]interface{}

	// Constants is the symbolic substitution table handed to the augmenter.
	Constants map[string]string

	// OnTrace observes the raw trace before any processing. Its error
	// aborts the call; its success result is discarded.
	OnTrace func(ctx context.Context, trace *ExecutionTrace) error

	// PreFilter and PostFilter drop steps for which they return false,
	// before and after source annotation. Both preserve step order.
	PreFilter  func(Step) bool
	PostFilter func(Step) bool

	// PerStep is invoked once per surviving step, concurrently across
	// steps. The first failure fails the call; sibling invocations run to
	// completion but their results are discarded.
	PerStep func(ctx context.Context, step Step, provenance ProvenanceIndex) error

	// Batch is invoked once with the final step sequence, awaited.
	Batch func(ctx context.Context, steps []Step, provenance ProvenanceIndex) error
}

// OpFilter returns a step predicate keeping only the named opcodes.
func OpFilter(names ...string) func(Step) bool {
	keep := make(map[string]struct{}, len(names))
	for _, name := range names {
		keep[name] = struct{}{}
	}
	return func(s Step) bool {
		_, ok := keep[s.Op]
		return ok
	}
}

// DepthFilter returns a step predicate keeping steps at call depth max or
// shallower.
func DepthFilter(max int) func(Step) bool {
	return func(s Step) bool { return s.Depth <= max }
}

// filterSteps applies keep in step order, dropping steps it rejects.
func filterSteps(steps []Step, keep func(Step) bool) []Step {
	filtered := make([]Step, 0, len(steps))
	for _, step := range steps {
		if keep(step) {
			filtered = append(filtered, step)
		}
	}
	return filtered
}
