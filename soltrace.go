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

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/errgroup"
)

// Config assembles a Tracer. Client is required. Artifacts enables source
// resolution; Parser must be set alongside it. Augmenter, Highlighter and
// Logger fall back to built-in defaults when nil.
type Config struct {
	Client      *rpc.Client
	Artifacts   ArtifactSource
	Parser      SourceMapParser
	Augmenter   Augmenter
	Highlighter Highlighter
	Logger      log.Logger
}

// Tracer replays mined transactions as annotated step sequences. It is
// immutable after construction and safe for concurrent Trace calls: every
// call builds its own source table, line index and step slice.
type Tracer struct {
	client    *rpc.Client
	resolver  sourceResolver
	augmenter Augmenter
	highlight Highlighter
	log       log.Logger
}

// New builds a Tracer. When artifact metadata is configured the artifact
// set is collected here, once, and shared read-only by all later calls.
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	if cfg.Client == nil {
		return nil, errors.New("soltrace: rpc client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Root()
	}
	t := &Tracer{
		client:    cfg.Client,
		resolver:  noSourceResolution{},
		augmenter: cfg.Augmenter,
		highlight: cfg.Highlighter,
		log:       logger,
	}
	if t.augmenter == nil {
		t.augmenter = passthroughAugmenter{}
	}
	if t.highlight == nil {
		t.highlight = ColorHighlighter()
	}
	if cfg.Artifacts != nil {
		if cfg.Parser == nil {
			return nil, errors.New("soltrace: source map parser is required when artifacts are configured")
		}
		contracts, err := cfg.Artifacts.CollectContractsData(ctx)
		if err != nil {
			return nil, err
		}
		logger.Debug("Collected contract artifacts", "contracts", len(contracts))
		t.resolver = &contractResolver{
			client:    cfg.Client,
			artifacts: contracts,
			source:    cfg.Artifacts,
			parser:    cfg.Parser,
			log:       logger,
		}
	}
	return t, nil
}

// Trace runs the pipeline for one mined transaction: resolve sources (when
// configured), fetch the raw trace, hand it to the observer, augment,
// pre-filter, annotate, post-filter, dispatch callbacks, and return the
// final step sequence. Steps come back in VM execution order; a failure in
// any stage fails the whole call, there are no partial results.
func (t *Tracer) Trace(ctx context.Context, receipt *Receipt, opts *TraceOptions) ([]Step, error) {
	if opts == nil {
		opts = new(TraceOptions)
	}
	srcMap, files, err := t.resolver.resolve(ctx, receipt)
	if err != nil {
		return nil, err
	}
	trace, err := t.fetchTrace(ctx, receipt.TxHash, opts.TraceParams)
	if err != nil {
		return nil, err
	}
	t.log.Debug("Fetched transaction trace", "tx", receipt.TxHash, "steps", len(trace.StructLogs), "gas", trace.Gas)
	if opts.OnTrace != nil {
		if err := opts.OnTrace(ctx, trace); err != nil {
			return nil, &CallbackError{Stage: "onTrace", Err: err}
		}
	}
	steps, provenance, err := t.augmenter.AugmentLogs(trace.StructLogs, opts.Constants)
	if err != nil {
		return nil, err
	}
	if opts.PreFilter != nil {
		steps = filterSteps(steps, opts.PreFilter)
	}
	if srcMap != nil {
		steps = t.annotate(steps, srcMap, files)
	}
	if opts.PostFilter != nil {
		steps = filterSteps(steps, opts.PostFilter)
	}
	if opts.PerStep != nil {
		if err := t.dispatch(ctx, steps, provenance, opts.PerStep); err != nil {
			return nil, err
		}
	}
	if opts.Batch != nil {
		if err := opts.Batch(ctx, steps, provenance); err != nil {
			return nil, &CallbackError{Stage: "batch", Err: err}
		}
	}
	return steps, nil
}

// annotate overlays source locations onto the steps whose program counter
// appears in the table. A pc without a table entry, or a range pointing at
// an unknown file, leaves the step unannotated rather than failing the
// call: compiler-generated sections legitimately map to nothing.
func (t *Tracer) annotate(steps []Step, srcMap SourceMap, files SourceFileIndex) []Step {
	annotated := make([]Step, 0, len(steps))
	for _, step := range steps {
		rng, ok := srcMap[step.Pc]
		if !ok {
			annotated = append(annotated, step)
			continue
		}
		lines, ok := files[rng.File]
		if !ok {
			t.log.Warn("Source map references unknown file", "file", rng.File, "pc", step.Pc)
			annotated = append(annotated, step)
			continue
		}
		loc := rng.Location()
		source := Excerpt(rng, lines, t.highlight)
		step = step.WithSource(loc, source)
		step = step.WithDisplay(func() string { return loc + "\n" + source })
		annotated = append(annotated, step)
	}
	return annotated
}

// dispatch fans the per-step handler out across all surviving steps and
// joins the results. The first handler error decides the outcome; the
// remaining handlers are not cancelled, their results are simply dropped.
func (t *Tracer) dispatch(ctx context.Context, steps []Step, provenance ProvenanceIndex, handler func(context.Context, Step, ProvenanceIndex) error) error {
	var g errgroup.Group
	for _, step := range steps {
		step := step
		g.Go(func() error {
			if err := handler(ctx, step, provenance); err != nil {
				return &CallbackError{Stage: "perStep", Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}
