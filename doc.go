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

// Package soltrace replays mined transactions as source-mapped, filterable
// instruction traces.
//
// A Tracer fetches the structured log output of debug_traceTransaction for a
// transaction, optionally resolves each program counter to a source range via
// compiled-contract artifacts, renders a highlighted excerpt for every mapped
// step, and hands the resulting step sequence to caller-supplied filters and
// callbacks. Step order is always the VM execution order: pipeline stages only
// drop or annotate steps, never reorder them.
//
// Artifact collection, source-map decoding and step provenance are pluggable
// collaborators (ArtifactSource, SourceMapParser, Augmenter); the package
// ships with no-frills defaults where the collaborator's contract allows it.
package soltrace
