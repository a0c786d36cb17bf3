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
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ExecutionTrace is the raw result of replaying one transaction in debug
// mode: total gas used, return value and the ordered instruction steps.
// It is immutable once fetched.
type ExecutionTrace struct {
	Gas         uint64      `json:"gas"`
	Failed      bool        `json:"failed"`
	ReturnValue string      `json:"returnValue"`
	StructLogs  []StructLog `json:"structLogs"`
}

// StructLog is one VM instruction's recorded state during trace replay,
// exactly as the node serializes it. Stack, memory and storage words are
// hex strings; Memory is nil when the node omitted memory capture.
type StructLog struct {
	Pc      uint64            `json:"pc"`
	Op      string            `json:"op"`
	Gas     uint64            `json:"gas"`
	GasCost uint64            `json:"gasCost"`
	Depth   int               `json:"depth"`
	Error   string            `json:"error,omitempty"`
	Stack   []string          `json:"stack"`
	Memory  []string          `json:"memory,omitempty"`
	Storage map[string]string `json:"storage,omitempty"`
}

// Step is an annotated instruction step. The embedded StructLog carries the
// raw VM state and is never modified; annotation layers the optional fields
// on top through the With* constructors, each of which returns a new value.
type Step struct {
	StructLog

	// Loc is the compact source location label, empty when the program
	// counter could not be resolved.
	Loc string `json:"loc,omitempty"`
	// Source is the highlighted source excerpt for Loc.
	Source string `json:"source,omitempty"`
	// Notes are human-readable descriptions attached by the augmenter.
	Notes []string `json:"notes,omitempty"`
	// Fingerprint identifies the step across pipeline stages.
	Fingerprint string `json:"fingerprint,omitempty"`

	display func() string
}

// WithSource returns a copy of the step carrying the given location label
// and highlighted excerpt.
func (s Step) WithSource(loc, source string) Step {
	s.Loc = loc
	s.Source = source
	return s
}

// WithNotes returns a copy of the step with the given notes appended. The
// receiver's note slice is left untouched.
func (s Step) WithNotes(notes ...string) Step {
	merged := make([]string, 0, len(s.Notes)+len(notes))
	merged = append(merged, s.Notes...)
	merged = append(merged, notes...)
	s.Notes = merged
	return s
}

// WithDisplay returns a copy of the step whose String method is backed by
// the given render function. The function is evaluated lazily, on demand.
func (s Step) WithDisplay(render func() string) Step {
	s.display = render
	return s
}

// String renders the step for humans. Annotated steps use the display
// function installed during annotation; raw steps fall back to a one-line
// opcode summary.
func (s Step) String() string {
	if s.display != nil {
		return s.display()
	}
	return fmt.Sprintf("%s pc=%d gas=%d cost=%d depth=%d", s.Op, s.Pc, s.Gas, s.GasCost, s.Depth)
}

// Position is a source location; lines are 1-based, columns 0-based.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"column"`
}

// SourceRange is the span of source text a bytecode offset maps to.
type SourceRange struct {
	File  string   `json:"file"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// SourceMap maps a program counter to the source range that produced the
// instruction at that offset.
type SourceMap map[uint64]SourceRange

// SourceFileIndex maps a source file name to its ordered lines. It is
// rebuilt from the artifact's source texts on every call.
type SourceFileIndex map[string][]string

// ProvenanceIndex records, per step index, which earlier steps produced the
// values the step consumes. The payload is produced by the Augmenter and
// passed to callbacks unchanged; this package never inspects it.
type ProvenanceIndex map[int]interface{}

// Receipt is the subset of a transaction receipt the tracer needs. A nil To
// marks a contract-creation transaction, in which case ContractAddress holds
// the created contract's address.
type Receipt struct {
	TxHash          common.Hash
	To              *common.Address
	ContractAddress *common.Address
}

// IsCreation reports whether the receipt belongs to a contract-creation
// transaction.
func (r *Receipt) IsCreation() bool { return r.To == nil }

// ContractData is a compiled-contract metadata bundle: bytecode, source maps
// and source texts, as produced by a compiler artifact.
type ContractData struct {
	Name string `json:"name"`

	// Creation-time and runtime bytecode, 0x-prefixed hex.
	Bytecode        string `json:"bytecode"`
	RuntimeBytecode string `json:"runtimeBytecode"`

	// Compiler source maps for the two bytecodes.
	SourceMap        string `json:"sourceMap"`
	SourceMapRuntime string `json:"sourceMapRuntime"`

	// SourceList orders file names the way the source map indexes them;
	// Sources maps each file name to its full text.
	SourceList []string          `json:"sourceList"`
	Sources    map[string]string `json:"sources"`
}
