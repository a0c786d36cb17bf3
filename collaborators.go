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

	"github.com/ethereum/go-ethereum/common"
)

// ArtifactSource supplies compiled-contract metadata. CollectContractsData
// is called exactly once, when the tracer is constructed; the returned set
// is shared read-only across all subsequent Trace calls.
type ArtifactSource interface {
	// CollectContractsData returns every known compiled artifact.
	CollectContractsData(ctx context.Context) ([]*ContractData, error)

	// ContractDataByTraceInfo selects, from the collected set, the artifact
	// whose bytecode matches what is deployed at address. isCreation tells
	// the matcher to compare against creation rather than runtime bytecode.
	// A nil result with a nil error means no artifact matched.
	ContractDataByTraceInfo(ctx context.Context, contracts []*ContractData, address common.Address, bytecode string, isCreation bool) (*ContractData, error)
}

// SourceMapParser decodes a compiler source map into a program-counter to
// source-range table. The binary source-map format and the bytecode/source
// correspondence algorithm live entirely behind this interface.
type SourceMapParser interface {
	ParseSourceMap(sources map[string]string, srcMap string, bytecode string, sourceList []string) (SourceMap, error)
}

// Augmenter enriches raw struct logs into Steps and derives the per-step
// provenance index. The constants table substitutes symbolic names for known
// values during enrichment. How provenance is computed is the augmenter's
// business; the tracer passes the index through to callbacks untouched.
type Augmenter interface {
	AugmentLogs(logs []StructLog, constants map[string]string) ([]Step, ProvenanceIndex, error)
}
