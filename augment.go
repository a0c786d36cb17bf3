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
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// passthroughAugmenter is the built-in Augmenter used when none is
// configured. It lifts every raw log into a Step, attaches a fingerprint
// and a one-line opcode note, and reports an empty provenance index.
type passthroughAugmenter struct{}

func (passthroughAugmenter) AugmentLogs(logs []StructLog, constants map[string]string) ([]Step, ProvenanceIndex, error) {
	symbols := symbolTable(constants)
	steps := make([]Step, len(logs))
	for i, l := range logs {
		step := Step{StructLog: l}
		step.Fingerprint = fingerprint(i, l)
		steps[i] = step.WithNotes(describeLog(l, symbols))
	}
	return steps, ProvenanceIndex{}, nil
}

// fingerprint derives a stable identity for a step from its index and raw
// state, so that consumers can correlate a step across pipeline stages.
func fingerprint(index int, l StructLog) string {
	preimage := fmt.Sprintf("%d:%d:%s:%d:%d", index, l.Pc, l.Op, l.Gas, l.Depth)
	return hexutil.Encode(crypto.Keccak256([]byte(preimage))[:8])
}

// symbolTable inverts a name-to-value constants table into canonical-value
// to name form, so stack words can be matched regardless of hex padding.
func symbolTable(constants map[string]string) map[string]string {
	if len(constants) == 0 {
		return nil
	}
	symbols := make(map[string]string, len(constants))
	for name, value := range constants {
		if canon, ok := canonicalWord(value); ok {
			symbols[canon] = name
		}
	}
	return symbols
}

// canonicalWord normalizes a hex word to its minimal 0x form. Nodes differ
// on zero-padding stack words, so leading zeros are stripped before parsing.
func canonicalWord(word string) (string, bool) {
	s := strings.TrimPrefix(strings.ToLower(word), "0x")
	if s == "" || len(s) > 64 {
		return "", false
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	n, err := uint256.FromHex("0x" + s)
	if err != nil {
		return "", false
	}
	return n.Hex(), true
}

func describeLog(l StructLog, symbols map[string]string) string {
	note := fmt.Sprintf("%s depth=%d gas=%d", l.Op, l.Depth, l.Gas)
	if len(l.Stack) == 0 {
		return note
	}
	top := l.Stack[len(l.Stack)-1]
	canon, ok := canonicalWord(top)
	if !ok {
		return note
	}
	if name, known := symbols[canon]; known {
		return fmt.Sprintf("%s top=%s (%s)", note, canon, name)
	}
	return fmt.Sprintf("%s top=%s", note, canon)
}
