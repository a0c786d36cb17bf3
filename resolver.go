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
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// sourceResolver builds the per-call source lookup tables. Whether source
// resolution happens at all is decided once, at construction: a tracer holds
// either a contractResolver or noSourceResolution, never a nil.
type sourceResolver interface {
	resolve(ctx context.Context, receipt *Receipt) (SourceMap, SourceFileIndex, error)
}

// noSourceResolution is installed when no artifact metadata is configured.
type noSourceResolution struct{}

func (noSourceResolution) resolve(context.Context, *Receipt) (SourceMap, SourceFileIndex, error) {
	return nil, nil, nil
}

// contractResolver maps a receipt's target contract to compiled-artifact
// metadata and decodes the matching source map. The artifact set is
// collected once at tracer construction and read-only here; everything else
// is rebuilt on every call, since the bytecode deployed at an address may
// change between calls.
type contractResolver struct {
	client    *rpc.Client
	artifacts []*ContractData
	source    ArtifactSource
	parser    SourceMapParser
	log       log.Logger
}

func (r *contractResolver) resolve(ctx context.Context, receipt *Receipt) (SourceMap, SourceFileIndex, error) {
	isCreation := receipt.IsCreation()
	address, err := targetAddress(receipt)
	if err != nil {
		return nil, nil, err
	}
	var code hexutil.Bytes
	if err := r.client.CallContext(ctx, &code, "eth_getCode", address, "latest"); err != nil {
		return nil, nil, &TransportError{Method: "eth_getCode", Err: err}
	}
	data, err := r.source.ContractDataByTraceInfo(ctx, r.artifacts, address, code.String(), isCreation)
	if err != nil {
		return nil, nil, err
	}
	if data == nil {
		return nil, nil, &ContractDataNotFoundError{Address: address}
	}
	srcMap, bytecode := data.SourceMapRuntime, data.RuntimeBytecode
	if isCreation {
		srcMap, bytecode = data.SourceMap, data.Bytecode
	}
	table, err := r.parser.ParseSourceMap(data.Sources, srcMap, bytecode, data.SourceList)
	if err != nil {
		return nil, nil, err
	}
	index := make(SourceFileIndex, len(data.Sources))
	for name, text := range data.Sources {
		index[name] = splitLines(text)
	}
	r.log.Debug("Resolved contract sources", "address", address, "contract", data.Name, "mapped", len(table), "files", len(index))
	return table, index, nil
}

// targetAddress picks the contract the trace executed against: the created
// contract for a creation transaction, the destination otherwise.
func targetAddress(receipt *Receipt) (common.Address, error) {
	if receipt.IsCreation() {
		if receipt.ContractAddress == nil {
			return common.Address{}, errors.New("soltrace: creation receipt carries no contract address")
		}
		return *receipt.ContractAddress, nil
	}
	return *receipt.To, nil
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
