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

// TransportError wraps a failed RPC call against the node. The underlying
// client error is carried unmodified; the tracer never retries.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("soltrace: %s failed: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ContractDataNotFoundError is returned when no known artifact matches the
// bytecode deployed at the queried address. It fails the call it occurred
// in; the tracer itself stays usable.
type ContractDataNotFoundError struct {
	Address common.Address
}

func (e *ContractDataNotFoundError) Error() string {
	return fmt.Sprintf("soltrace: no contract data found for %s", e.Address.Hex())
}

// CallbackError wraps a failure raised by a caller-supplied callback: the
// raw-trace observer, a per-step handler or the batch handler. Stage names
// the callback slot that failed.
type CallbackError struct {
	Stage string
	Err   error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("soltrace: %s callback failed: %v", e.Stage, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
