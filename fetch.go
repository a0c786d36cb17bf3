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

// fetchTrace retrieves the raw execution trace of an already-mined
// transaction via debug_traceTransaction. params is passed to the node
// untouched; nil means an empty parameter object. Node-side rejection
// (unknown transaction, debug API disabled) surfaces as a TransportError
// wrapping the client error unmodified.
func (t *Tracer) fetchTrace(ctx context.Context, txHash common.Hash, params map[string]interface{}) (*ExecutionTrace, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	var trace ExecutionTrace
	if err := t.client.CallContext(ctx, &trace, "debug_traceTransaction", txHash, params); err != nil {
		return nil, &TransportError{Method: "debug_traceTransaction", Err: err}
	}
	return &trace, nil
}
