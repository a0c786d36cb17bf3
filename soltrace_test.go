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
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

// debugService backs debug_traceTransaction on the in-process test node.
type debugService struct {
	trace *ExecutionTrace
	err   error

	mu     sync.Mutex
	params []map[string]interface{}
}

func (s *debugService) TraceTransaction(hash common.Hash, params map[string]interface{}) (*ExecutionTrace, error) {
	s.mu.Lock()
	s.params = append(s.params, params)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.trace, nil
}

// ethService backs eth_getCode.
type ethService struct {
	code hexutil.Bytes
}

func (s *ethService) GetCode(address common.Address, block string) (hexutil.Bytes, error) {
	return s.code, nil
}

// recordingArtifacts is an ArtifactSource that records every match query
// and always answers with a fixed artifact.
type recordingArtifacts struct {
	contracts []*ContractData
	match     *ContractData

	mu       sync.Mutex
	queried  []common.Address
	creation []bool
}

func (a *recordingArtifacts) CollectContractsData(ctx context.Context) ([]*ContractData, error) {
	return a.contracts, nil
}

func (a *recordingArtifacts) ContractDataByTraceInfo(ctx context.Context, contracts []*ContractData, address common.Address, bytecode string, isCreation bool) (*ContractData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queried = append(a.queried, address)
	a.creation = append(a.creation, isCreation)
	return a.match, nil
}

// tableParser returns a fixed pc table and records the source map it was
// asked to decode.
type tableParser struct {
	table SourceMap

	mu      sync.Mutex
	srcMaps []string
}

func (p *tableParser) ParseSourceMap(sources map[string]string, srcMap string, bytecode string, sourceList []string) (SourceMap, error) {
	p.mu.Lock()
	p.srcMaps = append(p.srcMaps, srcMap)
	p.mu.Unlock()
	return p.table, nil
}

func testTrace(n int) *ExecutionTrace {
	logs := make([]StructLog, n)
	for i := range logs {
		logs[i] = StructLog{
			Pc:      uint64(i),
			Op:      "PUSH1",
			Gas:     uint64(100000 - i),
			GasCost: 3,
			Depth:   1,
			Stack:   []string{"0x60"},
		}
	}
	return &ExecutionTrace{Gas: 21064, ReturnValue: "", StructLogs: logs}
}

// newTestTracer spins up an in-process node exposing the debug and eth
// namespaces and dials a tracer against it.
func newTestTracer(t *testing.T, cfg Config, services ...interface{}) *Tracer {
	t.Helper()
	server := rpc.NewServer()
	for _, svc := range services {
		switch svc := svc.(type) {
		case *debugService:
			require.NoError(t, server.RegisterName("debug", svc))
		case *ethService:
			require.NoError(t, server.RegisterName("eth", svc))
		default:
			t.Fatalf("unsupported test service %T", svc)
		}
	}
	client := rpc.DialInProc(server)
	t.Cleanup(func() {
		client.Close()
		server.Stop()
	})
	cfg.Client = client
	if cfg.Highlighter == nil {
		cfg.Highlighter = NoopHighlighter
	}
	tracer, err := New(context.Background(), cfg)
	require.NoError(t, err)
	return tracer
}

func callReceipt(to common.Address) *Receipt {
	return &Receipt{TxHash: common.HexToHash("0xaa"), To: &to}
}

func TestTraceReturnsAllStepsInOrder(t *testing.T) {
	tracer := newTestTracer(t, Config{}, &debugService{trace: testTrace(7)})

	steps, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), nil)
	require.NoError(t, err)
	require.Len(t, steps, 7)
	for i, step := range steps {
		require.Equal(t, uint64(i), step.Pc, "step %d out of order", i)
	}
}

func TestTraceTransportError(t *testing.T) {
	tracer := newTestTracer(t, Config{}, &debugService{err: errors.New("transaction not found")})

	_, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), nil)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, "debug_traceTransaction", terr.Method)
	require.ErrorContains(t, err, "transaction not found")
}

func TestTraceObserverSeesRawTrace(t *testing.T) {
	tracer := newTestTracer(t, Config{}, &debugService{trace: testTrace(3)})

	var seen *ExecutionTrace
	_, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), &TraceOptions{
		OnTrace: func(ctx context.Context, trace *ExecutionTrace) error {
			seen = trace
			return nil
		},
	})
	require.NoError(t, err)
	require.NotNil(t, seen)
	require.Len(t, seen.StructLogs, 3)
}

func TestTraceObserverFailureAborts(t *testing.T) {
	tracer := newTestTracer(t, Config{}, &debugService{trace: testTrace(3)})

	boom := errors.New("observer boom")
	_, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), &TraceOptions{
		OnTrace: func(ctx context.Context, trace *ExecutionTrace) error { return boom },
	})
	var cerr *CallbackError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "onTrace", cerr.Stage)
	require.ErrorIs(t, err, boom)
}

func TestFilterComposition(t *testing.T) {
	tracer := newTestTracer(t, Config{}, &debugService{trace: testTrace(20)})

	p1 := func(s Step) bool { return s.Pc%2 == 0 }
	p2 := func(s Step) bool { return s.Pc%3 == 0 }

	chained, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), &TraceOptions{
		PreFilter:  p1,
		PostFilter: p2,
	})
	require.NoError(t, err)

	combined, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), &TraceOptions{
		PreFilter: func(s Step) bool { return p1(s) && p2(s) },
	})
	require.NoError(t, err)

	require.Equal(t, len(combined), len(chained))
	for i := range chained {
		require.Equal(t, combined[i].Pc, chained[i].Pc)
	}
}

func TestPerStepDispatchFailFast(t *testing.T) {
	const n, failing = 24, 5
	tracer := newTestTracer(t, Config{}, &debugService{trace: testTrace(n)})

	failures := make(map[uint64]error, failing)
	for i := 0; i < failing; i++ {
		failures[uint64(i*4)] = fmt.Errorf("handler failed at pc %d", i*4)
	}

	var invoked atomic.Int64
	rng := rand.New(rand.NewSource(42))
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = time.Duration(rng.Intn(10)) * time.Millisecond
	}

	_, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), &TraceOptions{
		PerStep: func(ctx context.Context, step Step, provenance ProvenanceIndex) error {
			time.Sleep(delays[step.Pc])
			invoked.Add(1)
			if ferr, ok := failures[step.Pc]; ok {
				return ferr
			}
			return nil
		},
	})

	var cerr *CallbackError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "perStep", cerr.Stage)

	matched := false
	for _, ferr := range failures {
		if errors.Is(err, ferr) {
			matched = true
			break
		}
	}
	require.True(t, matched, "returned error %v is none of the injected failures", err)

	// Siblings are joined, not cancelled: every handler ran to completion.
	require.Equal(t, int64(n), invoked.Load())
}

func TestPerStepReceivesProvenance(t *testing.T) {
	tracer := newTestTracer(t, Config{}, &debugService{trace: testTrace(4)})

	var mu sync.Mutex
	var indexes []ProvenanceIndex
	_, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), &TraceOptions{
		PerStep: func(ctx context.Context, step Step, provenance ProvenanceIndex) error {
			mu.Lock()
			indexes = append(indexes, provenance)
			mu.Unlock()
			return nil
		},
	})
	require.NoError(t, err)
	require.Len(t, indexes, 4)
}

func TestBatchHandlerFailureAborts(t *testing.T) {
	tracer := newTestTracer(t, Config{}, &debugService{trace: testTrace(2)})

	boom := errors.New("batch boom")
	_, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), &TraceOptions{
		Batch: func(ctx context.Context, steps []Step, provenance ProvenanceIndex) error { return boom },
	})
	var cerr *CallbackError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "batch", cerr.Stage)
	require.ErrorIs(t, err, boom)
}

func TestEndToEndAnnotatedBatch(t *testing.T) {
	to := common.HexToAddress("0x0000000000000000000000000000000000000042")
	data := &ContractData{
		Name:             "Token",
		RuntimeBytecode:  "0x606060",
		SourceMapRuntime: "runtime-map",
		SourceList:       []string{"Token.sol"},
		Sources:          map[string]string{"Token.sol": "line one\nline two"},
	}
	artifacts := &recordingArtifacts{contracts: []*ContractData{data}, match: data}
	parser := &tableParser{table: SourceMap{
		0: {File: "Token.sol", Start: Position{1, 0}, End: Position{1, 4}},
		2: {File: "Token.sol", Start: Position{2, 5}, End: Position{2, 8}},
	}}
	tracer := newTestTracer(t, Config{Artifacts: artifacts, Parser: parser},
		&debugService{trace: testTrace(3)},
		&ethService{code: hexutil.Bytes{0x60, 0x60, 0x60}},
	)

	var gotSteps []Step
	var gotProvenance ProvenanceIndex
	steps, err := tracer.Trace(context.Background(), callReceipt(to), &TraceOptions{
		PreFilter: func(s Step) bool { return s.Pc != 1 },
		Batch: func(ctx context.Context, steps []Step, provenance ProvenanceIndex) error {
			gotSteps = steps
			gotProvenance = provenance
			return nil
		},
	})
	require.NoError(t, err)

	require.Len(t, steps, 2)
	require.Equal(t, steps, gotSteps)
	require.NotNil(t, gotProvenance)

	require.Equal(t, uint64(0), steps[0].Pc)
	require.Equal(t, "Token.sol:1[0-4]", steps[0].Loc)
	require.Equal(t, "line one", steps[0].Source)

	require.Equal(t, uint64(2), steps[1].Pc)
	require.Equal(t, "Token.sol:2[5-8]", steps[1].Loc)
	require.Equal(t, "line two", steps[1].Source)
}

func TestAnnotateSkipsUnmappedPc(t *testing.T) {
	to := common.Address{0x42}
	data := &ContractData{
		Name:             "Token",
		RuntimeBytecode:  "0x6060",
		SourceMapRuntime: "runtime-map",
		SourceList:       []string{"Token.sol"},
		Sources:          map[string]string{"Token.sol": "only line"},
	}
	artifacts := &recordingArtifacts{contracts: []*ContractData{data}, match: data}
	parser := &tableParser{table: SourceMap{
		0: {File: "Token.sol", Start: Position{1, 0}, End: Position{1, 4}},
	}}
	tracer := newTestTracer(t, Config{Artifacts: artifacts, Parser: parser},
		&debugService{trace: testTrace(2)},
		&ethService{code: hexutil.Bytes{0x60, 0x60}},
	)

	steps, err := tracer.Trace(context.Background(), callReceipt(to), nil)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.NotEmpty(t, steps[0].Loc)
	// pc 1 has no table entry: passed through unannotated, call intact.
	require.Empty(t, steps[1].Loc)
	require.Empty(t, steps[1].Source)
}

func TestTraceParamsPassedThrough(t *testing.T) {
	debug := &debugService{trace: testTrace(1)}
	tracer := newTestTracer(t, Config{}, debug)

	_, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), &TraceOptions{
		TraceParams: map[string]interface{}{"disableMemory": true},
	})
	require.NoError(t, err)

	debug.mu.Lock()
	defer debug.mu.Unlock()
	require.Len(t, debug.params, 1)
	require.Equal(t, true, debug.params[0]["disableMemory"])
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}

func TestConcurrentTraceCalls(t *testing.T) {
	tracer := newTestTracer(t, Config{}, &debugService{trace: testTrace(10)})

	var g sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		g.Add(1)
		go func(i int) {
			defer g.Done()
			steps, err := tracer.Trace(context.Background(), callReceipt(common.Address{1}), nil)
			if err == nil && len(steps) != 10 {
				err = fmt.Errorf("got %d steps", len(steps))
			}
			errs[i] = err
		}(i)
	}
	g.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}
