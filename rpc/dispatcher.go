// Copyright 2024 The terminos Authors
// This file is part of the terminos library.
//
// The terminos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The terminos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the terminos library. If not, see <http://www.gnu.org/licenses/>.

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	gometrics "github.com/rcrowley/go-metrics"

	"github.com/tos-network/terminos/internal/tlog"
)

var logger = tlog.NewModuleLogger(tlog.RPC)

// Handler is a registered method's implementation: it receives the
// call's raw params and either a result (marshaled into the response)
// or an error (converted to a wire ErrorObject).
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

type methodMetrics struct {
	calls   gometrics.Counter
	elapsed gometrics.Timer
}

// Dispatcher routes JSON-RPC 2.0 requests to registered handlers and
// tracks a per-method call counter and elapsed-time histogram.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	metrics  map[string]*methodMetrics
	registry gometrics.Registry
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		metrics:  make(map[string]*methodMetrics),
		registry: gometrics.NewRegistry(),
	}
}

// Register installs h under method. Registering over an existing
// method is not refused outright (last write wins) but is logged as a
// warning, since in practice it indicates two components racing to
// own the same RPC surface.
func (d *Dispatcher) Register(method string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.handlers[method]; exists {
		logger.New("method", method).Warn("rpc handler re-registered, last write wins")
	}
	d.handlers[method] = h
	d.metrics[method] = &methodMetrics{
		calls:   gometrics.GetOrRegisterCounter(method+".calls", d.registry),
		elapsed: gometrics.GetOrRegisterTimer(method+".elapsed", d.registry),
	}
}

// Metrics exposes the underlying go-metrics registry so a process can
// wire it into whatever metrics exporter it runs.
func (d *Dispatcher) Metrics() gometrics.Registry { return d.registry }

// Handle dispatches a raw JSON-RPC body: an object is a single call,
// an array is a batch (capped at BatchLimit). The returned bytes are
// nil when the body was a lone notification that passed version and
// method validation, whatever its handler returned — callers
// must write nothing back to the transport in that case.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return singleErrorBody(nil, CodeInvalidRequest, "empty request body")
	}

	if trimmed[0] == '[' {
		return d.handleBatch(ctx, trimmed)
	}
	return d.handleSingle(ctx, trimmed)
}

func (d *Dispatcher) handleBatch(ctx context.Context, body []byte) []byte {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return singleErrorBody(nil, CodeParseError, err.Error())
	}
	if len(raw) > BatchLimit {
		return singleErrorBody(nil, CodeBatchLimitExceeded, ErrBatchLimitExceeded.Error())
	}

	responses := make([]*Response, 0, len(raw))
	for _, item := range raw {
		var req Request
		if err := json.Unmarshal(item, &req); err != nil {
			responses = append(responses, errResponse(nil, CodeParseError, err.Error()))
			continue
		}
		if resp := d.dispatchOne(ctx, req); resp != nil {
			responses = append(responses, resp)
		}
	}

	out, err := json.Marshal(responses)
	if err != nil {
		return singleErrorBody(nil, CodeInternalError, err.Error())
	}
	return out
}

func (d *Dispatcher) handleSingle(ctx context.Context, body []byte) []byte {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return singleErrorBody(nil, CodeParseError, err.Error())
	}

	resp := d.dispatchOne(ctx, req)
	if resp == nil {
		return nil
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return singleErrorBody(req.ID, CodeInternalError, err.Error())
	}
	return out
}

// dispatchOne runs a single validated request through version check,
// method lookup, and the handler itself, returning nil only when the
// request was both well-formed and a notification.
func (d *Dispatcher) dispatchOne(ctx context.Context, req Request) *Response {
	if req.JSONRPC != Version {
		return errResponse(req.ID, CodeInvalidVersion, "jsonrpc must be \"2.0\"")
	}

	d.mu.RLock()
	h, ok := d.handlers[req.Method]
	mm := d.metrics[req.Method]
	d.mu.RUnlock()

	if !ok {
		return errResponse(req.ID, CodeMethodNotFound, "method not found: "+req.Method)
	}

	start := time.Now()
	result, err := h(ctx, req.Params)
	if mm != nil {
		mm.calls.Inc(1)
		mm.elapsed.Update(time.Since(start))
	}

	if err != nil {
		if req.isNotification() {
			return nil
		}
		code, msg := errorToWire(err)
		return errResponse(req.ID, code, msg)
	}
	if req.isNotification() {
		return nil
	}

	raw, merr := json.Marshal(result)
	if merr != nil {
		return errResponse(req.ID, CodeInternalError, merr.Error())
	}
	return &Response{JSONRPC: Version, ID: req.ID, Result: raw}
}
