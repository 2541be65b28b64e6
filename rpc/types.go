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

// Package rpc is the JSON-RPC 2.0 dispatcher terminos's wallet and
// node surfaces sit behind: a single entry point accepts either one
// call object or a batch array, validates envelopes, routes to
// registered handlers, and reports per-method call counts and
// latency.
package rpc

import "encoding/json"

// Version is the only accepted JSON-RPC protocol version string.
const Version = "2.0"

// BatchLimit is the largest number of calls accepted in one batch
// array; a longer batch is rejected outright with BatchLimitExceeded,
// no handler invoked.
const BatchLimit = 20

// Request is one call or notification envelope. A Request with a nil
// ID (or a literal JSON null) is a notification: it never produces a
// response envelope on success, only on an error that makes the
// envelope itself invalid.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r Request) isNotification() bool {
	if len(r.ID) == 0 {
		return true
	}
	return string(r.ID) == "null"
}

// Response is the wire envelope for a completed call. Result and
// Error are mutually exclusive.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is a JSON-RPC error, carrying either a standard
// protocol-level code or a wallet domain code (100 + discriminant).
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func errResponse(id json.RawMessage, code int, msg string) *Response {
	return &Response{JSONRPC: Version, ID: id, Error: &ErrorObject{Code: code, Message: msg}}
}

func singleErrorBody(id json.RawMessage, code int, msg string) []byte {
	out, err := json.Marshal(errResponse(id, code, msg))
	if err != nil {
		// ErrorObject always marshals; this path is unreachable in
		// practice, but never panic out of a wire handler.
		return []byte(`{"jsonrpc":"2.0","error":{"code":-32603,"message":"internal error"}}`)
	}
	return out
}
