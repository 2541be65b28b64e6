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
	"errors"

	"github.com/tos-network/terminos/energy"
	"github.com/tos-network/terminos/verifier"
)

// Standard JSON-RPC 2.0 protocol-level error codes.
const (
	CodeParseError         = -32700
	CodeInvalidRequest     = -32600
	CodeMethodNotFound     = -32601
	CodeInvalidParams      = -32602
	CodeInternalError      = -32603
	CodeInvalidVersion     = -32001
	CodeBatchLimitExceeded = -32000
)

// ErrBatchLimitExceeded is returned by Handle when a batch array
// exceeds BatchLimit.
var ErrBatchLimitExceeded = errors.New("rpc: batch limit exceeded")

// WalletErrorCode maps a domain error's discriminant onto the wallet
// error-code range (100 + discriminant), per the wire contract.
func WalletErrorCode(discriminant int) int {
	return 100 + discriminant
}

// domainDiscriminants assigns a stable discriminant to each
// wallet-facing domain error a registered handler may return, so its
// wire code is deterministic across releases.
var domainDiscriminants = []struct {
	err          error
	discriminant int
}{
	{energy.ErrInsufficientUnlockedTos, 0},
	{energy.ErrInsufficientFrozenTos, 1},
	{energy.ErrInsufficientEnergy, 2},
	{energy.ErrInvalidFreezeAmount, 3},
	{verifier.ErrContractNotFound, 4},
	{verifier.ErrDepositNotFound, 5},
	{verifier.ErrGasOverflow, 6},
}

// errorToWire converts a handler error into a JSON-RPC wire code and
// message. Recognized domain errors get their wallet code; anything
// else is reported as an opaque internal error so handler internals
// never leak onto the wire.
func errorToWire(err error) (int, string) {
	for _, d := range domainDiscriminants {
		if errors.Is(err, d.err) {
			return WalletErrorCode(d.discriminant), err.Error()
		}
	}
	return CodeInternalError, err.Error()
}
