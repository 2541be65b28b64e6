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

package verifier

import "errors"

var (
	// ErrContractNotFound is returned when the invoked contract module
	// cannot be resolved by hash at the transaction's reference
	// topoheight.
	ErrContractNotFound = errors.New("verifier: contract not found")

	// ErrGasOverflow signals a consensus-critical violation in the gas
	// settlement arithmetic (used - burned, or max - used underflowing).
	// The affected transaction's commit point must be rolled back.
	ErrGasOverflow = errors.New("verifier: gas overflow")

	// ErrDepositNotFound is returned when a refund references a
	// deposit asset the transaction never declared.
	ErrDepositNotFound = errors.New("verifier: deposit not found")
)
