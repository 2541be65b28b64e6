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

import (
	"context"

	"github.com/tos-network/terminos/common"
	"github.com/tos-network/terminos/crypto"
)

// BlockchainApplyState is the capability handle InvokeContract needs
// from the chain's state: a concrete store implements all of it, and
// the verifier is given nothing more than this aggregation (trait-
// object-over-capabilities, the same shape as an AccountProvider
// stacking NonceProvider + BalanceProvider in a provider-style store).
type BlockchainApplyState interface {
	// ResolveContract looks up the contract module addressed by
	// contractHash as of referenceTopo. found is false if no such
	// module exists at that height.
	ResolveContract(contractHash common.Hash, referenceTopo TopoHeight) (module ContractModule, found bool, err error)

	// AcquireEnvironment builds the (module, scratch chain-state) pair
	// a single invocation executes against, given the deposits and the
	// hash of the transaction invoking it.
	AcquireEnvironment(module ContractModule, deposits []Deposit, txHash common.Hash) (*Environment, error)

	// Commit merges a successful invocation's ChainState (cache,
	// tracker, assets) into the durable apply-state.
	Commit(env *Environment) error

	// CreditReceiverScalar adds amount to account's receiver balance
	// for asset. Used for refunds and Public deposit refunds; always
	// the receiver lane, never the sender's outgoing lane, to avoid a
	// front-run on the sender's own ciphertext.
	CreditReceiverScalar(account AccountID, asset AssetID, amount uint64) error

	// CreditReceiverCiphertext adds ct (homomorphically) to account's
	// receiver balance for asset. Used for Private deposit refunds.
	CreditReceiverCiphertext(account AccountID, asset AssetID, ct crypto.CompressedCiphertext) error

	// AddBurnedCoins accounts amount against the network's burned-coin
	// counter.
	AddBurnedCoins(amount uint64) error

	// AddBlockGasFee accounts amount into the current block's gas-fee
	// counter.
	AddBlockGasFee(amount uint64) error

	// GasBurnPercent is the network's TX_GAS_BURN_PERCENT, applied as
	// an integer percentage of used gas.
	GasBurnPercent() uint64

	// PersistOutputs stores a transaction's finalized output log keyed
	// by its hash.
	PersistOutputs(txHash common.Hash, outputs []Output) error
}

// Executor runs a resolved contract module's selected entry point.
// Implementations are synchronous and CPU-bound; InvokeContract always
// calls Invoke from a dedicated goroutine so a cooperatively-scheduled
// caller is never blocked on it.
//
// params arrives already reordered for a LIFO stack (source-order
// last parameter first, so the first parameter ends up on top and is
// popped first), so an implementation only needs to push them onto the
// VM stack in the order given.
//
// A Hook entry the module does not define is reported by returning
// usedGas=0, exitCode=nil, err=nil — not an error.
type Executor interface {
	Invoke(ctx context.Context, module ContractModule, env *Environment, entry EntryKind, params []Value, maxGas uint64) (usedGas uint64, exitCode *uint64, err error)
}
