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

// Package verifier applies a Transaction to an abstract blockchain
// apply-state in a deterministic way: resolving the invoked contract,
// running the VM on a blocking executor, committing or rolling back
// its effects, and settling gas. It holds no storage or VM
// implementation of its own; both are taken as capability interfaces
// the caller supplies.
package verifier

import (
	"sync"

	"github.com/tos-network/terminos/common"
	"github.com/tos-network/terminos/contract"
	"github.com/tos-network/terminos/crypto"
	"github.com/tos-network/terminos/internal/tlog"
)

var logger = tlog.NewModuleLogger(tlog.Verifier)

// TopoHeight is the DAG-order height a transaction references for
// contract resolution. Kept as a local alias rather than importing
// storage.TopoHeight, so this package stays decoupled from any one
// storage implementation (an apply-state capability handle is all it
// needs).
type TopoHeight = uint64

// AccountID and AssetID are the interned identifiers a concrete
// apply-state resolves account/asset keys to; the verifier only
// threads them through.
type AccountID = uint64
type AssetID = uint64

// Value is a VM-visible stack value: the same opaque bridge types
// (Hash, Address, Signature, Ciphertext, proofs) exposed to contract
// code, since the verifier never interprets parameters itself — it
// only orders them for the VM.
type Value = contract.Opaque

// EntryKind selects a contract's entry point: either a numbered code
// chunk or a named hook. A Hook entry that the module does not define
// is not an error — Executor.Invoke reports it as (usedGas=0,
// exitCode=nil).
type EntryKind struct {
	Hook bool
	ID   uint32
}

// EntryChunk selects entry by chunk id.
func EntryChunk(id uint32) EntryKind { return EntryKind{ID: id} }

// EntryHook selects entry by hook id.
func EntryHook(id uint32) EntryKind { return EntryKind{Hook: true, ID: id} }

// DepositKind distinguishes a deposit carrying a plain scalar amount
// from one carrying a homomorphically-encrypted amount.
type DepositKind uint8

const (
	DepositPublic DepositKind = iota
	DepositPrivate
)

// Deposit is one asset a transaction attaches to its contract
// invocation, refundable to the source's receiver balance lane on
// failure.
type Deposit struct {
	Asset             AssetID
	Kind              DepositKind
	PublicAmount      uint64
	PrivateCiphertext crypto.CompressedCiphertext
}

// Transaction is the minimal view of a contract-invoking transaction
// the verifier needs.
type Transaction struct {
	Hash                common.Hash
	Source              AccountID
	ContractHash        common.Hash
	ReferenceTopoheight TopoHeight
	Entry               EntryKind
	Params              []Value
	MaxGas              uint64
	Deposits            []Deposit
}

// ContractModule is the apply-state's resolved, attachable contract;
// the verifier treats it opaquely and only ever passes it back to the
// Executor.
type ContractModule interface{}

// Registry is a small typed, single-writer-during-execution context
// the VM can stash references into while it runs (module state,
// deposit handles, the transaction hash) without the verifier needing
// to know their concrete types.
type Registry struct {
	mu     sync.Mutex
	values map[string]interface{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{values: make(map[string]interface{})}
}

// Set installs a value under key, overwriting any prior entry.
func (r *Registry) Set(key string, v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = v
}

// Get retrieves the value installed under key, if any.
func (r *Registry) Get(key string) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok
}

// ChainState is the fresh scratch surface a single contract
// invocation executes against: accumulated outputs, a VM-visible
// key/value cache, the context Registry, and the set of assets the
// invocation touched. On success it is merged into the apply-state;
// on failure it is discarded.
type ChainState struct {
	Outputs []Output
	Cache   map[string][]byte
	Tracker *Registry
	Assets  map[AssetID]struct{}
}

// NewChainState returns an empty ChainState ready for one invocation.
func NewChainState() *ChainState {
	return &ChainState{
		Cache:   make(map[string][]byte),
		Tracker: NewRegistry(),
		Assets:  make(map[AssetID]struct{}),
	}
}

// Environment pairs the resolved module with the scratch ChainState
// the VM executes against, as handed back by AcquireEnvironment.
type Environment struct {
	Module     ContractModule
	ChainState *ChainState
}

// Output is one entry in a transaction's finalized output log.
// ExitCode is always appended; RefundDeposits only on a failed
// invocation; RefundGas only when a nonzero amount is refunded.
type Output interface {
	isOutput()
}

// ExitCodeOutput carries the VM's reported exit code, nil meaning the
// invocation never ran to completion (e.g. a missing hook).
type ExitCodeOutput struct {
	Code *uint64
}

// RefundDepositsOutput marks that a failed invocation's deposits were
// refunded to the source's receiver balance.
type RefundDepositsOutput struct{}

// RefundGasOutput carries the unused portion of max_gas refunded to
// the source.
type RefundGasOutput struct {
	Refund uint64
}

func (ExitCodeOutput) isOutput()       {}
func (RefundDepositsOutput) isOutput() {}
func (RefundGasOutput) isOutput()      {}
