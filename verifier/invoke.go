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

import "context"

// InvokeContract applies tx to state: resolves the contract, runs it
// on a blocking executor, commits or rolls back its effects, settles
// gas, and persists the finalized output log.
func InvokeContract(ctx context.Context, state BlockchainApplyState, executor Executor, tx *Transaction) ([]Output, error) {
	module, found, err := state.ResolveContract(tx.ContractHash, tx.ReferenceTopoheight)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrContractNotFound
	}

	env, err := state.AcquireEnvironment(module, tx.Deposits, tx.Hash)
	if err != nil {
		return nil, err
	}

	usedGas, exitCode, err := runBlocking(ctx, executor, module, env, tx.Entry, tx.Params, tx.MaxGas)
	if err != nil {
		return nil, err
	}
	if usedGas > tx.MaxGas {
		usedGas = tx.MaxGas // cap a misreporting VM at the declared limit
	}

	success := exitCode != nil && *exitCode == 0
	outputs := env.ChainState.Outputs

	if success {
		if err := state.Commit(env); err != nil {
			return nil, err
		}
	} else {
		if err := refundDeposits(state, tx); err != nil {
			return nil, err
		}
		outputs = append(outputs, RefundDepositsOutput{})
	}

	outputs = append(outputs, ExitCodeOutput{Code: exitCode})

	burned, fee, refund, err := settleGas(usedGas, tx.MaxGas, state.GasBurnPercent())
	if err != nil {
		return nil, err
	}
	if err := state.AddBurnedCoins(burned); err != nil {
		return nil, err
	}
	if err := state.AddBlockGasFee(fee); err != nil {
		return nil, err
	}
	if refund > 0 {
		if err := state.CreditReceiverScalar(tx.Source, nativeAssetID, refund); err != nil {
			return nil, err
		}
		outputs = append(outputs, RefundGasOutput{Refund: refund})
	}

	if err := state.PersistOutputs(tx.Hash, outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

// nativeAssetID is the reserved asset id gas is denominated and
// refunded in, matching the native-coin lane every network config
// reserves asset id 0 for.
const nativeAssetID AssetID = 0

func refundDeposits(state BlockchainApplyState, tx *Transaction) error {
	for _, d := range tx.Deposits {
		switch d.Kind {
		case DepositPublic:
			if err := state.CreditReceiverScalar(tx.Source, d.Asset, d.PublicAmount); err != nil {
				return err
			}
		case DepositPrivate:
			if err := state.CreditReceiverCiphertext(tx.Source, d.Asset, d.PrivateCiphertext); err != nil {
				return err
			}
		}
	}
	return nil
}

// settleGas computes the consensus-critical gas split. burned + fee
// always equals usedGas; burned + fee + refund always equals maxGas.
// Any arithmetic that would underflow is reported as ErrGasOverflow
// rather than wrapping, since that would silently mint or burn gas.
func settleGas(usedGas, maxGas, burnPercent uint64) (burned, fee, refund uint64, err error) {
	if usedGas > maxGas {
		return 0, 0, 0, ErrGasOverflow
	}
	burned = usedGas * burnPercent / 100
	if burned > usedGas {
		return 0, 0, 0, ErrGasOverflow
	}
	fee = usedGas - burned
	refund = maxGas - usedGas
	return burned, fee, refund, nil
}

type invokeResult struct {
	usedGas  uint64
	exitCode *uint64
	err      error
}

// runBlocking invokes executor on its own goroutine: VM execution is
// synchronous and CPU-bound, so it must never run on the same
// goroutine driving cooperatively-scheduled I/O. Parameters are
// reversed before the call so the VM's LIFO stack pops them back out
// in source order.
func runBlocking(ctx context.Context, executor Executor, module ContractModule, env *Environment, entry EntryKind, params []Value, maxGas uint64) (uint64, *uint64, error) {
	reversed := reverseParams(params)
	ch := make(chan invokeResult, 1)
	go func() {
		usedGas, exitCode, err := executor.Invoke(ctx, module, env, entry, reversed, maxGas)
		ch <- invokeResult{usedGas: usedGas, exitCode: exitCode, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case r := <-ch:
		return r.usedGas, r.exitCode, r.err
	}
}

func reverseParams(params []Value) []Value {
	out := make([]Value, len(params))
	for i, p := range params {
		out[len(params)-1-i] = p
	}
	return out
}
