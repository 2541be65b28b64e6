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

package energy

// Protocol-wide fee-routing constants. The upstream Rust config crate
// that defines these (common::config) was not part of the retrieval
// pack, so the values below are a concrete, internally-consistent
// choice documented in DESIGN.md rather than a recovered constant.
const (
	BytesPerKB         uint64 = 1024
	EnergyPerKB        uint64 = 200
	EnergyPerTransfer  uint64 = 1000
	EnergyToTosRate    uint64 = 100
	AccountActivationFee uint64 = 100_000
)

// EnergyFeeCalculator routes a transaction's cost between energy and
// coin. Only transfer-class transactions may use this path; contract
// invocation gas is always settled in coin (see verifier package).
type EnergyFeeCalculator struct{}

// CalculateEnergyCost computes the energy price of a transfer-class
// transaction of txSize bytes moving transferCount outputs and
// activating newAddresses new accounts.
func (EnergyFeeCalculator) CalculateEnergyCost(txSize uint64, transferCount, newAddresses uint64) uint64 {
	sizeInKB := txSize / BytesPerKB
	if txSize%BytesPerKB != 0 {
		sizeInKB++
	}
	cost := sizeInKB * EnergyPerKB
	cost += transferCount * EnergyPerTransfer
	cost += newAddresses * EnergyPerTransfer
	return cost
}

// Quote is the outcome of routing a transaction's cost between energy
// and coin.
type Quote struct {
	EnergyConsumed uint64
	TosCost        uint64
}

// Route applies the fee-routing rules in order: account activation is
// always paid in coin; available energy is spent first; any shortage
// is converted to coin at EnergyToTosRate.
func (c EnergyFeeCalculator) Route(energyCost uint64, newAddresses uint64, resource *EnergyResource) Quote {
	q := Quote{TosCost: newAddresses * AccountActivationFee}

	if resource.HasEnoughEnergy(energyCost) {
		q.EnergyConsumed = energyCost
		return q
	}

	available := resource.AvailableEnergy()
	shortage := energyCost - available
	q.EnergyConsumed = available
	q.TosCost += shortage * EnergyToTosRate
	return q
}
