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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tos-network/terminos/internal/serializer"
)

func TestFreezeDurationMultipliersAndBlocks(t *testing.T) {
	require.Equal(t, uint64(10), Day3.multiplierTenths())
	require.Equal(t, uint64(11), Day7.multiplierTenths())
	require.Equal(t, uint64(12), Day14.multiplierTenths())

	require.Equal(t, uint64(3*secondsPerDay), Day3.Blocks())
	require.Equal(t, uint64(7*secondsPerDay), Day7.Blocks())
	require.Equal(t, uint64(14*secondsPerDay), Day14.Blocks())
}

// S1 from the scenario set: freeze 1000 for 7d at topo=100, then
// unfreeze 500 once unlocked.
func TestScenarioS1FreezeThenUnfreeze(t *testing.T) {
	e := New()
	gained, err := e.Freeze(1000, Day7, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(1100), gained)
	require.Equal(t, uint64(1000), e.FrozenTos)
	require.Equal(t, uint64(1100), e.TotalEnergy)

	unlockTopo := TopoHeight(100 + 7*secondsPerDay)
	removed, err := e.Unfreeze(500, unlockTopo)
	require.NoError(t, err)
	require.Equal(t, uint64(550), removed)
	require.Equal(t, uint64(500), e.FrozenTos)
	require.Equal(t, uint64(550), e.TotalEnergy)
}

// S2: three freezes at topo=1000, partial unfreeze at topo+14d,
// proportional earliest-first consumption.
func TestScenarioS2PartialUnfreezeProportionalEarliestFirst(t *testing.T) {
	e := New()
	_, err := e.Freeze(100, Day3, 1000)
	require.NoError(t, err)
	_, err = e.Freeze(200, Day7, 1000)
	require.NoError(t, err)
	_, err = e.Freeze(300, Day14, 1000)
	require.NoError(t, err)

	removed, err := e.Unfreeze(250, TopoHeight(1000+14*secondsPerDay))
	require.NoError(t, err)
	require.Equal(t, uint64(265), removed) // 100*1.0 + 150*1.1 = 100 + 165
	require.Equal(t, uint64(350), e.FrozenTos)
	require.Len(t, e.FreezeRecords, 2) // first record dropped, second partially consumed, third untouched
	require.Equal(t, uint64(50), e.FreezeRecords[0].Amount)
}

func TestUnfreezeBeforeUnlockFails(t *testing.T) {
	e := New()
	_, err := e.Freeze(1000, Day7, 1000)
	require.NoError(t, err)

	unlockTopo := TopoHeight(1000 + 7*secondsPerDay)
	_, err = e.Unfreeze(500, unlockTopo-1)
	require.ErrorIs(t, err, ErrInsufficientUnlockedTos)
}

func TestUnfreezeMoreThanFrozenFails(t *testing.T) {
	e := New()
	_, err := e.Freeze(1000, Day3, 1000)
	require.NoError(t, err)

	_, err = e.Unfreeze(2000, TopoHeight(1000+14*secondsPerDay))
	require.ErrorIs(t, err, ErrInsufficientFrozenTos)
}

func TestUnfreezeZeroIsNoOp(t *testing.T) {
	e := New()
	_, err := e.Freeze(1000, Day3, 1000)
	require.NoError(t, err)

	removed, err := e.Unfreeze(0, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(0), removed)
	require.Equal(t, uint64(1000), e.FrozenTos)
}

func TestFreezeZeroAmountFails(t *testing.T) {
	e := New()
	_, err := e.Freeze(0, Day3, 1000)
	require.ErrorIs(t, err, ErrInvalidFreezeAmount)
}

func TestConsumeEnergyAndReset(t *testing.T) {
	e := New()
	_, err := e.Freeze(1000, Day7, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(1100), e.AvailableEnergy())

	require.NoError(t, e.ConsumeEnergy(500))
	require.Equal(t, uint64(600), e.AvailableEnergy())
	require.Equal(t, uint64(500), e.UsedEnergy)

	require.ErrorIs(t, e.ConsumeEnergy(10_000), ErrInsufficientEnergy)

	e.ResetUsedEnergy(1100)
	require.Equal(t, uint64(1100), e.AvailableEnergy())
	require.Equal(t, uint64(0), e.UsedEnergy)
}

func TestGetUnlockableRecordsAndTos(t *testing.T) {
	e := New()
	topo := TopoHeight(1000)
	_, err := e.Freeze(1000, Day3, topo)
	require.NoError(t, err)
	_, err = e.Freeze(500, Day7, topo)
	require.NoError(t, err)
	_, err = e.Freeze(200, Day14, topo)
	require.NoError(t, err)

	require.Len(t, e.GetUnlockableRecords(topo+3*secondsPerDay), 1)
	require.Len(t, e.GetUnlockableRecords(topo+7*secondsPerDay), 2)
	require.Len(t, e.GetUnlockableRecords(topo+14*secondsPerDay), 3)

	require.Equal(t, uint64(1000), e.GetUnlockableTos(topo+3*secondsPerDay))
	require.Equal(t, uint64(1500), e.GetUnlockableTos(topo+7*secondsPerDay))
}

func TestGetFreezeRecordsByDuration(t *testing.T) {
	e := New()
	topo := TopoHeight(1000)
	_, _ = e.Freeze(1000, Day3, topo)
	_, _ = e.Freeze(500, Day7, topo)
	_, _ = e.Freeze(200, Day14, topo)
	_, _ = e.Freeze(300, Day7, topo)

	grouped := e.GetFreezeRecordsByDuration()
	require.Len(t, grouped[Day3], 1)
	require.Len(t, grouped[Day7], 2)
	require.Len(t, grouped[Day14], 1)
}

// Energy conservation property: frozen_tos == sum(record.amount) and
// total_energy == sum(record.energy_gained) after any sequence of
// valid freeze/unfreeze calls.
func TestEnergyConservationInvariant(t *testing.T) {
	e := New()
	topo := TopoHeight(0)
	_, err := e.Freeze(1000, Day3, topo)
	require.NoError(t, err)
	_, err = e.Freeze(2000, Day7, topo)
	require.NoError(t, err)
	_, err = e.Freeze(3000, Day14, topo)
	require.NoError(t, err)

	_, err = e.Unfreeze(1500, topo+14*secondsPerDay)
	require.NoError(t, err)

	var sumAmount, sumEnergy uint64
	for _, r := range e.FreezeRecords {
		sumAmount += r.Amount
		sumEnergy += r.EnergyGained
	}
	require.Equal(t, sumAmount, e.FrozenTos)
	require.Equal(t, sumEnergy, e.TotalEnergy)
}

func TestEnergyResourceSerializationRoundTrip(t *testing.T) {
	e := New()
	_, err := e.Freeze(1000, Day7, 1000)
	require.NoError(t, err)
	_, err = e.Freeze(500, Day14, 1000)
	require.NoError(t, err)

	w := serializer.NewWriter()
	e.Write(w)

	r := serializer.NewReader(w.Bytes())
	decoded, err := Read(r)
	require.NoError(t, err)

	require.Equal(t, e.TotalEnergy, decoded.TotalEnergy)
	require.Equal(t, e.FrozenTos, decoded.FrozenTos)
	require.Len(t, decoded.FreezeRecords, len(e.FreezeRecords))
}

func TestFreezeDurationSerializationRoundTrip(t *testing.T) {
	for _, d := range []FreezeDuration{Day3, Day7, Day14} {
		w := serializer.NewWriter()
		d.Write(w)

		r := serializer.NewReader(w.Bytes())
		decoded, err := ReadFreezeDuration(r)
		require.NoError(t, err)
		require.Equal(t, d, decoded)
	}
}

// S3 from the scenario set: fee calc for a 1024-byte, 1-transfer,
// 0-new-address transaction.
func TestScenarioS3FeeCalculation(t *testing.T) {
	var c EnergyFeeCalculator
	cost := c.CalculateEnergyCost(1024, 1, 0)
	require.Equal(t, EnergyPerKB+EnergyPerTransfer, cost)
}

func TestFeeRoutingConsumesEnergyFirstThenCoin(t *testing.T) {
	var c EnergyFeeCalculator
	e := New()
	_, err := e.Freeze(1000, Day7, 0)
	require.NoError(t, err)

	// Fully covered by energy.
	q := c.Route(500, 0, e)
	require.Equal(t, uint64(500), q.EnergyConsumed)
	require.Equal(t, uint64(0), q.TosCost)
	require.NoError(t, e.ConsumeEnergy(q.EnergyConsumed))

	// Remaining available energy is 600; request 900 forces a coin shortage.
	q2 := c.Route(900, 1, e)
	require.Equal(t, uint64(600), q2.EnergyConsumed)
	require.Equal(t, AccountActivationFee+300*EnergyToTosRate, q2.TosCost)
}
