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

import "github.com/tos-network/terminos/internal/serializer"

// EnergyResource is the per-account bundle of frozen coin and the
// energy it is currently granting. The zero value is a valid, empty
// resource.
type EnergyResource struct {
	TotalEnergy   uint64
	UsedEnergy    uint64
	FrozenTos     uint64
	FreezeRecords []FreezeRecord
}

// New returns an empty EnergyResource.
func New() *EnergyResource {
	return &EnergyResource{}
}

// AvailableEnergy is TotalEnergy - UsedEnergy.
func (e *EnergyResource) AvailableEnergy() uint64 {
	return e.TotalEnergy - e.UsedEnergy
}

// HasEnoughEnergy reports whether cost can be paid from available
// energy alone.
func (e *EnergyResource) HasEnoughEnergy(cost uint64) bool {
	return e.AvailableEnergy() >= cost
}

// Freeze locks amount of native coin for duration starting at topo,
// appending a new FreezeRecord and returning the energy it grants.
// amount must be positive; callers (tx builders) are expected to have
// already validated this, but Freeze still guards against a zero
// value reaching storage.
func (e *EnergyResource) Freeze(amount uint64, duration FreezeDuration, topo TopoHeight) (uint64, error) {
	if amount == 0 {
		return 0, ErrInvalidFreezeAmount
	}
	record := newFreezeRecord(amount, duration, topo)
	e.FreezeRecords = append(e.FreezeRecords, record)
	e.FrozenTos += record.Amount
	e.TotalEnergy += record.EnergyGained
	logger.Debug("froze tos for energy", "amount", amount, "duration", duration.Days(), "energyGained", record.EnergyGained)
	return record.EnergyGained, nil
}

// Unfreeze releases up to amount of native coin from records that have
// reached their unlock_topoheight, earliest-frozen first, reducing
// each consumed record's remaining Amount/EnergyGained proportionally.
// Records fully consumed are dropped from FreezeRecords. amount == 0
// is a no-op that returns 0, nil.
func (e *EnergyResource) Unfreeze(amount uint64, nowTopo TopoHeight) (uint64, error) {
	if amount == 0 {
		return 0, nil
	}
	if amount > e.FrozenTos {
		return 0, ErrInsufficientFrozenTos
	}

	var unlockedTotal uint64
	for _, r := range e.FreezeRecords {
		if nowTopo >= r.UnlockTopoheight {
			unlockedTotal += r.Amount
		}
	}
	if amount > unlockedTotal {
		return 0, ErrInsufficientUnlockedTos
	}

	remaining := amount
	var energyRemoved uint64
	out := e.FreezeRecords[:0:0]
	for _, r := range e.FreezeRecords {
		if remaining == 0 || nowTopo < r.UnlockTopoheight {
			out = append(out, r)
			continue
		}
		if r.Amount <= remaining {
			remaining -= r.Amount
			energyRemoved += r.EnergyGained
			continue // record fully consumed, dropped
		}
		chunk := remaining
		r.Amount -= chunk
		chunkEnergy := energyForAmount(chunk, r.Duration)
		energyRemoved += chunkEnergy
		r.EnergyGained -= chunkEnergy
		remaining = 0
		out = append(out, r)
	}
	e.FreezeRecords = out
	e.FrozenTos -= amount
	e.TotalEnergy -= energyRemoved
	logger.Debug("unfroze tos", "amount", amount, "energyRemoved", energyRemoved)
	return energyRemoved, nil
}

// ConsumeEnergy spends cost from available energy.
func (e *EnergyResource) ConsumeEnergy(cost uint64) error {
	if cost > e.AvailableEnergy() {
		return ErrInsufficientEnergy
	}
	e.UsedEnergy += cost
	return nil
}

// ResetUsedEnergy zeroes UsedEnergy; callers invoke this on the
// periodic reset cadence (once per day of topoheight, in practice).
func (e *EnergyResource) ResetUsedEnergy(topo TopoHeight) {
	e.UsedEnergy = 0
}

// GetUnlockableRecords returns the records whose unlock_topoheight has
// been reached by topo.
func (e *EnergyResource) GetUnlockableRecords(topo TopoHeight) []FreezeRecord {
	var out []FreezeRecord
	for _, r := range e.FreezeRecords {
		if topo >= r.UnlockTopoheight {
			out = append(out, r)
		}
	}
	return out
}

// GetUnlockableTos sums the Amount of every record unlockable at topo.
func (e *EnergyResource) GetUnlockableTos(topo TopoHeight) uint64 {
	var total uint64
	for _, r := range e.GetUnlockableRecords(topo) {
		total += r.Amount
	}
	return total
}

// GetFreezeRecordsByDuration groups the current records by their
// FreezeDuration, mirroring the reporting view terminos wallets show.
func (e *EnergyResource) GetFreezeRecordsByDuration() map[FreezeDuration][]FreezeRecord {
	out := make(map[FreezeDuration][]FreezeRecord)
	for _, r := range e.FreezeRecords {
		out[r.Duration] = append(out[r.Duration], r)
	}
	return out
}

func (e *EnergyResource) Write(w *serializer.Writer) {
	w.WriteU64(e.TotalEnergy)
	w.WriteU64(e.UsedEnergy)
	w.WriteU64(e.FrozenTos)
	w.WriteU32(uint32(len(e.FreezeRecords)))
	for _, r := range e.FreezeRecords {
		r.Write(w)
	}
}

func Read(r *serializer.Reader) (*EnergyResource, error) {
	e := &EnergyResource{}
	var err error
	if e.TotalEnergy, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if e.UsedEnergy, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if e.FrozenTos, err = r.ReadU64(); err != nil {
		return nil, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	e.FreezeRecords = make([]FreezeRecord, 0, n)
	for i := uint32(0); i < n; i++ {
		rec, err := ReadFreezeRecord(r)
		if err != nil {
			return nil, err
		}
		e.FreezeRecords = append(e.FreezeRecords, rec)
	}
	return e, nil
}
