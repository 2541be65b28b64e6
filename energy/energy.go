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

// Package energy implements the TRON-style freeze/energy resource
// model: native coin is frozen for a fixed duration in exchange for a
// duration-weighted energy grant, which transfer-class transactions
// spend in lieu of a coin fee.
package energy

import (
	"github.com/tos-network/terminos/internal/serializer"
	"github.com/tos-network/terminos/internal/tlog"
)

var logger = tlog.NewModuleLogger(tlog.Energy)

// TopoHeight is the DAG-order height versioned records and freeze
// schedules are keyed by.
type TopoHeight = uint64

const secondsPerDay = 86400

// FreezeDuration is the closed set of lock periods a freeze can choose,
// each carrying a reward multiplier expressed as parts-per-ten to stay
// in integer arithmetic (1.0 -> 10, 1.1 -> 11, 1.2 -> 12).
type FreezeDuration uint8

const (
	Day3 FreezeDuration = iota
	Day7
	Day14
)

// multiplierTenths returns the reward multiplier scaled by 10 so that
// energy_gained = amount * multiplierTenths / 10 stays exact integer
// math with no floating point, per the fixed-point discipline used
// throughout terminos.
func (d FreezeDuration) multiplierTenths() uint64 {
	switch d {
	case Day3:
		return 10
	case Day7:
		return 11
	case Day14:
		return 12
	default:
		return 10
	}
}

// Days reports the lock length in whole days.
func (d FreezeDuration) Days() uint64 {
	switch d {
	case Day3:
		return 3
	case Day7:
		return 7
	case Day14:
		return 14
	default:
		return 3
	}
}

// Blocks is the lock length expressed in block-count units (days *
// 86400), matching the topoheight being a one-second cadence counter.
func (d FreezeDuration) Blocks() uint64 {
	return d.Days() * secondsPerDay
}

func (d FreezeDuration) Valid() bool {
	return d == Day3 || d == Day7 || d == Day14
}

func (d FreezeDuration) Write(w *serializer.Writer) {
	w.WriteU8(uint8(d))
}

func ReadFreezeDuration(r *serializer.Reader) (FreezeDuration, error) {
	v, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	d := FreezeDuration(v)
	if !d.Valid() {
		return 0, serializer.ErrInvalidValue
	}
	return d, nil
}

// energyForAmount applies the duration's multiplier with floor
// rounding, the single rounding rule the whole package relies on.
func energyForAmount(amount uint64, d FreezeDuration) uint64 {
	return amount * d.multiplierTenths() / 10
}

// FreezeRecord is one immutable freeze contribution: amount locked,
// the duration chosen, when it was frozen/unlocks, and the energy it
// is currently granting. Partial unfreezes shrink Amount and
// EnergyGained in place rather than splitting the record.
type FreezeRecord struct {
	Amount           uint64
	Duration         FreezeDuration
	FreezeTopoheight TopoHeight
	UnlockTopoheight TopoHeight
	EnergyGained     uint64
}

func newFreezeRecord(amount uint64, d FreezeDuration, freezeTopo TopoHeight) FreezeRecord {
	return FreezeRecord{
		Amount:           amount,
		Duration:         d,
		FreezeTopoheight: freezeTopo,
		UnlockTopoheight: freezeTopo + d.Blocks(),
		EnergyGained:     energyForAmount(amount, d),
	}
}

func (r FreezeRecord) Write(w *serializer.Writer) {
	w.WriteU64(r.Amount)
	r.Duration.Write(w)
	w.WriteU64(r.FreezeTopoheight)
	w.WriteU64(r.UnlockTopoheight)
	w.WriteU64(r.EnergyGained)
}

func ReadFreezeRecord(r *serializer.Reader) (FreezeRecord, error) {
	var rec FreezeRecord
	var err error
	if rec.Amount, err = r.ReadU64(); err != nil {
		return rec, err
	}
	if rec.Duration, err = ReadFreezeDuration(r); err != nil {
		return rec, err
	}
	if rec.FreezeTopoheight, err = r.ReadU64(); err != nil {
		return rec, err
	}
	if rec.UnlockTopoheight, err = r.ReadU64(); err != nil {
		return rec, err
	}
	if rec.EnergyGained, err = r.ReadU64(); err != nil {
		return rec, err
	}
	return rec, nil
}
