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

import "errors"

var (
	// ErrInsufficientUnlockedTos is returned by Unfreeze when the
	// records past their unlock_topoheight cannot cover the requested
	// amount, even though the account's total frozen balance could.
	ErrInsufficientUnlockedTos = errors.New("energy: insufficient unlocked tos")

	// ErrInsufficientFrozenTos is returned by Unfreeze when the
	// account's total frozen balance cannot cover the requested amount
	// at all.
	ErrInsufficientFrozenTos = errors.New("energy: insufficient frozen tos")

	// ErrInsufficientEnergy is returned by ConsumeEnergy when cost
	// exceeds the account's available energy.
	ErrInsufficientEnergy = errors.New("energy: insufficient available energy")

	// ErrInvalidFreezeAmount is returned by Freeze when amount is zero.
	ErrInvalidFreezeAmount = errors.New("energy: freeze amount must be positive")
)
