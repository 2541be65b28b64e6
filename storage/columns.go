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

package storage

import "encoding/binary"

// TopoHeight indexes the DAG-order history every versioned column is
// keyed by.
type TopoHeight = uint64

// Column identifies one of the logical tables multiplexed over the
// single physical LevelDB instance, each given its own key prefix.
type Column string

const (
	ColumnCommon                   Column = "c"
	ColumnBlocks                   Column = "b"
	ColumnHashAtTopo                Column = "h"
	ColumnTopoByHash                Column = "t"
	ColumnVersionedBalances         Column = "B"
	ColumnBalancesPointer           Column = "p"
	ColumnVersionedNonces           Column = "N"
	ColumnNoncesPointer             Column = "n"
	ColumnVersionedContracts        Column = "C"
	ColumnContractsPointer          Column = "q"
	ColumnVersionedContractsData    Column = "D"
	ColumnContractsDataPointer      Column = "d"
	ColumnPrefixedRegistrations     Column = "R"
	ColumnVersionedEnergyResources  Column = "E"
	ColumnEnergyResourcesPointer    Column = "e"
)

// PrefixTopoheightLen is the byte width of an encoded TopoHeight
// prefix in a versioned key, matching the rocksdb column layout this
// store's key scheme is grounded on.
const PrefixTopoheightLen = 8

func encodeTopo(t TopoHeight) []byte {
	var b [PrefixTopoheightLen]byte
	binary.BigEndian.PutUint64(b[:], t)
	return b[:]
}

func decodeTopo(b []byte) TopoHeight {
	return binary.BigEndian.Uint64(b)
}

func encodeID(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return b[:]
}

// versionedKey concatenates topo ‖ entityKey, big-endian, so a
// prefix scan over just the topo bytes enumerates every entity
// touched at that height.
func versionedKey(topo TopoHeight, entityKey []byte) []byte {
	return append(encodeTopo(topo), entityKey...)
}
