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

// VersionedColumn is a topoheight-versioned entity column: a pointer
// table (entityKey -> latest topo) plus a data table keyed by
// (topo ‖ entityKey) holding an optional prev-topo link and the
// caller's encoded value.
type VersionedColumn[V any] struct {
	store         *Store
	dataColumn    Column
	pointerColumn Column
	encode        func(V) []byte
	decode        func([]byte) (V, error)
}

// NewVersionedColumn builds a versioned column backed by store, using
// the given data/pointer column prefixes and value codec.
func NewVersionedColumn[V any](store *Store, dataColumn, pointerColumn Column, encode func(V) []byte, decode func([]byte) (V, error)) *VersionedColumn[V] {
	return &VersionedColumn[V]{store: store, dataColumn: dataColumn, pointerColumn: pointerColumn, encode: encode, decode: decode}
}

func colKey(col Column, suffix []byte) []byte {
	return append([]byte(col), suffix...)
}

func (vc *VersionedColumn[V]) pointerKey(entityKey []byte) []byte {
	return colKey(vc.pointerColumn, entityKey)
}

func (vc *VersionedColumn[V]) dataKey(topo TopoHeight, entityKey []byte) []byte {
	return colKey(vc.dataColumn, versionedKey(topo, entityKey))
}

// wrapped payload: [hasPrev:1][prevTopo:8 if hasPrev][value...]
func wrapValue(prevTopo *TopoHeight, payload []byte) []byte {
	if prevTopo == nil {
		return append([]byte{0}, payload...)
	}
	out := make([]byte, 0, 1+PrefixTopoheightLen+len(payload))
	out = append(out, 1)
	out = append(out, encodeTopo(*prevTopo)...)
	out = append(out, payload...)
	return out
}

func unwrapValue(raw []byte) (prevTopo *TopoHeight, payload []byte) {
	if len(raw) == 0 || raw[0] == 0 {
		return nil, raw[1:]
	}
	t := decodeTopo(raw[1 : 1+PrefixTopoheightLen])
	return &t, raw[1+PrefixTopoheightLen:]
}

func (vc *VersionedColumn[V]) getPointer(entityKey []byte) (TopoHeight, bool, error) {
	raw, err := vc.store.Get(vc.pointerKey(entityKey))
	if err == ErrNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return decodeTopo(raw), true, nil
}

// WriteAt records value for entityKey at topo, chaining onto whatever
// the entity's current latest version is, then advances the pointer
// to topo. Writing at the same (topo, entityKey) overwrites in place.
func (vc *VersionedColumn[V]) WriteAt(entityKey []byte, topo TopoHeight, value V) error {
	current, ok, err := vc.getPointer(entityKey)
	if err != nil {
		return err
	}
	var prev *TopoHeight
	if ok && current != topo {
		c := current
		prev = &c
	}
	wrapped := wrapValue(prev, vc.encode(value))
	if err := vc.store.Put(vc.dataKey(topo, entityKey), wrapped); err != nil {
		return err
	}
	return vc.store.Put(vc.pointerKey(entityKey), encodeTopo(topo))
}

// ErrChainBelowHorizon is returned by ReadAt when the prev-topo chain
// for an entity terminates (pruned) before reaching a version at or
// below the requested topoheight.
var ErrChainBelowHorizon = errNotFoundChain{}

type errNotFoundChain struct{}

func (errNotFoundChain) Error() string { return "storage: versioned chain pruned below requested topoheight" }

// ReadAt follows the pointer for entityKey and walks the prev-topo
// chain until it finds a snapshot at topo <= at. Returns found=false
// (no error) if the entity has no version at or below at but the
// chain is intact; it returns ErrChainBelowHorizon if the chain ends
// (pruned) before such a version is reached.
func (vc *VersionedColumn[V]) ReadAt(entityKey []byte, at TopoHeight) (value V, found bool, err error) {
	cur, ok, err := vc.getPointer(entityKey)
	if err != nil || !ok {
		return value, false, err
	}

	for {
		raw, err := vc.store.Get(vc.dataKey(cur, entityKey))
		if err == ErrNotFound {
			return value, false, ErrChainBelowHorizon
		}
		if err != nil {
			return value, false, err
		}
		prev, payload := unwrapValue(raw)
		if cur <= at {
			v, err := vc.decode(payload)
			return v, true, err
		}
		if prev == nil {
			return value, false, nil
		}
		cur = *prev
	}
}

// DeleteAt removes every entity's version recorded exactly at topo,
// leaving pointers untouched (callers use this to unwind a single
// speculative write within an aborted commit point).
func (vc *VersionedColumn[V]) DeleteAt(topo TopoHeight) error {
	return vc.store.DeletePrefix(colKey(vc.dataColumn, encodeTopo(topo)))
}

// DeleteAbove removes every version whose topo is strictly greater
// than keepAt, walking each entity's pointer back down to the newest
// surviving version (or removing the pointer entirely if none
// survive), so no pointer is ever left dangling.
func (vc *VersionedColumn[V]) DeleteAbove(keepAt TopoHeight) error {
	type affected struct {
		entityKey []byte
		latest    TopoHeight
	}
	var toFix []affected
	err := vc.store.Iterate([]byte(vc.pointerColumn), func(key, value []byte) error {
		entityKey := append([]byte{}, key[len(vc.pointerColumn):]...)
		latest := decodeTopo(value)
		if latest > keepAt {
			toFix = append(toFix, affected{entityKey: entityKey, latest: latest})
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, a := range toFix {
		cur := a.latest
		var survivor *TopoHeight
		for {
			raw, err := vc.store.Get(vc.dataKey(cur, a.entityKey))
			if err == ErrNotFound {
				break
			}
			if err != nil {
				return err
			}
			prev, _ := unwrapValue(raw)
			if err := vc.store.Delete(vc.dataKey(cur, a.entityKey)); err != nil {
				return err
			}
			if prev == nil {
				break
			}
			if *prev <= keepAt {
				s := *prev
				survivor = &s
				break
			}
			cur = *prev
		}

		if survivor == nil {
			if err := vc.store.Delete(vc.pointerKey(a.entityKey)); err != nil {
				return err
			}
			continue
		}
		if err := vc.store.Put(vc.pointerKey(a.entityKey), encodeTopo(*survivor)); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBelow removes versions strictly below cutAt. When keepLast is
// true, the single newest surviving version below cutAt for each
// entity is preserved (so ReadAt still resolves for any topo >= that
// version); when false, every version below cutAt is removed
// unconditionally.
func (vc *VersionedColumn[V]) DeleteBelow(cutAt TopoHeight, keepLast bool) error {
	var entityKeys [][]byte
	err := vc.store.Iterate([]byte(vc.pointerColumn), func(key, _ []byte) error {
		entityKeys = append(entityKeys, append([]byte{}, key[len(vc.pointerColumn):]...))
		return nil
	})
	if err != nil {
		return err
	}

	for _, entityKey := range entityKeys {
		latest, ok, err := vc.getPointer(entityKey)
		if err != nil || !ok {
			continue
		}

		var chain []TopoHeight
		cur := latest
		for {
			raw, err := vc.store.Get(vc.dataKey(cur, entityKey))
			if err == ErrNotFound {
				break
			}
			if err != nil {
				return err
			}
			chain = append(chain, cur)
			prev, _ := unwrapValue(raw)
			if prev == nil {
				break
			}
			cur = *prev
		}

		kept := false
		for _, topo := range chain {
			if topo >= cutAt {
				continue
			}
			if keepLast && !kept {
				kept = true
				continue // preserve the newest sub-cutAt version
			}
			if err := vc.store.Delete(vc.dataKey(topo, entityKey)); err != nil {
				return err
			}
		}
	}
	return nil
}
