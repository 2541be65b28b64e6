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

import (
	"encoding/binary"
	"sync"

	"github.com/tos-network/terminos/common"
)

// idCacheSize bounds the per-allocator reverse-index cache; interning
// is unbounded in the store itself, only the hot in-memory lookup is
// capped.
const idCacheSize = 4096

// idKind distinguishes the independent counters sharing the Common
// column (one Next<Kind>Id per interned namespace: accounts,
// contracts, assets, ...).
type idKind byte

const (
	idKindAccount idKind = iota
	idKindAsset
	idKindContract
)

func nextIDKey(kind idKind) []byte {
	return []byte{'N', byte(kind)}
}

func reverseIndexKey(kind idKind, hash []byte) []byte {
	return append([]byte{'R', byte(kind)}, hash...)
}

// IDAllocator interns opaque byte keys (account keys, asset/contract
// hashes) into compact, dense u64 ids, writing the reverse-index entry
// and the Next<Kind>Id counter through the Store: inside an open
// commit point both land in the overlay and are flushed in the same
// batch as the caller's other mutations; outside one they are two
// separate writes to the base database.
// A small in-memory LRU cache (the teacher's lruCache, ported
// verbatim as common.Cache) shields the hot path from a KV round trip
// on repeat lookups.
type IDAllocator struct {
	store *Store
	kind  idKind

	mu    sync.Mutex
	cache common.Cache
}

// NewIDAllocator builds an allocator for kind, backed by the Common
// column of store.
func NewIDAllocator(store *Store, kind idKind) *IDAllocator {
	cache, err := common.NewCache(common.LRUConfig{CacheSize: idCacheSize})
	if err != nil {
		// LRUConfig.newCache only fails on a non-positive size, which
		// idCacheSize never is.
		panic(err)
	}
	return &IDAllocator{store: store, kind: kind, cache: cache}
}

// GetOrCreate returns the id for key, minting and persisting a new one
// (Next<Kind>Id incremented, reverse-index entry written) on first
// sighting.
func (a *IDAllocator) GetOrCreate(key []byte) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cacheKey := common.NewHash(key)
	if id, ok := a.cache.Get(cacheKey); ok {
		return id.(uint64), nil
	}

	idxKey := colKey(ColumnCommon, reverseIndexKey(a.kind, key))
	if raw, err := a.store.Get(idxKey); err == nil {
		id := binary.BigEndian.Uint64(raw)
		a.cache.Add(cacheKey, id)
		return id, nil
	} else if err != ErrNotFound {
		return 0, err
	}

	next, err := a.peekNextID()
	if err != nil {
		return 0, err
	}

	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], next)
	if err := a.store.Put(idxKey, idBytes[:]); err != nil {
		return 0, err
	}
	if err := a.store.Put(colKey(ColumnCommon, nextIDKey(a.kind)), encodeID(next+1)); err != nil {
		return 0, err
	}

	a.cache.Add(cacheKey, next)
	logger.Debug("interned new id", "kind", a.kind, "id", next)
	return next, nil
}

func (a *IDAllocator) peekNextID() (uint64, error) {
	raw, err := a.store.Get(colKey(ColumnCommon, nextIDKey(a.kind)))
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}
