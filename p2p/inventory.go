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

package p2p

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tos-network/terminos/common"
)

// InventoryTracker deduplicates NotifyInvRequest announcements per
// peer: a hash is only worth announcing, or worth requesting in
// response to an announcement, the first time it is seen.
type InventoryTracker struct {
	mu   sync.Mutex
	seen mapset.Set[common.Hash]
}

// NewInventoryTracker returns an empty InventoryTracker.
func NewInventoryTracker() *InventoryTracker {
	return &InventoryTracker{seen: mapset.NewSet[common.Hash]()}
}

// MarkSeen records hash as seen, returning true if it was newly added
// (i.e., this is the first time the tracker has observed it).
func (t *InventoryTracker) MarkSeen(hash common.Hash) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen.Add(hash)
}

// Has reports whether hash has already been seen.
func (t *InventoryTracker) Has(hash common.Hash) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen.Contains(hash)
}

// FilterUnseen returns the subset of hashes not yet marked seen,
// marking all of them seen as a side effect — the set a
// NotifyInvRequest should actually announce.
func (t *InventoryTracker) FilterUnseen(hashes []common.Hash) []common.Hash {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []common.Hash
	for _, h := range hashes {
		if t.seen.Add(h) {
			out = append(out, h)
		}
	}
	return out
}

// Reset clears the tracker, e.g. when a peer reconnects.
func (t *InventoryTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen.Clear()
}
