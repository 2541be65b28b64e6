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
	"errors"
	"sync"
)

// ErrCommitPointAlreadyOpen is returned by StartCommitPoint when a
// commit point is already in progress; only one may be open at a time.
var ErrCommitPointAlreadyOpen = errors.New("storage: commit point already open")

// ErrNoCommitPoint is returned by EndCommitPoint when none is open.
var ErrNoCommitPoint = errors.New("storage: no commit point open")

type overlayEntry struct {
	value   []byte
	deleted bool
}

// Store wraps a Database with commit-point/snapshot-overlay semantics:
// mutations between StartCommitPoint and EndCommitPoint land in an
// in-memory overlay that reads consult first, so a block can be
// applied speculatively and rolled back on verification failure
// without ever touching the base store.
type Store struct {
	mu      sync.RWMutex
	db      Database
	overlay map[string]overlayEntry // nil when no commit point is open
}

// NewStore wraps db with commit-point support.
func NewStore(db Database) *Store {
	return &Store{db: db}
}

// StartCommitPoint opens a snapshot overlay. Fails if one is already open.
func (s *Store) StartCommitPoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay != nil {
		return ErrCommitPointAlreadyOpen
	}
	s.overlay = make(map[string]overlayEntry)
	return nil
}

// EndCommitPoint closes the open overlay. When apply is true, every
// overlaid mutation is flushed to the base store as one batch;
// otherwise the overlay is discarded with no effect on the base store.
func (s *Store) EndCommitPoint(apply bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay == nil {
		return ErrNoCommitPoint
	}
	overlay := s.overlay
	s.overlay = nil

	if !apply {
		return nil
	}

	batch := s.db.NewBatch()
	for key, entry := range overlay {
		if entry.deleted {
			if err := batch.Delete([]byte(key)); err != nil {
				return err
			}
			continue
		}
		if err := batch.Put([]byte(key), entry.value); err != nil {
			return err
		}
	}
	return batch.Write()
}

// InCommitPoint reports whether a commit point is currently open.
func (s *Store) InCommitPoint() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlay != nil
}

func (s *Store) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay != nil {
		cp := append([]byte{}, value...)
		s.overlay[string(key)] = overlayEntry{value: cp}
		return nil
	}
	return s.db.Put(key, value)
}

func (s *Store) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay != nil {
		s.overlay[string(key)] = overlayEntry{deleted: true}
		return nil
	}
	return s.db.Delete(key)
}

func (s *Store) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.overlay != nil {
		if entry, ok := s.overlay[string(key)]; ok {
			if entry.deleted {
				return nil, ErrNotFound
			}
			return entry.value, nil
		}
	}
	return s.db.Get(key)
}

func (s *Store) Has(key []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.overlay != nil {
		if entry, ok := s.overlay[string(key)]; ok {
			return !entry.deleted, nil
		}
	}
	return s.db.Has(key)
}

// DeletePrefix removes every key (base store and, if open, overlay)
// starting with prefix. Used by the pruning operations, which operate
// on whole topoheight slices.
func (s *Store) DeletePrefix(prefix []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.db.NewIterator(prefix)
	defer it.Release()

	batch := s.db.NewBatch()
	for it.Next() {
		key := append([]byte{}, it.Key()...)
		if err := batch.Delete(key); err != nil {
			return err
		}
		if s.overlay != nil {
			s.overlay[string(key)] = overlayEntry{deleted: true}
		}
	}
	if err := it.Error(); err != nil {
		return err
	}
	if s.overlay != nil {
		for key := range s.overlay {
			if len(key) >= len(prefix) && key[:len(prefix)] == string(prefix) {
				s.overlay[key] = overlayEntry{deleted: true}
			}
		}
	}
	return batch.Write()
}

// Iterate visits every base-store key/value sharing prefix, applying
// any open overlay's pending puts/deletes on top. Iteration order
// follows the base store; overlay-only additions are not visited
// (none of this store's pruning/versioned-read paths need them: fresh
// writes are always read back by direct Get on a known pointer key).
func (s *Store) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it := s.db.NewIterator(prefix)
	defer it.Release()
	for it.Next() {
		key := it.Key()
		if s.overlay != nil {
			if entry, ok := s.overlay[string(key)]; ok {
				if entry.deleted {
					continue
				}
				if err := fn(key, entry.value); err != nil {
					return err
				}
				continue
			}
		}
		if err := fn(key, it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}
