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
	"bytes"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// memDB is a minimal in-memory Database used only by this package's
// tests, so versioned-store logic can be exercised without touching
// disk.
type memDB struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemDB() *memDB {
	return &memDB{data: make(map[string][]byte)}
}

func (m *memDB) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := append([]byte{}, value...)
	m.data[string(key)] = cp
	return nil
}

func (m *memDB) Get(key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *memDB) Has(key []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

func (m *memDB) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memDB) NewIterator(prefix []byte) iterator.Iterator {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return &memIterator{db: m, keys: keys, pos: -1}
}

func (m *memDB) NewBatch() Batch { return &memBatch{db: m} }

func (m *memDB) Close() error { return nil }

type memIterator struct {
	db   *memDB
	keys []string
	pos  int
}

func (it *memIterator) Next() bool {
	it.pos++
	return it.pos < len(it.keys)
}

func (it *memIterator) Key() []byte { return []byte(it.keys[it.pos]) }

func (it *memIterator) Value() []byte {
	it.db.mu.Lock()
	defer it.db.mu.Unlock()
	return it.db.data[it.keys[it.pos]]
}

func (it *memIterator) Release()                          {}
func (it *memIterator) Error() error                       { return nil }
func (it *memIterator) First() bool                        { it.pos = 0; return len(it.keys) > 0 }
func (it *memIterator) Last() bool                         { it.pos = len(it.keys) - 1; return it.pos >= 0 }
func (it *memIterator) Prev() bool                         { it.pos--; return it.pos >= 0 }
func (it *memIterator) Seek(key []byte) bool                { return false }
func (it *memIterator) SetReleaser(releaser util.Releaser) {}
func (it *memIterator) Valid() bool                        { return it.pos >= 0 && it.pos < len(it.keys) }

type memBatch struct {
	db      *memDB
	puts    map[string][]byte
	deletes map[string]bool
	order   []string
}

func (b *memBatch) Put(key, value []byte) error {
	if b.puts == nil {
		b.puts = make(map[string][]byte)
		b.deletes = make(map[string]bool)
	}
	k := string(key)
	delete(b.deletes, k)
	b.puts[k] = append([]byte{}, value...)
	b.order = append(b.order, k)
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	if b.deletes == nil {
		b.puts = make(map[string][]byte)
		b.deletes = make(map[string]bool)
	}
	k := string(key)
	delete(b.puts, k)
	b.deletes[k] = true
	b.order = append(b.order, k)
	return nil
}

func (b *memBatch) Write() error {
	for _, k := range b.order {
		if b.deletes[k] {
			_ = b.db.Delete([]byte(k))
			continue
		}
		if v, ok := b.puts[k]; ok {
			_ = b.db.Put([]byte(k), v)
		}
	}
	return nil
}

func (b *memBatch) ValueSize() int {
	n := 0
	for k, v := range b.puts {
		n += len(k) + len(v)
	}
	return n
}

func (b *memBatch) Reset() {
	b.puts = nil
	b.deletes = nil
	b.order = nil
}
