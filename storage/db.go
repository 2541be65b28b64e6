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

// Package storage is terminos's versioned, topoheight-keyed store: a
// single LSM key space (goleveldb) holding a fixed set of logical
// columns, with history preserved per entity via prev-pointer chains
// and an atomic commit-point/overlay mechanism for block application.
package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/tos-network/terminos/internal/tlog"
)

var logger = tlog.NewModuleLogger(tlog.Storage)

// ErrNotFound is returned when a key has no value, mirroring
// leveldb.ErrNotFound so callers never need to import goleveldb
// directly.
var ErrNotFound = errors.ErrNotFound

// Database is the raw key/value engine every column is built on top
// of. It is intentionally narrow: columns add structure (prefixes,
// versioning, pointers) on top of this.
type Database interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error
	NewIterator(prefix []byte) iterator.Iterator
	NewBatch() Batch
	Close() error
}

// Batch groups writes for atomic application.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Write() error
	ValueSize() int
	Reset()
}

type levelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if absent) a goleveldb database at path.
func OpenLevelDB(path string, cacheSizeMB, numHandles int) (Database, error) {
	if cacheSizeMB < 16 {
		cacheSizeMB = 16
	}
	if numHandles < 16 {
		numHandles = 16
	}
	options := &opt.Options{
		OpenFilesCacheCapacity: numHandles,
		BlockCacheCapacity:     cacheSizeMB / 2 * opt.MiB,
		WriteBuffer:            cacheSizeMB / 4 * opt.MiB,
	}
	db, err := leveldb.OpenFile(path, options)
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		logger.Warn("leveldb corrupted, attempting recovery", "path", path)
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	return &levelDB{db: db}, nil
}

func (l *levelDB) Put(key, value []byte) error { return l.db.Put(key, value, nil) }

func (l *levelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (l *levelDB) Has(key []byte) (bool, error) { return l.db.Has(key, nil) }

func (l *levelDB) Delete(key []byte) error { return l.db.Delete(key, nil) }

func (l *levelDB) NewIterator(prefix []byte) iterator.Iterator {
	return l.db.NewIterator(util.BytesPrefix(prefix), nil)
}

func (l *levelDB) NewBatch() Batch { return &ldbBatch{db: l.db, b: new(leveldb.Batch)} }

func (l *levelDB) Close() error { return l.db.Close() }

type ldbBatch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

func (b *ldbBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(key) + len(value)
	return nil
}

func (b *ldbBatch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size += len(key)
	return nil
}

func (b *ldbBatch) Write() error { return b.db.Write(b.b, nil) }

func (b *ldbBatch) ValueSize() int { return b.size }

func (b *ldbBatch) Reset() {
	b.b.Reset()
	b.size = 0
}

// table scopes a Database to keys sharing a fixed prefix, the same
// pattern the retrieval pack's LevelDB wrapper uses to multiplex many
// logical tables over one physical database.
type table struct {
	db     Database
	prefix []byte
}

func newTable(db Database, prefix string) *table {
	return &table{db: db, prefix: []byte(prefix)}
}

func (t *table) key(k []byte) []byte {
	return append(append([]byte{}, t.prefix...), k...)
}

func (t *table) Put(key, value []byte) error { return t.db.Put(t.key(key), value) }
func (t *table) Get(key []byte) ([]byte, error) { return t.db.Get(t.key(key)) }
func (t *table) Has(key []byte) (bool, error)   { return t.db.Has(t.key(key)) }
func (t *table) Delete(key []byte) error        { return t.db.Delete(t.key(key)) }
func (t *table) NewIterator(prefix []byte) iterator.Iterator {
	return t.db.NewIterator(t.key(prefix))
}
func (t *table) NewBatch() Batch { return &tableBatch{batch: t.db.NewBatch(), prefix: t.prefix} }
func (t *table) Close() error    { return nil } // the underlying Database owns the lifetime

type tableBatch struct {
	batch  Batch
	prefix []byte
}

func (tb *tableBatch) Put(key, value []byte) error {
	return tb.batch.Put(append(append([]byte{}, tb.prefix...), key...), value)
}
func (tb *tableBatch) Delete(key []byte) error {
	return tb.batch.Delete(append(append([]byte{}, tb.prefix...), key...))
}
func (tb *tableBatch) Write() error  { return tb.batch.Write() }
func (tb *tableBatch) ValueSize() int { return tb.batch.ValueSize() }
func (tb *tableBatch) Reset()        { tb.batch.Reset() }
