// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/logger"
)

// number of bytes in an encoded uint64
const uint64ByteSize = 8

// Transaction - staged writes over any set of pools committed as one
// atomic LevelDB batch
//
// only one transaction can be open at a time; NewTransaction blocks
// until the previous one commits or aborts, which serialises all
// mutating operations
type Transaction interface {
	Put(*PoolHandle, []byte, []byte)
	PutN(*PoolHandle, []byte, uint64)
	Delete(*PoolHandle, []byte)
	Commit() error
	Abort()
}

type transaction struct {
	batch *leveldb.Batch
}

// single writer
var trxLock sync.Mutex

// NewTransaction - begin a set of staged writes
//
// the caller must finish with exactly one Commit or Abort
func NewTransaction() Transaction {
	trxLock.Lock()
	return &transaction{
		batch: new(leveldb.Batch),
	}
}

// Put - stage a key/value write on a pool
func (trx *transaction) Put(p *PoolHandle, key []byte, value []byte) {
	trx.batch.Put(p.prefixKey(key), value)
}

// PutN - stage an uint64 write encoded big endian
func (trx *transaction) PutN(p *PoolHandle, key []byte, value uint64) {
	buffer := make([]byte, uint64ByteSize)
	binary.BigEndian.PutUint64(buffer, value)
	trx.batch.Put(p.prefixKey(key), buffer)
}

// Delete - stage a key removal on a pool
func (trx *transaction) Delete(p *PoolHandle, key []byte) {
	trx.batch.Delete(p.prefixKey(key))
}

// Commit - atomically write all staged changes
func (trx *transaction) Commit() error {
	defer trxLock.Unlock()

	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		logger.Panic("transaction.Commit nil database")
	}
	return poolData.db.Write(trx.batch, nil)
}

// Abort - discard all staged changes
func (trx *transaction) Abort() {
	trx.batch.Reset()
	trxLock.Unlock()
}
