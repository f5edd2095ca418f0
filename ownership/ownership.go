// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ownership - the per-owner asset index
//
// three pools form the index:
//
//	OwnerNextCount  owner ⧺ 0x00                 → next sequence number
//	OwnerList       owner ⧺ 0x00 ⧺ seq(BE)       → asset id(BE)
//	OwnerTxIndex    owner ⧺ 0x00 ⧺ asset id(BE)  → seq(BE)
//
// the list preserves acquisition order; the tx index allows a reverse
// lookup during transfer; both are maintained in the same transaction
// as the asset record so the index can never disagree with the records
//
// owner identifiers are variable length so a zero byte terminates the
// owner portion of every composite key
package ownership

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/fault"
	"github.com/devite-inc/devited/storage"
)

// byte sizes of key components
const (
	sequenceByteSize = 8
	assetIdByteSize  = 8
)

// globals
var globalData struct {
	sync.RWMutex
	log *logger.L

	// set once during initialise
	initialised bool
}

// Initialise - setup the ownership index
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("ownership")
	globalData.log.Info("starting…")

	globalData.initialised = true
	return nil
}

// Finalise - shut down the ownership index
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("finished")
	globalData.log.Flush()

	globalData.initialised = false
	return nil
}

// terminated owner portion of a composite key
func ownerKey(owner string) []byte {
	return append([]byte(owner), 0x00)
}

func listKey(owner string, sequence uint64) []byte {
	key := ownerKey(owner)
	buffer := make([]byte, sequenceByteSize)
	binary.BigEndian.PutUint64(buffer, sequence)
	return append(key, buffer...)
}

func txIndexKey(owner string, assetId uint64) []byte {
	key := ownerKey(owner)
	buffer := make([]byte, assetIdByteSize)
	binary.BigEndian.PutUint64(buffer, assetId)
	return append(key, buffer...)
}

// CreateAsset - stage index entries for a newly minted asset
//
// must be part of the same transaction that writes the asset record
func CreateAsset(trx storage.Transaction, assetId uint64, owner string) {
	sequence, _ := storage.Pool.OwnerNextCount.GetN(ownerKey(owner))

	trx.PutN(storage.Pool.OwnerNextCount, ownerKey(owner), sequence+1)
	trx.PutN(storage.Pool.OwnerList, listKey(owner, sequence), assetId)
	trx.PutN(storage.Pool.OwnerTxIndex, txIndexKey(owner, assetId), sequence)

	globalData.log.Debugf("create: owner: %q asset: %d seq: %d", owner, assetId, sequence)
}

// Transfer - stage index changes moving an asset between owners
//
// the caller has already verified the current ownership so a missing
// index entry here is database corruption
func Transfer(trx storage.Transaction, assetId uint64, from string, to string) {

	sequence, ok := storage.Pool.OwnerTxIndex.GetN(txIndexKey(from, assetId))
	if !ok {
		logger.Panicf("ownership.Transfer missing index entry owner: %q asset: %d", from, assetId)
	}

	trx.Delete(storage.Pool.OwnerList, listKey(from, sequence))
	trx.Delete(storage.Pool.OwnerTxIndex, txIndexKey(from, assetId))

	newSequence, _ := storage.Pool.OwnerNextCount.GetN(ownerKey(to))
	trx.PutN(storage.Pool.OwnerNextCount, ownerKey(to), newSequence+1)
	trx.PutN(storage.Pool.OwnerList, listKey(to, newSequence), assetId)
	trx.PutN(storage.Pool.OwnerTxIndex, txIndexKey(to, assetId), newSequence)

	globalData.log.Debugf("transfer: asset: %d  %q -> %q seq: %d", assetId, from, to, newSequence)
}

// CurrentlyOwns - check an owner holds an asset according to the index
func CurrentlyOwns(owner string, assetId uint64) bool {
	return storage.Pool.OwnerTxIndex.Has(txIndexKey(owner, assetId))
}

// past the last key of an owner's range
var errEndOfRange = errors.New("end of owner range")

// ListFor - asset ids held by an owner in acquisition order
func ListFor(owner string) []uint64 {
	prefix := ownerKey(owner)

	assetIds := []uint64{}
	cursor := storage.Pool.OwnerList.NewFetchCursor().Seek(prefix)
	err := cursor.Map(func(key []byte, value []byte) error {
		if len(key) < len(prefix) || !equalPrefix(key, prefix) {
			return errEndOfRange
		}
		if assetIdByteSize != len(value) {
			logger.Panicf("ownership: truncated list record for: %x", key)
		}
		assetIds = append(assetIds, binary.BigEndian.Uint64(value))
		return nil
	})
	if nil != err && errEndOfRange != err {
		logger.Panicf("ownership.ListFor error: %s", err)
	}
	return assetIds
}

func equalPrefix(key []byte, prefix []byte) bool {
	for i, b := range prefix {
		if key[i] != b {
			return false
		}
	}
	return true
}

// CountFor - number of assets an owner currently holds
func CountFor(owner string) uint64 {
	return uint64(len(ListFor(owner)))
}

// used by rebuild to extract the owner from a stored asset record
// without depending on the asset package
type assetOwner struct {
	Owner string `json:"owner"`
}

// split a composite index key into its owner and trailing uint64
func splitIndexKey(key []byte) (string, uint64) {
	n := len(key) - sequenceByteSize - 1
	if n < 0 || 0x00 != key[n] {
		logger.Panicf("ownership: invalid index key: %x", key)
	}
	return string(key[:n]), binary.BigEndian.Uint64(key[n+1:])
}

// Verify - cross check the index against the asset records
//
// checks both directions: every asset record must be indexed under
// its canonical owner, and every index entry must be backed by a
// record naming the same owner; returns the damaged asset ids
func Verify() []uint64 {

	// canonical owner per asset id
	owners := map[uint64]string{}
	cursor := storage.Pool.Assets.NewFetchCursor()
	err := cursor.Map(func(key []byte, value []byte) error {
		if assetIdByteSize != len(key) {
			logger.Panicf("ownership: invalid asset key: %x", key)
		}
		var record assetOwner
		err := json.Unmarshal(value, &record)
		if nil != err {
			logger.Panicf("ownership: corrupt asset record: %x  error: %s", key, err)
		}
		owners[binary.BigEndian.Uint64(key)] = record.Owner
		return nil
	})
	logger.PanicIfError("ownership.Verify", err)

	// collect then check, the cursor holds a pool read lock
	type indexEntry struct {
		owner   string
		assetId uint64
	}
	txEntries := []indexEntry{}
	cursor = storage.Pool.OwnerTxIndex.NewFetchCursor()
	err = cursor.Map(func(key []byte, value []byte) error {
		owner, assetId := splitIndexKey(key)
		txEntries = append(txEntries, indexEntry{owner: owner, assetId: assetId})
		return nil
	})
	logger.PanicIfError("ownership.Verify", err)

	listEntries := []indexEntry{}
	cursor = storage.Pool.OwnerList.NewFetchCursor()
	err = cursor.Map(func(key []byte, value []byte) error {
		owner, _ := splitIndexKey(key)
		if assetIdByteSize != len(value) {
			logger.Panicf("ownership: truncated list record for: %x", key)
		}
		listEntries = append(listEntries, indexEntry{
			owner:   owner,
			assetId: binary.BigEndian.Uint64(value),
		})
		return nil
	})
	logger.PanicIfError("ownership.Verify", err)

	damaged := map[uint64]struct{}{}
	txSeen := map[uint64]bool{}
	listSeen := map[uint64]bool{}

	check := func(entries []indexEntry, seen map[uint64]bool) {
		for _, e := range entries {
			owner, ok := owners[e.assetId]
			if !ok || owner != e.owner {
				// stale or duplicate entry under a non owner
				damaged[e.assetId] = struct{}{}
				continue
			}
			seen[e.assetId] = true
		}
	}
	check(txEntries, txSeen)
	check(listEntries, listSeen)

	for assetId := range owners {
		if !txSeen[assetId] || !listSeen[assetId] {
			damaged[assetId] = struct{}{}
		}
	}

	result := make([]uint64, 0, len(damaged))
	for assetId := range damaged {
		result = append(result, assetId)
	}
	sort.Slice(result, func(i int, j int) bool {
		return result[i] < result[j]
	})
	return result
}

// Rebuild - reconstruct the whole index from the asset records
//
// drops every index entry and recreates the three pools in a single
// transaction; assets are re-sequenced per owner in asset id order
func Rebuild() error {

	// take the transaction lock before scanning so no mint or
	// transfer can commit between the scan and the rewrite; a record
	// missed here would leave a stale next-count and a later mint
	// would overwrite a live list entry
	trx := storage.NewTransaction()

	// collect then stage, the cursor holds a pool read lock
	type entry struct {
		assetId uint64
		owner   string
	}
	entries := []entry{}

	cursor := storage.Pool.Assets.NewFetchCursor()
	err := cursor.Map(func(key []byte, value []byte) error {
		if assetIdByteSize != len(key) {
			logger.Panicf("ownership: invalid asset key: %x", key)
		}
		var record assetOwner
		err := json.Unmarshal(value, &record)
		if nil != err {
			logger.Panicf("ownership: corrupt asset record: %x  error: %s", key, err)
		}
		entries = append(entries, entry{
			assetId: binary.BigEndian.Uint64(key),
			owner:   record.Owner,
		})
		return nil
	})
	if nil != err {
		trx.Abort()
		return err
	}

	indexPools := []*storage.PoolHandle{
		storage.Pool.OwnerNextCount,
		storage.Pool.OwnerList,
		storage.Pool.OwnerTxIndex,
	}

	stale := make([][][]byte, len(indexPools))
	for i, pool := range indexPools {
		c := pool.NewFetchCursor()
		err = c.Map(func(key []byte, value []byte) error {
			k := make([]byte, len(key))
			copy(k, key)
			stale[i] = append(stale[i], k)
			return nil
		})
		if nil != err {
			trx.Abort()
			return err
		}
	}

	for i, pool := range indexPools {
		for _, key := range stale[i] {
			trx.Delete(pool, key)
		}
	}

	nextSequence := map[string]uint64{}
	for _, e := range entries {
		sequence := nextSequence[e.owner]
		nextSequence[e.owner] = sequence + 1

		trx.PutN(storage.Pool.OwnerList, listKey(e.owner, sequence), e.assetId)
		trx.PutN(storage.Pool.OwnerTxIndex, txIndexKey(e.owner, e.assetId), sequence)
	}
	for owner, next := range nextSequence {
		trx.PutN(storage.Pool.OwnerNextCount, ownerKey(owner), next)
	}

	err = trx.Commit()
	if nil != err {
		return err
	}

	globalData.log.Infof("rebuild: %d assets %d owners", len(entries), len(nextSequence))
	return nil
}
