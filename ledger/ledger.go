// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the governance token balance ledger
//
// balances are created implicitly (zero for unknown identifiers) or by
// grants; no operation ever decreases a balance
package ledger

import (
	"encoding/binary"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/fault"
	"github.com/devite-inc/devited/storage"
)

// globals
var globalData struct {
	sync.RWMutex
	log *logger.L

	// set once during initialise
	initialised bool
}

// Initialise - setup the balance ledger
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("ledger")
	globalData.log.Info("starting…")

	globalData.initialised = true
	return nil
}

// Finalise - shut down the balance ledger
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

// Grant - stage an additive balance increment on a transaction
//
// internal use only: called by registration and minting, never exposed
// for arbitrary credit
func Grant(trx storage.Transaction, id string, amount uint64) {
	current, _ := storage.Pool.Balances.GetN([]byte(id))
	trx.PutN(storage.Pool.Balances, []byte(id), current+amount)

	globalData.log.Debugf("grant: %q %d -> %d", id, amount, current+amount)
}

// BalanceOf - current balance for an identifier
//
// zero for unknown identifiers, absence is not an error
func BalanceOf(id string) uint64 {
	n, _ := storage.Pool.Balances.GetN([]byte(id))
	return n
}

// Total - sum over all balance records
//
// used by the quorum computation
func Total() uint64 {
	total := uint64(0)
	cursor := storage.Pool.Balances.NewFetchCursor()
	err := cursor.Map(func(key []byte, value []byte) error {
		if 8 != len(value) {
			logger.Panicf("ledger: truncated balance record for: %q", key)
		}
		total += binary.BigEndian.Uint64(value)
		return nil
	})
	logger.PanicIfError("ledger.Total", err)
	return total
}
