// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/ledger"
	"github.com/devite-inc/devited/storage"
)

const (
	databaseFileName = "ledger-test"
)

func removeFiles() {
	os.RemoveAll(databaseFileName + ".leveldb")
	os.RemoveAll("test.log")
}

func setup(t *testing.T) {
	removeFiles()

	_ = logger.Initialise(logger.Configuration{
		Directory: ".",
		File:      "test.log",
		Size:      50000,
		Count:     10,
	})

	err := storage.Initialise(databaseFileName, storage.ReadWrite)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
	err = ledger.Initialise()
	if nil != err {
		t.Fatalf("ledger initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	ledger.Finalise()
	storage.Finalise()
	logger.Finalise()
	removeFiles()
}

func TestGrantAndBalance(t *testing.T) {
	setup(t)
	defer teardown(t)

	// unknown identifiers have zero balance
	assert.Zero(t, ledger.BalanceOf("alice"), "phantom balance")

	trx := storage.NewTransaction()
	ledger.Grant(trx, "alice", 1000)
	err := trx.Commit()
	assert.NoError(t, err, "commit error")

	assert.Equal(t, uint64(1000), ledger.BalanceOf("alice"), "wrong balance")

	// grants accumulate
	trx = storage.NewTransaction()
	ledger.Grant(trx, "alice", 50)
	err = trx.Commit()
	assert.NoError(t, err, "commit error")

	assert.Equal(t, uint64(1050), ledger.BalanceOf("alice"), "grant not added")
}

func TestGrantAborted(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx := storage.NewTransaction()
	ledger.Grant(trx, "bob", 1000)
	trx.Abort()

	assert.Zero(t, ledger.BalanceOf("bob"), "aborted grant committed")
}

func TestTotal(t *testing.T) {
	setup(t)
	defer teardown(t)

	assert.Zero(t, ledger.Total(), "total not zero on empty store")

	trx := storage.NewTransaction()
	ledger.Grant(trx, "alice", 1000)
	ledger.Grant(trx, "bob", 1000)
	ledger.Grant(trx, "carol", 50)
	err := trx.Commit()
	assert.NoError(t, err, "commit error")

	assert.Equal(t, uint64(2050), ledger.Total(), "wrong total")
}
