// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package asset_test

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/asset"
	"github.com/devite-inc/devited/constants"
	"github.com/devite-inc/devited/fault"
	"github.com/devite-inc/devited/identity"
	"github.com/devite-inc/devited/ledger"
	"github.com/devite-inc/devited/ownership"
	"github.com/devite-inc/devited/provision"
	"github.com/devite-inc/devited/storage"
)

const (
	databaseFileName = "asset-test"
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
	for name, initialise := range map[string]func() error{
		"ledger":    ledger.Initialise,
		"ownership": ownership.Initialise,
		"asset":     asset.Initialise,
	} {
		err = initialise()
		if nil != err {
			t.Fatalf("%s initialise error: %s", name, err)
		}
	}
	err = identity.Initialise(provision.Stub{})
	if nil != err {
		t.Fatalf("identity initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	identity.Finalise()
	asset.Finalise()
	ownership.Finalise()
	ledger.Finalise()
	storage.Finalise()
	logger.Finalise()
	removeFiles()
}

func register(t *testing.T, id string) {
	_, err := identity.Register(context.Background(), id, identity.Request{Username: id})
	if nil != err {
		t.Fatalf("register error: %s", err)
	}
}

func paperRequest(title string) asset.MintRequest {
	return asset.MintRequest{
		Title:        title,
		Description:  "a study of distributed ledgers",
		Authors:      []string{"A. Researcher"},
		ResearchType: asset.Paper,
		ContentHash:  asset.NewFingerprint([]byte(title)),
		License: asset.License{
			LicenseType:         "CC-BY-4.0",
			CommercialUse:       true,
			AttributionRequired: true,
		},
		Metadata: asset.Metadata{
			Keywords:       []string{"ledger", "consensus"},
			ResearchDomain: "computer science",
			Institution:    "Example University",
			PeerReviewed:   true,
		},
	}
}

func TestMint(t *testing.T) {
	setup(t)
	defer teardown(t)

	register(t, "alice")

	balanceBefore := ledger.BalanceOf("alice")

	assetId, err := asset.Mint("alice", paperRequest("Byzantine Agreement"))
	assert.NoError(t, err, "mint error")
	assert.Equal(t, uint64(1), assetId, "first id not 1")

	record := asset.Get(assetId)
	assert.NotNil(t, record, "record not stored")
	assert.Equal(t, "alice", record.Owner, "wrong owner")
	assert.Equal(t, "Byzantine Agreement", record.Title, "wrong title")
	assert.Equal(t, asset.Paper, record.ResearchType, "wrong research type")

	// index, counter and reward all committed with the record
	assert.Equal(t, []uint64{1}, ownership.ListFor("alice"), "index not updated")
	assert.Equal(t, uint64(1), asset.Count(), "wrong count")
	assert.Equal(t, balanceBefore+constants.MintReward, ledger.BalanceOf("alice"), "reward not granted")

	// ids are monotonic
	assetId, err = asset.Mint("alice", paperRequest("Second Paper"))
	assert.NoError(t, err, "mint error")
	assert.Equal(t, uint64(2), assetId, "second id not 2")
}

func TestMintValidation(t *testing.T) {
	setup(t)
	defer teardown(t)

	register(t, "alice")

	_, err := asset.Mint("mallory", paperRequest("x"))
	assert.Equal(t, fault.NotRegistered, err, "unregistered minter accepted")

	request := paperRequest("x")
	request.Title = ""
	_, err = asset.Mint("alice", request)
	assert.Equal(t, fault.MissingParameters, err, "empty title accepted")

	request = paperRequest("x")
	request.ResearchType = asset.ResearchType(0)
	_, err = asset.Mint("alice", request)
	assert.Equal(t, fault.InvalidResearchType, err, "zero research type accepted")

	// failed mints leave no gap
	assetId, err := asset.Mint("alice", paperRequest("real"))
	assert.NoError(t, err, "mint error")
	assert.Equal(t, uint64(1), assetId, "gap in id sequence")
}

func TestTransfer(t *testing.T) {
	setup(t)
	defer teardown(t)

	register(t, "alice")
	register(t, "bob")

	assetId, err := asset.Mint("alice", paperRequest("Transferable"))
	assert.NoError(t, err, "mint error")

	err = asset.Transfer("alice", assetId, "bob")
	assert.NoError(t, err, "transfer error")

	// record and both index sides agree
	record := asset.Get(assetId)
	assert.Equal(t, "bob", record.Owner, "owner field not updated")
	assert.Empty(t, ownership.ListFor("alice"), "alice still indexed")
	assert.Equal(t, []uint64{assetId}, ownership.ListFor("bob"), "bob not indexed")
	assert.True(t, ownership.CurrentlyOwns("bob", assetId), "bob not owning")

	// no reward for transfers
	assert.Equal(t, constants.InitialTokenGrant+constants.MintReward, ledger.BalanceOf("alice"), "alice balance changed")
	assert.Equal(t, constants.InitialTokenGrant, ledger.BalanceOf("bob"), "bob balance changed")
}

func TestTransferValidation(t *testing.T) {
	setup(t)
	defer teardown(t)

	register(t, "alice")
	register(t, "bob")

	assetId, err := asset.Mint("alice", paperRequest("Guarded"))
	assert.NoError(t, err, "mint error")

	err = asset.Transfer("alice", 999, "bob")
	assert.Equal(t, fault.AssetNotFound, err, "missing asset accepted")

	err = asset.Transfer("bob", assetId, "alice")
	assert.Equal(t, fault.NotAssetOwner, err, "non-owner transfer accepted")

	err = asset.Transfer("alice", assetId, "mallory")
	assert.Equal(t, fault.RecipientNotRegistered, err, "unregistered recipient accepted")

	// nothing was committed by the failed attempts
	assert.Equal(t, "alice", asset.Get(assetId).Owner, "owner changed by failed transfer")
	assert.Equal(t, []uint64{assetId}, ownership.ListFor("alice"), "index changed by failed transfer")
}

// racing transfers of the same asset: exactly one wins, the loser
// gets NotAssetOwner once the winner's commit is visible
func TestTransferConcurrent(t *testing.T) {
	setup(t)
	defer teardown(t)

	register(t, "alice")
	register(t, "bob")
	register(t, "carol")

	for i := 0; i < 50; i += 1 {
		assetId, err := asset.Mint("alice", paperRequest("Contested"))
		assert.NoError(t, err, "mint error")

		results := make(chan error, 2)
		var wg sync.WaitGroup
		for _, to := range []string{"bob", "carol"} {
			wg.Add(1)
			go func(to string) {
				defer wg.Done()
				results <- asset.Transfer("alice", assetId, to)
			}(to)
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			switch err {
			case nil:
				succeeded += 1
			case fault.NotAssetOwner:
			default:
				t.Fatalf("unexpected transfer error: %s", err)
			}
		}
		assert.Equal(t, 1, succeeded, "wrong number of winning transfers")

		// record and index agree on the single new owner
		owner := asset.Get(assetId).Owner
		assert.Contains(t, []string{"bob", "carol"}, owner, "wrong final owner")
		assert.True(t, ownership.CurrentlyOwns(owner, assetId), "winner not indexed")
		assert.Empty(t, ownership.ListFor("alice"), "alice still indexed")
	}
}

func TestQueries(t *testing.T) {
	setup(t)
	defer teardown(t)

	register(t, "alice")

	request := paperRequest("Ledger Survey")
	_, err := asset.Mint("alice", request)
	assert.NoError(t, err, "mint error")

	request = paperRequest("Weather Dataset 2025")
	request.ResearchType = asset.Dataset
	request.Metadata.Keywords = []string{"climate", "precipitation"}
	_, err = asset.Mint("alice", request)
	assert.NoError(t, err, "mint error")

	papers := asset.ByType(asset.Paper)
	assert.Len(t, papers, 1, "wrong paper count")
	assert.Equal(t, "Ledger Survey", papers[0].Title, "wrong paper")

	datasets := asset.ByType(asset.Dataset)
	assert.Len(t, datasets, 1, "wrong dataset count")

	assert.Empty(t, asset.ByType(asset.Review), "unexpected reviews")

	// case-insensitive over title, description and keywords
	assert.Len(t, asset.Search("LEDGER"), 2, "title+description search failed")
	assert.Len(t, asset.Search("climate"), 1, "keyword search failed")
	assert.Empty(t, asset.Search("astronomy"), "false positive search")
}

func TestResearchTypeMarshalling(t *testing.T) {
	data, err := json.Marshal(asset.Experiment)
	assert.NoError(t, err, "marshal error")
	assert.Equal(t, `"experiment"`, string(data), "wrong tag")

	var researchType asset.ResearchType
	err = json.Unmarshal([]byte(`"dataset"`), &researchType)
	assert.NoError(t, err, "unmarshal error")
	assert.Equal(t, asset.Dataset, researchType, "wrong value")

	err = json.Unmarshal([]byte(`"sculpture"`), &researchType)
	assert.Equal(t, fault.InvalidResearchType, err, "invalid tag accepted")

	assert.False(t, asset.ResearchType(0).IsValid(), "zero valid")
	assert.True(t, asset.Review.IsValid(), "review invalid")
}

func TestFingerprint(t *testing.T) {
	fingerprint := asset.NewFingerprint([]byte("content"))
	assert.Equal(t, 130, len(fingerprint), "wrong length")
	assert.Equal(t, "01", fingerprint[0:2], "wrong version prefix")

	// deterministic
	assert.Equal(t, fingerprint, asset.NewFingerprint([]byte("content")), "not deterministic")
	assert.NotEqual(t, fingerprint, asset.NewFingerprint([]byte("other")), "collision")
}
