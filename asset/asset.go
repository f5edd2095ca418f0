// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package asset - research asset records and their lifecycle
//
// an asset is created by minting and changes only by ownership
// transfer; the record in the Assets pool is canonical and the
// ownership package maintains the per-owner index as a view of it
//
// every mutation commits record, index and any balance grant in one
// transaction
package asset

import (
	"encoding/binary"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/constants"
	"github.com/devite-inc/devited/fault"
	"github.com/devite-inc/devited/identity"
	"github.com/devite-inc/devited/ledger"
	"github.com/devite-inc/devited/ownership"
	"github.com/devite-inc/devited/storage"
)

// counter key for asset id allocation
var assetCounterKey = []byte("asset")

// License - usage terms attached to an asset
type License struct {
	LicenseType         string `json:"licenseType"`
	CommercialUse       bool   `json:"commercialUse"`
	AttributionRequired bool   `json:"attributionRequired"`
}

// Metadata - descriptive fields for discovery
type Metadata struct {
	Keywords       []string `json:"keywords"`
	ResearchDomain string   `json:"researchDomain"`
	Institution    string   `json:"institution"`
	DOI            string   `json:"doi,omitempty"`
	PeerReviewed   bool     `json:"peerReviewed"`
}

// Asset - a stored research asset record
//
// only the Owner field is ever rewritten after minting
type Asset struct {
	Id           uint64       `json:"id"`
	Owner        string       `json:"owner"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Authors      []string     `json:"authors"`
	ResearchType ResearchType `json:"researchType"`
	ContentHash  string       `json:"contentHash"`
	License      License      `json:"license"`
	Metadata     Metadata     `json:"metadata"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// MintRequest - fields supplied by the minter
type MintRequest struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Authors      []string     `json:"authors"`
	ResearchType ResearchType `json:"researchType"`
	ContentHash  string       `json:"contentHash"`
	License      License      `json:"license"`
	Metadata     Metadata     `json:"metadata"`
}

// globals
var globalData struct {
	sync.RWMutex
	log *logger.L

	// set once during initialise
	initialised bool
}

// Initialise - setup the asset store
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("asset")
	globalData.log.Info("starting…")

	globalData.initialised = true
	return nil
}

// Finalise - shut down the asset store
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

func assetKey(assetId uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, assetId)
	return key
}

// Mint - create a research asset owned by the caller
//
// allocates the next monotonic id; the record, owner index entries,
// counter and mint reward commit in a single transaction so an error
// leaves no gap in the id sequence
func Mint(caller string, request MintRequest) (uint64, error) {

	if "" == caller {
		return 0, fault.MissingParameters
	}
	if !identity.IsRegistered(caller) {
		return 0, fault.NotRegistered
	}
	if "" == request.Title {
		return 0, fault.MissingParameters
	}
	if !request.ResearchType.IsValid() {
		return 0, fault.InvalidResearchType
	}

	trx := storage.NewTransaction()

	lastId, _ := storage.Pool.Counters.GetN(assetCounterKey)
	assetId := lastId + 1

	record := Asset{
		Id:           assetId,
		Owner:        caller,
		Title:        request.Title,
		Description:  request.Description,
		Authors:      request.Authors,
		ResearchType: request.ResearchType,
		ContentHash:  request.ContentHash,
		License:      request.License,
		Metadata:     request.Metadata,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if nil != err {
		trx.Abort()
		return 0, err
	}

	trx.PutN(storage.Pool.Counters, assetCounterKey, assetId)
	trx.Put(storage.Pool.Assets, assetKey(assetId), data)
	ownership.CreateAsset(trx, assetId, caller)
	ledger.Grant(trx, caller, constants.MintReward)

	err = trx.Commit()
	if nil != err {
		return 0, err
	}

	globalData.log.Infof("mint: %d %q by: %q", assetId, request.Title, caller)
	return assetId, nil
}

// Transfer - move an asset from the caller to another registered user
//
// the owner field and both sides of the owner index change in one
// transaction; a self transfer is permitted and re-appends the asset
// to the end of the caller's list
func Transfer(caller string, assetId uint64, to string) error {

	if "" == caller || "" == to {
		return fault.MissingParameters
	}

	// the ownership check must see the latest committed state, so
	// take the transaction lock first; a concurrent transfer of the
	// same asset then fails here with NotAssetOwner instead of
	// tripping the corruption check in the index update
	trx := storage.NewTransaction()

	record := Get(assetId)
	if nil == record {
		trx.Abort()
		return fault.AssetNotFound
	}
	if record.Owner != caller {
		trx.Abort()
		return fault.NotAssetOwner
	}
	if !identity.IsRegistered(to) {
		trx.Abort()
		return fault.RecipientNotRegistered
	}

	record.Owner = to
	data, err := json.Marshal(record)
	if nil != err {
		trx.Abort()
		return err
	}

	trx.Put(storage.Pool.Assets, assetKey(assetId), data)
	ownership.Transfer(trx, assetId, caller, to)

	err = trx.Commit()
	if nil != err {
		return err
	}

	globalData.log.Infof("transfer: %d  %q -> %q", assetId, caller, to)
	return nil
}

// Get - fetch an asset record, nil if no such id
func Get(assetId uint64) *Asset {
	data := storage.Pool.Assets.Get(assetKey(assetId))
	if nil == data {
		return nil
	}

	var record Asset
	err := json.Unmarshal(data, &record)
	if nil != err {
		logger.Panicf("asset: corrupt record: %d  error: %s", assetId, err)
	}
	return &record
}

// scan all asset records applying a filter
func scan(matches func(*Asset) bool) []Asset {
	assets := []Asset{}
	cursor := storage.Pool.Assets.NewFetchCursor()
	err := cursor.Map(func(key []byte, value []byte) error {
		var record Asset
		err := json.Unmarshal(value, &record)
		if nil != err {
			logger.Panicf("asset: corrupt record: %x  error: %s", key, err)
		}
		if matches(&record) {
			assets = append(assets, record)
		}
		return nil
	})
	logger.PanicIfError("asset.scan", err)
	return assets
}

// ByType - all assets of one research type in id order
func ByType(researchType ResearchType) []Asset {
	return scan(func(record *Asset) bool {
		return record.ResearchType == researchType
	})
}

// Search - case-insensitive substring match over title, description
// and keywords
func Search(keyword string) []Asset {
	needle := strings.ToLower(keyword)
	return scan(func(record *Asset) bool {
		if strings.Contains(strings.ToLower(record.Title), needle) {
			return true
		}
		if strings.Contains(strings.ToLower(record.Description), needle) {
			return true
		}
		for _, k := range record.Metadata.Keywords {
			if strings.Contains(strings.ToLower(k), needle) {
				return true
			}
		}
		return false
	})
}

// Count - total number of assets ever minted
//
// equals the last assigned id as ids are never reused
func Count() uint64 {
	n, _ := storage.Pool.Counters.GetN(assetCounterKey)
	return n
}
