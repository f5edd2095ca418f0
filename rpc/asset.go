// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/asset"
	"github.com/devite-inc/devited/fault"
)

// Asset - research asset RPC task
type Asset struct {
	log     *logger.L
	limiter *rate.Limiter
}

const (
	rateLimitAsset = 200
	rateBurstAsset = 100

	maximumAssetList = 100
)

func newAsset(log *logger.L) *Asset {
	return &Asset{
		log:     log,
		limiter: rate.NewLimiter(rateLimitAsset, rateBurstAsset),
	}
}

// AssetMintArguments - arguments for minting
type AssetMintArguments struct {
	Caller       string             `json:"caller"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Authors      []string           `json:"authors"`
	ResearchType asset.ResearchType `json:"researchType"`
	ContentHash  string             `json:"contentHash"`
	License      asset.License      `json:"license"`
	Metadata     asset.Metadata     `json:"metadata"`
}

// AssetMintReply - the allocated asset id
type AssetMintReply struct {
	AssetId uint64 `json:"assetId,string"`
}

// Mint - create a research asset owned by the caller
func (a *Asset) Mint(arguments *AssetMintArguments, reply *AssetMintReply) error {

	if err := rateLimit(a.limiter); nil != err {
		return err
	}

	a.log.Infof("Asset.Mint: %q by: %q", arguments.Title, arguments.Caller)

	assetId, err := asset.Mint(arguments.Caller, asset.MintRequest{
		Title:        arguments.Title,
		Description:  arguments.Description,
		Authors:      arguments.Authors,
		ResearchType: arguments.ResearchType,
		ContentHash:  arguments.ContentHash,
		License:      arguments.License,
		Metadata:     arguments.Metadata,
	})
	if nil != err {
		return err
	}

	reply.AssetId = assetId
	return nil
}

// AssetTransferArguments - arguments for an ownership transfer
type AssetTransferArguments struct {
	Caller  string `json:"caller"`
	AssetId uint64 `json:"assetId,string"`
	To      string `json:"to"`
}

// AssetTransferReply - the confirmed new owner
type AssetTransferReply struct {
	AssetId uint64 `json:"assetId,string"`
	Owner   string `json:"owner"`
}

// Transfer - move an asset from the caller to another registered user
func (a *Asset) Transfer(arguments *AssetTransferArguments, reply *AssetTransferReply) error {

	if err := rateLimit(a.limiter); nil != err {
		return err
	}

	a.log.Infof("Asset.Transfer: %d  %q -> %q", arguments.AssetId, arguments.Caller, arguments.To)

	err := asset.Transfer(arguments.Caller, arguments.AssetId, arguments.To)
	if nil != err {
		return err
	}

	reply.AssetId = arguments.AssetId
	reply.Owner = arguments.To
	return nil
}

// AssetGetArguments - arguments for an asset lookup
type AssetGetArguments struct {
	AssetId uint64 `json:"assetId,string"`
}

// AssetGetReply - the stored asset record
type AssetGetReply struct {
	Asset asset.Asset `json:"asset"`
}

// Get - fetch a stored asset record
func (a *Asset) Get(arguments *AssetGetArguments, reply *AssetGetReply) error {

	if err := rateLimit(a.limiter); nil != err {
		return err
	}

	record := asset.Get(arguments.AssetId)
	if nil == record {
		return fault.AssetNotFound
	}

	reply.Asset = *record
	return nil
}

// AssetSearchArguments - arguments for a keyword search
type AssetSearchArguments struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// AssetSearchReply - matching asset records
type AssetSearchReply struct {
	Assets []asset.Asset `json:"assets"`
}

// Search - case-insensitive keyword search over stored assets
func (a *Asset) Search(arguments *AssetSearchArguments, reply *AssetSearchReply) error {

	if err := rateLimitN(a.limiter, arguments.Count, maximumAssetList); nil != err {
		return err
	}

	assets := asset.Search(arguments.Keyword)
	if len(assets) > arguments.Count {
		assets = assets[:arguments.Count]
	}

	reply.Assets = assets
	return nil
}

// AssetByTypeArguments - arguments for a research type listing
type AssetByTypeArguments struct {
	ResearchType asset.ResearchType `json:"researchType"`
	Count        int                `json:"count"`
}

// AssetByTypeReply - asset records of the requested type
type AssetByTypeReply struct {
	Assets []asset.Asset `json:"assets"`
}

// ByType - all assets of one research type
func (a *Asset) ByType(arguments *AssetByTypeArguments, reply *AssetByTypeReply) error {

	if err := rateLimitN(a.limiter, arguments.Count, maximumAssetList); nil != err {
		return err
	}

	if !arguments.ResearchType.IsValid() {
		return fault.InvalidResearchType
	}

	assets := asset.ByType(arguments.ResearchType)
	if len(assets) > arguments.Count {
		assets = assets[:arguments.Count]
	}

	reply.Assets = assets
	return nil
}

// AssetCountArguments - placeholder for a count request
type AssetCountArguments struct {
}

// AssetCountReply - number of assets ever minted
type AssetCountReply struct {
	Count uint64 `json:"count,string"`
}

// Count - total number of minted assets
func (a *Asset) Count(arguments *AssetCountArguments, reply *AssetCountReply) error {

	if err := rateLimit(a.limiter); nil != err {
		return err
	}

	reply.Count = asset.Count()
	return nil
}
