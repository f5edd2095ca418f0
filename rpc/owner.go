// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/ledger"
	"github.com/devite-inc/devited/ownership"
)

// Owner - ownership index RPC task
type Owner struct {
	log     *logger.L
	limiter *rate.Limiter
}

const (
	rateLimitOwner = 200
	rateBurstOwner = 100
)

func newOwner(log *logger.L) *Owner {
	return &Owner{
		log:     log,
		limiter: rate.NewLimiter(rateLimitOwner, rateBurstOwner),
	}
}

// OwnerAssetsArguments - arguments for an owner listing
type OwnerAssetsArguments struct {
	Owner string `json:"owner"`
}

// OwnerAssetsReply - asset ids in acquisition order plus the balance
type OwnerAssetsReply struct {
	AssetIds []uint64 `json:"assetIds"`
	Balance  uint64   `json:"balance"`
}

// Assets - everything an owner currently holds
func (o *Owner) Assets(arguments *OwnerAssetsArguments, reply *OwnerAssetsReply) error {

	if err := rateLimit(o.limiter); nil != err {
		return err
	}

	reply.AssetIds = ownership.ListFor(arguments.Owner)
	reply.Balance = ledger.BalanceOf(arguments.Owner)
	return nil
}

// OwnerOwnsArguments - arguments for a single ownership check
type OwnerOwnsArguments struct {
	Owner   string `json:"owner"`
	AssetId uint64 `json:"assetId,string"`
}

// OwnerOwnsReply - result of the check
type OwnerOwnsReply struct {
	Owns bool `json:"owns"`
}

// Owns - check an owner holds an asset
func (o *Owner) Owns(arguments *OwnerOwnsArguments, reply *OwnerOwnsReply) error {

	if err := rateLimit(o.limiter); nil != err {
		return err
	}

	reply.Owns = ownership.CurrentlyOwns(arguments.Owner, arguments.AssetId)
	return nil
}
