// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/asset"
	"github.com/devite-inc/devited/counter"
	"github.com/devite-inc/devited/governance"
	"github.com/devite-inc/devited/identity"
	"github.com/devite-inc/devited/ledger"
)

// Node - daemon information RPC task
type Node struct {
	log     *logger.L
	limiter *rate.Limiter
	start   time.Time
	version string
	counter *counter.Counter
}

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

func newNode(log *logger.L, start time.Time, version string, connections *counter.Counter) *Node {
	return &Node{
		log:     log,
		limiter: rate.NewLimiter(rateLimitNode, rateBurstNode),
		start:   start,
		version: version,
		counter: connections,
	}
}

// NodeInfoArguments - empty arguments for info request
type NodeInfoArguments struct{}

// NodeInfoReply - daemon and registry statistics
type NodeInfoReply struct {
	Version         string `json:"version"`
	Uptime          string `json:"uptime"`
	Connections     uint64 `json:"connections"`
	Users           uint64 `json:"users"`
	Assets          uint64 `json:"assets"`
	ActiveProposals uint64 `json:"activeProposals"`
	TotalBalance    uint64 `json:"totalBalance"`
}

// Info - platform statistics
func (node *Node) Info(arguments *NodeInfoArguments, reply *NodeInfoReply) error {

	if err := rateLimit(node.limiter); nil != err {
		return err
	}

	reply.Version = node.version
	reply.Uptime = time.Since(node.start).String()
	reply.Connections = node.counter.Uint64()
	reply.Users = identity.Count()
	reply.Assets = asset.Count()
	reply.ActiveProposals = governance.ActiveCount()
	reply.TotalBalance = ledger.Total()
	return nil
}
