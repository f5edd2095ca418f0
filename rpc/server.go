// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/counter"
)

// create the server instance with all tasks registered
func createServer(log *logger.L, version string, connections *counter.Counter) *rpc.Server {

	start := time.Now().UTC()

	server := rpc.NewServer()

	_ = server.Register(newIdentity(log))
	_ = server.Register(newAsset(log))
	_ = server.Register(newOwner(log))
	_ = server.Register(newGovernance(log))
	_ = server.Register(newNode(log, start, version, connections))

	return server
}
