// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package constants

import (
	"time"
)

// governance token amounts
const (
	// InitialTokenGrant - governance tokens granted on registration
	InitialTokenGrant uint64 = 1000

	// MintReward - governance tokens awarded for contributing research
	MintReward uint64 = 50

	// MinimumProposalThreshold - minimum balance needed to create a proposal
	MinimumProposalThreshold uint64 = 100

	// QuorumPercentage - percentage of the total ledger balance that must
	// vote for a proposal outcome to be decided by majority
	QuorumPercentage uint64 = 20
)

// VotingDay - unit for proposal voting durations
const VotingDay = 24 * time.Hour

// ProvisioningTimeout - maximum time for the external archive call
const ProvisioningTimeout = 30 * time.Second

// ProvisioningRetention - how long a successful archive id is retained
// so a retried registration does not allocate a second archive
const ProvisioningRetention = time.Hour
