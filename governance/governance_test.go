// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package governance_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/fault"
	"github.com/devite-inc/devited/governance"
	"github.com/devite-inc/devited/identity"
	"github.com/devite-inc/devited/ledger"
	"github.com/devite-inc/devited/provision"
	"github.com/devite-inc/devited/storage"
)

const (
	databaseFileName = "governance-test"
)

func removeFiles() {
	os.RemoveAll(databaseFileName + ".leveldb")
	os.RemoveAll("test.log")
}

func setup(t *testing.T, users ...string) {
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
	err = identity.Initialise(provision.Stub{})
	if nil != err {
		t.Fatalf("identity initialise error: %s", err)
	}
	err = governance.Initialise()
	if nil != err {
		t.Fatalf("governance initialise error: %s", err)
	}

	// every registered user starts with 1000 tokens
	for _, id := range users {
		_, err = identity.Register(context.Background(), id, identity.Request{Username: id})
		if nil != err {
			t.Fatalf("register error: %s", err)
		}
	}
}

func teardown(t *testing.T) {
	governance.Finalise()
	identity.Finalise()
	ledger.Finalise()
	storage.Finalise()
	logger.Finalise()
	removeFiles()
}

func upgradeRequest(days uint64) governance.Request {
	return governance.Request{
		Title:              "Upgrade storage backend",
		Description:        "migrate the index pools",
		ProposalType:       governance.PlatformUpgrade,
		VotingDurationDays: days,
	}
}

func TestCreate(t *testing.T) {
	setup(t, "alice")
	defer teardown(t)

	proposalId, err := governance.Create("alice", upgradeRequest(7))
	assert.NoError(t, err, "create error")
	assert.Equal(t, uint64(1), proposalId, "first id not 1")

	proposal := governance.Get(proposalId)
	assert.NotNil(t, proposal, "proposal not stored")
	assert.Equal(t, "alice", proposal.Proposer, "wrong proposer")
	assert.Equal(t, governance.StatusActive, proposal.Status, "not active")
	assert.Zero(t, proposal.VotesFor, "votes not zero")
	assert.Empty(t, proposal.Voters, "voters not empty")

	expected := proposal.CreatedAt.Add(7 * 24 * time.Hour)
	assert.Equal(t, expected, proposal.VotingEndsAt, "wrong deadline")

	proposalId, err = governance.Create("alice", upgradeRequest(1))
	assert.NoError(t, err, "create error")
	assert.Equal(t, uint64(2), proposalId, "second id not 2")
}

func TestCreateValidation(t *testing.T) {
	setup(t, "alice")
	defer teardown(t)

	_, err := governance.Create("mallory", upgradeRequest(1))
	assert.Equal(t, fault.NotRegistered, err, "unregistered proposer accepted")

	request := upgradeRequest(1)
	request.Title = ""
	_, err = governance.Create("alice", request)
	assert.Equal(t, fault.MissingParameters, err, "empty title accepted")

	request = upgradeRequest(1)
	request.ProposalType = governance.ProposalType(0)
	_, err = governance.Create("alice", request)
	assert.Equal(t, fault.InvalidProposalType, err, "zero proposal type accepted")
}

func TestVote(t *testing.T) {
	setup(t, "alice", "bob")
	defer teardown(t)

	proposalId, err := governance.Create("alice", upgradeRequest(1))
	assert.NoError(t, err, "create error")

	err = governance.Vote("alice", proposalId, governance.For)
	assert.NoError(t, err, "vote error")

	err = governance.Vote("bob", proposalId, governance.Against)
	assert.NoError(t, err, "vote error")

	proposal := governance.Get(proposalId)
	assert.Equal(t, uint64(1000), proposal.VotesFor, "wrong for tally")
	assert.Equal(t, uint64(1000), proposal.VotesAgainst, "wrong against tally")
	assert.Equal(t, []string{"alice", "bob"}, proposal.Voters, "wrong voter set")

	// a second vote by the same caller is rejected, tallies unchanged
	err = governance.Vote("alice", proposalId, governance.Against)
	assert.Equal(t, fault.AlreadyVoted, err, "revote accepted")

	proposal = governance.Get(proposalId)
	assert.Equal(t, uint64(1000), proposal.VotesFor, "tally changed by revote")
	assert.Equal(t, uint64(1000), proposal.VotesAgainst, "tally changed by revote")
}

func TestVoteValidation(t *testing.T) {
	setup(t, "alice")
	defer teardown(t)

	proposalId, err := governance.Create("alice", upgradeRequest(1))
	assert.NoError(t, err, "create error")

	err = governance.Vote("mallory", proposalId, governance.For)
	assert.Equal(t, fault.NotRegistered, err, "unregistered voter accepted")

	err = governance.Vote("alice", proposalId, governance.VoteChoice(0))
	assert.Equal(t, fault.InvalidVoteChoice, err, "zero choice accepted")

	err = governance.Vote("alice", 999, governance.For)
	assert.Equal(t, fault.ProposalNotFound, err, "missing proposal accepted")
}

func TestVoteAfterDeadline(t *testing.T) {
	setup(t, "alice")
	defer teardown(t)

	// zero duration closes immediately
	proposalId, err := governance.Create("alice", upgradeRequest(0))
	assert.NoError(t, err, "create error")

	time.Sleep(10 * time.Millisecond)

	err = governance.Vote("alice", proposalId, governance.For)
	assert.Equal(t, fault.VotingClosed, err, "late vote accepted")
}

// write a proposal record directly with preset tallies and an expired
// deadline so the settlement decision can be tested without waiting
// out a voting period
func storeSettled(t *testing.T, proposalId uint64, votesFor uint64, votesAgainst uint64) {
	now := time.Now().UTC()
	proposal := governance.Proposal{
		Id:           proposalId,
		Proposer:     "alice",
		Title:        "settled",
		ProposalType: governance.PlatformUpgrade,
		Status:       governance.StatusActive,
		VotesFor:     votesFor,
		VotesAgainst: votesAgainst,
		Voters:       []string{},
		CreatedAt:    now.Add(-2 * time.Hour),
		VotingEndsAt: now.Add(-time.Hour),
	}
	data, err := json.Marshal(proposal)
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, proposalId)

	trx := storage.NewTransaction()
	trx.Put(storage.Pool.Proposals, key, data)
	err = trx.Commit()
	if nil != err {
		t.Fatalf("commit error: %s", err)
	}
}

func TestFinalizeOutcomes(t *testing.T) {
	// total supply 2000, quorum 400
	setup(t, "alice", "bob")
	defer teardown(t)

	// strict majority above quorum passes
	storeSettled(t, 10, 1000, 0)
	err := governance.Finalize(10)
	assert.NoError(t, err, "finalize error")
	assert.Equal(t, governance.StatusPassed, governance.Get(10).Status, "majority not passed")

	// a tie is rejected even above quorum
	storeSettled(t, 11, 1000, 1000)
	err = governance.Finalize(11)
	assert.NoError(t, err, "finalize error")
	assert.Equal(t, governance.StatusRejected, governance.Get(11).Status, "tie not rejected")

	// below quorum is rejected even with a clear majority
	storeSettled(t, 12, 300, 0)
	err = governance.Finalize(12)
	assert.NoError(t, err, "finalize error")
	assert.Equal(t, governance.StatusRejected, governance.Get(12).Status, "sub-quorum not rejected")

	// no votes at all is rejected
	storeSettled(t, 13, 0, 0)
	err = governance.Finalize(13)
	assert.NoError(t, err, "finalize error")
	assert.Equal(t, governance.StatusRejected, governance.Get(13).Status, "no-vote proposal not rejected")

	// one-shot
	err = governance.Finalize(10)
	assert.Equal(t, fault.AlreadyFinalized, err, "refinalize accepted")

	err = governance.Finalize(999)
	assert.Equal(t, fault.ProposalNotFound, err, "missing proposal accepted")
}

func TestFinalizeStillActive(t *testing.T) {
	setup(t, "alice")
	defer teardown(t)

	proposalId, err := governance.Create("alice", upgradeRequest(1))
	assert.NoError(t, err, "create error")

	err = governance.Finalize(proposalId)
	assert.Equal(t, fault.VotingStillActive, err, "early finalize accepted")
	assert.Equal(t, governance.StatusActive, governance.Get(proposalId).Status, "status changed")
}

func TestMarkExecuted(t *testing.T) {
	setup(t, "alice")
	defer teardown(t)

	proposalId, err := governance.Create("alice", upgradeRequest(0))
	assert.NoError(t, err, "create error")

	// not yet finalized
	err = governance.MarkExecuted(proposalId)
	assert.Equal(t, fault.NotFinalized, err, "active proposal executed")

	time.Sleep(10 * time.Millisecond)
	err = governance.Finalize(proposalId)
	assert.NoError(t, err, "finalize error")

	err = governance.MarkExecuted(proposalId)
	assert.NoError(t, err, "mark executed error")
	assert.Equal(t, governance.StatusExecuted, governance.Get(proposalId).Status, "not executed")

	// one-shot
	err = governance.MarkExecuted(proposalId)
	assert.Equal(t, fault.AlreadyExecuted, err, "re-execute accepted")

	err = governance.MarkExecuted(999)
	assert.Equal(t, fault.ProposalNotFound, err, "missing proposal accepted")
}

func TestQueries(t *testing.T) {
	setup(t, "alice")
	defer teardown(t)

	openId, err := governance.Create("alice", upgradeRequest(1))
	assert.NoError(t, err, "create error")

	closedId, err := governance.Create("alice", upgradeRequest(0))
	assert.NoError(t, err, "create error")

	time.Sleep(10 * time.Millisecond)
	err = governance.Finalize(closedId)
	assert.NoError(t, err, "finalize error")

	all := governance.All()
	assert.Len(t, all, 2, "wrong total")
	assert.Equal(t, uint64(2), governance.Count(), "wrong count")

	active := governance.ActiveProposals()
	assert.Len(t, active, 1, "wrong active count")
	assert.Equal(t, openId, active[0].Id, "wrong active proposal")
	assert.Equal(t, uint64(1), governance.ActiveCount(), "wrong active count")

	assert.Nil(t, governance.Get(999), "phantom proposal")
}
