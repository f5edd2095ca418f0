// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package governance - token weighted proposals and voting
//
// voting power is the voter's balance at the moment the vote is cast;
// later balance changes never retroactively adjust a recorded vote
//
// a proposal moves Active → Passed or Rejected at finalisation, then
// optionally → Executed; every step is one-shot
package governance

import (
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/constants"
	"github.com/devite-inc/devited/fault"
	"github.com/devite-inc/devited/identity"
	"github.com/devite-inc/devited/ledger"
	"github.com/devite-inc/devited/storage"
)

// counter key for proposal id allocation
var proposalCounterKey = []byte("proposal")

// Proposal - a stored proposal record
type Proposal struct {
	Id           uint64         `json:"id"`
	Proposer     string         `json:"proposer"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	ProposalType ProposalType   `json:"proposalType"`
	Status       ProposalStatus `json:"status"`
	VotesFor     uint64         `json:"votesFor"`
	VotesAgainst uint64         `json:"votesAgainst"`
	Voters       []string       `json:"voters"`
	CreatedAt    time.Time      `json:"createdAt"`
	VotingEndsAt time.Time      `json:"votingEndsAt"`
}

// Request - fields supplied on proposal creation
type Request struct {
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	ProposalType       ProposalType `json:"proposalType"`
	VotingDurationDays uint64       `json:"votingDurationDays"`
}

// globals
var globalData struct {
	sync.RWMutex
	log *logger.L

	// set once during initialise
	initialised bool
}

// Initialise - setup the governance engine
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("governance")
	globalData.log.Info("starting…")

	globalData.initialised = true
	return nil
}

// Finalise - shut down the governance engine
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

func proposalKey(proposalId uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, proposalId)
	return key
}

func store(trx storage.Transaction, proposal *Proposal) error {
	data, err := json.Marshal(proposal)
	if nil != err {
		return err
	}
	trx.Put(storage.Pool.Proposals, proposalKey(proposal.Id), data)
	return nil
}

// Create - open a proposal for voting
//
// the proposer needs a minimum balance; creation does not spend tokens
func Create(caller string, request Request) (uint64, error) {

	if "" == caller || "" == request.Title {
		return 0, fault.MissingParameters
	}
	if !identity.IsRegistered(caller) {
		return 0, fault.NotRegistered
	}
	if !request.ProposalType.IsValid() {
		return 0, fault.InvalidProposalType
	}
	if ledger.BalanceOf(caller) < constants.MinimumProposalThreshold {
		return 0, fault.InsufficientTokens
	}

	trx := storage.NewTransaction()

	lastId, _ := storage.Pool.Counters.GetN(proposalCounterKey)
	proposalId := lastId + 1

	now := time.Now().UTC()
	proposal := Proposal{
		Id:           proposalId,
		Proposer:     caller,
		Title:        request.Title,
		Description:  request.Description,
		ProposalType: request.ProposalType,
		Status:       StatusActive,
		VotesFor:     0,
		VotesAgainst: 0,
		Voters:       []string{},
		CreatedAt:    now,
		VotingEndsAt: now.Add(time.Duration(request.VotingDurationDays) * constants.VotingDay),
	}

	trx.PutN(storage.Pool.Counters, proposalCounterKey, proposalId)
	err := store(trx, &proposal)
	if nil != err {
		trx.Abort()
		return 0, err
	}

	err = trx.Commit()
	if nil != err {
		return 0, err
	}

	globalData.log.Infof("create: %d %q by: %q ends: %s", proposalId, request.Title, caller, proposal.VotingEndsAt)
	return proposalId, nil
}

// Vote - cast a weighted vote on an active proposal
//
// weight is the caller's balance right now; one vote per caller per
// proposal, the choice cannot be changed afterwards
func Vote(caller string, proposalId uint64, choice VoteChoice) error {

	if "" == caller {
		return fault.MissingParameters
	}
	if !choice.IsValid() {
		return fault.InvalidVoteChoice
	}
	if !identity.IsRegistered(caller) {
		return fault.NotRegistered
	}

	weight := ledger.BalanceOf(caller)
	if 0 == weight {
		return fault.NoVotingPower
	}

	trx := storage.NewTransaction()

	proposal, err := fetch(proposalId)
	if nil != err {
		trx.Abort()
		return err
	}

	// a vote exactly at the deadline still counts
	if time.Now().UTC().After(proposal.VotingEndsAt) {
		trx.Abort()
		return fault.VotingClosed
	}

	for _, voter := range proposal.Voters {
		if voter == caller {
			trx.Abort()
			return fault.AlreadyVoted
		}
	}

	switch choice {
	case For:
		proposal.VotesFor += weight
	case Against:
		proposal.VotesAgainst += weight
	}
	proposal.Voters = append(proposal.Voters, caller)

	err = store(trx, proposal)
	if nil != err {
		trx.Abort()
		return err
	}

	err = trx.Commit()
	if nil != err {
		return err
	}

	globalData.log.Infof("vote: %d %s weight: %d by: %q", proposalId, choice, weight, caller)
	return nil
}

// Finalize - settle a proposal whose voting period has ended
//
// quorum is a percentage of the current total token supply; below
// quorum or without a strict for majority the proposal is rejected
func Finalize(proposalId uint64) error {

	trx := storage.NewTransaction()

	proposal, err := fetch(proposalId)
	if nil != err {
		trx.Abort()
		return err
	}

	if !time.Now().UTC().After(proposal.VotingEndsAt) {
		trx.Abort()
		return fault.VotingStillActive
	}

	if StatusActive != proposal.Status {
		trx.Abort()
		return fault.AlreadyFinalized
	}

	totalVotes := proposal.VotesFor + proposal.VotesAgainst
	quorum := ledger.Total() * constants.QuorumPercentage / 100

	if totalVotes < quorum {
		proposal.Status = StatusRejected
	} else if proposal.VotesFor > proposal.VotesAgainst {
		proposal.Status = StatusPassed
	} else {
		proposal.Status = StatusRejected
	}

	err = store(trx, proposal)
	if nil != err {
		trx.Abort()
		return err
	}

	err = trx.Commit()
	if nil != err {
		return err
	}

	globalData.log.Infof("finalize: %d → %s  for: %d against: %d quorum: %d",
		proposalId, proposal.Status, proposal.VotesFor, proposal.VotesAgainst, quorum)
	return nil
}

// MarkExecuted - record that a settled proposal has been acted on
//
// valid only after finalisation and only once
func MarkExecuted(proposalId uint64) error {

	trx := storage.NewTransaction()

	proposal, err := fetch(proposalId)
	if nil != err {
		trx.Abort()
		return err
	}

	switch proposal.Status {
	case StatusExecuted:
		trx.Abort()
		return fault.AlreadyExecuted
	case StatusActive:
		trx.Abort()
		return fault.NotFinalized
	}

	proposal.Status = StatusExecuted

	err = store(trx, proposal)
	if nil != err {
		trx.Abort()
		return err
	}

	err = trx.Commit()
	if nil != err {
		return err
	}

	globalData.log.Infof("executed: %d", proposalId)
	return nil
}

// read a proposal record, typed error if no such id
func fetch(proposalId uint64) (*Proposal, error) {
	data := storage.Pool.Proposals.Get(proposalKey(proposalId))
	if nil == data {
		return nil, fault.ProposalNotFound
	}

	var proposal Proposal
	err := json.Unmarshal(data, &proposal)
	if nil != err {
		logger.Panicf("governance: corrupt proposal record: %d  error: %s", proposalId, err)
	}
	return &proposal, nil
}

// Get - fetch a proposal, nil if no such id
func Get(proposalId uint64) *Proposal {
	proposal, err := fetch(proposalId)
	if nil != err {
		return nil
	}
	return proposal
}

// scan all proposal records applying a filter
func scan(matches func(*Proposal) bool) []Proposal {
	proposals := []Proposal{}
	cursor := storage.Pool.Proposals.NewFetchCursor()
	err := cursor.Map(func(key []byte, value []byte) error {
		var proposal Proposal
		err := json.Unmarshal(value, &proposal)
		if nil != err {
			logger.Panicf("governance: corrupt proposal record: %x  error: %s", key, err)
		}
		if matches(&proposal) {
			proposals = append(proposals, proposal)
		}
		return nil
	})
	logger.PanicIfError("governance.scan", err)
	return proposals
}

// All - every proposal in id order
func All() []Proposal {
	return scan(func(proposal *Proposal) bool {
		return true
	})
}

// ActiveProposals - proposals still open for voting
func ActiveProposals() []Proposal {
	return scan(func(proposal *Proposal) bool {
		return StatusActive == proposal.Status
	})
}

// ActiveCount - number of proposals still open for voting
func ActiveCount() uint64 {
	return uint64(len(ActiveProposals()))
}

// Count - total number of proposals ever created
func Count() uint64 {
	n, _ := storage.Pool.Counters.GetN(proposalCounterKey)
	return n
}
