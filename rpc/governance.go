// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/fault"
	"github.com/devite-inc/devited/governance"
)

// Governance - proposal and voting RPC task
type Governance struct {
	log     *logger.L
	limiter *rate.Limiter
}

const (
	rateLimitGovernance = 200
	rateBurstGovernance = 100

	maximumProposalList = 100
)

func newGovernance(log *logger.L) *Governance {
	return &Governance{
		log:     log,
		limiter: rate.NewLimiter(rateLimitGovernance, rateBurstGovernance),
	}
}

// GovernanceCreateArguments - arguments for a new proposal
type GovernanceCreateArguments struct {
	Caller             string                  `json:"caller"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	ProposalType       governance.ProposalType `json:"proposalType"`
	VotingDurationDays uint64                  `json:"votingDurationDays"`
}

// GovernanceCreateReply - the allocated proposal id
type GovernanceCreateReply struct {
	ProposalId uint64 `json:"proposalId,string"`
}

// Create - open a proposal for voting
func (g *Governance) Create(arguments *GovernanceCreateArguments, reply *GovernanceCreateReply) error {

	if err := rateLimit(g.limiter); nil != err {
		return err
	}

	g.log.Infof("Governance.Create: %q by: %q", arguments.Title, arguments.Caller)

	proposalId, err := governance.Create(arguments.Caller, governance.Request{
		Title:              arguments.Title,
		Description:        arguments.Description,
		ProposalType:       arguments.ProposalType,
		VotingDurationDays: arguments.VotingDurationDays,
	})
	if nil != err {
		return err
	}

	reply.ProposalId = proposalId
	return nil
}

// GovernanceVoteArguments - arguments for a vote
type GovernanceVoteArguments struct {
	Caller     string                `json:"caller"`
	ProposalId uint64                `json:"proposalId,string"`
	Choice     governance.VoteChoice `json:"choice"`
}

// GovernanceVoteReply - tallies after the vote
type GovernanceVoteReply struct {
	VotesFor     uint64 `json:"votesFor"`
	VotesAgainst uint64 `json:"votesAgainst"`
}

// Vote - cast a weighted vote on an active proposal
func (g *Governance) Vote(arguments *GovernanceVoteArguments, reply *GovernanceVoteReply) error {

	if err := rateLimit(g.limiter); nil != err {
		return err
	}

	g.log.Infof("Governance.Vote: %d %s by: %q", arguments.ProposalId, arguments.Choice, arguments.Caller)

	err := governance.Vote(arguments.Caller, arguments.ProposalId, arguments.Choice)
	if nil != err {
		return err
	}

	proposal := governance.Get(arguments.ProposalId)
	if nil == proposal {
		return fault.ProposalNotFound
	}

	reply.VotesFor = proposal.VotesFor
	reply.VotesAgainst = proposal.VotesAgainst
	return nil
}

// GovernanceFinalizeArguments - arguments for settlement
type GovernanceFinalizeArguments struct {
	ProposalId uint64 `json:"proposalId,string"`
}

// GovernanceFinalizeReply - the settled status
type GovernanceFinalizeReply struct {
	Status governance.ProposalStatus `json:"status"`
}

// Finalize - settle a proposal whose voting period has ended
func (g *Governance) Finalize(arguments *GovernanceFinalizeArguments, reply *GovernanceFinalizeReply) error {

	if err := rateLimit(g.limiter); nil != err {
		return err
	}

	g.log.Infof("Governance.Finalize: %d", arguments.ProposalId)

	err := governance.Finalize(arguments.ProposalId)
	if nil != err {
		return err
	}

	reply.Status = governance.Get(arguments.ProposalId).Status
	return nil
}

// GovernanceExecuteArguments - arguments for execution marking
type GovernanceExecuteArguments struct {
	ProposalId uint64 `json:"proposalId,string"`
}

// GovernanceExecuteReply - the final status
type GovernanceExecuteReply struct {
	Status governance.ProposalStatus `json:"status"`
}

// Execute - record that a settled proposal has been acted on
func (g *Governance) Execute(arguments *GovernanceExecuteArguments, reply *GovernanceExecuteReply) error {

	if err := rateLimit(g.limiter); nil != err {
		return err
	}

	g.log.Infof("Governance.Execute: %d", arguments.ProposalId)

	err := governance.MarkExecuted(arguments.ProposalId)
	if nil != err {
		return err
	}

	reply.Status = governance.StatusExecuted
	return nil
}

// GovernanceGetArguments - arguments for a proposal lookup
type GovernanceGetArguments struct {
	ProposalId uint64 `json:"proposalId,string"`
}

// GovernanceGetReply - the stored proposal record
type GovernanceGetReply struct {
	Proposal governance.Proposal `json:"proposal"`
}

// Get - fetch a stored proposal record
func (g *Governance) Get(arguments *GovernanceGetArguments, reply *GovernanceGetReply) error {

	if err := rateLimit(g.limiter); nil != err {
		return err
	}

	proposal := governance.Get(arguments.ProposalId)
	if nil == proposal {
		return fault.ProposalNotFound
	}

	reply.Proposal = *proposal
	return nil
}

// GovernanceListArguments - arguments for the proposal list
type GovernanceListArguments struct {
	ActiveOnly bool `json:"activeOnly"`
	Count      int  `json:"count"`
}

// GovernanceListReply - a page of proposals
type GovernanceListReply struct {
	Proposals []governance.Proposal `json:"proposals"`
	Total     uint64                `json:"total"`
}

// List - proposals in id order, optionally only those open for voting
func (g *Governance) List(arguments *GovernanceListArguments, reply *GovernanceListReply) error {

	if err := rateLimitN(g.limiter, arguments.Count, maximumProposalList); nil != err {
		return err
	}

	var proposals []governance.Proposal
	if arguments.ActiveOnly {
		proposals = governance.ActiveProposals()
	} else {
		proposals = governance.All()
	}
	if len(proposals) > arguments.Count {
		proposals = proposals[:arguments.Count]
	}

	reply.Proposals = proposals
	reply.Total = governance.Count()
	return nil
}
