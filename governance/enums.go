// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package governance

import (
	"fmt"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/fault"
)

// proposal type enumeration
type ProposalType uint64

// possible proposal type values
const (
	nothingType      ProposalType = iota // this must be the first value
	PlatformUpgrade  ProposalType = iota
	ResearchStandard ProposalType = iota
	Treasury         ProposalType = iota
	GovernanceChange ProposalType = iota
	maximumType      ProposalType = iota // this must be the last value
	firstType        ProposalType = nothingType + 1
	lastType         ProposalType = maximumType - 1
)

func typeToString(p ProposalType) ([]byte, error) {
	switch p {
	case nothingType:
		return []byte{}, nil
	case PlatformUpgrade:
		return []byte("platform-upgrade"), nil
	case ResearchStandard:
		return []byte("research-standard"), nil
	case Treasury:
		return []byte("treasury-allocation"), nil
	case GovernanceChange:
		return []byte("governance-change"), nil
	default:
		return []byte{}, fault.InvalidProposalType
	}
}

func typeFromString(in string) (ProposalType, error) {
	switch strings.ToLower(in) {
	case "":
		return nothingType, nil
	case "platform-upgrade":
		return PlatformUpgrade, nil
	case "research-standard":
		return ResearchStandard, nil
	case "treasury-allocation":
		return Treasury, nil
	case "governance-change":
		return GovernanceChange, nil
	default:
		return nothingType, fault.InvalidProposalType
	}
}

// convert a proposal type to its string tag
func (proposalType ProposalType) String() string {
	s, err := typeToString(proposalType)
	if nil != err {
		logger.Panicf("invalid proposal type enumeration: %d", proposalType)
	}
	return string(s)
}

// convert both enum value and tag, for debugging
func (proposalType ProposalType) GoString() string {
	return fmt.Sprintf("<ProposalType#%d:%q>", uint64(proposalType), proposalType.String())
}

// valid proposal type; the zero value is not valid
func (proposalType ProposalType) IsValid() bool {
	return proposalType >= firstType && proposalType <= lastType
}

// convert a proposal type into JSON
func (proposalType ProposalType) MarshalText() ([]byte, error) {
	return typeToString(proposalType)
}

// convert a tag string into a proposal type from JSON
func (proposalType *ProposalType) UnmarshalText(s []byte) error {
	p, err := typeFromString(string(s))
	if nil != err {
		return err
	}
	*proposalType = p
	return nil
}

// proposal status enumeration
//
// state machine: Active → Passed | Rejected → Executed
type ProposalStatus uint64

// possible proposal status values
const (
	statusNothing  ProposalStatus = iota // this must be the first value
	StatusActive   ProposalStatus = iota
	StatusPassed   ProposalStatus = iota
	StatusRejected ProposalStatus = iota
	StatusExecuted ProposalStatus = iota
)

func statusToString(p ProposalStatus) ([]byte, error) {
	switch p {
	case statusNothing:
		return []byte{}, nil
	case StatusActive:
		return []byte("active"), nil
	case StatusPassed:
		return []byte("passed"), nil
	case StatusRejected:
		return []byte("rejected"), nil
	case StatusExecuted:
		return []byte("executed"), nil
	default:
		return []byte{}, fault.InvalidProposalStatus
	}
}

func statusFromString(in string) (ProposalStatus, error) {
	switch strings.ToLower(in) {
	case "":
		return statusNothing, nil
	case "active":
		return StatusActive, nil
	case "passed":
		return StatusPassed, nil
	case "rejected":
		return StatusRejected, nil
	case "executed":
		return StatusExecuted, nil
	default:
		return statusNothing, fault.InvalidProposalStatus
	}
}

// convert a proposal status to its string tag
func (status ProposalStatus) String() string {
	s, err := statusToString(status)
	if nil != err {
		logger.Panicf("invalid proposal status enumeration: %d", status)
	}
	return string(s)
}

// convert a proposal status into JSON
func (status ProposalStatus) MarshalText() ([]byte, error) {
	return statusToString(status)
}

// convert a tag string into a proposal status from JSON
func (status *ProposalStatus) UnmarshalText(s []byte) error {
	p, err := statusFromString(string(s))
	if nil != err {
		return err
	}
	*status = p
	return nil
}

// vote choice enumeration
type VoteChoice uint64

// possible vote choice values
const (
	nothingChoice VoteChoice = iota // this must be the first value
	For           VoteChoice = iota
	Against       VoteChoice = iota
)

func choiceToString(v VoteChoice) ([]byte, error) {
	switch v {
	case nothingChoice:
		return []byte{}, nil
	case For:
		return []byte("for"), nil
	case Against:
		return []byte("against"), nil
	default:
		return []byte{}, fault.InvalidVoteChoice
	}
}

func choiceFromString(in string) (VoteChoice, error) {
	switch strings.ToLower(in) {
	case "":
		return nothingChoice, nil
	case "for":
		return For, nil
	case "against":
		return Against, nil
	default:
		return nothingChoice, fault.InvalidVoteChoice
	}
}

// convert a vote choice to its string tag
func (choice VoteChoice) String() string {
	s, err := choiceToString(choice)
	if nil != err {
		logger.Panicf("invalid vote choice enumeration: %d", choice)
	}
	return string(s)
}

// valid vote choice; the zero value is not valid
func (choice VoteChoice) IsValid() bool {
	return For == choice || Against == choice
}

// convert a vote choice into JSON
func (choice VoteChoice) MarshalText() ([]byte, error) {
	return choiceToString(choice)
}

// convert a tag string into a vote choice from JSON
func (choice *VoteChoice) UnmarshalText(s []byte) error {
	v, err := choiceFromString(string(s))
	if nil != err {
		return err
	}
	*choice = v
	return nil
}
