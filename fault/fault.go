// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	// ExistsError - record or state already exists
	ExistsError GenericError
	// InvalidError - invalid request or parameter
	InvalidError GenericError
	// NotFoundError - record was not found
	NotFoundError GenericError
	// ProcessError - operation failed part way
	ProcessError GenericError
	// WrongPhaseError - operation attempted in the wrong lifecycle phase
	WrongPhaseError GenericError
)

// common errors - keep in alphabetic order
var (
	AlreadyExecuted        = WrongPhaseError("proposal already executed")
	AlreadyFinalized       = WrongPhaseError("proposal already finalized")
	AlreadyInitialised     = ProcessError("already initialised")
	AlreadyRegistered      = ExistsError("user already registered")
	AlreadyVoted           = ExistsError("already voted on this proposal")
	AssetNotFound          = NotFoundError("asset not found")
	CertificateExists      = ExistsError("certificate file already exists")
	DatabaseIsNotSet       = ProcessError("database is not set")
	InsufficientTokens     = InvalidError("insufficient governance tokens")
	InvalidCount           = InvalidError("invalid count")
	InvalidCursor          = InvalidError("invalid cursor")
	InvalidIpAddress       = InvalidError("invalid ip address")
	InvalidProposalStatus  = InvalidError("invalid proposal status")
	InvalidProposalType    = InvalidError("invalid proposal type")
	InvalidResearchType    = InvalidError("invalid research type")
	InvalidVoteChoice      = InvalidError("invalid vote choice")
	KeyFileExists          = ExistsError("key file already exists")
	MissingParameters      = InvalidError("missing parameters")
	NotFinalized           = WrongPhaseError("proposal not finalized")
	NoVotingPower          = InvalidError("no governance tokens to vote")
	NotAssetOwner          = InvalidError("not the owner")
	NotInitialised         = ProcessError("not initialised")
	NotRegistered          = InvalidError("user must be registered first")
	ProposalNotFound       = NotFoundError("proposal not found")
	ProvisioningFailed     = ProcessError("archive provisioning failed")
	RateLimiting           = ProcessError("rate limiting")
	RecipientNotRegistered = InvalidError("recipient must be registered")
	VotingClosed           = WrongPhaseError("voting period has ended")
	VotingStillActive      = WrongPhaseError("voting period still active")
	WrongVersion           = ProcessError("wrong database version")
)

// Error - the error interface base method
func (e GenericError) Error() string { return string(e) }

// Error - the error interface methods
func (e ExistsError) Error() string     { return string(e) }
func (e InvalidError) Error() string    { return string(e) }
func (e NotFoundError) Error() string   { return string(e) }
func (e ProcessError) Error() string    { return string(e) }
func (e WrongPhaseError) Error() string { return string(e) }

// IsErrExists - determine the class of an error
func IsErrExists(e error) bool     { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool    { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool   { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool    { _, ok := e.(ProcessError); return ok }
func IsErrWrongPhase(e error) bool { _, ok := e.(WrongPhaseError); return ok }
