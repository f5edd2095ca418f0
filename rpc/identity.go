// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/fault"
	"github.com/devite-inc/devited/identity"
)

// Identity - user registry RPC task
type Identity struct {
	log     *logger.L
	limiter *rate.Limiter
}

const (
	rateLimitIdentity = 200
	rateBurstIdentity = 100

	maximumUserList = 100
)

func newIdentity(log *logger.L) *Identity {
	return &Identity{
		log:     log,
		limiter: rate.NewLimiter(rateLimitIdentity, rateBurstIdentity),
	}
}

// IdentityRegisterArguments - arguments for registration
type IdentityRegisterArguments struct {
	Caller          string   `json:"caller"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Institution     string   `json:"institution"`
	ResearchDomains []string `json:"researchDomains"`
}

// IdentityRegisterReply - the stored profile
type IdentityRegisterReply struct {
	Profile identity.UserProfile `json:"profile"`
}

// Register - create a profile for the caller
func (i *Identity) Register(arguments *IdentityRegisterArguments, reply *IdentityRegisterReply) error {

	if err := rateLimit(i.limiter); nil != err {
		return err
	}

	i.log.Infof("Identity.Register: %q", arguments.Caller)

	profile, err := identity.Register(context.Background(), arguments.Caller, identity.Request{
		Username:        arguments.Username,
		Email:           arguments.Email,
		Institution:     arguments.Institution,
		ResearchDomains: arguments.ResearchDomains,
	})
	if nil != err {
		return err
	}

	reply.Profile = *profile
	return nil
}

// IdentityGetArguments - arguments for a profile lookup
type IdentityGetArguments struct {
	Identifier string `json:"identifier"`
}

// IdentityGetReply - the stored profile
type IdentityGetReply struct {
	Profile identity.UserProfile `json:"profile"`
}

// Get - fetch a stored profile
func (i *Identity) Get(arguments *IdentityGetArguments, reply *IdentityGetReply) error {

	if err := rateLimit(i.limiter); nil != err {
		return err
	}

	profile := identity.Get(arguments.Identifier)
	if nil == profile {
		return fault.NotRegistered
	}

	reply.Profile = *profile
	return nil
}

// IdentityMyArguments - arguments for the caller's own profile
type IdentityMyArguments struct {
	Caller string `json:"caller"`
}

// My - the caller's own profile
//
// shorthand for Get with the caller's identifier
func (i *Identity) My(arguments *IdentityMyArguments, reply *IdentityGetReply) error {

	if err := rateLimit(i.limiter); nil != err {
		return err
	}

	profile := identity.Get(arguments.Caller)
	if nil == profile {
		return fault.NotRegistered
	}

	reply.Profile = *profile
	return nil
}

// IdentityListArguments - arguments for the user list
type IdentityListArguments struct {
	Count int `json:"count"`
}

// IdentityListReply - a page of profiles and the registry size
type IdentityListReply struct {
	Users []identity.UserProfile `json:"users"`
	Total uint64                 `json:"total"`
}

// List - all registered users up to a count
func (i *Identity) List(arguments *IdentityListArguments, reply *IdentityListReply) error {

	if err := rateLimitN(i.limiter, arguments.Count, maximumUserList); nil != err {
		return err
	}

	users := identity.ListAll()
	if len(users) > arguments.Count {
		users = users[:arguments.Count]
	}

	reply.Users = users
	reply.Total = identity.Count()
	return nil
}
