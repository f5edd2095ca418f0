// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity - the user registry
//
// a profile gates every other operation: minting, transfers and
// governance all require the caller identifier to be registered here
//
// registration is the only operation with an external suspension point
// (archive provisioning); no local state is committed until the
// external call has returned successfully
package identity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/constants"
	"github.com/devite-inc/devited/fault"
	"github.com/devite-inc/devited/ledger"
	"github.com/devite-inc/devited/provision"
	"github.com/devite-inc/devited/storage"
)

// UserProfile - a registered user record
//
// never mutated after creation
type UserProfile struct {
	Identifier      string    `json:"identifier"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Institution     string    `json:"institution"`
	ResearchDomains []string  `json:"researchDomains"`
	ArchiveId       string    `json:"archiveId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Request - fields supplied on registration
type Request struct {
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Institution     string   `json:"institution"`
	ResearchDomains []string `json:"researchDomains"`
}

// globals
var globalData struct {
	sync.RWMutex
	log         *logger.L
	provisioner provision.Provisioner

	// set once during initialise
	initialised bool
}

// Initialise - setup the user registry
func Initialise(provisioner provision.Provisioner) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("identity")
	globalData.log.Info("starting…")

	globalData.provisioner = provisioner

	globalData.initialised = true
	return nil
}

// Finalise - shut down the user registry
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

// Register - create a profile for the caller
//
// provisions the external archive first; if that fails nothing is
// committed - the profile and the initial balance grant are written in
// a single transaction so no reader observes one without the other
func Register(ctx context.Context, caller string, request Request) (*UserProfile, error) {

	if "" == caller {
		return nil, fault.MissingParameters
	}

	if storage.Pool.Identities.Has([]byte(caller)) {
		return nil, fault.AlreadyRegistered
	}

	// sole suspension point: no locks held while the external call is
	// in flight
	archiveId, err := globalData.provisioner.Provision(ctx, caller)
	if nil != err {
		globalData.log.Errorf("provisioning failed for: %q  error: %s", caller, err)
		return nil, err
	}

	trx := storage.NewTransaction()

	// the registration may have lost a race while suspended
	if storage.Pool.Identities.Has([]byte(caller)) {
		trx.Abort()
		return nil, fault.AlreadyRegistered
	}

	profile := UserProfile{
		Identifier:      caller,
		Username:        request.Username,
		Email:           request.Email,
		Institution:     request.Institution,
		ResearchDomains: request.ResearchDomains,
		ArchiveId:       archiveId,
		CreatedAt:       time.Now().UTC(),
	}

	data, err := json.Marshal(profile)
	if nil != err {
		trx.Abort()
		return nil, err
	}

	trx.Put(storage.Pool.Identities, []byte(caller), data)
	ledger.Grant(trx, caller, constants.InitialTokenGrant)

	err = trx.Commit()
	if nil != err {
		return nil, err
	}

	globalData.log.Infof("registered: %q archive: %q", caller, archiveId)
	return &profile, nil
}

// Get - fetch a profile, nil if not registered
func Get(id string) *UserProfile {
	data := storage.Pool.Identities.Get([]byte(id))
	if nil == data {
		return nil
	}

	var profile UserProfile
	err := json.Unmarshal(data, &profile)
	if nil != err {
		logger.Panicf("identity: corrupt profile record for: %q  error: %s", id, err)
	}
	return &profile
}

// IsRegistered - check an identifier has a profile
func IsRegistered(id string) bool {
	return storage.Pool.Identities.Has([]byte(id))
}

// ListAll - full scan of all profiles in store iteration order
func ListAll() []UserProfile {
	profiles := []UserProfile{}
	cursor := storage.Pool.Identities.NewFetchCursor()
	err := cursor.Map(func(key []byte, value []byte) error {
		var profile UserProfile
		err := json.Unmarshal(value, &profile)
		if nil != err {
			logger.Panicf("identity: corrupt profile record for: %q  error: %s", key, err)
		}
		profiles = append(profiles, profile)
		return nil
	})
	logger.PanicIfError("identity.ListAll", err)
	return profiles
}

// Count - number of registered users
func Count() uint64 {
	count := uint64(0)
	cursor := storage.Pool.Identities.NewFetchCursor()
	err := cursor.Map(func(key []byte, value []byte) error {
		count += 1
		return nil
	})
	logger.PanicIfError("identity.Count", err)
	return count
}
