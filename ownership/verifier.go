// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ownership

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/background"
)

// default scan interval for the daemon
const DefaultVerifyInterval = time.Hour

// periodic consistency scan of the index against the asset records
type verifier struct {
	log      *logger.L
	interval time.Duration
}

// NewVerifier - create the background index verification process
func NewVerifier(interval time.Duration) background.Process {
	if interval <= 0 {
		interval = DefaultVerifyInterval
	}
	return &verifier{
		log:      logger.New("verifier"),
		interval: interval,
	}
}

func (v *verifier) Run(args interface{}, shutdown <-chan struct{}) {

	v.log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-time.After(v.interval):
			damaged := Verify()
			if 0 == len(damaged) {
				v.log.Debug("index clean")
				continue loop
			}

			v.log.Errorf("index damage detected: %d assets: %v", len(damaged), damaged)
			err := Rebuild()
			if nil != err {
				v.log.Criticalf("rebuild error: %s", err)
				continue loop
			}
			v.log.Warn("index rebuilt")
		}
	}

	v.log.Info("stopped")
}
