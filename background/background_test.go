// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/devite-inc/devited/background"
)

type ticker struct {
	started int32
	stopped int32
	args    interface{}
}

func (t *ticker) Run(args interface{}, shutdown <-chan struct{}) {
	t.args = args
	atomic.StoreInt32(&t.started, 1)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(time.Millisecond):
		}
	}
	atomic.StoreInt32(&t.stopped, 1)
}

func TestStartStop(t *testing.T) {

	first := &ticker{}
	second := &ticker{}

	processes := background.Processes{
		first,
		second,
	}

	handle := background.Start(processes, "shared args")
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&first.started), "first not started")
	assert.Equal(t, int32(1), atomic.LoadInt32(&second.started), "second not started")

	// Stop blocks until every Run has returned
	handle.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&first.stopped), "first not stopped")
	assert.Equal(t, int32(1), atomic.LoadInt32(&second.stopped), "second not stopped")
	assert.Equal(t, "shared args", first.args, "args not passed")
}

func TestStopNil(t *testing.T) {
	var handle *background.T
	handle.Stop()
}
