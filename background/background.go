// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - run a set of background processes with a
// common shutdown
package background

import (
	"sync"
)

// Process - interface for a background process
//
// Run must return promptly after the shutdown channel is closed
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// T - handle for stopping the started set
type T struct {
	sync.WaitGroup
	finish chan struct{}
}

// Start - start up all of the background processes
func Start(processes Processes, args interface{}) *T {

	register := &T{
		finish: make(chan struct{}),
	}

	for _, p := range processes {
		register.Add(1)
		go func(p Process) {
			defer register.Done()
			p.Run(args, register.finish)
		}(p)
	}
	return register
}

// Stop - signal all background processes and wait for them to finish
func (t *T) Stop() {
	if nil == t {
		return
	}
	close(t.finish)
	t.Wait()
}
