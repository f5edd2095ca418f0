// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - the client RPC surface
//
// JSON RPC over TLS using the net/rpc service conventions; every
// mutating call carries the caller identifier as a trusted argument,
// authentication happens in front of this daemon
//
// each task type owns a rate limiter so one noisy client cannot starve
// the rest of the surface
package rpc
