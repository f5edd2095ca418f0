// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintains a single LevelDB database split into key-ordered tables by
// a one byte prefix on every key:
//
//	U ⧺ caller id          - user profile (JSON)
//	A ⧺ asset id BE        - asset record (JSON)
//	N ⧺ owner key          - next sequence number for appending to owned items
//	L ⧺ owner key ⧺ seq BE - list of owned asset ids, in acquisition order
//	D ⧺ owner key ⧺ id BE  - position in list of owned items, for delete after transfer
//	G ⧺ caller id          - governance token balance BE
//	P ⧺ proposal id BE     - proposal record (JSON)
//	C ⧺ name               - monotonic id counters ("asset", "proposal")
//	Z ⧺ test key           - reserved for testing
//
// the owner list and index tables are a materialized view derived from
// the canonical owner field of the asset records; they can be rebuilt
// from the asset table after a crash (see the ownership package)
//
// all multi-table mutations are committed through a single Transaction
// backed by one LevelDB batch, so an operation either fully commits or
// leaves no trace
package storage
