// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package provision

import (
	"context"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Stub - deterministic in-process provisioner
//
// for standalone operation and testing; the archive identifier is
// derived from the owner so repeated calls return the same id
type Stub struct{}

// Provision - derive a stable archive identifier for an owner
func (s Stub) Provision(ctx context.Context, owner string) (string, error) {
	digest := sha3.Sum256([]byte(owner))
	return "archive-" + hex.EncodeToString(digest[:8]), nil
}
