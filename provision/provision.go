// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package provision - allocation of per-user external archives
//
// the archive service is an opaque external collaborator; a call either
// returns the identifier of the allocated archive or fails, and the
// caller must not commit any local state until it has returned
package provision

import (
	"context"
)

// Provisioner - interface to the external archive service
type Provisioner interface {
	// Provision - allocate an archive for an owner, returning its identifier
	Provision(ctx context.Context, owner string) (string, error)
}
