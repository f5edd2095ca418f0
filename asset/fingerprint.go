// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package asset

import (
	"fmt"

	"golang.org/x/crypto/sha3"
)

// current fingerprint algorithm identifier
const fingerprintVersion byte = 0x01

// NewFingerprint - content hash suitable for the ContentHash field
//
// version prefix followed by hex SHA3-512 of the raw content
func NewFingerprint(content []byte) string {
	digest := sha3.Sum512(content)
	return fmt.Sprintf("%02x%x", fingerprintVersion, digest)
}
