// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"
)

const (
	rpcCertificateFilename = "rpc.crt"
	rpcPrivateKeyFilename  = "rpc.key"
)

// setup command handler
//
// commands that run to create certificate files; these commands
// cannot access the database or the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-rpc-cert", "rpc":
		certificateFileName := getFilenameWithDirectory(arguments, rpcCertificateFilename)
		privateKeyFileName := getFilenameWithDirectory(arguments, rpcPrivateKeyFilename)

		addresses := []string{}
		if len(arguments) >= 2 {
			for _, a := range arguments[1:] {
				if "" != a {
					addresses = append(addresses, a)
				}
			}
		}

		err := makeSelfSignedCertificate("rpc", certificateFileName, privateKeyFileName, 0 != len(addresses), addresses)
		if nil != err {
			fmt.Printf("generate RPC key/certificate error: %s\n", err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated certificate: %q\n", certificateFileName)
		fmt.Printf("generated private key: %q\n", privateKeyFileName)

	case "version":
		fmt.Println(version)

	case "start", "run":
		// fall through to the daemon
		return false

	default:
		switch command {
		case "help", "h", "?":
		default:
			fmt.Printf("error: no such command: %s\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)
		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help  (h)                              - display this message\n\n")
		fmt.Printf("  version                                - display version and exit\n\n")
		fmt.Printf("  gen-rpc-cert  (rpc)  [DIR [IPs...]]    - create private key and self-signed certificate\n")
		fmt.Printf("                                           for the client RPC listener\n\n")
		fmt.Printf("  start                                  - run the daemon (default when no command given)\n\n")
		return true
	}

	return true
}

// get a file name plus its directory from command arguments
func getFilenameWithDirectory(arguments []string, name string) string {
	dir := "."
	if len(arguments) >= 1 && "" != arguments[0] {
		dir = arguments[0]
	}

	file, err := filepath.Abs(filepath.Clean(filepath.Join(dir, name)))
	if nil != err {
		fmt.Printf("invalid file path: %q error: %s\n", name, err)
		exitwithstatus.Exit(1)
	}
	if _, err := os.Stat(dir); nil != err {
		fmt.Printf("invalid directory: %q error: %s\n", dir, err)
		exitwithstatus.Exit(1)
	}
	return file
}
