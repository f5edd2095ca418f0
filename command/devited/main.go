// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/asset"
	"github.com/devite-inc/devited/background"
	"github.com/devite-inc/devited/governance"
	"github.com/devite-inc/devited/identity"
	"github.com/devite-inc/devited/ledger"
	"github.com/devite-inc/devited/ownership"
	"github.com/devite-inc/devited/provision"
	"github.com/devite-inc/devited/rpc"
	"github.com/devite-inc/devited/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if nil != err {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// general info
	log.Infof("database: %q", theConfiguration.Database.Name)
	log.Debugf("%s = %#v", "ClientRPC", theConfiguration.ClientRPC)
	log.Debugf("%s = %#v", "Provisioning", theConfiguration.Provisioning)

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	// balance ledger
	log.Info("initialise ledger")
	err = ledger.Initialise()
	if nil != err {
		log.Criticalf("ledger initialise error: %s", err)
		exitwithstatus.Message("ledger initialise error: %s", err)
	}
	defer ledger.Finalise()

	// ownership index - depends on storage
	log.Info("initialise ownership")
	err = ownership.Initialise()
	if nil != err {
		log.Criticalf("ownership initialise error: %s", err)
		exitwithstatus.Message("ownership initialise error: %s", err)
	}
	defer ownership.Finalise()

	// the index is a materialized view: repair before serving
	if damaged := ownership.Verify(); 0 != len(damaged) {
		log.Warnf("ownership index damaged: %d assets, rebuilding", len(damaged))
		err = ownership.Rebuild()
		if nil != err {
			log.Criticalf("ownership rebuild error: %s", err)
			exitwithstatus.Message("ownership rebuild error: %s", err)
		}
	}

	// archive provisioning
	var provisioner provision.Provisioner
	switch theConfiguration.Provisioning.Mode {
	case "stub", "":
		provisioner = provision.Stub{}
	case "client":
		if "" == theConfiguration.Provisioning.Endpoint {
			exitwithstatus.Message("provisioning endpoint is required for client mode")
		}
		provisioner = provision.NewClient(theConfiguration.Provisioning.Endpoint)
	default:
		exitwithstatus.Message("invalid provisioning mode: %q", theConfiguration.Provisioning.Mode)
	}

	// user registry - depends on ledger and provisioning
	log.Info("initialise identity")
	err = identity.Initialise(provisioner)
	if nil != err {
		log.Criticalf("identity initialise error: %s", err)
		exitwithstatus.Message("identity initialise error: %s", err)
	}
	defer identity.Finalise()

	// asset store - depends on identity, ownership and ledger
	log.Info("initialise asset")
	err = asset.Initialise()
	if nil != err {
		log.Criticalf("asset initialise error: %s", err)
		exitwithstatus.Message("asset initialise error: %s", err)
	}
	defer asset.Finalise()

	// governance engine - depends on identity and ledger
	log.Info("initialise governance")
	err = governance.Initialise()
	if nil != err {
		log.Criticalf("governance initialise error: %s", err)
		exitwithstatus.Message("governance initialise error: %s", err)
	}
	defer governance.Finalise()

	// periodic index verification
	verifyEvery, err := time.ParseDuration(theConfiguration.VerifyEvery)
	if nil != err {
		exitwithstatus.Message("invalid verify_every: %q error: %s", theConfiguration.VerifyEvery, err)
	}
	processes := background.Processes{
		ownership.NewVerifier(verifyEvery),
	}
	backgrounds := background.Start(processes, log)
	defer backgrounds.Stop()

	// the RPC surface - depends on everything above
	log.Info("initialise rpc")
	err = rpc.Initialise(&theConfiguration.ClientRPC, version)
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}
	defer rpc.Finalise()

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("waiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…\n")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("received signal: %v\n", sig)
		fmt.Printf("shutting down…\n")
	}

	log.Info("shutting down…")
	log.Flush()
}
