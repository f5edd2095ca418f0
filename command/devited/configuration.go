// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Devite Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/devite-inc/devited/configuration"
	"github.com/devite-inc/devited/rpc"
)

var errNotSimpleFileName = errors.New("log file must be a simple file name")

// basic defaults (directories and files are relative to the
// "data_directory" from the configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultKeyFile         = "rpc.key"
	defaultCertificateFile = "rpc.crt"

	defaultDatabaseDirectory = "data"
	defaultDatabaseName      = "devite"

	defaultLogDirectory = "log"
	defaultLogFile      = "devited.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients    = 10
	defaultVerifyEvery   = "1h"
	defaultProvisionMode = "stub"
)

// DatabaseType - where the database files live
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// ProvisioningType - archive service connection
//
// mode is either "stub" for the built-in deterministic provisioner or
// "client" to call the HTTP endpoint
type ProvisioningType struct {
	Mode     string `gluamapper:"mode" json:"mode"`
	Endpoint string `gluamapper:"endpoint" json:"endpoint"`
}

// Configuration - the daemon configuration
type Configuration struct {
	DataDirectory string           `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string           `gluamapper:"pidfile" json:"pidfile"`
	Database      DatabaseType     `gluamapper:"database" json:"database"`
	VerifyEvery   string           `gluamapper:"verify_every" json:"verify_every"`
	Provisioning  ProvisioningType `gluamapper:"provisioning" json:"provisioning"`

	ClientRPC rpc.RPCConfiguration `gluamapper:"client_rpc" json:"client_rpc"`
	Logging   logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		VerifyEvery:   defaultVerifyEvery,

		Database: DatabaseType{
			Directory: defaultDatabaseDirectory,
			Name:      defaultDatabaseName,
		},

		Provisioning: ProvisioningType{
			Mode: defaultProvisionMode,
		},

		ClientRPC: rpc.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    nil,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	// if any test mode and the database file was not specified
	// switch to appropriate default.  Abs paths will fail this
	// test, then only relative paths will be prefixed
	if "" == options.DataDirectory {
		options.DataDirectory = dataDirectory
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.ClientRPC.Certificate,
		&options.ClientRPC.PrivateKey,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = configuration.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute items
	mayBeAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range mayBeAbsolute {
		if "" != *f {
			*f = configuration.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path separator, then the which of these items
	// that are always created by the daemon will be prefixed by
	// the logging directory
	if filepath.Base(options.Logging.File) != options.Logging.File {
		return nil, errNotSimpleFileName
	}

	// make database absolute and create the directory if it does not exist
	options.Database.Name = configuration.EnsureAbsolute(options.Database.Directory, options.Database.Name)

	return options, nil
}
