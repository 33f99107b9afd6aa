// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/dcrd/dcrutil/v4"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "bluecarbonctl.conf"
	defaultRPCServer      = "localhost"
	defaultRPCPort        = "9569"
)

var (
	bluecarbondHomeDir = dcrutil.AppDataDir("bluecarbond", false)
	defaultHomeDir     = dcrutil.AppDataDir("bluecarbonctl", false)
	defaultConfigFile  = filepath.Join(defaultHomeDir, defaultConfigFilename)

	// defaultRPCCertFile points at the certificate the daemon generates on
	// first start so a local ctl works without further setup.
	defaultRPCCertFile = filepath.Join(bluecarbondHomeDir, "rpc.cert")
)

// config defines the configuration options for bluecarbonctl.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion  bool   `short:"V" long:"version" description:"Display version information and exit"`
	ListCommands bool   `short:"l" long:"listcommands" description:"List all of the supported commands and exit"`
	ConfigFile   string `short:"C" long:"configfile" description:"Path to configuration file"`
	RPCUser      string `short:"u" long:"rpcuser" description:"RPC username"`
	RPCPassword  string `short:"P" long:"rpcpass" default-mask:"-" description:"RPC password"`
	RPCServer    string `short:"s" long:"rpcserver" description:"RPC server to connect to"`
	RPCCert      string `short:"c" long:"rpccert" description:"RPC server certificate chain for validation"`
	NoTLS        bool   `long:"notls" description:"Disable TLS"`
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// normalizeAddress returns addr with the passed default port appended if
// there is not already a port specified.
func normalizeAddress(addr, defaultPort string) string {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return net.JoinHostPort(addr, defaultPort)
	}
	return addr
}

// loadConfig initializes and parses the config using a config file and
// command line options.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		ConfigFile: defaultConfigFile,
		RPCServer:  defaultRPCServer,
		RPCCert:    defaultRPCCertFile,
	}

	// Pre-parse the command line options to see if an alternative config
	// file was specified.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
	}

	if preCfg.ConfigFile != defaultConfigFile {
		cfg.ConfigFile = cleanAndExpandPath(preCfg.ConfigFile)
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(cfg.ConfigFile)
	if err != nil {
		var e *os.PathError
		if !errors.As(err, &e) {
			return nil, nil, fmt.Errorf("error parsing config file: %w",
				err)
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		return nil, nil, err
	}

	cfg.RPCCert = cleanAndExpandPath(cfg.RPCCert)
	cfg.RPCServer = normalizeAddress(cfg.RPCServer, defaultRPCPort)

	return &cfg, remainingArgs, nil
}
