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
	"runtime"
	"strings"

	"github.com/YadnyeshUbhad/bluecarbond/internal/version"
	"github.com/decred/dcrd/dcrutil/v4"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "bluecarbond.conf"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "bluecarbond.log"
	defaultDebugLevel     = "info"
	defaultListenPort     = "9569"
	defaultMaxRPCClients  = 10
	defaultMaxWSClients   = 25
)

var (
	defaultHomeDir    = dcrutil.AppDataDir("bluecarbond", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
	defaultRPCCert    = filepath.Join(defaultHomeDir, "rpc.cert")
	defaultRPCKey     = filepath.Join(defaultHomeDir, "rpc.key")

	// defaultVerifiers is the verifier node allow-list applied when the
	// config names none.
	defaultVerifiers = []string{"NCCR_Node_1", "NCCR_Node_2", "NCCR_Node_3"}
)

// config defines the configuration options for bluecarbond.
//
// See loadConfig for details on the configuration load process.
type config struct {
	HomeDir       string `short:"A" long:"appdata" description:"Path to application home directory"`
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile    string `short:"C" long:"configfile" description:"Path to configuration file"`
	LogDir        string `long:"logdir" description:"Directory to log output"`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	Listeners        []string `long:"rpclisten" description:"Add an interface/port to listen for RPC connections (default port: 9569)"`
	RPCUser          string   `short:"u" long:"rpcuser" description:"Username for RPC connections"`
	RPCPass          string   `short:"P" long:"rpcpass" default-mask:"-" description:"Password for RPC connections"`
	RPCCert          string   `long:"rpccert" description:"File containing the certificate file"`
	RPCKey           string   `long:"rpckey" description:"File containing the certificate key"`
	AltDNSNames      []string `long:"altdnsnames" description:"Specify additional dns names to use when generating the rpc server certificate"`
	DisableTLS       bool     `long:"notls" description:"Disable TLS for the RPC server"`
	RPCMaxClients    int      `long:"rpcmaxclients" description:"Max number of RPC clients for standard connections"`
	RPCMaxWebsockets int      `long:"rpcmaxwebsockets" description:"Max number of RPC websocket connections"`

	Verifiers []string `long:"verifier" description:"Add a verifier node id to the allow-list authorized to approve projects"`

	RemoteLedger string `long:"remoteledger" description:"Host:port of a remote ledger server to proxy operations to; the in-process simulation is used when unset or unreachable"`
	RemoteUser   string `long:"remoteuser" description:"Username for remote ledger RPC connections"`
	RemotePass   string `long:"remotepass" default-mask:"-" description:"Password for remote ledger RPC connections"`
	RemoteCert   string `long:"remotecert" description:"File containing the remote ledger certificate"`
	RemoteNoTLS  bool   `long:"remotenotls" description:"Disable TLS for the remote ledger connection"`
}

// errSuppressUsage signifies that an error that happened while loading the
// configuration should not have the usage message printed along with it.
type errSuppressUsage string

// Error implements the error interface.
func (e errSuppressUsage) Error() string {
	return string(e)
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

// normalizeAddresses returns a new slice with all the passed peer addresses
// normalized with the given default port, and all duplicates removed.
func normalizeAddresses(addrs []string, defaultPort string) []string {
	result := make([]string, 0, len(addrs))
	seen := map[string]struct{}{}
	for _, addr := range addrs {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			addr = net.JoinHostPort(addr, defaultPort)
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		result = append(result, addr)
		seen[addr] = struct{}{}
	}
	return result
}

// loadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in bluecarbond functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig(appName string) (*config, []string, error) {
	// Default config.
	cfg := config{
		HomeDir:          defaultHomeDir,
		ConfigFile:       defaultConfigFile,
		LogDir:           defaultLogDir,
		DebugLevel:       defaultDebugLevel,
		RPCCert:          defaultRPCCert,
		RPCKey:           defaultRPCKey,
		RPCMaxClients:    defaultMaxRPCClients,
		RPCMaxWebsockets: defaultMaxWSClients,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
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

	// Show the version and exit if the version flag was specified.
	if preCfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version.String(), runtime.Version(), runtime.GOOS,
			runtime.GOARCH)
		os.Exit(0)
	}

	// Update the home directory if specified.  Since the home directory is
	// updated, other variables need to be updated to reflect the new
	// location.
	if preCfg.HomeDir != defaultHomeDir {
		cfg.HomeDir = cleanAndExpandPath(preCfg.HomeDir)

		if preCfg.ConfigFile == defaultConfigFile {
			cfg.ConfigFile = filepath.Join(cfg.HomeDir,
				defaultConfigFilename)
		} else {
			cfg.ConfigFile = preCfg.ConfigFile
		}
		if preCfg.LogDir == defaultLogDir {
			cfg.LogDir = filepath.Join(cfg.HomeDir, defaultLogDirname)
		}
		if preCfg.RPCCert == defaultRPCCert {
			cfg.RPCCert = filepath.Join(cfg.HomeDir, "rpc.cert")
		}
		if preCfg.RPCKey == defaultRPCKey {
			cfg.RPCKey = filepath.Join(cfg.HomeDir, "rpc.key")
		}
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(cleanAndExpandPath(cfg.ConfigFile))
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

	// Clean and expand all file and directory paths.
	cfg.HomeDir = cleanAndExpandPath(cfg.HomeDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.RPCCert = cleanAndExpandPath(cfg.RPCCert)
	cfg.RPCKey = cleanAndExpandPath(cfg.RPCKey)
	if cfg.RemoteCert != "" {
		cfg.RemoteCert = cleanAndExpandPath(cfg.RemoteCert)
	}

	// Create the home directory if it doesn't already exist.
	err = os.MkdirAll(cfg.HomeDir, 0700)
	if err != nil {
		str := "failed to create home directory: %v"
		return nil, nil, errSuppressUsage(fmt.Sprintf(str, err))
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Initialize log rotation.  After the log rotation has been
	// initialized, the logger variables may be used.
	if !cfg.NoFileLogging {
		initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, nil, errSuppressUsage(fmt.Sprintf("%v", err))
	}

	// The RPC server is disabled without credentials unless TLS-less
	// loopback-only operation was requested explicitly.
	if cfg.RPCUser == "" || cfg.RPCPass == "" {
		if !cfg.DisableTLS {
			str := "rpcuser and rpcpass are required unless notls is set"
			return nil, nil, errSuppressUsage(str)
		}
		bcldLog.Warn("RPC authentication disabled; only use this on " +
			"trusted networks")
	}

	// Default to listening on the loopback interface.
	if len(cfg.Listeners) == 0 {
		cfg.Listeners = []string{
			net.JoinHostPort("localhost", defaultListenPort),
		}
	}
	cfg.Listeners = normalizeAddresses(cfg.Listeners, defaultListenPort)

	// Apply the default verifier allow-list when none was configured.
	if len(cfg.Verifiers) == 0 {
		cfg.Verifiers = defaultVerifiers
	}

	return &cfg, remainingArgs, nil
}
