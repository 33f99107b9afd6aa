// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/YadnyeshUbhad/bluecarbond/backend"
	"github.com/YadnyeshUbhad/bluecarbond/internal/rpcserver"
	"github.com/YadnyeshUbhad/bluecarbond/internal/version"
	"github.com/YadnyeshUbhad/bluecarbond/ledger"
	"github.com/YadnyeshUbhad/bluecarbond/mrv"
)

var cfg *config

// bluecarbondMain is the real main function for bluecarbond.  It is
// necessary to work around the fact that deferred functions do not run when
// os.Exit() is called.
func bluecarbondMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	tcfg, _, err := loadConfig(appName)
	if err != nil {
		usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
		fmt.Fprintln(os.Stderr, err)
		var e errSuppressUsage
		if !errors.As(err, &e) {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return err
	}
	cfg = tcfg
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a context that will be canceled when a shutdown signal has been
	// triggered from an OS signal such as SIGINT (Ctrl+C).
	ctx := shutdownListener()
	defer bcldLog.Info("Shutdown complete")

	// Show version and home dir at startup.
	bcldLog.Infof("Version %s (Go version %s %s/%s)", version.String(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	bcldLog.Infof("Home dir: %s", cfg.HomeDir)
	if cfg.NoFileLogging {
		bcldLog.Info("File logging disabled")
	}

	// Create the in-process ledger along with the project registry bound
	// to the configured verifier allow-list.
	l := ledger.New()
	registry := mrv.New(l, cfg.Verifiers)
	bcldLog.Infof("Verifier allow-list: %v", registry.Verifiers())

	// Probe the optional remote ledger.  The simulation takes over when
	// the remote is unconfigured or unreachable.
	var remoteCert []byte
	if cfg.RemoteCert != "" {
		remoteCert, err = os.ReadFile(cfg.RemoteCert)
		if err != nil {
			bcldLog.Errorf("Unable to read remote ledger certificate: %v", err)
			return err
		}
	}
	be, err := backend.Connect(ctx, &backend.Config{
		Ledger:       l,
		Registry:     registry,
		RemoteHost:   cfg.RemoteLedger,
		RemoteUser:   cfg.RemoteUser,
		RemotePass:   cfg.RemotePass,
		DisableTLS:   cfg.RemoteNoTLS,
		Certificates: remoteCert,
	})
	if err != nil {
		bcldLog.Errorf("Unable to initialize ledger backend: %v", err)
		return err
	}

	// Report the state of whichever backend the probe selected.  A
	// remote ledger may already carry supply.
	stats, err := be.Stats(ctx)
	if err != nil {
		bcldLog.Errorf("Unable to query ledger backend: %v", err)
		return err
	}
	bcldLog.Infof("Ledger backend: %s (%d batches, %v issued, %v retired)",
		be.Kind(), stats.TotalBatches, stats.TotalSupply,
		stats.RetiredSupply)

	// Return now if a shutdown signal was triggered.
	if shutdownRequested(ctx) {
		return nil
	}

	// Create and run the RPC server.  This blocks until the context is
	// cancelled by an interrupt signal.
	rpcServer, err := rpcserver.New(&rpcserver.Config{
		Listeners:           cfg.Listeners,
		User:                cfg.RPCUser,
		Pass:                cfg.RPCPass,
		DisableTLS:          cfg.DisableTLS,
		CertFile:            cfg.RPCCert,
		KeyFile:             cfg.RPCKey,
		AltDNSNames:         cfg.AltDNSNames,
		MaxClients:          cfg.RPCMaxClients,
		MaxWebsocketClients: cfg.RPCMaxWebsockets,
		Ledger:              l,
		Registry:            registry,
	})
	if err != nil {
		bcldLog.Errorf("Unable to create RPC server: %v", err)
		return err
	}
	if err := rpcServer.Run(ctx); err != nil {
		bcldLog.Errorf("Unable to start RPC server: %v", err)
		return err
	}
	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := bluecarbondMain(); err != nil {
		os.Exit(1)
	}
}
