// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// bluecarbonctl is a command line utility which issues JSON-RPC commands to
// a bluecarbond ledger server and prints the results.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/YadnyeshUbhad/bluecarbond/internal/version"
	"github.com/YadnyeshUbhad/bluecarbond/rpcclient"
)

// commandList names every command the ledger server supports.  It is used
// by the -l option.
var commandList = []string{
	"batchretire",
	"batchtransfer",
	"getbalance",
	"getbatch",
	"getbatchesbyproject",
	"getbatchesbyvintage",
	"getlogentries",
	"getportfolio",
	"getprojectinfo",
	"getretirementhistory",
	"getstats",
	"mintcredits",
	"ping",
	"recordfielddata",
	"retirecredits",
	"submitproject",
	"transfercredits",
	"verifyproject",
}

// commandUsage displays the usage for a specific command.
func usage(errorMessage string) {
	appName := "bluecarbonctl"
	fmt.Fprintln(os.Stderr, errorMessage)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintf(os.Stderr, "  %s [OPTIONS] <command> <args...>\n\n",
		appName)
	fmt.Fprintf(os.Stderr, "Specify -h to show available options\n")
	fmt.Fprintf(os.Stderr, "Specify -l to list available commands\n")
}

// marshalParams converts the string arguments given on the command line to
// the raw JSON parameters of a request.  Arguments that parse as valid JSON
// are passed through untouched while everything else is treated as a string.
func marshalParams(args []string) []json.RawMessage {
	params := make([]json.RawMessage, 0, len(args))
	for _, arg := range args {
		if json.Valid([]byte(arg)) {
			params = append(params, json.RawMessage(arg))
			continue
		}
		quoted, _ := json.Marshal(arg)
		params = append(params, quoted)
	}
	return params
}

func main() {
	cfg, args, err := loadConfig()
	if err != nil {
		os.Exit(1)
	}

	if cfg.ShowVersion {
		fmt.Printf("bluecarbonctl version %s (Go version %s %s/%s)\n",
			version.String(), runtime.Version(), runtime.GOOS,
			runtime.GOARCH)
		os.Exit(0)
	}

	if cfg.ListCommands {
		fmt.Println(strings.Join(commandList, "\n"))
		os.Exit(0)
	}

	if len(args) < 1 {
		usage("No command specified")
		os.Exit(1)
	}
	method, args := args[0], args[1:]

	var certs []byte
	if !cfg.NoTLS {
		certs, err = os.ReadFile(cfg.RPCCert)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading RPC certificate: %v\n",
				err)
			os.Exit(1)
		}
	}

	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         cfg.RPCServer,
		User:         cfg.RPCUser,
		Pass:         cfg.RPCPassword,
		DisableTLS:   cfg.NoTLS,
		Certificates: certs,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating RPC client: %v\n", err)
		os.Exit(1)
	}

	result, err := client.RawRequest(context.Background(), method,
		marshalParams(args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Pretty print JSON results while choosing sane output for the rest.
	var buf bytes.Buffer
	if json.Indent(&buf, result, "", "  ") == nil {
		fmt.Println(buf.String())
		return
	}
	fmt.Println(string(result))
}
