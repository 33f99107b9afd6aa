// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
bluecarbond is an in-memory carbon credit ledger daemon for blue carbon
restoration projects.

It maintains fungible credit batches with fractional ownership, an
append-only content-hashed transaction log, and a project registry with
verifier-gated minting.  All state is served over an authenticated
JSON-RPC interface with websocket streaming of ledger activity.

Usage:

	bluecarbond [OPTIONS]

Use bluecarbond -h to show the available options.
*/
package main
