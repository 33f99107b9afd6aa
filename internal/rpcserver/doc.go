// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package rpcserver implements the JSON-RPC interface of the carbon credit
ledger.

Requests are accepted as HTTP POST with basic authentication on the
root endpoint and follow the JSON-RPC 1.0/2.0 wire format via the
dcrjson infrastructure.  The /ws endpoint upgrades to a websocket
connection that streams a notification for every entry appended to the
transaction log, which allows dashboards to follow mints, transfers,
and retirements live.
*/
package rpcserver
