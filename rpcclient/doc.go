// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package rpcclient implements a JSON-RPC client for a bluecarbond ledger
server.

The client issues commands over HTTP POST with basic authentication and
optional TLS.  Every server command has a typed wrapper, and RawRequest
allows issuing commands the wrappers do not cover.
*/
package rpcclient
