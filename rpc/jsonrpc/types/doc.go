// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package types implements concrete types for marshalling to and from the
bluecarbond JSON-RPC commands, return values, and notifications.

The types are registered with the dcrjson package at init time so the
generic command marshalling and unmarshalling infrastructure can be used
by both the server and any client.  All amounts cross the wire as
floating point tonnes of CO2e and all times as RFC 3339 strings, which
keeps the surface identical between the in-process simulation and a
remote ledger node.
*/
package types
