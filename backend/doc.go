// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package backend selects between an in-process simulated ledger and a
remote ledger server reached over JSON-RPC.

Connect probes the configured remote server and falls back to the
simulation when the server is unreachable, so callers always receive a
working backend.  Both backends expose the same operations in terms of
the domain types of the ledger and registry packages.
*/
package backend
