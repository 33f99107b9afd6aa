// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txlog implements the append-only, content-addressed transaction
log that records every mutating ledger and registry operation.

Each entry is assigned a deterministic identifier derived by hashing the
entry timestamp, kind, and the canonical JSON serialization of its
payload.  Entries are immutable once appended and are never truncated or
compacted, so the full history remains queryable for audit for the life
of the process.
*/
package txlog
