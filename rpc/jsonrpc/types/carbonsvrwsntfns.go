// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// NOTE: This file is intended to house the RPC websocket notifications
// that are supported by a bluecarbond ledger server.

package types

import (
	"github.com/decred/dcrd/dcrjson/v4"
)

const (
	// LogEntryNtfnMethod is the method used for notifications that
	// stream every entry appended to the transaction log.
	LogEntryNtfnMethod Method = "logentry"
)

// LogEntryNtfn defines the logentry JSON-RPC notification.
type LogEntryNtfn struct {
	Entry LogEntry
}

// NewLogEntryNtfn returns a new instance which can be used to issue a
// logentry JSON-RPC notification.
func NewLogEntryNtfn(entry LogEntry) *LogEntryNtfn {
	return &LogEntryNtfn{Entry: entry}
}

func init() {
	// The commands in this file are only usable by websockets and are
	// notifications.
	flags := dcrjson.UFWebsocketOnly | dcrjson.UFNotification

	dcrjson.MustRegister(LogEntryNtfnMethod, (*LogEntryNtfn)(nil), flags)
}
