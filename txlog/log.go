// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txlog

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/crypto/blake256"
)

// Entry is a single immutable record in the transaction log.  From and
// To are empty when the recorded operation has no sending or receiving
// participant.
type Entry struct {
	ID      chainhash.Hash `json:"id"`
	Time    time.Time      `json:"time"`
	Kind    EntryKind      `json:"kind"`
	Payload Payload        `json:"payload"`
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`
}

// entryID derives the deterministic content hash of an entry from its
// timestamp, kind, and canonical payload serialization.
//
// The canonical form relies on encoding/json: struct fields serialize in
// declaration order, map keys are sorted, and time values use RFC 3339
// with nanoseconds.  The same timestamp, kind, and payload therefore
// always hash to the same id.
func entryID(t time.Time, kind EntryKind, payload Payload) chainhash.Hash {
	canonical, err := json.Marshal(payload)
	if err != nil {
		// All payload types are plain data and marshal without error.
		// This exists to surface programming errors during development
		// rather than silently logging an entry with a bogus id.
		panic(fmt.Sprintf("unmarshalable %s payload: %v", kind, err))
	}

	h := blake256.New()
	fmt.Fprintf(h, "%d%s", t.UnixNano(), kind)
	h.Write(canonical)

	var id chainhash.Hash
	copy(id[:], h.Sum(nil))
	return id
}

// Log is the append-only transaction log.  It is safe for concurrent
// access.
type Log struct {
	mtx         sync.RWMutex
	entries     []Entry
	subscribers []func(Entry)
}

// NewLog returns an empty transaction log.
func NewLog() *Log {
	return &Log{}
}

// Append records a new entry for the given payload and participants and
// returns its content-derived id.  Append never fails and the entry is
// permanently visible to all future queries.
func (l *Log) Append(payload Payload, from, to string) chainhash.Hash {
	id, notify := l.AppendDeferred(payload, from, to)
	notify()
	return id
}

// AppendDeferred records a new entry exactly as Append does, but returns
// the subscriber notification as a separate function instead of running
// it.  A caller that serializes its own state under a lock can append
// while still holding that lock, so the log order matches its commit
// order, and invoke the returned function after releasing it.
func (l *Log) AppendDeferred(payload Payload, from, to string) (chainhash.Hash, func()) {
	entry := Entry{
		Time:    time.Now(),
		Kind:    payload.Kind(),
		Payload: payload,
		From:    from,
		To:      to,
	}
	entry.ID = entryID(entry.Time, entry.Kind, payload)

	l.mtx.Lock()
	l.entries = append(l.entries, entry)
	subscribers := l.subscribers
	l.mtx.Unlock()

	notify := func() {
		for _, fn := range subscribers {
			fn(entry)
		}
	}
	return entry.ID, notify
}

// Subscribe registers a callback invoked after every append with the
// new entry.  Callbacks run synchronously on the appending goroutine
// and must not block for long or call back into the log.
func (l *Log) Subscribe(fn func(Entry)) {
	l.mtx.Lock()
	l.subscribers = append(l.subscribers, fn)
	l.mtx.Unlock()
}

// Len returns the number of entries appended so far.
func (l *Log) Len() int {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return len(l.entries)
}

// Entries returns a copy of the full log in insertion order.
func (l *Log) Entries() []Entry {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// ByKind returns all entries of the given kind in insertion order.
func (l *Log) ByKind(kind EntryKind) []Entry {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	var entries []Entry
	for _, entry := range l.entries {
		if entry.Kind == kind {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ByParticipant returns all entries that name the given address as
// either the sending or receiving participant, in insertion order.
func (l *Log) ByParticipant(addr string) []Entry {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	var entries []Entry
	for _, entry := range l.entries {
		if entry.From == addr || entry.To == addr {
			entries = append(entries, entry)
		}
	}
	return entries
}
