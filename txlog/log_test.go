// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txlog

import (
	"testing"
	"time"
)

// TestAppend ensures appended entries are assigned unique ids and remain
// visible in insertion order.
func TestAppend(t *testing.T) {
	l := NewLog()

	id1 := l.Append(ProjectSubmitPayload{
		ProjectID: "PROJ-1",
		DataHash:  "aa",
		Submitter: "ngo-1",
	}, "ngo-1", "")
	id2 := l.Append(TransferPayload{
		BatchID: "CC-PROJ-1-1",
		Amount:  1000,
	}, "alice", "bob")

	if id1 == id2 {
		t.Fatal("distinct entries share an id")
	}
	if l.Len() != 2 {
		t.Fatalf("unexpected log length -- got %d, want 2", l.Len())
	}

	entries := l.Entries()
	if entries[0].ID != id1 || entries[1].ID != id2 {
		t.Fatal("entries out of insertion order")
	}
	if entries[0].Kind != KindProjectSubmit {
		t.Errorf("unexpected kind -- got %s, want %s", entries[0].Kind,
			KindProjectSubmit)
	}
	if entries[1].From != "alice" || entries[1].To != "bob" {
		t.Errorf("unexpected participants -- got %q/%q", entries[1].From,
			entries[1].To)
	}
}

// TestEntryIDDeterminism ensures the content hash depends only on the
// timestamp, kind, and payload.
func TestEntryIDDeterminism(t *testing.T) {
	at := time.Unix(1700000000, 12345)
	payload := RetirePayload{
		BatchID: "CC-PROJ-1-1",
		Owner:   "alice",
		Amount:  500,
		Reason:  "offsetting",
	}

	if entryID(at, payload.Kind(), payload) != entryID(at, payload.Kind(), payload) {
		t.Fatal("identical entries hash differently")
	}

	other := payload
	other.Amount = 501
	if entryID(at, payload.Kind(), payload) == entryID(at, other.Kind(), other) {
		t.Fatal("different payloads hash identically")
	}
	if entryID(at, payload.Kind(), payload) == entryID(at.Add(1), payload.Kind(), payload) {
		t.Fatal("different timestamps hash identically")
	}
}

// TestByKind ensures kind filtering returns only matching entries.
func TestByKind(t *testing.T) {
	l := NewLog()
	l.Append(MintPayload{BatchID: "CC-PROJ-1-1"}, "", "addr")
	l.Append(TransferPayload{BatchID: "CC-PROJ-1-1"}, "a", "b")
	l.Append(MintPayload{BatchID: "CC-PROJ-1-2"}, "", "addr")

	mints := l.ByKind(KindMint)
	if len(mints) != 2 {
		t.Fatalf("unexpected mint count -- got %d, want 2", len(mints))
	}
	for _, entry := range mints {
		if entry.Kind != KindMint {
			t.Errorf("unexpected kind %s in mint filter", entry.Kind)
		}
	}
	if got := len(l.ByKind(KindRetire)); got != 0 {
		t.Errorf("unexpected retire count -- got %d, want 0", got)
	}
}

// TestByParticipant ensures participant filtering matches entries naming
// the address on either side.
func TestByParticipant(t *testing.T) {
	l := NewLog()
	l.Append(TransferPayload{}, "alice", "bob")
	l.Append(TransferPayload{}, "bob", "carol")
	l.Append(TransferPayload{}, "carol", "dave")

	if got := len(l.ByParticipant("bob")); got != 2 {
		t.Errorf("unexpected entry count for bob -- got %d, want 2", got)
	}
	if got := len(l.ByParticipant("alice")); got != 1 {
		t.Errorf("unexpected entry count for alice -- got %d, want 1", got)
	}
	if got := len(l.ByParticipant("nobody")); got != 0 {
		t.Errorf("unexpected entry count for nobody -- got %d, want 0", got)
	}
}

// TestSubscribe ensures subscribers observe every entry appended after
// registration.
func TestSubscribe(t *testing.T) {
	l := NewLog()
	var seen []Entry
	l.Subscribe(func(entry Entry) {
		seen = append(seen, entry)
	})

	id := l.Append(MintPayload{BatchID: "CC-PROJ-1-1"}, "", "addr")
	l.Append(TransferPayload{}, "a", "b")

	if len(seen) != 2 {
		t.Fatalf("unexpected notification count -- got %d, want 2",
			len(seen))
	}
	if seen[0].ID != id {
		t.Error("first notification does not match appended entry")
	}
}

// TestAppendDeferred ensures the entry is visible immediately while the
// subscriber notification only runs via the returned function.
func TestAppendDeferred(t *testing.T) {
	l := NewLog()
	var seen []Entry
	l.Subscribe(func(entry Entry) {
		seen = append(seen, entry)
	})

	id, notify := l.AppendDeferred(MintPayload{BatchID: "CC-PROJ-1-1"}, "", "addr")
	if l.Len() != 1 {
		t.Fatalf("deferred append not recorded -- length %d", l.Len())
	}
	if len(seen) != 0 {
		t.Fatalf("subscriber ran before the notify function")
	}

	notify()
	if len(seen) != 1 || seen[0].ID != id {
		t.Fatalf("unexpected notifications after notify: %d", len(seen))
	}
}
