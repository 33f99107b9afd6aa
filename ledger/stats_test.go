// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"reflect"
	"testing"

	"github.com/YadnyeshUbhad/bluecarbond/credit"
)

// TestStats ensures the aggregate statistics reflect the supply state,
// batch partition, and participant counts.
func TestStats(t *testing.T) {
	l := New()

	// Empty ledger.
	stats := l.Stats()
	if stats.TotalSupply != 0 || stats.RetirementRate != 0 {
		t.Fatalf("unexpected empty stats: %+v", stats)
	}

	mint := func(projectID string, vintage int, standard string, amount credit.Amount) string {
		batchID, err := l.Mint(projectID, amount, credit.Metadata{
			VintageYear: vintage,
			Standard:    standard,
		})
		if err != nil {
			t.Fatalf("unexpected mint error: %v", err)
		}
		return batchID
	}

	b1 := mint("PROJ", 2024, "VCS", 10000)
	b2 := mint("PROJ", 2025, "GS", 10000)
	mint("OTHER", 2025, "VCS", 20000)

	primary := credit.ProjectAddress("PROJ")
	if err := l.Transfer(b1, primary, "alice", 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Fully retire b2 and partially retire b1.
	if _, err := l.RetireAll(b2, primary, "all of it"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Retire(b1, "alice", 1000, "some of it"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats = l.Stats()
	if stats.TotalSupply != 40000 {
		t.Errorf("unexpected total supply -- got %v, want 40000",
			stats.TotalSupply)
	}
	if stats.RetiredSupply != 11000 || stats.ActiveSupply != 29000 {
		t.Errorf("unexpected supply split -- got %v/%v, want 11000/29000",
			stats.RetiredSupply, stats.ActiveSupply)
	}
	if stats.RetirementRate != 11000.0/40000.0 {
		t.Errorf("unexpected retirement rate -- got %v", stats.RetirementRate)
	}

	if stats.TotalBatches != 3 || stats.FullyRetiredBatches != 1 ||
		stats.PartiallyRetiredBatches != 1 || stats.ActiveBatches != 2 {
		t.Errorf("unexpected batch partition: %+v", stats)
	}

	if got := stats.VintageBreakdown[2025]; got.Total != 30000 || got.Retired != 10000 {
		t.Errorf("unexpected 2025 vintage breakdown: %+v", got)
	}
	if got := stats.StandardBreakdown["GS"]; got.Total != 10000 || got.Active != 0 {
		t.Errorf("unexpected GS breakdown: %+v", got)
	}
	if got := stats.ProjectBreakdown["PROJ"]; got.Total != 20000 || got.Retired != 11000 {
		t.Errorf("unexpected PROJ breakdown: %+v", got)
	}

	// Three mints, one transfer, two retirements.
	if stats.TotalEntries != 6 {
		t.Errorf("unexpected entry count -- got %d, want 6",
			stats.TotalEntries)
	}
	// Two project addresses plus alice.
	if stats.UniqueAddresses != 3 {
		t.Errorf("unexpected address count -- got %d, want 3",
			stats.UniqueAddresses)
	}

	// Stats is a pure query.
	if again := l.Stats(); !reflect.DeepEqual(stats, again) {
		t.Error("repeated stats calls differ without mutation")
	}
}
