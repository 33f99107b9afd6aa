// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package backend

import (
	"context"
	"testing"
	"time"

	"github.com/YadnyeshUbhad/bluecarbond/credit"
	"github.com/YadnyeshUbhad/bluecarbond/ledger"
	"github.com/YadnyeshUbhad/bluecarbond/mrv"
)

// newTestConfig returns a config over a fresh ledger and registry.
func newTestConfig(t *testing.T) *Config {
	t.Helper()
	l := ledger.New()
	return &Config{
		Ledger:   l,
		Registry: mrv.New(l, []string{"NCCR_Node_1"}),
	}
}

// TestConnectSimulated ensures the simulation is selected directly when
// no remote host is configured.
func TestConnectSimulated(t *testing.T) {
	be, err := Connect(context.Background(), newTestConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if be.Kind() != KindSimulated {
		t.Fatalf("unexpected backend kind -- got %s, want %s", be.Kind(),
			KindSimulated)
	}
}

// TestConnectFallback ensures an unreachable remote falls back to the
// simulation instead of failing.
func TestConnectFallback(t *testing.T) {
	cfg := newTestConfig(t)
	// Reserved port that nothing listens on.
	cfg.RemoteHost = "127.0.0.1:1"
	cfg.DisableTLS = true
	cfg.ProbeTimeout = 500 * time.Millisecond

	be, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if be.Kind() != KindSimulated {
		t.Fatalf("unexpected backend kind -- got %s, want %s", be.Kind(),
			KindSimulated)
	}
}

// TestSimulatedOperations exercises the full operation surface of the
// simulated backend end to end.
func TestSimulatedOperations(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)
	be := NewSimulated(cfg.Ledger, cfg.Registry)

	// Submit and approve a project.
	project := mrv.ProjectData{
		ID:          "PROJ-1",
		Name:        "Seagrass Meadow Recovery",
		Ecosystem:   "seagrass",
		SubmitterID: "ngo-1",
	}
	if entryID, err := be.SubmitProject(ctx, project); err != nil || entryID == "" {
		t.Fatalf("submit failed: %v (id %q)", err, entryID)
	}
	approval := mrv.Approval{
		Decision:        mrv.DecisionApproved,
		CreditsApproved: 10000,
	}
	if err := be.VerifyProject(ctx, "PROJ-1", "NCCR_Node_1", approval); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	// The approval minted a batch to the project address.
	primary := credit.ProjectAddress("PROJ-1")
	batchID := "CC-PROJ-1-1"
	balance, err := be.Balance(ctx, batchID, primary)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance != 10000 {
		t.Fatalf("unexpected balance -- got %v, want 10000", balance)
	}

	// Explicit amount transfer followed by a full-balance retirement.
	amount := credit.Amount(4000)
	moved, err := be.TransferCredits(ctx, batchID, primary, "alice", &amount)
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if moved != 4000 {
		t.Fatalf("unexpected moved amount -- got %v, want 4000", moved)
	}
	retired, err := be.RetireCredits(ctx, batchID, "alice", nil, "Offsetting")
	if err != nil {
		t.Fatalf("retire failed: %v", err)
	}
	if retired != 4000 {
		t.Fatalf("unexpected retired amount -- got %v, want 4000", retired)
	}

	// A direct mint through the backend.
	mintedID, err := be.MintCredits(ctx, "PROJ-1", 5000, credit.Metadata{})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if mintedID == "" {
		t.Fatal("empty batch id from mint")
	}

	// Field evidence for the project.
	record := mrv.FieldRecord{
		ID:          "FD-1",
		ProjectID:   "PROJ-1",
		SubmitterID: "field-team",
		CollectedAt: time.Now(),
	}
	if entryID, err := be.RecordFieldData(ctx, record); err != nil || entryID == "" {
		t.Fatalf("field data failed: %v (id %q)", err, entryID)
	}

	info, ok := cfg.Registry.Info("PROJ-1")
	if !ok || len(info.FieldData) != 1 {
		t.Fatalf("field data not linked through the backend")
	}

	// Aggregate stats are reachable through the interface as well.
	stats, err := be.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalSupply != 15000 || stats.RetiredSupply != 4000 {
		t.Fatalf("unexpected supply stats -- got %v/%v, want 15000/4000",
			stats.TotalSupply, stats.RetiredSupply)
	}
	if stats.TotalBatches != 2 {
		t.Fatalf("unexpected batch count -- got %d, want 2",
			stats.TotalBatches)
	}
}
