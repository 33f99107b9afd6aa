// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/decred/dcrd/dcrjson/v4"

	"github.com/YadnyeshUbhad/bluecarbond/ledger"
	"github.com/YadnyeshUbhad/bluecarbond/mrv"
	"github.com/YadnyeshUbhad/bluecarbond/rpc/jsonrpc/types"
)

// newTestServer returns a server over a fresh ledger and registry with
// the given credentials.
func newTestServer(t *testing.T, user, pass string) *Server {
	t.Helper()
	l := ledger.New()
	s, err := New(&Config{
		User:       user,
		Pass:       pass,
		MaxClients: 10,
		Ledger:     l,
		Registry:   mrv.New(l, []string{"NCCR_Node_1"}),
	})
	if err != nil {
		t.Fatalf("unexpected error creating server: %v", err)
	}
	return s
}

// TestCheckAuth ensures HTTP basic credentials are enforced when
// configured.
func TestCheckAuth(t *testing.T) {
	s := newTestServer(t, "user", "pass")

	newRequest := func(authHeader string) *http.Request {
		r := &http.Request{Header: make(http.Header)}
		if authHeader != "" {
			r.Header["Authorization"] = []string{authHeader}
		}
		return r
	}
	goodAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:pass"))
	badAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:nope"))

	if _, err := s.checkAuth(newRequest(goodAuth)); err != nil {
		t.Errorf("valid credentials rejected: %v", err)
	}
	if _, err := s.checkAuth(newRequest(badAuth)); err == nil {
		t.Error("invalid credentials accepted")
	}
	if _, err := s.checkAuth(newRequest("")); err == nil {
		t.Error("missing credentials accepted")
	}

	// Auth is disabled entirely without configured credentials.
	open := newTestServer(t, "", "")
	if _, err := open.checkAuth(newRequest("")); err != nil {
		t.Errorf("open server rejected request: %v", err)
	}
}

// TestHandlerFlow exercises the submit, verify, transfer, and query
// handlers end to end against the in-process ledger.
func TestHandlerFlow(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, "user", "pass")

	// Submit a project.
	submit := &types.SubmitProjectCmd{Project: types.ProjectData{
		ID:          "PROJ-1",
		Name:        "Salt Marsh Recovery",
		Ecosystem:   "saltmarsh",
		SubmitterID: "ngo-1",
	}}
	if _, err := handleSubmitProject(ctx, s, submit); err != nil {
		t.Fatalf("submitproject failed: %v", err)
	}

	// Approve it, minting credits.
	verify := &types.VerifyProjectCmd{
		ProjectID:       "PROJ-1",
		VerifierNode:    "NCCR_Node_1",
		Decision:        "approved",
		CreditsApproved: 100,
	}
	result, err := handleVerifyProject(ctx, s, verify)
	if err != nil {
		t.Fatalf("verifyproject failed: %v", err)
	}
	verifyResult := result.(types.VerifyProjectResult)
	if verifyResult.Status != "verified" || verifyResult.BatchID == "" {
		t.Fatalf("unexpected verify result: %+v", verifyResult)
	}

	// Query the minted batch.
	batchID := verifyResult.BatchID
	result, err = handleGetBatch(ctx, s, &types.GetBatchCmd{BatchID: batchID})
	if err != nil {
		t.Fatalf("getbatch failed: %v", err)
	}
	batch := result.(types.Batch)
	if batch.IssuedAmount != 100 || batch.AvailableAmount != 100 {
		t.Fatalf("unexpected batch amounts: %+v", batch)
	}

	// Transfer a fraction to another address.
	amount := 40.0
	transfer := &types.TransferCreditsCmd{
		BatchID: batchID,
		From:    batch.PrimaryOwner,
		To:      "alice",
		Amount:  &amount,
	}
	result, err = handleTransferCredits(ctx, s, transfer)
	if err != nil {
		t.Fatalf("transfercredits failed: %v", err)
	}
	if moved := result.(types.TransferCreditsResult).Moved; moved != 40 {
		t.Fatalf("unexpected moved amount -- got %v, want 40", moved)
	}

	// Retire the recipient's full balance via the default amount.
	retire := &types.RetireCreditsCmd{BatchID: batchID, Owner: "alice"}
	result, err = handleRetireCredits(ctx, s, retire)
	if err != nil {
		t.Fatalf("retirecredits failed: %v", err)
	}
	if retired := result.(types.RetireCreditsResult).Retired; retired != 40 {
		t.Fatalf("unexpected retired amount -- got %v, want 40", retired)
	}

	// Aggregate stats reflect the above operations.
	result, err = handleGetStats(ctx, s, &types.GetStatsCmd{})
	if err != nil {
		t.Fatalf("getstats failed: %v", err)
	}
	stats := result.(types.GetStatsResult)
	if stats.TotalSupply != 100 || stats.RetiredSupply != 40 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TotalProjects != 1 || stats.VerifiedProjects != 1 {
		t.Fatalf("unexpected project counts: %+v", stats)
	}
}

// TestHandlerErrors ensures rule violations surface as the expected RPC
// error codes.
func TestHandlerErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, "user", "pass")

	// Unknown batch maps to an invalid parameter error.
	_, err := handleGetBatch(ctx, s, &types.GetBatchCmd{BatchID: "CC-NONE-9"})
	var rpcErr *dcrjson.RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != dcrjson.ErrRPCInvalidParameter {
		t.Fatalf("unexpected error for unknown batch: %v", err)
	}

	// Unauthorized verifier maps to the misc rule error code.
	s.cfg.Registry.Submit(mrv.ProjectData{ID: "PROJ-1", SubmitterID: "ngo"})
	verify := &types.VerifyProjectCmd{
		ProjectID:       "PROJ-1",
		VerifierNode:    "Rogue_Node",
		Decision:        "approved",
		CreditsApproved: 10,
	}
	_, err = handleVerifyProject(ctx, s, verify)
	if !errors.As(err, &rpcErr) || rpcErr.Code != dcrjson.ErrRPCMisc {
		t.Fatalf("unexpected error for unauthorized verifier: %v", err)
	}
}

// TestParseCmd ensures unknown methods and malformed parameters are
// rejected with the proper JSON-RPC errors.
func TestParseCmd(t *testing.T) {
	parsed := parseCmd(&dcrjson.Request{
		Jsonrpc: "1.0",
		Method:  "bogusmethod",
		Params:  nil,
		ID:      1,
	})
	if parsed.err == nil || parsed.err.Code != dcrjson.ErrRPCMethodNotFound.Code {
		t.Fatalf("unexpected parse error: %v", parsed.err)
	}
}
