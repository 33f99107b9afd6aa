// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/YadnyeshUbhad/bluecarbond/credit"
	"github.com/YadnyeshUbhad/bluecarbond/txlog"
)

// mintTestBatch mints a batch on the given ledger and returns its id and
// primary owner address.
func mintTestBatch(t *testing.T, l *Ledger, projectID string, amount credit.Amount) (string, string) {
	t.Helper()
	batchID, err := l.Mint(projectID, amount, credit.Metadata{
		ProjectName: "Test Restoration",
		VintageYear: 2025,
	})
	if err != nil {
		t.Fatalf("unexpected mint error: %v", err)
	}
	return batchID, credit.ProjectAddress(projectID)
}

// checkConservation fails the test unless the circulating balances plus
// the retired supply equal the total supply.
func checkConservation(t *testing.T, l *Ledger) {
	t.Helper()
	var circulating credit.Amount
	for _, entry := range l.Log().ByKind(txlog.KindMint) {
		payload := entry.Payload.(txlog.MintPayload)
		snapshot, ok := l.BatchInfo(payload.BatchID)
		if !ok {
			t.Fatalf("minted batch %s missing", payload.BatchID)
		}
		circulating += snapshot.Available
	}
	if circulating+l.RetiredSupply() != l.TotalSupply() {
		t.Fatalf("conservation violated: %v + %v != %v", circulating,
			l.RetiredSupply(), l.TotalSupply())
	}
}

// TestMint ensures minting assigns sequential batch ids, credits the
// project address, and records a mint entry.
func TestMint(t *testing.T) {
	l := New()

	batchID, primary := mintTestBatch(t, l, "PROJ", 100000)
	if batchID != "CC-PROJ-1" {
		t.Errorf("unexpected batch id -- got %s, want CC-PROJ-1", batchID)
	}
	if got := l.BalanceOf(batchID, primary); got != 100000 {
		t.Errorf("unexpected primary balance -- got %v, want 100000", got)
	}
	if got := l.TotalSupply(); got != 100000 {
		t.Errorf("unexpected total supply -- got %v, want 100000", got)
	}

	// The sequence number is global across projects.
	batchID2, _ := mintTestBatch(t, l, "OTHER", 5000)
	if batchID2 != "CC-OTHER-2" {
		t.Errorf("unexpected batch id -- got %s, want CC-OTHER-2", batchID2)
	}

	mints := l.Log().ByKind(txlog.KindMint)
	if len(mints) != 2 {
		t.Fatalf("unexpected mint entry count -- got %d, want 2", len(mints))
	}
	payload := mints[0].Payload.(txlog.MintPayload)
	if payload.BatchID != batchID || payload.Owner != primary {
		t.Errorf("unexpected mint payload: %+v", payload)
	}

	// Invalid mints leave the supply and sequence untouched.
	if _, err := l.Mint("PROJ", 0, credit.Metadata{}); !errors.Is(err, credit.ErrInvalidAmount) {
		t.Errorf("unexpected error -- got %v, want %v", err,
			credit.ErrInvalidAmount)
	}
	if got := l.TotalSupply(); got != 105000 {
		t.Errorf("failed mint modified supply -- got %v", got)
	}
	batchID3, _ := mintTestBatch(t, l, "PROJ", 1000)
	if batchID3 != "CC-PROJ-3" {
		t.Errorf("failed mint consumed a sequence number -- got %s", batchID3)
	}
}

// TestTransfer ensures ledger transfers move balances, log both balance
// deltas, and reject unknown batches.
func TestTransfer(t *testing.T) {
	l := New()
	batchID, primary := mintTestBatch(t, l, "PROJ", 100000)

	if err := l.Transfer(batchID, primary, "alice", 30000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := l.BalanceOf(batchID, "alice"); got != 30000 {
		t.Errorf("unexpected alice balance -- got %v, want 30000", got)
	}

	entries := l.Log().ByKind(txlog.KindTransfer)
	if len(entries) != 1 {
		t.Fatalf("unexpected transfer entry count -- got %d, want 1",
			len(entries))
	}
	payload := entries[0].Payload.(txlog.TransferPayload)
	if payload.FromBefore != 100000 || payload.FromAfter != 70000 {
		t.Errorf("unexpected sender deltas: %+v", payload)
	}
	if payload.ToBefore != 0 || payload.ToAfter != 30000 {
		t.Errorf("unexpected receiver deltas: %+v", payload)
	}
	if entries[0].From != primary || entries[0].To != "alice" {
		t.Errorf("unexpected participants %q/%q", entries[0].From,
			entries[0].To)
	}

	// Unknown batch.
	err := l.Transfer("CC-NONE-9", primary, "alice", 1)
	if !errors.Is(err, ErrUnknownBatch) {
		t.Errorf("unexpected error -- got %v, want %v", err, ErrUnknownBatch)
	}

	// Rule violations pass through from the batch level.
	err = l.Transfer(batchID, "alice", "bob", 99999999)
	if !errors.Is(err, credit.ErrInsufficientBalance) {
		t.Errorf("unexpected error -- got %v, want %v", err,
			credit.ErrInsufficientBalance)
	}

	checkConservation(t, l)
}

// TestRetire ensures retirements update the retired supply and log the
// remaining balances, and that full-balance retirement seals batches.
func TestRetire(t *testing.T) {
	l := New()
	batchID, primary := mintTestBatch(t, l, "PROJ", 10000)

	if err := l.Retire(batchID, primary, 4000, "Offsetting"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := l.RetiredSupply(); got != 4000 {
		t.Errorf("unexpected retired supply -- got %v, want 4000", got)
	}
	checkConservation(t, l)

	retired, err := l.RetireAll(batchID, primary, "Remainder")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retired != 6000 {
		t.Errorf("unexpected retired amount -- got %v, want 6000", retired)
	}

	snapshot, ok := l.BatchInfo(batchID)
	if !ok {
		t.Fatal("batch missing")
	}
	if !snapshot.FullyRetired {
		t.Error("batch not fully retired")
	}

	entries := l.Log().ByKind(txlog.KindRetire)
	if len(entries) != 2 {
		t.Fatalf("unexpected retire entry count -- got %d, want 2",
			len(entries))
	}
	payload := entries[1].Payload.(txlog.RetirePayload)
	if !payload.FullRetirement || payload.Remaining != 0 {
		t.Errorf("unexpected final retire payload: %+v", payload)
	}
	if payload.TotalRetired != 10000 {
		t.Errorf("unexpected total retired -- got %v, want 10000",
			payload.TotalRetired)
	}

	checkConservation(t, l)
}

// TestBatchTransfer ensures batched transfers apply independently with
// failures partitioned from successes and a summary entry logged.
func TestBatchTransfer(t *testing.T) {
	l := New()
	batchID, primary := mintTestBatch(t, l, "PROJ", 10000)

	explicit := credit.Amount(2000)
	requests := []TransferRequest{{
		BatchID: batchID,
		From:    primary,
		To:      "alice",
		Amount:  &explicit,
	}, {
		BatchID: "CC-NONE-9",
		From:    primary,
		To:      "alice",
		Amount:  &explicit,
	}, {
		// Full balance move via nil amount.
		BatchID: batchID,
		From:    "alice",
		To:      "bob",
	}}

	result := l.BatchTransfer(requests)
	if len(result.Successful) != 2 || len(result.Failed) != 1 {
		t.Fatalf("unexpected partition -- got %d/%d, want 2/1",
			len(result.Successful), len(result.Failed))
	}
	if result.Successful[1].Moved != 2000 {
		t.Errorf("unexpected moved amount -- got %v, want 2000",
			result.Successful[1].Moved)
	}
	if !errors.Is(result.Failed[0].Err, ErrUnknownBatch) {
		t.Errorf("unexpected item error: %v", result.Failed[0].Err)
	}
	if got := l.BalanceOf(batchID, "bob"); got != 2000 {
		t.Errorf("unexpected bob balance -- got %v, want 2000", got)
	}

	summaries := l.Log().ByKind(txlog.KindBatchTransfer)
	if len(summaries) != 1 {
		t.Fatalf("unexpected summary count -- got %d, want 1", len(summaries))
	}
	payload := summaries[0].Payload.(txlog.BatchTransferPayload)
	if payload.Size != 3 || payload.Successful != 2 || payload.Failed != 1 {
		t.Errorf("unexpected summary payload: %+v", payload)
	}
}

// TestBatchRetire ensures batched retirements share the partial failure
// semantics of batched transfers.
func TestBatchRetire(t *testing.T) {
	l := New()
	batchID, primary := mintTestBatch(t, l, "PROJ", 10000)

	tooMuch := credit.Amount(99999999)
	requests := []RetireRequest{{
		BatchID: batchID,
		Owner:   primary,
		Amount:  &tooMuch,
		Reason:  "too much",
	}, {
		BatchID: batchID,
		Owner:   primary,
		Reason:  "everything",
	}}

	result := l.BatchRetire(requests)
	if len(result.Successful) != 1 || len(result.Failed) != 1 {
		t.Fatalf("unexpected partition -- got %d/%d, want 1/1",
			len(result.Successful), len(result.Failed))
	}
	if result.Successful[0].Retired != 10000 {
		t.Errorf("unexpected retired amount -- got %v, want 10000",
			result.Successful[0].Retired)
	}
	if got := l.RetiredSupply(); got != 10000 {
		t.Errorf("unexpected retired supply -- got %v, want 10000", got)
	}

	summaries := l.Log().ByKind(txlog.KindBatchRetire)
	if len(summaries) != 1 {
		t.Fatalf("unexpected summary count -- got %d, want 1", len(summaries))
	}
	checkConservation(t, l)
}

// TestPortfolio ensures portfolio queries aggregate every non-zero
// holding along with the entries naming the address.
func TestPortfolio(t *testing.T) {
	l := New()
	batch1, primary1 := mintTestBatch(t, l, "PROJ", 10000)
	batch2, _ := mintTestBatch(t, l, "OTHER", 5000)
	primary2 := credit.ProjectAddress("OTHER")

	if err := l.Transfer(batch1, primary1, "alice", 3000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Transfer(batch2, primary2, "alice", 1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Retire(batch2, "alice", 1000, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	portfolio := l.PortfolioOf("alice")
	if portfolio.TotalBalance != 3000 {
		t.Errorf("unexpected total balance -- got %v, want 3000",
			portfolio.TotalBalance)
	}
	// The entire second holding was retired, so only one remains.
	if len(portfolio.Holdings) != 1 || portfolio.Holdings[0].BatchID != batch1 {
		t.Errorf("unexpected holdings: %+v", portfolio.Holdings)
	}
	// Two transfers in plus one retirement out.
	if len(portfolio.Entries) != 3 {
		t.Errorf("unexpected entry count -- got %d, want 3",
			len(portfolio.Entries))
	}

	empty := l.PortfolioOf("nobody")
	if empty.TotalBalance != 0 || len(empty.Holdings) != 0 || len(empty.Entries) != 0 {
		t.Errorf("unexpected portfolio for unknown address: %+v", empty)
	}
}

// TestBatchQueries ensures vintage and project filtered queries return
// matching batches in mint order.
func TestBatchQueries(t *testing.T) {
	l := New()
	mint := func(projectID string, vintage int) string {
		batchID, err := l.Mint(projectID, 1000, credit.Metadata{
			VintageYear: vintage,
		})
		if err != nil {
			t.Fatalf("unexpected mint error: %v", err)
		}
		return batchID
	}

	b1 := mint("PROJ", 2024)
	b2 := mint("PROJ", 2025)
	b3 := mint("OTHER", 2025)

	by2025 := l.BatchesByVintage(2025)
	if len(by2025) != 2 || by2025[0].BatchID != b2 || by2025[1].BatchID != b3 {
		t.Errorf("unexpected vintage query result: %+v", by2025)
	}
	if got := len(l.BatchesByVintage(1999)); got != 0 {
		t.Errorf("unexpected batch count for empty vintage -- got %d", got)
	}

	byProj := l.BatchesByProject("PROJ")
	if len(byProj) != 2 || byProj[0].BatchID != b1 || byProj[1].BatchID != b2 {
		t.Errorf("unexpected project query result: %+v", byProj)
	}
}

// TestRetirementHistory ensures the global history sorts newest first
// and the address filter matches only the retiring owner.
func TestRetirementHistory(t *testing.T) {
	l := New()
	batchID, primary := mintTestBatch(t, l, "PROJ", 10000)

	if err := l.Transfer(batchID, primary, "alice", 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, owner := range []string{primary, "alice", "alice"} {
		reason := fmt.Sprintf("retirement %d", i)
		if err := l.Retire(batchID, owner, 1000, reason); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	history := l.RetirementHistory("")
	if len(history) != 3 {
		t.Fatalf("unexpected history length -- got %d, want 3", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Time.After(history[i-1].Time) {
			t.Fatal("history not sorted newest first")
		}
	}

	aliceOnly := l.RetirementHistory("alice")
	if len(aliceOnly) != 2 {
		t.Fatalf("unexpected filtered length -- got %d, want 2",
			len(aliceOnly))
	}
	for _, entry := range aliceOnly {
		if entry.Owner != "alice" {
			t.Errorf("filter returned owner %q", entry.Owner)
		}
	}
}

// TestConcurrentTransferLogOrder ensures log entries are appended in
// the same order their transfers commit, so replaying the recorded
// before and after balances from the initial state is consistent even
// under concurrent mutation.
func TestConcurrentTransferLogOrder(t *testing.T) {
	l := New()
	batchID, primary := mintTestBatch(t, l, "PROJ-1", 100000)

	const workers = 8
	const transfersPerWorker = 25
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < transfersPerWorker; j++ {
				if err := l.Transfer(batchID, primary, "alice", 1); err != nil {
					t.Errorf("unexpected transfer error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	entries := l.Log().ByKind(txlog.KindTransfer)
	if len(entries) != workers*transfersPerWorker {
		t.Fatalf("unexpected entry count -- got %d, want %d", len(entries),
			workers*transfersPerWorker)
	}

	// Each entry's sender balance must pick up exactly where the
	// previous one left off.
	balance := credit.Amount(100000)
	for i, entry := range entries {
		payload := entry.Payload.(txlog.TransferPayload)
		if payload.FromBefore != balance {
			t.Fatalf("entry %d out of sequence -- sender balance %v, want %v",
				i, payload.FromBefore, balance)
		}
		if payload.FromAfter != payload.FromBefore-payload.Amount {
			t.Fatalf("entry %d inconsistent -- before %v, after %v, amount %v",
				i, payload.FromBefore, payload.FromAfter, payload.Amount)
		}
		balance = payload.FromAfter
	}
	if got := l.BalanceOf(batchID, primary); got != balance {
		t.Fatalf("replayed balance %v does not match ledger %v", balance, got)
	}
	checkConservation(t, l)
}
