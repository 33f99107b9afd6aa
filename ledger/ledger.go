// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package ledger implements the registry of all minted credit batches
along with the global supply accounting and the transaction log.

The ledger is the single authority for minting, transferring, and
retiring credits.  Every mutating operation appends an entry to the
owned transaction log so the complete history can be reconstructed for
audit.  A single coarse lock serializes all mutations and guarantees
queries observe a state consistent with some serial order of completed
operations.
*/
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/YadnyeshUbhad/bluecarbond/credit"
	"github.com/YadnyeshUbhad/bluecarbond/txlog"
)

// Ledger tracks every minted credit batch, the global supply counters,
// and the transaction log.  It is safe for concurrent access.
type Ledger struct {
	mtx           sync.RWMutex
	batches       map[string]*credit.Batch
	mintOrder     []string
	txLog         *txlog.Log
	totalSupply   credit.Amount
	retiredSupply credit.Amount
	batchSeq      uint64
}

// New returns a ledger with no batches and a fresh transaction log.
func New() *Ledger {
	return &Ledger{
		batches: make(map[string]*credit.Batch),
		txLog:   txlog.NewLog(),
	}
}

// Log returns the transaction log owned by the ledger.  The log is
// internally synchronized and may be queried or subscribed to directly.
func (l *Ledger) Log() *txlog.Log {
	return l.txLog
}

// Mint creates a new credit batch for the given project, credits the
// entire amount to the project's primary address, and records a mint
// entry.  The amount must be greater than zero.
func (l *Ledger) Mint(projectID string, amount credit.Amount, metadata credit.Metadata) (string, error) {
	l.mtx.Lock()

	l.batchSeq++
	batchID := fmt.Sprintf("CC-%s-%d", projectID, l.batchSeq)
	batch, err := credit.New(batchID, projectID, amount, metadata)
	if err != nil {
		l.batchSeq--
		l.mtx.Unlock()
		return "", err
	}

	l.batches[batchID] = batch
	l.mintOrder = append(l.mintOrder, batchID)
	l.totalSupply += amount
	owner := batch.PrimaryOwner()

	// The entry is appended before the lock is released so the log order
	// matches the commit order and any state visible to queries already
	// has its entry.  The subscriber callbacks run outside the lock.
	_, notify := l.txLog.AppendDeferred(txlog.MintPayload{
		BatchID:   batchID,
		ProjectID: projectID,
		Amount:    amount,
		Owner:     owner,
		Metadata:  metadata,
	}, "", owner)
	l.mtx.Unlock()
	notify()

	log.Infof("Minted batch %s (%v) for project %s to %s", batchID,
		amount, projectID, owner)
	return batchID, nil
}

// transfer applies a single transfer under the ledger lock and appends
// the resulting log entry.  When all is set the amount parameter is
// ignored and the sender's full balance is moved instead.
func (l *Ledger) transfer(batchID, from, to string, amount credit.Amount, all bool) (credit.Amount, error) {
	l.mtx.Lock()
	batch, ok := l.batches[batchID]
	if !ok {
		l.mtx.Unlock()
		str := fmt.Sprintf("batch %s does not exist", batchID)
		return 0, ruleError(ErrUnknownBatch, str)
	}

	if all {
		amount = batch.BalanceOf(from)
	}
	fromBefore := batch.BalanceOf(from)
	toBefore := batch.BalanceOf(to)
	if err := batch.Transfer(from, to, amount); err != nil {
		l.mtx.Unlock()
		return 0, err
	}
	fromAfter := batch.BalanceOf(from)
	toAfter := batch.BalanceOf(to)

	// Append under the lock so the log order matches the commit order.
	_, notify := l.txLog.AppendDeferred(txlog.TransferPayload{
		BatchID:    batchID,
		Amount:     amount,
		FromBefore: fromBefore,
		FromAfter:  fromAfter,
		ToBefore:   toBefore,
		ToAfter:    toAfter,
	}, from, to)
	l.mtx.Unlock()
	notify()

	log.Debugf("Transferred %v of batch %s from %s to %s", amount,
		batchID, from, to)
	return amount, nil
}

// Transfer moves amount credits of the given batch between two
// addresses.  It fails with a typed error, leaving all state unchanged,
// when the batch is unknown or the batch-level transfer preconditions
// are violated.
func (l *Ledger) Transfer(batchID, from, to string, amount credit.Amount) error {
	_, err := l.transfer(batchID, from, to, amount, false)
	return err
}

// TransferAll moves the sender's entire balance of the given batch and
// returns the amount moved.
func (l *Ledger) TransferAll(batchID, from, to string) (credit.Amount, error) {
	return l.transfer(batchID, from, to, 0, true)
}

// retire applies a single retirement under the ledger lock, updates the
// global retired supply, and appends the resulting log entry.
func (l *Ledger) retire(batchID, owner string, amount credit.Amount, reason string, all bool) (credit.Amount, error) {
	l.mtx.Lock()
	batch, ok := l.batches[batchID]
	if !ok {
		l.mtx.Unlock()
		str := fmt.Sprintf("batch %s does not exist", batchID)
		return 0, ruleError(ErrUnknownBatch, str)
	}

	if all {
		amount = batch.BalanceOf(owner)
	}
	if err := batch.Retire(owner, amount, reason); err != nil {
		l.mtx.Unlock()
		return 0, err
	}
	l.retiredSupply += amount
	remaining := batch.BalanceOf(owner)
	totalRetired := batch.TotalRetired()
	full := batch.FullyRetired()

	// Append under the lock so the log order matches the commit order.
	_, notify := l.txLog.AppendDeferred(txlog.RetirePayload{
		BatchID:        batchID,
		Owner:          owner,
		Amount:         amount,
		Remaining:      remaining,
		TotalRetired:   totalRetired,
		Reason:         reason,
		FullRetirement: full,
	}, owner, "")
	l.mtx.Unlock()
	notify()

	log.Infof("Retired %v of batch %s held by %s (%q)", amount, batchID,
		owner, reason)
	if full {
		log.Infof("Batch %s is now fully retired", batchID)
	}
	return amount, nil
}

// Retire permanently removes amount credits held by owner from
// circulation.  Retirement is irreversible.
func (l *Ledger) Retire(batchID, owner string, amount credit.Amount, reason string) error {
	_, err := l.retire(batchID, owner, amount, reason, false)
	return err
}

// RetireAll permanently retires the owner's entire balance of the given
// batch and returns the amount retired.
func (l *Ledger) RetireAll(batchID, owner, reason string) (credit.Amount, error) {
	return l.retire(batchID, owner, 0, reason, true)
}

// TransferRequest describes one item of a batch transfer call.  A nil
// Amount moves the sender's entire balance.
type TransferRequest struct {
	BatchID string
	From    string
	To      string
	Amount  *credit.Amount
}

// TransferOutcome reports the result of one item of a batch transfer
// call.  Err is nil when the item succeeded; Moved is the amount
// actually transferred.
type TransferOutcome struct {
	Request TransferRequest
	Moved   credit.Amount
	Err     error
}

// BatchTransferResult partitions the per-item outcomes of a batch
// transfer call.
type BatchTransferResult struct {
	Successful []TransferOutcome
	Failed     []TransferOutcome
}

// BatchTransfer applies each transfer request independently.  A failure
// in one request never rolls back or blocks any other request in the
// same call; the outcomes are partitioned into successes and failures.
// One summary entry is appended to the log in addition to the per-item
// entries produced by the individual transfers.
func (l *Ledger) BatchTransfer(requests []TransferRequest) BatchTransferResult {
	var result BatchTransferResult
	for _, req := range requests {
		var moved credit.Amount
		var err error
		if req.Amount != nil {
			moved, err = *req.Amount, l.Transfer(req.BatchID, req.From, req.To, *req.Amount)
		} else {
			moved, err = l.TransferAll(req.BatchID, req.From, req.To)
		}

		outcome := TransferOutcome{Request: req, Moved: moved, Err: err}
		if err != nil {
			outcome.Moved = 0
			result.Failed = append(result.Failed, outcome)
			continue
		}
		result.Successful = append(result.Successful, outcome)
	}

	l.txLog.Append(txlog.BatchTransferPayload{
		Size:       len(requests),
		Successful: len(result.Successful),
		Failed:     len(result.Failed),
	}, "", "")
	return result
}

// RetireRequest describes one item of a batch retire call.  A nil
// Amount retires the owner's entire balance.
type RetireRequest struct {
	BatchID string
	Owner   string
	Amount  *credit.Amount
	Reason  string
}

// RetireOutcome reports the result of one item of a batch retire call.
type RetireOutcome struct {
	Request RetireRequest
	Retired credit.Amount
	Err     error
}

// BatchRetireResult partitions the per-item outcomes of a batch retire
// call.
type BatchRetireResult struct {
	Successful []RetireOutcome
	Failed     []RetireOutcome
}

// BatchRetire applies each retire request independently with the same
// partial-failure semantics as BatchTransfer.
func (l *Ledger) BatchRetire(requests []RetireRequest) BatchRetireResult {
	var result BatchRetireResult
	for _, req := range requests {
		var retired credit.Amount
		var err error
		if req.Amount != nil {
			retired, err = *req.Amount, l.Retire(req.BatchID, req.Owner, *req.Amount, req.Reason)
		} else {
			retired, err = l.RetireAll(req.BatchID, req.Owner, req.Reason)
		}

		outcome := RetireOutcome{Request: req, Retired: retired, Err: err}
		if err != nil {
			outcome.Retired = 0
			result.Failed = append(result.Failed, outcome)
			continue
		}
		result.Successful = append(result.Successful, outcome)
	}

	l.txLog.Append(txlog.BatchRetirePayload{
		Size:       len(requests),
		Successful: len(result.Successful),
		Failed:     len(result.Failed),
	}, "", "")
	return result
}

// BalanceOf returns the balance the given address holds in the given
// batch.  Unknown batches and absent addresses report zero.
func (l *Ledger) BalanceOf(batchID, addr string) credit.Amount {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	batch, ok := l.batches[batchID]
	if !ok {
		return 0
	}
	return batch.BalanceOf(addr)
}

// BatchInfo returns a deep-copy snapshot of the given batch.  The
// second return value reports whether the batch exists.
func (l *Ledger) BatchInfo(batchID string) (credit.Snapshot, bool) {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	batch, ok := l.batches[batchID]
	if !ok {
		return credit.Snapshot{}, false
	}
	return batch.Snapshot(), true
}

// Holding is a single non-zero batch balance within a portfolio.
type Holding struct {
	BatchID     string        `json:"batchid"`
	ProjectID   string        `json:"projectid"`
	Balance     credit.Amount `json:"balance"`
	VintageYear int           `json:"vintageyear"`
	Standard    string        `json:"standard"`
}

// Portfolio is the complete position of a single address: its total
// balance, every non-zero batch holding, and the log entries that name
// the address as a participant.
type Portfolio struct {
	Address      string        `json:"address"`
	TotalBalance credit.Amount `json:"totalbalance"`
	Holdings     []Holding     `json:"holdings"`
	Entries      []txlog.Entry `json:"entries"`
}

// PortfolioOf returns the portfolio of the given address.  Addresses
// with no history return an empty portfolio.
func (l *Ledger) PortfolioOf(addr string) Portfolio {
	portfolio := Portfolio{Address: addr}

	l.mtx.RLock()
	for _, batchID := range l.mintOrder {
		batch := l.batches[batchID]
		balance := batch.BalanceOf(addr)
		if balance <= 0 {
			continue
		}
		portfolio.Holdings = append(portfolio.Holdings, Holding{
			BatchID:     batchID,
			ProjectID:   batch.ProjectID(),
			Balance:     balance,
			VintageYear: batch.VintageYear(),
			Standard:    batch.Standard(),
		})
		portfolio.TotalBalance += balance
	}
	l.mtx.RUnlock()

	portfolio.Entries = l.txLog.ByParticipant(addr)
	return portfolio
}

// BatchesByVintage returns snapshots of every batch with the given
// vintage year, in mint order.
func (l *Ledger) BatchesByVintage(year int) []credit.Snapshot {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	var snapshots []credit.Snapshot
	for _, batchID := range l.mintOrder {
		if batch := l.batches[batchID]; batch.VintageYear() == year {
			snapshots = append(snapshots, batch.Snapshot())
		}
	}
	return snapshots
}

// BatchesByProject returns snapshots of every batch minted for the
// given project, in mint order.
func (l *Ledger) BatchesByProject(projectID string) []credit.Snapshot {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	var snapshots []credit.Snapshot
	for _, batchID := range l.mintOrder {
		if batch := l.batches[batchID]; batch.ProjectID() == projectID {
			snapshots = append(snapshots, batch.Snapshot())
		}
	}
	return snapshots
}

// RetirementEntry is a single retirement together with the batch and
// project it applies to.
type RetirementEntry struct {
	BatchID   string `json:"batchid"`
	ProjectID string `json:"projectid"`
	credit.RetirementRecord
}

// RetirementHistory returns all retirements, newest first, optionally
// filtered to those performed by the given address.  An empty address
// matches every retirement.
func (l *Ledger) RetirementHistory(addr string) []RetirementEntry {
	l.mtx.RLock()
	var history []RetirementEntry
	for _, batchID := range l.mintOrder {
		batch := l.batches[batchID]
		for _, record := range batch.Retirements() {
			if addr != "" && record.Owner != addr {
				continue
			}
			history = append(history, RetirementEntry{
				BatchID:          batchID,
				ProjectID:        batch.ProjectID(),
				RetirementRecord: record,
			})
		}
	}
	l.mtx.RUnlock()

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Time.After(history[j].Time)
	})
	return history
}

// TotalSupply returns the sum of all issued amounts ever minted.  The
// value is monotonically non-decreasing.
func (l *Ledger) TotalSupply() credit.Amount {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.totalSupply
}

// RetiredSupply returns the sum of all retirements across all batches.
// The value is monotonically non-decreasing.
func (l *Ledger) RetiredSupply() credit.Amount {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.retiredSupply
}
