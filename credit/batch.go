// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credit

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/decred/base58"
	"github.com/decred/dcrd/crypto/blake256"
)

// projectAddrID is the two-byte identifier prepended to the payload of a
// base58 check encoded project address.  It produces addresses with a
// recognizable prefix so they are visually distinct from ids and hashes.
var projectAddrID = [2]byte{0x0f, 0x21}

// ProjectAddress derives the deterministic primary address for a project.
// The entire issued amount of every batch minted for the project is
// initially credited to this address, which makes minting reproducible
// and auditable: the same project id always yields the same address.
func ProjectAddress(projectID string) string {
	hash := blake256.Sum256([]byte(projectID))
	return base58.CheckEncode(hash[:20], projectAddrID)
}

// shortID derives a compact hex identifier for transfer and retirement
// records from the provided components and the supplied timestamp.
func shortID(t time.Time, components ...string) string {
	h := blake256.New()
	for _, c := range components {
		h.Write([]byte(c))
	}
	fmt.Fprintf(h, "%d", t.UnixNano())
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// Metadata describes the provenance of a minted batch.  It is recorded
// at mint time and never modified afterwards.
type Metadata struct {
	ProjectName   string            `json:"projectname"`
	EcosystemType string            `json:"ecosystemtype"`
	Location      string            `json:"location"`
	TreeCount     int64             `json:"treecount,omitempty"`
	VerifierNode  string            `json:"verifiernode"`
	VerifiedAt    time.Time         `json:"verifiedat"`
	VintageYear   int               `json:"vintageyear"`
	Standard      string            `json:"standard"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// DefaultStandard is the certification standard assumed when the mint
// metadata does not name one.
const DefaultStandard = "VCS"

// TransferRecord describes a single completed transfer of credits
// between two addresses within a batch.
type TransferRecord struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Amount Amount    `json:"amount"`
	Time   time.Time `json:"time"`
	ID     string    `json:"id"`
}

// RetirementRecord describes a single permanent removal of credits from
// circulation.  Retirements are irreversible and the record is retained
// for the life of the process for audit.
type RetirementRecord struct {
	Owner  string    `json:"owner"`
	Amount Amount    `json:"amount"`
	Reason string    `json:"reason"`
	Time   time.Time `json:"time"`
	ID     string    `json:"id"`
}

// Batch is a fixed quantity of carbon credits minted against one
// verified project event.  The issued amount is immutable; ownership of
// fractions of it is tracked per address and reduced permanently by
// retirements.
//
// Batch is not safe for concurrent access.  The ledger that owns the
// batch is responsible for serializing all operations on it.
type Batch struct {
	batchID      string
	projectID    string
	issued       Amount
	available    Amount
	owners       map[string]Amount
	primaryOwner string
	mintedAt     time.Time
	transfers    []TransferRecord
	retirements  []RetirementRecord
	fullyRetired bool
	retiredAt    time.Time
	vintageYear  int
	standard     string
	metadata     Metadata
}

// New creates a batch with the entire issued amount credited to the
// project's deterministic primary address.  The issued amount must be
// greater than zero.
func New(batchID, projectID string, issued Amount, metadata Metadata) (*Batch, error) {
	if issued <= 0 {
		str := fmt.Sprintf("issued amount of %v is not positive", issued)
		return nil, ruleError(ErrInvalidAmount, str)
	}

	if metadata.VintageYear == 0 {
		metadata.VintageYear = time.Now().Year()
	}
	if metadata.Standard == "" {
		metadata.Standard = DefaultStandard
	}

	primary := ProjectAddress(projectID)
	return &Batch{
		batchID:      batchID,
		projectID:    projectID,
		issued:       issued,
		available:    issued,
		owners:       map[string]Amount{primary: issued},
		primaryOwner: primary,
		mintedAt:     time.Now(),
		vintageYear:  metadata.VintageYear,
		standard:     metadata.Standard,
		metadata:     metadata,
	}, nil
}

// ID returns the batch identifier assigned at mint time.
func (b *Batch) ID() string { return b.batchID }

// ProjectID returns the id of the project the batch was minted for.
func (b *Batch) ProjectID() string { return b.projectID }

// Issued returns the amount fixed at mint time.
func (b *Batch) Issued() Amount { return b.issued }

// Available returns the issued amount less everything retired so far.
func (b *Batch) Available() Amount { return b.available }

// PrimaryOwner returns the address currently holding the largest
// balance in the batch.
func (b *Batch) PrimaryOwner() string { return b.primaryOwner }

// FullyRetired reports whether the batch's entire issued amount has
// been permanently retired.
func (b *Batch) FullyRetired() bool { return b.fullyRetired }

// VintageYear returns the vintage year associated with the batch.
func (b *Batch) VintageYear() int { return b.vintageYear }

// Standard returns the certification standard of the batch.
func (b *Batch) Standard() string { return b.standard }

// BalanceOf returns the balance currently held by the given address.
// Addresses with no holding report zero.
func (b *Batch) BalanceOf(addr string) Amount {
	return b.owners[addr]
}

// TotalRetired returns the sum of all retirement records.
func (b *Batch) TotalRetired() Amount {
	var total Amount
	for i := range b.retirements {
		total += b.retirements[i].Amount
	}
	return total
}

// checkSpendable returns a rule error unless the given address holds at
// least amount credits and the batch still has credits in circulation.
func (b *Batch) checkSpendable(addr string, amount Amount) error {
	if b.fullyRetired {
		str := fmt.Sprintf("batch %s is fully retired", b.batchID)
		return ruleError(ErrBatchRetired, str)
	}
	if amount <= 0 {
		str := fmt.Sprintf("amount of %v is not positive", amount)
		return ruleError(ErrInvalidAmount, str)
	}
	balance, ok := b.owners[addr]
	if !ok || balance < amount {
		str := fmt.Sprintf("address %s holds %v of batch %s, need %v",
			addr, balance, b.batchID, amount)
		return ruleError(ErrInsufficientBalance, str)
	}
	return nil
}

// recomputePrimaryOwner updates the primary owner to the address with
// the largest remaining balance.  Equal balances resolve to the
// lexicographically smallest address so the result does not depend on
// map iteration order.
func (b *Batch) recomputePrimaryOwner() {
	var best string
	var bestBalance Amount = -1
	for addr, balance := range b.owners {
		if balance > bestBalance || (balance == bestBalance && addr < best) {
			best, bestBalance = addr, balance
		}
	}
	b.primaryOwner = best
}

// debit reduces the balance of addr by amount, removing the ownership
// entry entirely when the balance reaches zero.  The caller must have
// already established the balance is sufficient.
func (b *Batch) debit(addr string, amount Amount) {
	remaining := b.owners[addr] - amount
	if remaining == 0 {
		delete(b.owners, addr)
	} else {
		b.owners[addr] = remaining
	}
}

// Transfer moves amount credits from one address to another.  It fails
// with a RuleError, leaving all state unchanged, when the batch is fully
// retired, the amount is not positive, or the sender balance is absent
// or insufficient.
func (b *Batch) Transfer(from, to string, amount Amount) error {
	if err := b.checkSpendable(from, amount); err != nil {
		return err
	}

	b.debit(from, amount)
	b.owners[to] += amount
	b.recomputePrimaryOwner()

	now := time.Now()
	b.transfers = append(b.transfers, TransferRecord{
		From:   from,
		To:     to,
		Amount: amount,
		Time:   now,
		ID:     shortID(now, from, to, amount.String()),
	})
	return nil
}

// TransferAll moves the sender's entire balance to the given address and
// returns the amount moved.
func (b *Batch) TransferAll(from, to string) (Amount, error) {
	amount := b.owners[from]
	if err := b.Transfer(from, to, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// Retire permanently removes amount credits held by owner from
// circulation.  The preconditions match Transfer; in particular retiring
// from a fully retired batch always fails.  When the retirement brings
// the available amount to zero the batch becomes fully retired and no
// further transfers or retirements are possible.
func (b *Batch) Retire(owner string, amount Amount, reason string) error {
	if err := b.checkSpendable(owner, amount); err != nil {
		return err
	}

	b.debit(owner, amount)
	b.available -= amount
	b.recomputePrimaryOwner()

	now := time.Now()
	b.retirements = append(b.retirements, RetirementRecord{
		Owner:  owner,
		Amount: amount,
		Reason: reason,
		Time:   now,
		ID:     shortID(now, owner, amount.String()),
	})

	if b.available == 0 {
		b.fullyRetired = true
		b.retiredAt = now
	}
	return nil
}

// RetireAll permanently retires the owner's entire balance and returns
// the amount retired.
func (b *Batch) RetireAll(owner, reason string) (Amount, error) {
	amount := b.owners[owner]
	if err := b.Retire(owner, amount, reason); err != nil {
		return 0, err
	}
	return amount, nil
}

// Snapshot is a deep copy of the externally visible state of a batch at
// a point in time.  It is safe to retain and inspect without any
// locking discipline.
type Snapshot struct {
	BatchID      string             `json:"batchid"`
	ProjectID    string             `json:"projectid"`
	Issued       Amount             `json:"issuedamount"`
	Available    Amount             `json:"availableamount"`
	Retired      Amount             `json:"retiredamount"`
	PrimaryOwner string             `json:"primaryowner"`
	Owners       map[string]Amount  `json:"fractionalowners"`
	MintedAt     time.Time          `json:"mintedat"`
	Transfers    []TransferRecord   `json:"transfers"`
	Retirements  []RetirementRecord `json:"retirements"`
	FullyRetired bool               `json:"fullyretired"`
	RetiredAt    time.Time          `json:"retiredat,omitempty"`
	VintageYear  int                `json:"vintageyear"`
	Standard     string             `json:"standard"`
	Metadata     Metadata           `json:"metadata"`
}

// Snapshot returns a deep copy of the batch state.
func (b *Batch) Snapshot() Snapshot {
	owners := make(map[string]Amount, len(b.owners))
	for addr, balance := range b.owners {
		owners[addr] = balance
	}
	transfers := make([]TransferRecord, len(b.transfers))
	copy(transfers, b.transfers)
	retirements := make([]RetirementRecord, len(b.retirements))
	copy(retirements, b.retirements)

	return Snapshot{
		BatchID:      b.batchID,
		ProjectID:    b.projectID,
		Issued:       b.issued,
		Available:    b.available,
		Retired:      b.TotalRetired(),
		PrimaryOwner: b.primaryOwner,
		Owners:       owners,
		MintedAt:     b.mintedAt,
		Transfers:    transfers,
		Retirements:  retirements,
		FullyRetired: b.fullyRetired,
		RetiredAt:    b.retiredAt,
		VintageYear:  b.vintageYear,
		Standard:     b.standard,
		Metadata:     b.metadata,
	}
}

// Owners returns a copy of the fractional ownership map.
func (b *Batch) Owners() map[string]Amount {
	owners := make(map[string]Amount, len(b.owners))
	for addr, balance := range b.owners {
		owners[addr] = balance
	}
	return owners
}

// Retirements returns a copy of the append-only retirement history.
func (b *Batch) Retirements() []RetirementRecord {
	retirements := make([]RetirementRecord, len(b.retirements))
	copy(retirements, b.retirements)
	return retirements
}

// Transfers returns a copy of the append-only transfer history.
func (b *Batch) Transfers() []TransferRecord {
	transfers := make([]TransferRecord, len(b.transfers))
	copy(transfers, b.transfers)
	return transfers
}
