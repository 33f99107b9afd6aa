// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package backend

import (
	"context"

	"github.com/YadnyeshUbhad/bluecarbond/credit"
	"github.com/YadnyeshUbhad/bluecarbond/ledger"
	"github.com/YadnyeshUbhad/bluecarbond/mrv"
)

// Simulated executes every operation against the in-process ledger and
// registry.  The context parameters are accepted for interface
// symmetry; in-process operations do not block.
type Simulated struct {
	ledger   *ledger.Ledger
	registry *mrv.Registry
}

var _ Backend = (*Simulated)(nil)

// NewSimulated returns a simulated backend over the passed ledger and
// registry.
func NewSimulated(l *ledger.Ledger, r *mrv.Registry) *Simulated {
	return &Simulated{ledger: l, registry: r}
}

// Kind returns KindSimulated.
func (b *Simulated) Kind() Kind {
	return KindSimulated
}

// SubmitProject submits a restoration project to the registry.
func (b *Simulated) SubmitProject(_ context.Context, project mrv.ProjectData) (string, error) {
	entryID := b.registry.Submit(project)
	return entryID.String(), nil
}

// VerifyProject records a verifier decision for a project.
func (b *Simulated) VerifyProject(_ context.Context, projectID, verifierNode string, approval mrv.Approval) error {
	return b.registry.Verify(projectID, verifierNode, approval)
}

// MintCredits mints a new credit batch for a project.
func (b *Simulated) MintCredits(_ context.Context, projectID string, amount credit.Amount, metadata credit.Metadata) (string, error) {
	return b.ledger.Mint(projectID, amount, metadata)
}

// TransferCredits moves credits between owners within a batch.
func (b *Simulated) TransferCredits(_ context.Context, batchID, from, to string, amount *credit.Amount) (credit.Amount, error) {
	if amount == nil {
		return b.ledger.TransferAll(batchID, from, to)
	}
	if err := b.ledger.Transfer(batchID, from, to, *amount); err != nil {
		return 0, err
	}
	return *amount, nil
}

// RetireCredits permanently retires credits held by an owner.
func (b *Simulated) RetireCredits(_ context.Context, batchID, owner string, amount *credit.Amount, reason string) (credit.Amount, error) {
	if amount == nil {
		return b.ledger.RetireAll(batchID, owner, reason)
	}
	if err := b.ledger.Retire(batchID, owner, *amount, reason); err != nil {
		return 0, err
	}
	return *amount, nil
}

// Balance returns the balance an address holds in a batch.
func (b *Simulated) Balance(_ context.Context, batchID, address string) (credit.Amount, error) {
	return b.ledger.BalanceOf(batchID, address), nil
}

// Stats returns the aggregate supply statistics of the ledger.
func (b *Simulated) Stats(_ context.Context) (ledger.Stats, error) {
	return b.ledger.Stats(), nil
}

// RecordFieldData submits field-collected evidence to the registry.
func (b *Simulated) RecordFieldData(_ context.Context, record mrv.FieldRecord) (string, error) {
	entryID := b.registry.RecordFieldData(record)
	return entryID.String(), nil
}
