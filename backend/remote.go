// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package backend

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/YadnyeshUbhad/bluecarbond/credit"
	"github.com/YadnyeshUbhad/bluecarbond/ledger"
	"github.com/YadnyeshUbhad/bluecarbond/mrv"
	"github.com/YadnyeshUbhad/bluecarbond/rpc/jsonrpc/types"
	"github.com/YadnyeshUbhad/bluecarbond/rpcclient"
)

// Remote proxies every operation to a remote ledger server over
// JSON-RPC.
type Remote struct {
	client *rpcclient.Client
	host   string
}

var _ Backend = (*Remote)(nil)

// newRemote builds a remote backend from the connection parameters in
// the config without probing the server.
func newRemote(cfg *Config) (*Remote, error) {
	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         cfg.RemoteHost,
		User:         cfg.RemoteUser,
		Pass:         cfg.RemotePass,
		DisableTLS:   cfg.DisableTLS,
		Certificates: cfg.Certificates,
	})
	if err != nil {
		return nil, err
	}
	return &Remote{client: client, host: cfg.RemoteHost}, nil
}

// Kind returns KindRemote.
func (b *Remote) Kind() Kind {
	return KindRemote
}

// SubmitProject submits a restoration project to the remote registry.
func (b *Remote) SubmitProject(ctx context.Context, project mrv.ProjectData) (string, error) {
	return b.client.SubmitProject(ctx, types.ProjectData{
		ID:          project.ID,
		Name:        project.Name,
		Ecosystem:   project.Ecosystem,
		Location:    project.Location,
		SubmitterID: project.SubmitterID,
		TreeCount:   project.TreeCount,
		Attributes:  project.Attributes,
	})
}

// VerifyProject records a verifier decision on the remote registry.
func (b *Remote) VerifyProject(ctx context.Context, projectID, verifierNode string, approval mrv.Approval) error {
	var notes *string
	if approval.Notes != "" {
		notes = &approval.Notes
	}
	_, err := b.client.VerifyProject(ctx, projectID, verifierNode,
		string(approval.Decision), approval.CreditsApproved.ToTonnes(),
		notes)
	return err
}

// MintCredits mints a new credit batch on the remote ledger.
func (b *Remote) MintCredits(ctx context.Context, projectID string, amount credit.Amount, metadata credit.Metadata) (string, error) {
	wireMD := &types.BatchMetadata{
		ProjectName:   metadata.ProjectName,
		EcosystemType: metadata.EcosystemType,
		Location:      metadata.Location,
		TreeCount:     metadata.TreeCount,
		VerifierNode:  metadata.VerifierNode,
		VintageYear:   metadata.VintageYear,
		Standard:      metadata.Standard,
		Attributes:    metadata.Attributes,
	}
	if !metadata.VerifiedAt.IsZero() {
		wireMD.VerifiedAt = metadata.VerifiedAt.Format(time.RFC3339Nano)
	}
	return b.client.MintCredits(ctx, projectID, amount.ToTonnes(), wireMD)
}

// TransferCredits moves credits between owners on the remote ledger.
func (b *Remote) TransferCredits(ctx context.Context, batchID, from, to string, amount *credit.Amount) (credit.Amount, error) {
	var tonnes *float64
	if amount != nil {
		t := amount.ToTonnes()
		tonnes = &t
	}
	result, err := b.client.TransferCredits(ctx, batchID, from, to, tonnes)
	if err != nil {
		return 0, err
	}
	return credit.NewAmount(result.Moved)
}

// RetireCredits permanently retires credits on the remote ledger.
func (b *Remote) RetireCredits(ctx context.Context, batchID, owner string, amount *credit.Amount, reason string) (credit.Amount, error) {
	var tonnes *float64
	if amount != nil {
		t := amount.ToTonnes()
		tonnes = &t
	}
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	result, err := b.client.RetireCredits(ctx, batchID, owner, tonnes, reasonPtr)
	if err != nil {
		return 0, err
	}
	return credit.NewAmount(result.Retired)
}

// Balance returns the balance an address holds in a batch on the remote
// ledger.
func (b *Remote) Balance(ctx context.Context, batchID, address string) (credit.Amount, error) {
	tonnes, err := b.client.GetBalance(ctx, batchID, address)
	if err != nil {
		return 0, err
	}
	return credit.NewAmount(tonnes)
}

// breakdownFromWire converts a tonne-denominated supply breakdown back
// to the fixed-point representation.
func breakdownFromWire(in types.SupplyBreakdown) (ledger.SupplyBreakdown, error) {
	var out ledger.SupplyBreakdown
	var err error
	if out.Total, err = credit.NewAmount(in.Total); err != nil {
		return out, err
	}
	if out.Retired, err = credit.NewAmount(in.Retired); err != nil {
		return out, err
	}
	if out.Active, err = credit.NewAmount(in.Active); err != nil {
		return out, err
	}
	return out, nil
}

// Stats returns the aggregate supply statistics of the remote ledger.
func (b *Remote) Stats(ctx context.Context) (ledger.Stats, error) {
	result, err := b.client.GetStats(ctx)
	if err != nil {
		return ledger.Stats{}, err
	}

	stats := ledger.Stats{
		RetirementRate:          result.RetirementRate,
		TotalBatches:            result.TotalBatches,
		FullyRetiredBatches:     result.FullyRetiredBatches,
		PartiallyRetiredBatches: result.PartiallyRetiredBatches,
		ActiveBatches:           result.ActiveBatches,
		TotalEntries:            result.TotalEntries,
		UniqueAddresses:         result.UniqueAddresses,
	}
	if stats.TotalSupply, err = credit.NewAmount(result.TotalSupply); err != nil {
		return ledger.Stats{}, err
	}
	if stats.ActiveSupply, err = credit.NewAmount(result.ActiveSupply); err != nil {
		return ledger.Stats{}, err
	}
	if stats.RetiredSupply, err = credit.NewAmount(result.RetiredSupply); err != nil {
		return ledger.Stats{}, err
	}

	stats.VintageBreakdown = make(map[int]ledger.SupplyBreakdown,
		len(result.VintageBreakdown))
	for key, breakdown := range result.VintageBreakdown {
		year, err := strconv.Atoi(key)
		if err != nil {
			return ledger.Stats{}, fmt.Errorf("malformed vintage year %q: %w",
				key, err)
		}
		converted, err := breakdownFromWire(breakdown)
		if err != nil {
			return ledger.Stats{}, err
		}
		stats.VintageBreakdown[year] = converted
	}
	stats.StandardBreakdown = make(map[string]ledger.SupplyBreakdown,
		len(result.StandardBreakdown))
	for key, breakdown := range result.StandardBreakdown {
		converted, err := breakdownFromWire(breakdown)
		if err != nil {
			return ledger.Stats{}, err
		}
		stats.StandardBreakdown[key] = converted
	}
	stats.ProjectBreakdown = make(map[string]ledger.SupplyBreakdown,
		len(result.ProjectBreakdown))
	for key, breakdown := range result.ProjectBreakdown {
		converted, err := breakdownFromWire(breakdown)
		if err != nil {
			return ledger.Stats{}, err
		}
		stats.ProjectBreakdown[key] = converted
	}
	return stats, nil
}

// RecordFieldData submits field-collected evidence to the remote
// registry.
func (b *Remote) RecordFieldData(ctx context.Context, record mrv.FieldRecord) (string, error) {
	wire := types.FieldData{
		ID:           record.ID,
		ProjectID:    record.ProjectID,
		SubmitterID:  record.SubmitterID,
		Measurements: record.Measurements,
		Notes:        record.Notes,
	}
	if !record.CollectedAt.IsZero() {
		wire.CollectedAt = record.CollectedAt.Format(time.RFC3339Nano)
	}
	return b.client.RecordFieldData(ctx, wire)
}
