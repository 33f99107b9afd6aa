// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"time"

	"github.com/YadnyeshUbhad/bluecarbond/credit"
	"github.com/YadnyeshUbhad/bluecarbond/ledger"
	"github.com/YadnyeshUbhad/bluecarbond/mrv"
	"github.com/YadnyeshUbhad/bluecarbond/rpc/jsonrpc/types"
	"github.com/YadnyeshUbhad/bluecarbond/txlog"
)

// wireTime formats a time for the wire.  The zero time serializes to an
// empty string so optional timestamps can be omitted.
func wireTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// wireMetadata converts batch metadata to its wire representation.
func wireMetadata(md credit.Metadata) types.BatchMetadata {
	return types.BatchMetadata{
		ProjectName:   md.ProjectName,
		EcosystemType: md.EcosystemType,
		Location:      md.Location,
		TreeCount:     md.TreeCount,
		VerifierNode:  md.VerifierNode,
		VerifiedAt:    wireTime(md.VerifiedAt),
		VintageYear:   md.VintageYear,
		Standard:      md.Standard,
		Attributes:    md.Attributes,
	}
}

// metadataFromWire converts wire batch metadata to its internal
// representation.  A nil input yields empty metadata, which the credit
// package fills with defaults at mint time.
func metadataFromWire(md *types.BatchMetadata) (credit.Metadata, error) {
	if md == nil {
		return credit.Metadata{}, nil
	}
	var verifiedAt time.Time
	if md.VerifiedAt != "" {
		var err error
		verifiedAt, err = time.Parse(time.RFC3339Nano, md.VerifiedAt)
		if err != nil {
			return credit.Metadata{}, err
		}
	}
	return credit.Metadata{
		ProjectName:   md.ProjectName,
		EcosystemType: md.EcosystemType,
		Location:      md.Location,
		TreeCount:     md.TreeCount,
		VerifierNode:  md.VerifierNode,
		VerifiedAt:    verifiedAt,
		VintageYear:   md.VintageYear,
		Standard:      md.Standard,
		Attributes:    md.Attributes,
	}, nil
}

// wireBatch converts a batch snapshot to its wire representation.
func wireBatch(snapshot credit.Snapshot) types.Batch {
	owners := make(map[string]float64, len(snapshot.Owners))
	for addr, balance := range snapshot.Owners {
		owners[addr] = balance.ToTonnes()
	}
	transfers := make([]types.TransferRecord, 0, len(snapshot.Transfers))
	for _, record := range snapshot.Transfers {
		transfers = append(transfers, types.TransferRecord{
			From:   record.From,
			To:     record.To,
			Amount: record.Amount.ToTonnes(),
			Time:   wireTime(record.Time),
			ID:     record.ID,
		})
	}
	retirements := make([]types.RetirementRecord, 0, len(snapshot.Retirements))
	for _, record := range snapshot.Retirements {
		retirements = append(retirements, wireRetirement(record))
	}

	return types.Batch{
		BatchID:          snapshot.BatchID,
		ProjectID:        snapshot.ProjectID,
		IssuedAmount:     snapshot.Issued.ToTonnes(),
		AvailableAmount:  snapshot.Available.ToTonnes(),
		RetiredAmount:    snapshot.Retired.ToTonnes(),
		PrimaryOwner:     snapshot.PrimaryOwner,
		FractionalOwners: owners,
		MintedAt:         wireTime(snapshot.MintedAt),
		Transfers:        transfers,
		Retirements:      retirements,
		FullyRetired:     snapshot.FullyRetired,
		RetiredAt:        wireTime(snapshot.RetiredAt),
		VintageYear:      snapshot.VintageYear,
		Standard:         snapshot.Standard,
		Metadata:         wireMetadata(snapshot.Metadata),
	}
}

// wireRetirement converts a retirement record to its wire
// representation.
func wireRetirement(record credit.RetirementRecord) types.RetirementRecord {
	return types.RetirementRecord{
		Owner:  record.Owner,
		Amount: record.Amount.ToTonnes(),
		Reason: record.Reason,
		Time:   wireTime(record.Time),
		ID:     record.ID,
	}
}

// wireEntry converts a transaction log entry to its wire
// representation.  The payload keeps its per-kind shape.
func wireEntry(entry txlog.Entry) types.LogEntry {
	return types.LogEntry{
		ID:      entry.ID.String(),
		Time:    wireTime(entry.Time),
		Kind:    string(entry.Kind),
		Payload: entry.Payload,
		From:    entry.From,
		To:      entry.To,
	}
}

// wireBreakdowns converts a supply breakdown map keyed by strings.
func wireBreakdowns(in map[string]ledger.SupplyBreakdown) map[string]types.SupplyBreakdown {
	out := make(map[string]types.SupplyBreakdown, len(in))
	for key, breakdown := range in {
		out[key] = types.SupplyBreakdown{
			Total:   breakdown.Total.ToTonnes(),
			Retired: breakdown.Retired.ToTonnes(),
			Active:  breakdown.Active.ToTonnes(),
		}
	}
	return out
}

// projectFromWire converts a wire project submission to its internal
// representation.
func projectFromWire(project types.ProjectData) mrv.ProjectData {
	return mrv.ProjectData{
		ID:          project.ID,
		Name:        project.Name,
		Ecosystem:   project.Ecosystem,
		Location:    project.Location,
		SubmitterID: project.SubmitterID,
		TreeCount:   project.TreeCount,
		Attributes:  project.Attributes,
	}
}

// fieldDataFromWire converts wire field evidence to its internal
// representation.
func fieldDataFromWire(fieldData types.FieldData) (mrv.FieldRecord, error) {
	var collectedAt time.Time
	if fieldData.CollectedAt != "" {
		var err error
		collectedAt, err = time.Parse(time.RFC3339Nano, fieldData.CollectedAt)
		if err != nil {
			return mrv.FieldRecord{}, err
		}
	}
	return mrv.FieldRecord{
		ID:           fieldData.ID,
		ProjectID:    fieldData.ProjectID,
		SubmitterID:  fieldData.SubmitterID,
		CollectedAt:  collectedAt,
		Measurements: fieldData.Measurements,
		Notes:        fieldData.Notes,
	}, nil
}

// wireFieldData converts internal field evidence to its wire
// representation.
func wireFieldData(record mrv.FieldRecord) types.FieldData {
	return types.FieldData{
		ID:           record.ID,
		ProjectID:    record.ProjectID,
		SubmitterID:  record.SubmitterID,
		CollectedAt:  wireTime(record.CollectedAt),
		Measurements: record.Measurements,
		Notes:        record.Notes,
	}
}
