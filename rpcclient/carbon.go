// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcclient

import (
	"context"
	"encoding/json"

	"github.com/YadnyeshUbhad/bluecarbond/rpc/jsonrpc/types"
)

// Ping issues a ping command and waits for the pong reply.  It is the
// cheapest way to probe whether the server is reachable and the
// credentials are valid.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.send(ctx, "ping", types.NewPingCmd())
	return err
}

// SubmitProject submits a restoration project for verification and
// returns the id of the resulting transaction log entry.
func (c *Client) SubmitProject(ctx context.Context, project types.ProjectData) (string, error) {
	res, err := c.send(ctx, "submitproject", types.NewSubmitProjectCmd(project))
	if err != nil {
		return "", err
	}
	var entryID string
	err = json.Unmarshal(res, &entryID)
	return entryID, err
}

// VerifyProject records a verifier decision for a project, minting the
// approved credits when the decision approves them.
func (c *Client) VerifyProject(ctx context.Context, projectID, verifierNode, decision string, creditsApproved float64, notes *string) (*types.VerifyProjectResult, error) {
	cmd := types.NewVerifyProjectCmd(projectID, verifierNode, decision,
		creditsApproved, notes)
	res, err := c.send(ctx, "verifyproject", cmd)
	if err != nil {
		return nil, err
	}
	var result types.VerifyProjectResult
	if err := json.Unmarshal(res, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MintCredits mints a new credit batch for a project and returns the
// new batch id.
func (c *Client) MintCredits(ctx context.Context, projectID string, amount float64, metadata *types.BatchMetadata) (string, error) {
	cmd := types.NewMintCreditsCmd(projectID, amount, metadata)
	res, err := c.send(ctx, "mintcredits", cmd)
	if err != nil {
		return "", err
	}
	var batchID string
	err = json.Unmarshal(res, &batchID)
	return batchID, err
}

// TransferCredits moves credits between owners within a batch.  A nil
// amount transfers the sender's entire balance.
func (c *Client) TransferCredits(ctx context.Context, batchID, from, to string, amount *float64) (*types.TransferCreditsResult, error) {
	cmd := types.NewTransferCreditsCmd(batchID, from, to, amount)
	res, err := c.send(ctx, "transfercredits", cmd)
	if err != nil {
		return nil, err
	}
	var result types.TransferCreditsResult
	if err := json.Unmarshal(res, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RetireCredits permanently retires credits held by an owner.  A nil
// amount retires the owner's entire balance.
func (c *Client) RetireCredits(ctx context.Context, batchID, owner string, amount *float64, reason *string) (*types.RetireCreditsResult, error) {
	cmd := types.NewRetireCreditsCmd(batchID, owner, amount, reason)
	res, err := c.send(ctx, "retirecredits", cmd)
	if err != nil {
		return nil, err
	}
	var result types.RetireCreditsResult
	if err := json.Unmarshal(res, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BatchTransfer performs several transfers in one call.  Items fail
// independently.
func (c *Client) BatchTransfer(ctx context.Context, transfers []types.BatchTransferItem) (*types.BatchTransferResult, error) {
	res, err := c.send(ctx, "batchtransfer", types.NewBatchTransferCmd(transfers))
	if err != nil {
		return nil, err
	}
	var result types.BatchTransferResult
	if err := json.Unmarshal(res, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BatchRetire performs several retirements in one call.  Items fail
// independently.
func (c *Client) BatchRetire(ctx context.Context, retirements []types.BatchRetireItem) (*types.BatchRetireResult, error) {
	res, err := c.send(ctx, "batchretire", types.NewBatchRetireCmd(retirements))
	if err != nil {
		return nil, err
	}
	var result types.BatchRetireResult
	if err := json.Unmarshal(res, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBalance returns the balance an address holds in a batch, in tonnes
// of CO2 equivalent.
func (c *Client) GetBalance(ctx context.Context, batchID, address string) (float64, error) {
	res, err := c.send(ctx, "getbalance", types.NewGetBalanceCmd(batchID, address))
	if err != nil {
		return 0, err
	}
	var balance float64
	err = json.Unmarshal(res, &balance)
	return balance, err
}

// GetBatch returns the full state of a credit batch.
func (c *Client) GetBatch(ctx context.Context, batchID string) (*types.Batch, error) {
	res, err := c.send(ctx, "getbatch", types.NewGetBatchCmd(batchID))
	if err != nil {
		return nil, err
	}
	var batch types.Batch
	if err := json.Unmarshal(res, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetBatchesByVintage returns all batches with the given vintage year.
func (c *Client) GetBatchesByVintage(ctx context.Context, year int) ([]types.Batch, error) {
	res, err := c.send(ctx, "getbatchesbyvintage", types.NewGetBatchesByVintageCmd(year))
	if err != nil {
		return nil, err
	}
	var batches []types.Batch
	err = json.Unmarshal(res, &batches)
	return batches, err
}

// GetBatchesByProject returns all batches minted for the given project.
func (c *Client) GetBatchesByProject(ctx context.Context, projectID string) ([]types.Batch, error) {
	res, err := c.send(ctx, "getbatchesbyproject", types.NewGetBatchesByProjectCmd(projectID))
	if err != nil {
		return nil, err
	}
	var batches []types.Batch
	err = json.Unmarshal(res, &batches)
	return batches, err
}

// GetPortfolio returns the holdings and transaction history of an
// address across all batches.
func (c *Client) GetPortfolio(ctx context.Context, address string) (*types.PortfolioResult, error) {
	res, err := c.send(ctx, "getportfolio", types.NewGetPortfolioCmd(address))
	if err != nil {
		return nil, err
	}
	var portfolio types.PortfolioResult
	if err := json.Unmarshal(res, &portfolio); err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// GetRetirementHistory returns retirement records, newest first.  A nil
// address returns the history across all owners.
func (c *Client) GetRetirementHistory(ctx context.Context, address *string) ([]types.RetirementEntry, error) {
	res, err := c.send(ctx, "getretirementhistory", types.NewGetRetirementHistoryCmd(address))
	if err != nil {
		return nil, err
	}
	var history []types.RetirementEntry
	err = json.Unmarshal(res, &history)
	return history, err
}

// GetProjectInfo returns the registry record of a project including its
// verifications, field data, and minted batches.
func (c *Client) GetProjectInfo(ctx context.Context, projectID string) (*types.GetProjectInfoResult, error) {
	res, err := c.send(ctx, "getprojectinfo", types.NewGetProjectInfoCmd(projectID))
	if err != nil {
		return nil, err
	}
	var info types.GetProjectInfoResult
	if err := json.Unmarshal(res, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetStats returns aggregate supply and registry statistics.
func (c *Client) GetStats(ctx context.Context) (*types.GetStatsResult, error) {
	res, err := c.send(ctx, "getstats", types.NewGetStatsCmd())
	if err != nil {
		return nil, err
	}
	var stats types.GetStatsResult
	if err := json.Unmarshal(res, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetLogEntries returns transaction log entries, optionally filtered by
// kind and participant address.
func (c *Client) GetLogEntries(ctx context.Context, kind, address *string) ([]types.LogEntry, error) {
	res, err := c.send(ctx, "getlogentries", types.NewGetLogEntriesCmd(kind, address))
	if err != nil {
		return nil, err
	}
	var entries []types.LogEntry
	err = json.Unmarshal(res, &entries)
	return entries, err
}

// RecordFieldData submits field-collected evidence for a project and
// returns the id of the resulting transaction log entry.
func (c *Client) RecordFieldData(ctx context.Context, fieldData types.FieldData) (string, error) {
	res, err := c.send(ctx, "recordfielddata", types.NewRecordFieldDataCmd(fieldData))
	if err != nil {
		return "", err
	}
	var entryID string
	err = json.Unmarshal(res, &entryID)
	return entryID, err
}
