// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// NOTE: This file is intended to house the RPC commands that are supported
// by a bluecarbond ledger server.

package types

import (
	"github.com/decred/dcrd/dcrjson/v4"
)

// ProjectData describes a project submission as it crosses the wire.
type ProjectData struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Ecosystem   string            `json:"ecosystem"`
	Location    string            `json:"location"`
	SubmitterID string            `json:"submitterid"`
	TreeCount   int64             `json:"treecount,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// FieldData describes field-collected evidence as it crosses the wire.
// CollectedAt is an RFC 3339 timestamp.
type FieldData struct {
	ID           string            `json:"id"`
	ProjectID    string            `json:"projectid"`
	SubmitterID  string            `json:"submitterid"`
	CollectedAt  string            `json:"collectedat"`
	Measurements map[string]string `json:"measurements,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

// SubmitProjectCmd defines the submitproject JSON-RPC command.
type SubmitProjectCmd struct {
	Project ProjectData
}

// NewSubmitProjectCmd returns a new instance which can be used to issue
// a submitproject JSON-RPC command.
func NewSubmitProjectCmd(project ProjectData) *SubmitProjectCmd {
	return &SubmitProjectCmd{Project: project}
}

// VerifyProjectCmd defines the verifyproject JSON-RPC command.
type VerifyProjectCmd struct {
	ProjectID       string
	VerifierNode    string
	Decision        string `jsonrpcusage:"\"approved|rejected\""`
	CreditsApproved float64
	Notes           *string
}

// NewVerifyProjectCmd returns a new instance which can be used to issue
// a verifyproject JSON-RPC command.
func NewVerifyProjectCmd(projectID, verifierNode, decision string, creditsApproved float64, notes *string) *VerifyProjectCmd {
	return &VerifyProjectCmd{
		ProjectID:       projectID,
		VerifierNode:    verifierNode,
		Decision:        decision,
		CreditsApproved: creditsApproved,
		Notes:           notes,
	}
}

// MintCreditsCmd defines the mintcredits JSON-RPC command.
type MintCreditsCmd struct {
	ProjectID string
	Amount    float64
	Metadata  *BatchMetadata
}

// NewMintCreditsCmd returns a new instance which can be used to issue a
// mintcredits JSON-RPC command.
func NewMintCreditsCmd(projectID string, amount float64, metadata *BatchMetadata) *MintCreditsCmd {
	return &MintCreditsCmd{
		ProjectID: projectID,
		Amount:    amount,
		Metadata:  metadata,
	}
}

// TransferCreditsCmd defines the transfercredits JSON-RPC command.  A
// nil Amount transfers the sender's entire balance.
type TransferCreditsCmd struct {
	BatchID string
	From    string
	To      string
	Amount  *float64
}

// NewTransferCreditsCmd returns a new instance which can be used to
// issue a transfercredits JSON-RPC command.
func NewTransferCreditsCmd(batchID, from, to string, amount *float64) *TransferCreditsCmd {
	return &TransferCreditsCmd{
		BatchID: batchID,
		From:    from,
		To:      to,
		Amount:  amount,
	}
}

// RetireCreditsCmd defines the retirecredits JSON-RPC command.  A nil
// Amount retires the owner's entire balance.
type RetireCreditsCmd struct {
	BatchID string
	Owner   string
	Amount  *float64
	Reason  *string `jsonrpcdefault:"\"Carbon offsetting\""`
}

// NewRetireCreditsCmd returns a new instance which can be used to issue
// a retirecredits JSON-RPC command.
func NewRetireCreditsCmd(batchID, owner string, amount *float64, reason *string) *RetireCreditsCmd {
	return &RetireCreditsCmd{
		BatchID: batchID,
		Owner:   owner,
		Amount:  amount,
		Reason:  reason,
	}
}

// BatchTransferItem is one requested transfer within a batchtransfer
// command.
type BatchTransferItem struct {
	BatchID string   `json:"batchid"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Amount  *float64 `json:"amount,omitempty"`
}

// BatchTransferCmd defines the batchtransfer JSON-RPC command.
type BatchTransferCmd struct {
	Transfers []BatchTransferItem
}

// NewBatchTransferCmd returns a new instance which can be used to issue
// a batchtransfer JSON-RPC command.
func NewBatchTransferCmd(transfers []BatchTransferItem) *BatchTransferCmd {
	return &BatchTransferCmd{Transfers: transfers}
}

// BatchRetireItem is one requested retirement within a batchretire
// command.
type BatchRetireItem struct {
	BatchID string   `json:"batchid"`
	Owner   string   `json:"owner"`
	Amount  *float64 `json:"amount,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// BatchRetireCmd defines the batchretire JSON-RPC command.
type BatchRetireCmd struct {
	Retirements []BatchRetireItem
}

// NewBatchRetireCmd returns a new instance which can be used to issue a
// batchretire JSON-RPC command.
func NewBatchRetireCmd(retirements []BatchRetireItem) *BatchRetireCmd {
	return &BatchRetireCmd{Retirements: retirements}
}

// GetBalanceCmd defines the getbalance JSON-RPC command.
type GetBalanceCmd struct {
	BatchID string
	Address string
}

// NewGetBalanceCmd returns a new instance which can be used to issue a
// getbalance JSON-RPC command.
func NewGetBalanceCmd(batchID, address string) *GetBalanceCmd {
	return &GetBalanceCmd{BatchID: batchID, Address: address}
}

// GetBatchCmd defines the getbatch JSON-RPC command.
type GetBatchCmd struct {
	BatchID string
}

// NewGetBatchCmd returns a new instance which can be used to issue a
// getbatch JSON-RPC command.
func NewGetBatchCmd(batchID string) *GetBatchCmd {
	return &GetBatchCmd{BatchID: batchID}
}

// GetBatchesByVintageCmd defines the getbatchesbyvintage JSON-RPC
// command.
type GetBatchesByVintageCmd struct {
	Year int
}

// NewGetBatchesByVintageCmd returns a new instance which can be used to
// issue a getbatchesbyvintage JSON-RPC command.
func NewGetBatchesByVintageCmd(year int) *GetBatchesByVintageCmd {
	return &GetBatchesByVintageCmd{Year: year}
}

// GetBatchesByProjectCmd defines the getbatchesbyproject JSON-RPC
// command.
type GetBatchesByProjectCmd struct {
	ProjectID string
}

// NewGetBatchesByProjectCmd returns a new instance which can be used to
// issue a getbatchesbyproject JSON-RPC command.
func NewGetBatchesByProjectCmd(projectID string) *GetBatchesByProjectCmd {
	return &GetBatchesByProjectCmd{ProjectID: projectID}
}

// GetPortfolioCmd defines the getportfolio JSON-RPC command.
type GetPortfolioCmd struct {
	Address string
}

// NewGetPortfolioCmd returns a new instance which can be used to issue
// a getportfolio JSON-RPC command.
func NewGetPortfolioCmd(address string) *GetPortfolioCmd {
	return &GetPortfolioCmd{Address: address}
}

// GetRetirementHistoryCmd defines the getretirementhistory JSON-RPC
// command.  A nil Address returns the full history.
type GetRetirementHistoryCmd struct {
	Address *string
}

// NewGetRetirementHistoryCmd returns a new instance which can be used
// to issue a getretirementhistory JSON-RPC command.
func NewGetRetirementHistoryCmd(address *string) *GetRetirementHistoryCmd {
	return &GetRetirementHistoryCmd{Address: address}
}

// GetProjectInfoCmd defines the getprojectinfo JSON-RPC command.
type GetProjectInfoCmd struct {
	ProjectID string
}

// NewGetProjectInfoCmd returns a new instance which can be used to
// issue a getprojectinfo JSON-RPC command.
func NewGetProjectInfoCmd(projectID string) *GetProjectInfoCmd {
	return &GetProjectInfoCmd{ProjectID: projectID}
}

// GetStatsCmd defines the getstats JSON-RPC command.
type GetStatsCmd struct{}

// NewGetStatsCmd returns a new instance which can be used to issue a
// getstats JSON-RPC command.
func NewGetStatsCmd() *GetStatsCmd {
	return &GetStatsCmd{}
}

// GetLogEntriesCmd defines the getlogentries JSON-RPC command.  Kind
// and Address filter the returned entries when present.
type GetLogEntriesCmd struct {
	Kind    *string
	Address *string
}

// NewGetLogEntriesCmd returns a new instance which can be used to issue
// a getlogentries JSON-RPC command.
func NewGetLogEntriesCmd(kind, address *string) *GetLogEntriesCmd {
	return &GetLogEntriesCmd{Kind: kind, Address: address}
}

// RecordFieldDataCmd defines the recordfielddata JSON-RPC command.
type RecordFieldDataCmd struct {
	FieldData FieldData
}

// NewRecordFieldDataCmd returns a new instance which can be used to
// issue a recordfielddata JSON-RPC command.
func NewRecordFieldDataCmd(fieldData FieldData) *RecordFieldDataCmd {
	return &RecordFieldDataCmd{FieldData: fieldData}
}

// PingCmd defines the ping JSON-RPC command.
type PingCmd struct{}

// NewPingCmd returns a new instance which can be used to issue a ping
// JSON-RPC command.
func NewPingCmd() *PingCmd {
	return &PingCmd{}
}

func init() {
	// No special flags for commands in this file.
	flags := dcrjson.UsageFlag(0)

	dcrjson.MustRegister(Method("batchretire"), (*BatchRetireCmd)(nil), flags)
	dcrjson.MustRegister(Method("batchtransfer"), (*BatchTransferCmd)(nil), flags)
	dcrjson.MustRegister(Method("getbalance"), (*GetBalanceCmd)(nil), flags)
	dcrjson.MustRegister(Method("getbatch"), (*GetBatchCmd)(nil), flags)
	dcrjson.MustRegister(Method("getbatchesbyproject"), (*GetBatchesByProjectCmd)(nil), flags)
	dcrjson.MustRegister(Method("getbatchesbyvintage"), (*GetBatchesByVintageCmd)(nil), flags)
	dcrjson.MustRegister(Method("getlogentries"), (*GetLogEntriesCmd)(nil), flags)
	dcrjson.MustRegister(Method("getportfolio"), (*GetPortfolioCmd)(nil), flags)
	dcrjson.MustRegister(Method("getprojectinfo"), (*GetProjectInfoCmd)(nil), flags)
	dcrjson.MustRegister(Method("getretirementhistory"), (*GetRetirementHistoryCmd)(nil), flags)
	dcrjson.MustRegister(Method("getstats"), (*GetStatsCmd)(nil), flags)
	dcrjson.MustRegister(Method("mintcredits"), (*MintCreditsCmd)(nil), flags)
	dcrjson.MustRegister(Method("ping"), (*PingCmd)(nil), flags)
	dcrjson.MustRegister(Method("recordfielddata"), (*RecordFieldDataCmd)(nil), flags)
	dcrjson.MustRegister(Method("retirecredits"), (*RetireCreditsCmd)(nil), flags)
	dcrjson.MustRegister(Method("submitproject"), (*SubmitProjectCmd)(nil), flags)
	dcrjson.MustRegister(Method("transfercredits"), (*TransferCreditsCmd)(nil), flags)
	dcrjson.MustRegister(Method("verifyproject"), (*VerifyProjectCmd)(nil), flags)
}
