// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

// BatchMetadata models the provenance metadata of a minted batch on the
// wire.  VerifiedAt is an RFC 3339 timestamp.
type BatchMetadata struct {
	ProjectName   string            `json:"projectname"`
	EcosystemType string            `json:"ecosystemtype"`
	Location      string            `json:"location"`
	TreeCount     int64             `json:"treecount,omitempty"`
	VerifierNode  string            `json:"verifiernode"`
	VerifiedAt    string            `json:"verifiedat,omitempty"`
	VintageYear   int               `json:"vintageyear,omitempty"`
	Standard      string            `json:"standard,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// TransferRecord models one completed transfer within a batch.
type TransferRecord struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Time   string  `json:"time"`
	ID     string  `json:"id"`
}

// RetirementRecord models one permanent retirement within a batch.
type RetirementRecord struct {
	Owner  string  `json:"owner"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
	Time   string  `json:"time"`
	ID     string  `json:"id"`
}

// Batch models the full state of a credit batch as returned by getbatch
// and the other batch query commands.
type Batch struct {
	BatchID          string             `json:"batchid"`
	ProjectID        string             `json:"projectid"`
	IssuedAmount     float64            `json:"issuedamount"`
	AvailableAmount  float64            `json:"availableamount"`
	RetiredAmount    float64            `json:"retiredamount"`
	PrimaryOwner     string             `json:"primaryowner"`
	FractionalOwners map[string]float64 `json:"fractionalowners"`
	MintedAt         string             `json:"mintedat"`
	Transfers        []TransferRecord   `json:"transfers"`
	Retirements      []RetirementRecord `json:"retirements"`
	FullyRetired     bool               `json:"fullyretired"`
	RetiredAt        string             `json:"retiredat,omitempty"`
	VintageYear      int                `json:"vintageyear"`
	Standard         string             `json:"standard"`
	Metadata         BatchMetadata      `json:"metadata"`
}

// VerifyProjectResult models the data returned by the verifyproject
// command.  BatchID is only set when the approval minted a new batch.
type VerifyProjectResult struct {
	ProjectID     string  `json:"projectid"`
	Status        string  `json:"status"`
	BatchID       string  `json:"batchid,omitempty"`
	CreditsIssued float64 `json:"creditsissued"`
}

// TransferCreditsResult models the data returned by the transfercredits
// command.
type TransferCreditsResult struct {
	Moved float64 `json:"moved"`
}

// RetireCreditsResult models the data returned by the retirecredits
// command.
type RetireCreditsResult struct {
	Retired      float64 `json:"retired"`
	FullyRetired bool    `json:"fullyretired"`
}

// BatchTransferOutcome models the result of one item of a batchtransfer
// command.  Error is empty on success.
type BatchTransferOutcome struct {
	BatchID string  `json:"batchid"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Amount  float64 `json:"amount"`
	Error   string  `json:"error,omitempty"`
}

// BatchTransferResult models the data returned by the batchtransfer
// command.
type BatchTransferResult struct {
	Successful []BatchTransferOutcome `json:"successful"`
	Failed     []BatchTransferOutcome `json:"failed"`
}

// BatchRetireOutcome models the result of one item of a batchretire
// command.  Error is empty on success.
type BatchRetireOutcome struct {
	BatchID string  `json:"batchid"`
	Owner   string  `json:"owner"`
	Amount  float64 `json:"amount"`
	Reason  string  `json:"reason,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// BatchRetireResult models the data returned by the batchretire
// command.
type BatchRetireResult struct {
	Successful []BatchRetireOutcome `json:"successful"`
	Failed     []BatchRetireOutcome `json:"failed"`
}

// Holding models one non-zero batch balance within a portfolio.
type Holding struct {
	BatchID     string  `json:"batchid"`
	ProjectID   string  `json:"projectid"`
	Balance     float64 `json:"balance"`
	VintageYear int     `json:"vintageyear"`
	Standard    string  `json:"standard"`
}

// LogEntry models one transaction log entry.  The payload shape varies
// by kind.
type LogEntry struct {
	ID      string      `json:"id"`
	Time    string      `json:"time"`
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
	From    string      `json:"from,omitempty"`
	To      string      `json:"to,omitempty"`
}

// PortfolioResult models the data returned by the getportfolio command.
type PortfolioResult struct {
	Address      string     `json:"address"`
	TotalBalance float64    `json:"totalbalance"`
	Holdings     []Holding  `json:"holdings"`
	Entries      []LogEntry `json:"entries"`
}

// RetirementEntry models one item of the getretirementhistory result.
type RetirementEntry struct {
	BatchID   string `json:"batchid"`
	ProjectID string `json:"projectid"`
	RetirementRecord
}

// SupplyBreakdown partitions an amount of supply into its total,
// retired, and still-circulating components.
type SupplyBreakdown struct {
	Total   float64 `json:"total"`
	Retired float64 `json:"retired"`
	Active  float64 `json:"active"`
}

// GetStatsResult models the data returned by the getstats command.
type GetStatsResult struct {
	TotalSupply    float64 `json:"totalsupply"`
	ActiveSupply   float64 `json:"activesupply"`
	RetiredSupply  float64 `json:"retiredsupply"`
	RetirementRate float64 `json:"retirementrate"`

	TotalBatches            int `json:"totalbatches"`
	FullyRetiredBatches     int `json:"fullyretiredbatches"`
	PartiallyRetiredBatches int `json:"partiallyretiredbatches"`
	ActiveBatches           int `json:"activebatches"`

	TotalEntries    int `json:"totalentries"`
	UniqueAddresses int `json:"uniqueaddresses"`

	VintageBreakdown  map[string]SupplyBreakdown `json:"vintagebreakdown"`
	StandardBreakdown map[string]SupplyBreakdown `json:"standardbreakdown"`
	ProjectBreakdown  map[string]SupplyBreakdown `json:"projectbreakdown"`

	TotalProjects    int      `json:"totalprojects"`
	VerifiedProjects int      `json:"verifiedprojects"`
	PendingProjects  int      `json:"pendingprojects"`
	VerifierNodes    []string `json:"verifiernodes"`
}

// VerificationRecord models one approval received by a project.
type VerificationRecord struct {
	Node            string  `json:"node"`
	Time            string  `json:"time"`
	Decision        string  `json:"decision"`
	CreditsApproved float64 `json:"creditsapproved"`
	Notes           string  `json:"notes,omitempty"`
}

// GetProjectInfoResult models the data returned by the getprojectinfo
// command.
type GetProjectInfoResult struct {
	Project       ProjectData          `json:"project"`
	DataHash      string               `json:"datahash"`
	Status        string               `json:"status"`
	SubmittedAt   string               `json:"submittedat"`
	Verifications []VerificationRecord `json:"verifications"`
	CreditsIssued float64              `json:"creditsissued"`
	BatchIDs      []string             `json:"batchids"`
	FieldData     []FieldData          `json:"fielddata"`
	Batches       []Batch              `json:"batches"`
}
