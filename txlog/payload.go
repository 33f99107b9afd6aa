// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txlog

import (
	"github.com/YadnyeshUbhad/bluecarbond/credit"
)

// EntryKind identifies the operation a log entry records.
type EntryKind string

// These constants define the kinds of entries the log records.  The log
// itself is heterogeneous; each kind carries its own typed payload.
const (
	KindProjectSubmit   = EntryKind("projectsubmit")
	KindFieldDataSubmit = EntryKind("fielddatasubmit")
	KindMint            = EntryKind("mint")
	KindTransfer        = EntryKind("transfer")
	KindRetire          = EntryKind("retire")
	KindBatchTransfer   = EntryKind("batchtransfer")
	KindBatchRetire     = EntryKind("batchretire")
)

// Payload is the tagged union of per-kind entry payloads.  Every payload
// type reports the entry kind it belongs to, which keeps the log
// heterogeneous without giving up type safety.
type Payload interface {
	Kind() EntryKind
}

// ProjectSubmitPayload records a project submission along with the
// stable content hash of the submitted data.
type ProjectSubmitPayload struct {
	ProjectID string `json:"projectid"`
	DataHash  string `json:"datahash"`
	Submitter string `json:"submitter"`
}

// Kind returns the entry kind the payload belongs to.
func (p ProjectSubmitPayload) Kind() EntryKind { return KindProjectSubmit }

// FieldDataPayload records field-collected evidence.  Linked reports
// whether the referenced project existed at submission time; unlinked
// evidence is retained as an orphan rather than dropped.
type FieldDataPayload struct {
	FieldDataID string `json:"fielddataid"`
	ProjectID   string `json:"projectid"`
	DataHash    string `json:"datahash"`
	Submitter   string `json:"submitter"`
	Linked      bool   `json:"linked"`
}

// Kind returns the entry kind the payload belongs to.
func (p FieldDataPayload) Kind() EntryKind { return KindFieldDataSubmit }

// MintPayload records the creation of a new credit batch.
type MintPayload struct {
	BatchID   string          `json:"batchid"`
	ProjectID string          `json:"projectid"`
	Amount    credit.Amount   `json:"amount"`
	Owner     string          `json:"owner"`
	Metadata  credit.Metadata `json:"metadata"`
}

// Kind returns the entry kind the payload belongs to.
func (p MintPayload) Kind() EntryKind { return KindMint }

// TransferPayload records a completed transfer, capturing the balances
// of both parties before and after the move so the full ownership
// history can be reconstructed from the log alone.
type TransferPayload struct {
	BatchID    string        `json:"batchid"`
	Amount     credit.Amount `json:"amount"`
	FromBefore credit.Amount `json:"frombalancebefore"`
	FromAfter  credit.Amount `json:"frombalanceafter"`
	ToBefore   credit.Amount `json:"tobalancebefore"`
	ToAfter    credit.Amount `json:"tobalanceafter"`
}

// Kind returns the entry kind the payload belongs to.
func (p TransferPayload) Kind() EntryKind { return KindTransfer }

// RetirePayload records a permanent removal of credits from
// circulation.
type RetirePayload struct {
	BatchID        string        `json:"batchid"`
	Owner          string        `json:"owner"`
	Amount         credit.Amount `json:"amount"`
	Remaining      credit.Amount `json:"remainingbalance"`
	TotalRetired   credit.Amount `json:"totalretired"`
	Reason         string        `json:"reason"`
	FullRetirement bool          `json:"fullretirement"`
}

// Kind returns the entry kind the payload belongs to.
func (p RetirePayload) Kind() EntryKind { return KindRetire }

// BatchTransferPayload summarizes a batch transfer call.  The per-item
// outcomes are recorded by the individual transfer entries appended
// before the summary.
type BatchTransferPayload struct {
	Size       int `json:"batchsize"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Kind returns the entry kind the payload belongs to.
func (p BatchTransferPayload) Kind() EntryKind { return KindBatchTransfer }

// BatchRetirePayload summarizes a batch retire call.
type BatchRetirePayload struct {
	Size       int `json:"batchsize"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Kind returns the entry kind the payload belongs to.
func (p BatchRetirePayload) Kind() EntryKind { return KindBatchRetire }
