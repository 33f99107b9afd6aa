// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mrv implements the project registry that coordinates monitoring,
reporting, and verification (MRV) with the credit ledger.

Submitted projects start in the pending state.  Authorized verifier
nodes approve submissions, which routes approved credit quantities into
the ledger as newly minted batches.  A project may be verified more than
once, accumulating additional batches for phased issuance.  Field-
collected evidence is content hashed and linked to its project, or
tracked as an orphan when the project is unknown.
*/
package mrv

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"

	"github.com/YadnyeshUbhad/bluecarbond/credit"
	"github.com/YadnyeshUbhad/bluecarbond/ledger"
	"github.com/YadnyeshUbhad/bluecarbond/txlog"
)

// Status describes the verification state of a project.
type Status string

// Project verification states.  Rejection and resubmission handling
// belong to the submission front end, so verified is terminal here.
const (
	StatusPending  = Status("pending")
	StatusVerified = Status("verified")
)

// Decision is a verifier node's ruling on a project submission.
type Decision string

// Verifier decisions.
const (
	DecisionApproved = Decision("approved")
	DecisionRejected = Decision("rejected")
)

// ProjectData is an external project submission.  LastUpdated is
// volatile and excluded from the stable content hash.
type ProjectData struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Ecosystem   string            `json:"ecosystem"`
	Location    string            `json:"location"`
	SubmitterID string            `json:"submitterid"`
	TreeCount   int64             `json:"treecount,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	LastUpdated time.Time         `json:"lastupdated,omitempty"`
}

// Approval is a verifier node's ruling together with the credit
// quantity it approves for issuance.
type Approval struct {
	Decision        Decision      `json:"decision"`
	CreditsApproved credit.Amount `json:"creditsapproved"`
	Notes           string        `json:"notes,omitempty"`
}

// VerificationRecord is one approval received by a project, recorded
// regardless of the decision.
type VerificationRecord struct {
	Node            string        `json:"node"`
	Time            time.Time     `json:"time"`
	Decision        Decision      `json:"decision"`
	CreditsApproved credit.Amount `json:"creditsapproved"`
	Notes           string        `json:"notes,omitempty"`
}

// FieldRecord is field-collected evidence for a project.  CollectedAt
// is part of the evidence and participates in the content hash; the
// submission time does not.
type FieldRecord struct {
	ID           string            `json:"id"`
	ProjectID    string            `json:"projectid"`
	SubmitterID  string            `json:"submitterid"`
	CollectedAt  time.Time         `json:"collectedat"`
	Measurements map[string]string `json:"measurements,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

// ProjectRecord is the registry's view of one submitted project.
type ProjectRecord struct {
	Data          ProjectData          `json:"data"`
	DataHash      string               `json:"datahash"`
	Status        Status               `json:"status"`
	SubmittedAt   time.Time            `json:"submittedat"`
	Verifications []VerificationRecord `json:"verifications"`
	CreditsIssued credit.Amount        `json:"creditsissued"`
	BatchIDs      []string             `json:"batchids"`
	FieldData     []FieldRecord        `json:"fielddata"`
}

// ProjectInfo is a deep copy of a project record with the snapshots of
// every batch minted for it resolved.
type ProjectInfo struct {
	ProjectRecord
	Batches []credit.Snapshot `json:"batches"`
}

// Registry coordinates project submissions and verifier approvals with
// the ledger.  It is safe for concurrent access.
type Registry struct {
	mtx       sync.RWMutex
	ledger    *ledger.Ledger
	projects  map[string]*ProjectRecord
	order     []string
	verifiers map[string]struct{}
	orphans   []FieldRecord
}

// New returns a registry bound to the given ledger.  Only the listed
// verifier identities are authorized to approve submissions.
func New(l *ledger.Ledger, verifiers []string) *Registry {
	allowed := make(map[string]struct{}, len(verifiers))
	for _, node := range verifiers {
		allowed[node] = struct{}{}
	}
	return &Registry{
		ledger:    l,
		projects:  make(map[string]*ProjectRecord),
		verifiers: allowed,
	}
}

// Verifiers returns the sorted allow-list of authorized verifier
// identities.
func (r *Registry) Verifiers() []string {
	r.mtx.RLock()
	nodes := make([]string, 0, len(r.verifiers))
	for node := range r.verifiers {
		nodes = append(nodes, node)
	}
	r.mtx.RUnlock()
	sort.Strings(nodes)
	return nodes
}

// Submit records a project submission in the pending state and appends
// a project-submit entry to the transaction log.  Submitting an id that
// already exists overwrites the previous record.  The returned id is
// the log entry id of the submission.
func (r *Registry) Submit(data ProjectData) chainhash.Hash {
	dataHash := hashProjectData(&data)

	r.mtx.Lock()
	if _, ok := r.projects[data.ID]; ok {
		log.Warnf("Project %s resubmitted; overwriting previous record",
			data.ID)
	} else {
		r.order = append(r.order, data.ID)
	}
	r.projects[data.ID] = &ProjectRecord{
		Data:        data,
		DataHash:    dataHash,
		Status:      StatusPending,
		SubmittedAt: time.Now(),
	}
	r.mtx.Unlock()

	entryID := r.ledger.Log().Append(txlog.ProjectSubmitPayload{
		ProjectID: data.ID,
		DataHash:  dataHash,
		Submitter: data.SubmitterID,
	}, data.SubmitterID, "")

	log.Infof("Project %s submitted by %s (hash %s)", data.ID,
		data.SubmitterID, dataHash[:16])
	return entryID
}

// Verify records an approval from the given verifier node.  The
// approval is appended to the project record regardless of its
// decision.  An approved decision with a positive credit quantity mints
// a new batch with metadata drawn from the project and transitions the
// record to verified; repeat verifications accumulate additional
// batches.
func (r *Registry) Verify(projectID, verifierNode string, approval Approval) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	record, ok := r.projects[projectID]
	if !ok {
		str := fmt.Sprintf("project %s does not exist", projectID)
		return ruleError(ErrUnknownProject, str)
	}
	if _, ok := r.verifiers[verifierNode]; !ok {
		str := fmt.Sprintf("node %s is not an authorized verifier",
			verifierNode)
		return ruleError(ErrUnauthorizedVerifier, str)
	}

	now := time.Now()
	record.Verifications = append(record.Verifications, VerificationRecord{
		Node:            verifierNode,
		Time:            now,
		Decision:        approval.Decision,
		CreditsApproved: approval.CreditsApproved,
		Notes:           approval.Notes,
	})

	if approval.Decision != DecisionApproved || approval.CreditsApproved <= 0 {
		log.Infof("Project %s verification by %s recorded without "+
			"issuance (%s)", projectID, verifierNode, approval.Decision)
		return nil
	}

	batchID, err := r.ledger.Mint(projectID, approval.CreditsApproved,
		credit.Metadata{
			ProjectName:   record.Data.Name,
			EcosystemType: record.Data.Ecosystem,
			Location:      record.Data.Location,
			TreeCount:     record.Data.TreeCount,
			VerifierNode:  verifierNode,
			VerifiedAt:    now,
		})
	if err != nil {
		return err
	}

	record.Status = StatusVerified
	record.CreditsIssued += approval.CreditsApproved
	record.BatchIDs = append(record.BatchIDs, batchID)

	log.Infof("Project %s verified by %s: minted %v as batch %s",
		projectID, verifierNode, approval.CreditsApproved, batchID)
	return nil
}

// RecordFieldData content hashes field evidence and appends a
// field-data entry to the transaction log.  When the referenced project
// exists the record is linked into its field-data list; otherwise the
// evidence is kept on the orphan list and surfaced via a warning rather
// than silently dropped.  The returned id is the log entry id.
func (r *Registry) RecordFieldData(record FieldRecord) chainhash.Hash {
	dataHash := hashFieldRecord(&record)

	r.mtx.Lock()
	project, linked := r.projects[record.ProjectID]
	if linked {
		project.FieldData = append(project.FieldData, record)
	} else {
		r.orphans = append(r.orphans, record)
	}
	r.mtx.Unlock()

	entryID := r.ledger.Log().Append(txlog.FieldDataPayload{
		FieldDataID: record.ID,
		ProjectID:   record.ProjectID,
		DataHash:    dataHash,
		Submitter:   record.SubmitterID,
		Linked:      linked,
	}, record.SubmitterID, "")

	if !linked {
		log.Warnf("Field data %s references unknown project %s; kept as "+
			"orphaned evidence", record.ID, record.ProjectID)
	}
	return entryID
}

// Info returns a deep copy of the project record with all linked batch
// snapshots resolved.  The second return value reports whether the
// project exists.
func (r *Registry) Info(projectID string) (ProjectInfo, bool) {
	r.mtx.RLock()
	record, ok := r.projects[projectID]
	if !ok {
		r.mtx.RUnlock()
		return ProjectInfo{}, false
	}

	info := ProjectInfo{ProjectRecord: *record}
	info.Verifications = make([]VerificationRecord, len(record.Verifications))
	copy(info.Verifications, record.Verifications)
	info.BatchIDs = make([]string, len(record.BatchIDs))
	copy(info.BatchIDs, record.BatchIDs)
	info.FieldData = make([]FieldRecord, len(record.FieldData))
	copy(info.FieldData, record.FieldData)
	r.mtx.RUnlock()

	for _, batchID := range info.BatchIDs {
		if snapshot, ok := r.ledger.BatchInfo(batchID); ok {
			info.Batches = append(info.Batches, snapshot)
		}
	}
	return info, true
}

// Orphans returns a copy of the field records whose project was unknown
// at submission time.
func (r *Registry) Orphans() []FieldRecord {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	orphans := make([]FieldRecord, len(r.orphans))
	copy(orphans, r.orphans)
	return orphans
}

// Counts returns the number of submitted, verified, and still-pending
// projects.
func (r *Registry) Counts() (total, verified, pending int) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	total = len(r.projects)
	for _, record := range r.projects {
		if record.Status == StatusVerified {
			verified++
		} else {
			pending++
		}
	}
	return total, verified, pending
}
