// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mrv

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"lukechampine.com/blake3"
)

// contentHash returns the hex-encoded blake3 hash of the canonical JSON
// serialization of v.  Struct fields serialize in declaration order and
// map keys are sorted, so the hash is reproducible for identical
// content.
func contentHash(v interface{}) string {
	canonical, err := json.Marshal(v)
	if err != nil {
		// Hash inputs are plain data structs and marshal without error.
		panic(fmt.Sprintf("unmarshalable content: %v", err))
	}
	sum := blake3.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// stableProjectData mirrors ProjectData without its volatile fields so
// cosmetic edits (such as a refreshed last-updated timestamp) do not
// change the content hash.
type stableProjectData struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Ecosystem   string            `json:"ecosystem"`
	Location    string            `json:"location"`
	SubmitterID string            `json:"submitterid"`
	TreeCount   int64             `json:"treecount"`
	Attributes  map[string]string `json:"attributes"`
}

// hashProjectData computes the stable content hash of a project
// submission.
func hashProjectData(data *ProjectData) string {
	return contentHash(stableProjectData{
		ID:          data.ID,
		Name:        data.Name,
		Ecosystem:   data.Ecosystem,
		Location:    data.Location,
		SubmitterID: data.SubmitterID,
		TreeCount:   data.TreeCount,
		Attributes:  data.Attributes,
	})
}

// stableFieldRecord mirrors FieldRecord without its volatile submission
// timestamp.
type stableFieldRecord struct {
	ID           string            `json:"id"`
	ProjectID    string            `json:"projectid"`
	SubmitterID  string            `json:"submitterid"`
	CollectedAt  string            `json:"collectedat"`
	Measurements map[string]string `json:"measurements"`
	Notes        string            `json:"notes"`
}

// hashFieldRecord computes the stable content hash of field-collected
// evidence.
func hashFieldRecord(record *FieldRecord) string {
	return contentHash(stableFieldRecord{
		ID:           record.ID,
		ProjectID:    record.ProjectID,
		SubmitterID:  record.SubmitterID,
		CollectedAt:  record.CollectedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"),
		Measurements: record.Measurements,
		Notes:        record.Notes,
	})
}
