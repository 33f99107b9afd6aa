// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/YadnyeshUbhad/bluecarbond/credit"
)

// SupplyBreakdown partitions an amount of supply into its total,
// retired, and still-circulating components.
type SupplyBreakdown struct {
	Total   credit.Amount `json:"total"`
	Retired credit.Amount `json:"retired"`
	Active  credit.Amount `json:"active"`
}

// Stats aggregates the global state of the ledger for dashboards and
// monitoring.  All amounts and counts are derived from a single
// consistent view of the ledger.
type Stats struct {
	TotalSupply    credit.Amount `json:"totalsupply"`
	ActiveSupply   credit.Amount `json:"activesupply"`
	RetiredSupply  credit.Amount `json:"retiredsupply"`
	RetirementRate float64       `json:"retirementrate"`

	TotalBatches            int `json:"totalbatches"`
	FullyRetiredBatches     int `json:"fullyretiredbatches"`
	PartiallyRetiredBatches int `json:"partiallyretiredbatches"`
	ActiveBatches           int `json:"activebatches"`

	TotalEntries    int `json:"totalentries"`
	UniqueAddresses int `json:"uniqueaddresses"`

	VintageBreakdown  map[int]SupplyBreakdown    `json:"vintagebreakdown"`
	StandardBreakdown map[string]SupplyBreakdown `json:"standardbreakdown"`
	ProjectBreakdown  map[string]SupplyBreakdown `json:"projectbreakdown"`
}

// Stats returns the aggregate supply statistics.  Calling Stats twice
// with no intervening mutation returns identical results.
func (l *Ledger) Stats() Stats {
	l.mtx.RLock()
	stats := Stats{
		TotalSupply:       l.totalSupply,
		ActiveSupply:      l.totalSupply - l.retiredSupply,
		RetiredSupply:     l.retiredSupply,
		TotalBatches:      len(l.batches),
		VintageBreakdown:  make(map[int]SupplyBreakdown),
		StandardBreakdown: make(map[string]SupplyBreakdown),
		ProjectBreakdown:  make(map[string]SupplyBreakdown),
	}
	if l.totalSupply > 0 {
		stats.RetirementRate = float64(l.retiredSupply) / float64(l.totalSupply)
	}

	accumulate := func(b SupplyBreakdown, batch *credit.Batch) SupplyBreakdown {
		b.Total += batch.Issued()
		b.Retired += batch.TotalRetired()
		b.Active += batch.Available()
		return b
	}
	for _, batch := range l.batches {
		switch {
		case batch.FullyRetired():
			stats.FullyRetiredBatches++
		case batch.TotalRetired() > 0:
			stats.PartiallyRetiredBatches++
		}
		if !batch.FullyRetired() {
			stats.ActiveBatches++
		}

		vintage := batch.VintageYear()
		stats.VintageBreakdown[vintage] = accumulate(stats.VintageBreakdown[vintage], batch)
		standard := batch.Standard()
		stats.StandardBreakdown[standard] = accumulate(stats.StandardBreakdown[standard], batch)
		project := batch.ProjectID()
		stats.ProjectBreakdown[project] = accumulate(stats.ProjectBreakdown[project], batch)
	}
	l.mtx.RUnlock()

	entries := l.txLog.Entries()
	stats.TotalEntries = len(entries)
	addrs := make(map[string]struct{})
	for _, entry := range entries {
		if entry.From != "" {
			addrs[entry.From] = struct{}{}
		}
		if entry.To != "" {
			addrs[entry.To] = struct{}{}
		}
	}
	stats.UniqueAddresses = len(addrs)

	return stats
}
