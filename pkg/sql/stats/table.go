// Copyright 2024 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package stats

import (
	"github.com/hejy12/tispark/pkg/sql/sqlbase"
)

// ColumnStatistics pairs a column's histogram and sketch with the
// column it was collected for. Count is the total row count the
// histogram covered at collection time, materialized because the
// planner reads it on every cardinality estimate.
type ColumnStatistics struct {
	Histogram  *Histogram
	Sketch     *CMSketch
	Count      int64
	ColumnInfo *sqlbase.ColumnDescriptor
}

// IndexStatistics pairs an index's histogram and sketch with the
// index it was collected for.
type IndexStatistics struct {
	Histogram *Histogram
	Sketch    *CMSketch
	IndexInfo *sqlbase.IndexDescriptor
}

// TableStatistics holds everything the cache knows about one table:
// the row-count triple from the meta table plus one statistics entry
// per histogram ID. Column and index entries live in disjoint maps;
// a histogram ID identifies exactly one of the two.
//
// A TableStatistics published into the cache is immutable. Loads
// build an updated copy with clone and republish it; entries the load
// did not touch are shared between the copies.
type TableStatistics struct {
	TableID     sqlbase.ID
	Count       int64
	ModifyCount int64
	Version     uint64
	Columns     map[int64]*ColumnStatistics
	Indexes     map[int64]*IndexStatistics
}

// NewTableStatistics returns an empty statistics object for the given
// table.
func NewTableStatistics(tableID sqlbase.ID) *TableStatistics {
	return &TableStatistics{
		TableID: tableID,
		Columns: make(map[int64]*ColumnStatistics),
		Indexes: make(map[int64]*IndexStatistics),
	}
}

// clone returns a copy suitable as a merge target: the maps are
// fresh, the entries are shared. Entries replaced during the merge
// are newly built objects, so sharing never mutates the original.
func (t *TableStatistics) clone() *TableStatistics {
	nt := &TableStatistics{
		TableID:     t.TableID,
		Count:       t.Count,
		ModifyCount: t.ModifyCount,
		Version:     t.Version,
		Columns:     make(map[int64]*ColumnStatistics, len(t.Columns)),
		Indexes:     make(map[int64]*IndexStatistics, len(t.Indexes)),
	}
	for id, col := range t.Columns {
		nt.Columns[id] = col
	}
	for id, idx := range t.Indexes {
		nt.Indexes[id] = idx
	}
	return nt
}

// shouldUpdate is the merge gate: a candidate read from storage
// replaces the stored histogram only if nothing is stored yet or the
// candidate's version is strictly newer. The comparison is
// per-histogram, so a scoped reload can advance one column while
// leaving its siblings untouched, and a stale snapshot read can never
// regress a fresher entry.
func shouldUpdate(existing *Histogram, candidateVersion uint64) bool {
	return existing == nil || candidateVersion > existing.Version
}

// ColumnHistogram returns the stored histogram for the given column
// ID, nil if none.
func (t *TableStatistics) ColumnHistogram(id sqlbase.ColumnID) *Histogram {
	if col, ok := t.Columns[int64(id)]; ok {
		return col.Histogram
	}
	return nil
}

// IndexHistogram returns the stored histogram for the given index ID,
// nil if none.
func (t *TableStatistics) IndexHistogram(id sqlbase.IndexID) *Histogram {
	if idx, ok := t.Indexes[int64(id)]; ok {
		return idx.Histogram
	}
	return nil
}
