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
	"math"

	"github.com/hejy12/tispark/pkg/sql/sqlbase"
)

// defaultSplitFactor scales the declared width of variable-length
// columns, approximating average fill (golden section) instead of the
// worst case.
const defaultSplitFactor = 0.618

const (
	// unknownTypeWidth is the assumed per-row width of columns whose
	// type has no entry in the width table: treat them as very wide.
	unknownTypeWidth = 100
)

// columnWidth returns the estimated on-disk byte width of one column
// value. Fixed-width families use their exact width; variable-width
// families use the declared maximum scaled by the split factor.
func columnWidth(col *sqlbase.ColumnDescriptor, splitFactor float64) int64 {
	switch col.Type.Family {
	case sqlbase.BoolFamily:
		return 1
	case sqlbase.IntFamily, sqlbase.FloatFamily:
		if w := col.Type.Width; w > 0 {
			return w
		}
		return 8
	case sqlbase.DecimalFamily:
		return 16
	case sqlbase.DateFamily:
		return 4
	case sqlbase.TimestampFamily:
		return 8
	case sqlbase.StringFamily, sqlbase.BytesFamily:
		w := col.Type.Width
		if w <= 0 {
			w = unknownTypeWidth
		}
		scaled := int64(float64(w) * splitFactor)
		if scaled < 1 {
			scaled = 1
		}
		return scaled
	default:
		return unknownTypeWidth
	}
}

// SplitFactor returns the current variable-width split factor.
func (sc *TableStatisticsCache) SplitFactor() float64 {
	return sc.splitFactor.Load()
}

// SetSplitFactor tunes the variable-width split factor. Values
// outside (0, 1] are clamped into it.
func (sc *TableStatisticsCache) SetSplitFactor(f float64) {
	if f <= 0 {
		f = defaultSplitFactor
	} else if f > 1 {
		f = 1
	}
	sc.splitFactor.Store(f)
}

// EstimatedTableSize estimates the table's on-disk size in bytes as
// per-row width times the cached row count. A never-loaded table
// reports UnknownRowCount rows, so its size saturates; so does any
// product that would overflow.
func (sc *TableStatisticsCache) EstimatedTableSize(tbl *sqlbase.TableDescriptor) int64 {
	split := sc.splitFactor.Load()
	var width int64
	for i := range tbl.Columns {
		width += columnWidth(&tbl.Columns[i], split)
	}
	if width == 0 {
		return 0
	}
	rowCount := sc.GetRowCount(tbl.ID)
	if rowCount > math.MaxInt64/width {
		return math.MaxInt64
	}
	return width * rowCount
}
