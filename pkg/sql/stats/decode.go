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
	"github.com/cockroachdb/errors"

	"github.com/hejy12/tispark/pkg/kv"
	"github.com/hejy12/tispark/pkg/sql/sqlbase"
)

// The statistics live in three remote system tables. Their row
// layouts are fixed external contracts; the ordinal constants below
// are the single place that knows them. Everything past the decoders
// works with named fields.

// Names under which the cache resolves the system tables in the
// remote catalog.
const (
	StatsMetaTableName       = "stats_meta"
	StatsHistogramsTableName = "stats_histograms"
	StatsBucketsTableName    = "stats_buckets"
)

// stats_meta: one row per table, rewritten on every analyze and on
// every tracked modification batch.
const (
	metaVersionIndex = iota
	metaTableIDIndex
	metaModifyCountIndex
	metaCountIndex
	statsMetaLen
)

// stats_histograms: one header row per histogram (column or index).
const (
	histTableIDIndex = iota
	histIsIndexIndex
	histIDIndex
	histDistinctCountIndex
	histVersionIndex
	histNullCountIndex
	histSketchIndex
	statsHistogramsLen
)

// stats_buckets: one row per histogram bucket, primary key
// (table_id, is_index, hist_id, bucket_id). Scans return rows in
// primary-key order; the assembler depends on it.
const (
	bucketTableIDIndex = iota
	bucketIsIndexIndex
	bucketHistIDIndex
	bucketIDIndex
	bucketCountIndex
	bucketRepeatsIndex
	bucketUpperBoundIndex
	bucketLowerBoundIndex
	statsBucketsLen
)

// statisticsDTO is one decoded header row, carrying the histogram
// metadata plus a reference to the column or index it describes.
// Exactly one of columnInfo and indexInfo is non-nil.
type statisticsDTO struct {
	histID        int64
	isIndex       bool
	distinctCount int64
	version       uint64
	nullCount     int64
	rawSketch     []byte
	columnInfo    *sqlbase.ColumnDescriptor
	indexInfo     *sqlbase.IndexDescriptor
}

// bucketRow is one decoded bucket row. count is the per-bucket delta
// as stored remotely; the assembler accumulates it into the
// histogram's cumulative counts.
type bucketRow struct {
	histID   int64
	isIndex  bool
	bucketID int64
	count    int64
	repeats  int64
	upper    []byte
	lower    []byte
}

func decodeMetaRow(row kv.Row) (version uint64, modifyCount, count int64, err error) {
	if row.Len() != statsMetaLen {
		return 0, 0, 0, errors.Newf(
			"%d values returned from stats meta lookup, expected %d", row.Len(), statsMetaLen)
	}
	return row.Uint64(metaVersionIndex),
		row.Int64(metaModifyCountIndex),
		row.Int64(metaCountIndex),
		nil
}

// decodeHeaderRow decodes one stats_histograms row against the
// table's descriptors. A header whose histogram ID matches neither a
// column nor an index of the table is a stale leftover (the column or
// index was dropped); it decodes to (nil, nil) and is filtered out
// rather than failing the batch.
func decodeHeaderRow(tbl *sqlbase.TableDescriptor, row kv.Row) (*statisticsDTO, error) {
	if row.Len() != statsHistogramsLen {
		return nil, errors.Newf(
			"%d values returned from stats histogram lookup, expected %d", row.Len(), statsHistogramsLen)
	}
	dto := &statisticsDTO{
		histID:        row.Int64(histIDIndex),
		isIndex:       row.Int64(histIsIndexIndex) != 0,
		distinctCount: row.Int64(histDistinctCountIndex),
		version:       row.Uint64(histVersionIndex),
		nullCount:     row.Int64(histNullCountIndex),
	}
	if !row.IsNull(histSketchIndex) {
		dto.rawSketch = row.Bytes(histSketchIndex)
	}
	if dto.isIndex {
		idx, ok := tbl.FindIndexByID(sqlbase.IndexID(dto.histID))
		if !ok {
			return nil, nil
		}
		dto.indexInfo = idx
	} else {
		col, ok := tbl.FindColumnByID(sqlbase.ColumnID(dto.histID))
		if !ok {
			return nil, nil
		}
		dto.columnInfo = col
	}
	return dto, nil
}

func decodeBucketRow(row kv.Row) (bucketRow, error) {
	if row.Len() != statsBucketsLen {
		return bucketRow{}, errors.Newf(
			"%d values returned from stats bucket lookup, expected %d", row.Len(), statsBucketsLen)
	}
	return bucketRow{
		histID:   row.Int64(bucketHistIDIndex),
		isIndex:  row.Int64(bucketIsIndexIndex) != 0,
		bucketID: row.Int64(bucketIDIndex),
		count:    row.Int64(bucketCountIndex),
		repeats:  row.Int64(bucketRepeatsIndex),
		upper:    row.Bytes(bucketUpperBoundIndex),
		lower:    row.Bytes(bucketLowerBoundIndex),
	}, nil
}
