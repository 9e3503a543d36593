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
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/hejy12/tispark/pkg/kv"
	"github.com/hejy12/tispark/pkg/sql/sqlbase"
	"github.com/hejy12/tispark/pkg/util/logutil"
)

// statisticsResult is one fully assembled statistic: a histogram ID
// with its reconstructed histogram, sketch and the column or index it
// belongs to. Exactly one of columnInfo and indexInfo is non-nil,
// matching the DTO it was built from.
type statisticsResult struct {
	histID     int64
	hist       *Histogram
	sketch     *CMSketch
	columnInfo *sqlbase.ColumnDescriptor
	indexInfo  *sqlbase.IndexDescriptor
}

// bucketGroup collects the bucket rows of one (is_index, hist_id)
// pair in delivery order.
type bucketGroup struct {
	histID  int64
	isIndex bool
	rows    []bucketRow
}

// assembleHistograms reads all bucket rows of the table at ts and
// zips them against the accepted header DTOs, yielding at most one
// index result and one column result per histogram ID.
//
// The scan returns rows ordered by primary key (table_id, is_index,
// hist_id, bucket_id), so each group's rows arrive in bucket-ID order
// and the groups themselves form contiguous runs; no sorting happens
// here. A bucket group without a matching header, like a header
// without bucket rows, yields no result.
func (sc *TableStatisticsCache) assembleHistograms(
	ctx context.Context,
	bucketsTable *sqlbase.TableDescriptor,
	tbl *sqlbase.TableDescriptor,
	ts kv.Timestamp,
	requests []*statisticsDTO,
) ([]statisticsResult, error) {
	rows, err := sc.gateway.Scan(ctx, bucketsTable, int64(tbl.ID), ts)
	if err != nil {
		return nil, errors.Wrapf(err, "scanning bucket rows for table %d", tbl.ID)
	}
	if len(rows) == 0 {
		// An empty table has headers but no materialized buckets.
		return nil, nil
	}

	var groups []*bucketGroup
	for _, row := range rows {
		br, err := decodeBucketRow(row)
		if err != nil {
			return nil, err
		}
		if n := len(groups); n > 0 && groups[n-1].histID == br.histID && groups[n-1].isIndex == br.isIndex {
			groups[n-1].rows = append(groups[n-1].rows, br)
		} else {
			groups = append(groups, &bucketGroup{histID: br.histID, isIndex: br.isIndex, rows: []bucketRow{br}})
		}
	}

	idxReq := make(map[int64]*statisticsDTO)
	colReq := make(map[int64]*statisticsDTO)
	for _, dto := range requests {
		if dto.isIndex {
			idxReq[dto.histID] = dto
		} else {
			colReq[dto.histID] = dto
		}
	}

	results := make([]statisticsResult, 0, len(groups))
	for _, g := range groups {
		var dto *statisticsDTO
		if g.isIndex {
			dto = idxReq[g.histID]
		} else {
			dto = colReq[g.histID]
		}
		if dto == nil {
			logutil.BgLogger().Debug("bucket rows without matching histogram header, skipping",
				zap.Int64("table", int64(tbl.ID)),
				zap.Int64("histID", g.histID),
				zap.Bool("isIndex", g.isIndex))
			continue
		}
		res, err := assembleOne(dto, g.rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// assembleOne rebuilds one histogram and sketch from a header and its
// ordered bucket rows, accumulating the per-bucket deltas into
// cumulative counts.
func assembleOne(dto *statisticsDTO, rows []bucketRow) (statisticsResult, error) {
	hist := NewHistogram(dto.histID, dto.distinctCount, dto.nullCount, dto.version)
	var cumulative int64
	for _, br := range rows {
		cumulative += br.count
		if err := hist.AppendBucket(br.lower, br.upper, cumulative, br.repeats); err != nil {
			return statisticsResult{}, err
		}
	}
	sketch, err := DecodeCMSketch(dto.rawSketch)
	if err != nil {
		return statisticsResult{}, errors.Wrapf(err, "decoding sketch for histogram %d", dto.histID)
	}
	return statisticsResult{
		histID:     dto.histID,
		hist:       hist,
		sketch:     sketch,
		columnInfo: dto.columnInfo,
		indexInfo:  dto.indexInfo,
	}, nil
}

// mergeResults applies the assembled results to the merge target
// under the version gate. Accepted results replace the map entry
// wholesale; rejected ones leave the shared entry untouched.
func mergeResults(target *TableStatistics, results []statisticsResult) {
	for i := range results {
		r := &results[i]
		if r.indexInfo != nil {
			if shouldUpdate(target.IndexHistogram(r.indexInfo.ID), r.hist.Version) {
				target.Indexes[r.histID] = &IndexStatistics{
					Histogram: r.hist,
					Sketch:    r.sketch,
					IndexInfo: r.indexInfo,
				}
			}
			continue
		}
		if shouldUpdate(target.ColumnHistogram(r.columnInfo.ID), r.hist.Version) {
			target.Columns[r.histID] = &ColumnStatistics{
				Histogram:  r.hist,
				Sketch:     r.sketch,
				Count:      r.hist.TotalRowCount(),
				ColumnInfo: r.columnInfo,
			}
		}
	}
}
