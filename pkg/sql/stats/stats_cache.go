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

// Package stats maintains the process-wide cache of per-table
// statistics read from the cluster's statistics system tables, for
// use by the planner's cost estimation.
package stats

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	atomic2 "go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/hejy12/tispark/pkg/kv"
	"github.com/hejy12/tispark/pkg/sql/sqlbase"
	"github.com/hejy12/tispark/pkg/util/logutil"
)

// ErrUnknownColumn is returned by LoadStatistics when a requested
// column name does not exist on the table. The load applies nothing
// in that case.
var ErrUnknownColumn = errors.New("unknown column")

// UnknownRowCount is the row count reported for tables whose
// statistics were never loaded. Cost estimators treat it as unbounded
// cardinality; it is never zero.
const UnknownRowCount = int64(math.MaxInt64)

// A SchemaResolver resolves the statistics system tables in the
// remote catalog. A table that is not (yet) resolvable makes loads a
// no-op rather than an error; statistics may simply not be available
// on this cluster yet.
type SchemaResolver interface {
	ResolveSystemTable(name string) (*sqlbase.TableDescriptor, bool)
}

// cacheSnapshot is one immutable published state of the cache.
// version is the highest table version contained in it.
type cacheSnapshot struct {
	tables  map[sqlbase.ID]*TableStatistics
	version uint64
}

// A TableStatisticsCache caches one TableStatistics per table ID.
//
// Reads (GetTableStatistics, GetRowCount, EstimatedTableSize) are
// lock-free against an atomically published snapshot. LoadStatistics
// is the only mutating operation and is fully serialized process-wide
// by mu: no two loads overlap, even for different tables, which keeps
// the underlying gateway session free of racing reads. A load builds
// an updated copy of the table's statistics and republishes the
// snapshot, so readers observe either the pre- or post-load state,
// never a partial one.
type TableStatisticsCache struct {
	mu struct {
		sync.Mutex
	}
	snapshot atomic.Value // cacheSnapshot

	gateway  kv.Gateway
	oracle   kv.TimestampOracle
	resolver SchemaResolver

	// splitFactor scales declared widths of variable-length columns in
	// size estimation. Tunable at runtime, see SetSplitFactor.
	splitFactor atomic2.Float64
}

// NewTableStatisticsCache returns an empty cache reading through the
// given gateway at timestamps issued by the given oracle.
func NewTableStatisticsCache(
	gateway kv.Gateway, oracle kv.TimestampOracle, resolver SchemaResolver,
) *TableStatisticsCache {
	sc := &TableStatisticsCache{
		gateway:  gateway,
		oracle:   oracle,
		resolver: resolver,
	}
	sc.splitFactor.Store(defaultSplitFactor)
	sc.snapshot.Store(cacheSnapshot{tables: make(map[sqlbase.ID]*TableStatistics)})
	return sc
}

func (sc *TableStatisticsCache) getSnapshot() cacheSnapshot {
	return sc.snapshot.Load().(cacheSnapshot)
}

// GetTableStatistics returns the cached statistics for the table, or
// nil if the table was never successfully loaded. Absence means "not
// loaded", not "known empty".
func (sc *TableStatisticsCache) GetTableStatistics(tableID sqlbase.ID) *TableStatistics {
	return sc.getSnapshot().tables[tableID]
}

// GetRowCount returns the cached row count for the table, or
// UnknownRowCount if the table was never loaded.
func (sc *TableStatisticsCache) GetRowCount(tableID sqlbase.ID) int64 {
	if t := sc.GetTableStatistics(tableID); t != nil {
		return t.Count
	}
	return UnknownRowCount
}

// Version returns the highest statistics version the cache has
// observed across all tables.
func (sc *TableStatisticsCache) Version() uint64 {
	return sc.getSnapshot().version
}

// Reset drops every cached table. Used for test isolation and to
// force full reloads after external schema changes.
func (sc *TableStatisticsCache) Reset() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.snapshot.Store(cacheSnapshot{tables: make(map[sqlbase.ID]*TableStatistics)})
}

// LoadStatistics reads the table's statistics from the cluster and
// merges them into the cache. If columnNames is non-empty, only the
// named columns' statistics are read; index statistics always are.
// Entries outside the requested scope survive a scoped load.
//
// A table whose statistics system tables are unresolvable logs a
// warning and leaves the cache untouched. A requested column name not
// found on the table fails the whole call with ErrUnknownColumn
// before anything is read. A table with no statistics rows is left
// absent from the cache.
func (sc *TableStatisticsCache) LoadStatistics(
	ctx context.Context, tbl *sqlbase.TableDescriptor, columnNames ...string,
) error {
	if tbl == nil {
		return errors.New("nil table descriptor")
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	metaTable, okMeta := sc.resolver.ResolveSystemTable(StatsMetaTableName)
	histTable, okHist := sc.resolver.ResolveSystemTable(StatsHistogramsTableName)
	bucketsTable, okBuckets := sc.resolver.ResolveSystemTable(StatsBucketsTableName)
	if !okMeta || !okHist || !okBuckets {
		logutil.BgLogger().Warn("statistics system tables not ready, skipping load",
			zap.Int64("table", int64(tbl.ID)))
		return nil
	}

	// Resolve the requested scope up front so an unknown name fails
	// the call before any remote read.
	var scope map[sqlbase.ColumnID]struct{}
	if len(columnNames) > 0 {
		scope = make(map[sqlbase.ColumnID]struct{}, len(columnNames))
		for _, name := range columnNames {
			col, ok := tbl.FindColumnByName(name)
			if !ok {
				return errors.Wrapf(ErrUnknownColumn, "%q in table %q", name, tbl.Name)
			}
			scope[col.ID] = struct{}{}
		}
	}

	ts, err := sc.oracle.ReadTimestamp(ctx)
	if err != nil {
		return errors.Wrap(err, "acquiring read timestamp")
	}

	metaRows, err := sc.gateway.Scan(ctx, metaTable, int64(tbl.ID), ts)
	if err != nil {
		return errors.Wrapf(err, "scanning stats meta for table %d", tbl.ID)
	}
	if len(metaRows) == 0 {
		// Never analyzed. Absence is the correct cache state.
		return nil
	}

	var target *TableStatistics
	if base := sc.getSnapshot().tables[tbl.ID]; base != nil {
		target = base.clone()
	} else {
		target = NewTableStatistics(tbl.ID)
	}

	// Rows arrive version-ordered; the last one is the freshest. The
	// version gate keeps a stale snapshot read from regressing the
	// cached triple.
	version, modifyCount, count, err := decodeMetaRow(metaRows[len(metaRows)-1])
	if err != nil {
		return err
	}
	if version >= target.Version {
		target.Version = version
		target.ModifyCount = modifyCount
		target.Count = count
	}

	headerRows, err := sc.gateway.Scan(ctx, histTable, int64(tbl.ID), ts)
	if err != nil {
		return errors.Wrapf(err, "scanning histogram headers for table %d", tbl.ID)
	}
	if len(headerRows) > 0 {
		requests := make([]*statisticsDTO, 0, len(headerRows))
		for _, row := range headerRows {
			dto, err := decodeHeaderRow(tbl, row)
			if err != nil {
				return err
			}
			if dto == nil {
				// Header for a dropped column or index.
				continue
			}
			if scope != nil && !dto.isIndex {
				if _, ok := scope[sqlbase.ColumnID(dto.histID)]; !ok {
					continue
				}
			}
			requests = append(requests, dto)
		}
		if len(requests) > 0 {
			results, err := sc.assembleHistograms(ctx, bucketsTable, tbl, ts, requests)
			if err != nil {
				return err
			}
			mergeResults(target, results)
		}
	}

	sc.publish(target)
	logutil.BgLogger().Debug("loaded table statistics",
		zap.Int64("table", int64(tbl.ID)),
		zap.Int64("count", target.Count),
		zap.Uint64("version", target.Version),
		zap.Int("columns", len(target.Columns)),
		zap.Int("indexes", len(target.Indexes)))
	return nil
}

// publish replaces the table's entry in a fresh snapshot. Callers
// hold mu.
func (sc *TableStatisticsCache) publish(t *TableStatistics) {
	old := sc.getSnapshot()
	tables := make(map[sqlbase.ID]*TableStatistics, len(old.tables)+1)
	for id, cached := range old.tables {
		tables[id] = cached
	}
	tables[t.TableID] = t
	version := old.version
	if t.Version > version {
		version = t.Version
	}
	sc.snapshot.Store(cacheSnapshot{tables: tables, version: version})
}
