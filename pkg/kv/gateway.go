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

// Package kv defines the boundary to the distributed storage layer.
// The statistics cache reads the remote system tables through the
// Gateway interface; the concrete gateway owns range scans, retries
// and leader failover, none of which leak through this boundary.
package kv

import (
	"context"

	"github.com/hejy12/tispark/pkg/sql/sqlbase"
)

// Timestamp is a cluster timestamp as issued by the timestamp oracle.
// The high bits carry the physical time in milliseconds, the low
// logicalBits carry the logical counter.
type Timestamp uint64

const logicalBits = 18

// ComposeTimestamp builds a Timestamp from a physical time in
// milliseconds and a logical counter.
func ComposeTimestamp(physicalMillis int64, logical int64) Timestamp {
	return Timestamp(physicalMillis<<logicalBits | logical)
}

// PhysicalMillis extracts the physical component of the timestamp.
func (ts Timestamp) PhysicalMillis() int64 {
	return int64(ts >> logicalBits)
}

// A Gateway executes snapshot reads against the cluster. A scan
// returns every row of sysTable whose leading key column equals
// targetTableID, as of the read timestamp ts.
//
// Rows are delivered ordered by the system table's primary key
// ascending. Callers of the bucket-row table depend on that order and
// do not re-sort.
//
// A gateway is expected to handle leader rediscovery and backoff
// internally; an error returned here is terminal for the read.
type Gateway interface {
	Scan(ctx context.Context, sysTable *sqlbase.TableDescriptor, targetTableID int64, ts Timestamp) ([]Row, error)
}

// A TimestampOracle supplies the snapshot timestamp used for a load,
// so that the reads of the statistics tables observe one consistent
// point in time.
type TimestampOracle interface {
	ReadTimestamp(ctx context.Context) (Timestamp, error)
}
