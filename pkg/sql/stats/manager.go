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
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/hejy12/tispark/pkg/kv"
)

// ErrManagerUninitialized is returned when the process-wide cache is
// queried before InitStatisticsManager ran.
var ErrManagerUninitialized = errors.New("statistics manager is not initialized")

// The process-wide statistics manager. Most callers should receive a
// *TableStatisticsCache explicitly; the singleton exists for the
// session layer, which has no construction-time injection point.
var statsManager struct {
	mu       sync.Mutex
	instance atomic.Pointer[TableStatisticsCache]
}

// InitStatisticsManager initializes the process-wide cache exactly
// once and returns it. Subsequent calls return the existing instance
// regardless of arguments.
func InitStatisticsManager(
	gateway kv.Gateway, oracle kv.TimestampOracle, resolver SchemaResolver,
) *TableStatisticsCache {
	if sc := statsManager.instance.Load(); sc != nil {
		return sc
	}
	statsManager.mu.Lock()
	defer statsManager.mu.Unlock()
	if sc := statsManager.instance.Load(); sc != nil {
		return sc
	}
	sc := NewTableStatisticsCache(gateway, oracle, resolver)
	statsManager.instance.Store(sc)
	return sc
}

// StatisticsManager returns the process-wide cache, or
// ErrManagerUninitialized if InitStatisticsManager has not run.
func StatisticsManager() (*TableStatisticsCache, error) {
	sc := statsManager.instance.Load()
	if sc == nil {
		return nil, ErrManagerUninitialized
	}
	return sc, nil
}

// ResetStatisticsManager tears the singleton down so a later
// InitStatisticsManager constructs a fresh cache. Test use only.
func ResetStatisticsManager() {
	statsManager.mu.Lock()
	defer statsManager.mu.Unlock()
	statsManager.instance.Store(nil)
}
