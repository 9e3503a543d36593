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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatisticsManagerLifecycle(t *testing.T) {
	ResetStatisticsManager()
	defer ResetStatisticsManager()

	_, err := StatisticsManager()
	require.ErrorIs(t, err, ErrManagerUninitialized)

	g := newFakeGateway()
	sc := InitStatisticsManager(g, &fakeOracle{}, fullResolver())
	require.NotNil(t, sc)

	got, err := StatisticsManager()
	require.NoError(t, err)
	require.Same(t, sc, got)

	// Re-initialization is a no-op returning the existing instance.
	again := InitStatisticsManager(newFakeGateway(), &fakeOracle{}, fullResolver())
	require.Same(t, sc, again)
}

func TestStatisticsManagerConcurrentInit(t *testing.T) {
	ResetStatisticsManager()
	defer ResetStatisticsManager()

	const goroutines = 16
	instances := make([]*TableStatisticsCache, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			instances[i] = InitStatisticsManager(newFakeGateway(), &fakeOracle{}, fullResolver())
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		require.Same(t, instances[0], instances[i],
			"concurrent first use must construct exactly one cache")
	}
}
