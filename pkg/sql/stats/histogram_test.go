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
	"fmt"
	"testing"
)

func TestHistogramAppendBucket(t *testing.T) {
	testCases := []struct {
		counts  []int64
		lastErr bool
	}{
		{counts: nil},
		{counts: []int64{0}},
		{counts: []int64{10, 10, 25}},
		{counts: []int64{10, 25, 24}, lastErr: true},
		{counts: []int64{5, 0}, lastErr: true},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			hg := NewHistogram(1, 10, 0, 1)
			var err error
			for j, c := range tc.counts {
				err = hg.AppendBucket(
					[]byte(fmt.Sprintf("l%d", j)), []byte(fmt.Sprintf("u%d", j)), c, 1)
				if err != nil && j != len(tc.counts)-1 {
					t.Fatalf("bucket %d: unexpected error %v", j, err)
				}
			}
			if tc.lastErr {
				if err == nil {
					t.Fatal("expected cumulative-count error, got none")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if hg.Len() != len(tc.counts) {
				t.Fatalf("got %d buckets, want %d", hg.Len(), len(tc.counts))
			}
		})
	}
}

func TestHistogramRowCounts(t *testing.T) {
	hg := NewHistogram(7, 3, 4, 2)
	if got := hg.TotalRowCount(); got != 4 {
		t.Fatalf("empty histogram total = %d, want nulls only (4)", got)
	}
	for i, c := range []int64{10, 30, 30} {
		if err := hg.AppendBucket([]byte{byte(i)}, []byte{byte(i + 1)}, c, 1); err != nil {
			t.Fatal(err)
		}
	}
	if got := hg.NotNullRowCount(); got != 30 {
		t.Fatalf("NotNullRowCount = %d, want 30", got)
	}
	if got := hg.TotalRowCount(); got != 34 {
		t.Fatalf("TotalRowCount = %d, want 34", got)
	}
}

func TestHistogramEqual(t *testing.T) {
	build := func() *Histogram {
		hg := NewHistogram(1, 5, 2, 3)
		_ = hg.AppendBucket([]byte("a"), []byte("c"), 4, 2)
		_ = hg.AppendBucket([]byte("d"), []byte("f"), 9, 1)
		return hg
	}
	a, b := build(), build()
	if !a.Equal(b) {
		t.Fatal("identical histograms compared unequal")
	}
	b.Buckets[1].Repeats = 2
	if a.Equal(b) {
		t.Fatal("differing histograms compared equal")
	}
	var nilHist *Histogram
	if nilHist.Equal(a) || a.Equal(nilHist) {
		t.Fatal("nil histogram compared equal to non-nil")
	}
	if !nilHist.Equal(nil) {
		t.Fatal("nil histograms should compare equal")
	}
}
