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
	"bytes"

	"github.com/cockroachdb/errors"
)

// A Bucket is one range marker of a histogram. Count is cumulative:
// it includes the rows of every preceding bucket. Repeats is the
// number of rows equal to UpperBound. Bounds are kept in the remote
// key encoding and compared only bytewise here.
type Bucket struct {
	Count      int64
	Repeats    int64
	LowerBound []byte
	UpperBound []byte
}

// A Histogram approximates a column's or an index's value
// distribution as an ordered bucket sequence. Buckets are ordered by
// bucket ID ascending and their cumulative counts are non-decreasing.
//
// Version is the statistics version the histogram was written under;
// it gates whether a freshly read candidate supersedes this one (see
// shouldUpdate).
type Histogram struct {
	// ID is the histogram ID: the column ID for a column histogram,
	// the index ID for an index histogram.
	ID        int64
	NDV       int64
	NullCount int64
	Version   uint64
	Buckets   []Bucket
}

// NewHistogram returns an empty histogram carrying the header fields
// read from the remote histogram table. A histogram may legitimately
// stay empty: a table with zero rows has headers but no buckets.
func NewHistogram(id, ndv, nullCount int64, version uint64) *Histogram {
	return &Histogram{
		ID:        id,
		NDV:       ndv,
		NullCount: nullCount,
		Version:   version,
	}
}

// Len returns the number of buckets.
func (hg *Histogram) Len() int { return len(hg.Buckets) }

// AppendBucket appends a bucket holding the given cumulative count.
// It returns an error if the count would break the non-decreasing
// invariant.
func (hg *Histogram) AppendBucket(lower, upper []byte, count, repeats int64) error {
	if n := len(hg.Buckets); n > 0 && count < hg.Buckets[n-1].Count {
		return errors.Newf(
			"histogram %d: cumulative count regressed from %d to %d",
			hg.ID, hg.Buckets[n-1].Count, count)
	}
	hg.Buckets = append(hg.Buckets, Bucket{
		Count:      count,
		Repeats:    repeats,
		LowerBound: lower,
		UpperBound: upper,
	})
	return nil
}

// NotNullRowCount returns the number of non-NULL rows covered by the
// histogram, which is the cumulative count of the last bucket.
func (hg *Histogram) NotNullRowCount() int64 {
	if len(hg.Buckets) == 0 {
		return 0
	}
	return hg.Buckets[len(hg.Buckets)-1].Count
}

// TotalRowCount returns the total number of rows covered by the
// histogram, NULLs included.
func (hg *Histogram) TotalRowCount() int64 {
	return hg.NotNullRowCount() + hg.NullCount
}

// Equal reports whether two histograms carry identical headers and
// buckets.
func (hg *Histogram) Equal(other *Histogram) bool {
	if hg == nil || other == nil {
		return hg == other
	}
	if hg.ID != other.ID || hg.NDV != other.NDV ||
		hg.NullCount != other.NullCount || hg.Version != other.Version ||
		len(hg.Buckets) != len(other.Buckets) {
		return false
	}
	for i := range hg.Buckets {
		a, b := &hg.Buckets[i], &other.Buckets[i]
		if a.Count != b.Count || a.Repeats != b.Repeats ||
			!bytes.Equal(a.LowerBound, b.LowerBound) ||
			!bytes.Equal(a.UpperBound, b.UpperBound) {
			return false
		}
	}
	return true
}
