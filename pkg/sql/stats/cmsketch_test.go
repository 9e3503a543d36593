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
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/stretchr/testify/require"
)

// testSketch builds a small sketch with deterministic counters. Every
// row sums to the same total, as a real count-min sketch's rows do.
func testSketch(d, w int32) *CMSketch {
	c := NewCMSketch(d, w)
	var total uint32
	for j := int32(0); j < w; j++ {
		total += uint32(j + 1)
	}
	for i := int32(0); i < d; i++ {
		for j := int32(0); j < w; j++ {
			// Rotate per row so rows differ but keep the same sum.
			c.table[i][j] = uint32((j+i)%w + 1)
		}
	}
	c.count = uint64(total)
	return c
}

func TestCMSketchRoundTrip(t *testing.T) {
	for _, dims := range []struct{ d, w int32 }{{1, 1}, {4, 16}, {5, 2048}} {
		c := testSketch(dims.d, dims.w)
		c.defaultValue = 42

		decoded, err := DecodeCMSketch(EncodeCMSketch(c))
		require.NoError(t, err)
		require.True(t, c.Equal(decoded), "round-trip changed the sketch (d=%d w=%d)", dims.d, dims.w)
		require.Equal(t, c.TotalCount(), decoded.TotalCount())
	}
}

func TestCMSketchDecodeEmpty(t *testing.T) {
	for _, data := range [][]byte{nil, {}} {
		c, err := DecodeCMSketch(data)
		require.NoError(t, err)
		require.Nil(t, c, "empty bytes must decode to a nil sketch")
	}
}

func TestCMSketchDecodeMalformed(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte{0xff, 0xff, 0xff}},
		{"no rows", EncodeCMSketch(&CMSketch{defaultValue: 7})},
		{"length past end", append(proto.EncodeVarint(sketchRowsField<<3|wireLengthDel), 0x7f)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCMSketch(tc.data)
			require.Error(t, err)
		})
	}
}

func TestCMSketchDecodeRaggedRows(t *testing.T) {
	c := testSketch(2, 4)
	c.table[1] = c.table[1][:3]
	_, err := DecodeCMSketch(EncodeCMSketch(c))
	require.Error(t, err, "rows of differing width must be rejected")
}

func TestCMSketchDecodeSkipsUnknownFields(t *testing.T) {
	c := testSketch(2, 8)
	data := EncodeCMSketch(c)
	// Append an unknown varint field (field 9); decoders must skip it.
	data = append(data, proto.EncodeVarint(9<<3|wireVarint)...)
	data = append(data, proto.EncodeVarint(12345)...)

	decoded, err := DecodeCMSketch(data)
	require.NoError(t, err)
	require.True(t, c.Equal(decoded))
}

func TestCMSketchCopy(t *testing.T) {
	c := testSketch(3, 4)
	cp := c.Copy()
	require.True(t, c.Equal(cp))
	cp.table[0][0]++
	require.False(t, c.Equal(cp), "copy must not share counter storage")

	var nilSketch *CMSketch
	require.Nil(t, nilSketch.Copy())
	require.True(t, nilSketch.Equal(nil))
	require.False(t, nilSketch.Equal(c))
}
