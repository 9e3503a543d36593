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
	"github.com/gogo/protobuf/proto"
)

// CMSketch is a count-min sketch: a fixed-size structure estimating
// per-value frequency. The cache only decodes, stores and hands it to
// the planner; it never inserts into or queries the sketch itself.
type CMSketch struct {
	depth        int32
	width        int32
	count        uint64
	defaultValue uint64
	table        [][]uint32
}

// NewCMSketch returns a zeroed sketch with d rows of w counters.
func NewCMSketch(d, w int32) *CMSketch {
	table := make([][]uint32, d)
	for i := range table {
		table[i] = make([]uint32, w)
	}
	return &CMSketch{depth: d, width: w, table: table}
}

// Depth returns the number of counter rows.
func (c *CMSketch) Depth() int32 { return c.depth }

// Width returns the number of counters per row.
func (c *CMSketch) Width() int32 { return c.width }

// TotalCount returns the total number of insertions the sketch has
// seen, which equals the sum of any single counter row.
func (c *CMSketch) TotalCount() uint64 { return c.count }

// Copy returns a deep copy of the sketch.
func (c *CMSketch) Copy() *CMSketch {
	if c == nil {
		return nil
	}
	table := make([][]uint32, c.depth)
	for i := range table {
		table[i] = make([]uint32, c.width)
		copy(table[i], c.table[i])
	}
	return &CMSketch{
		depth:        c.depth,
		width:        c.width,
		count:        c.count,
		defaultValue: c.defaultValue,
		table:        table,
	}
}

// Equal reports whether two sketches hold identical counters.
func (c *CMSketch) Equal(rc *CMSketch) bool {
	if c == nil || rc == nil {
		return c == rc
	}
	if c.depth != rc.depth || c.width != rc.width ||
		c.count != rc.count || c.defaultValue != rc.defaultValue {
		return false
	}
	for i := range c.table {
		for j := range c.table[i] {
			if c.table[i][j] != rc.table[i][j] {
				return false
			}
		}
	}
	return true
}

// The sketch is persisted in the remote histogram table as a protobuf
// message. The wire contract is fixed externally:
//
//	message FrequencySketch {
//	  repeated Row rows          = 1; // message Row { repeated uint32 counters = 1 [packed]; }
//	  optional uint64 default_value = 2;
//	}
//
// The total count is not persisted; it is the sum of any one counter
// row and is rederived on decode.
const (
	sketchRowsField         = 1
	sketchDefaultValueField = 2

	sketchRowCountersField = 1

	wireVarint    = 0
	wireLengthDel = 2
)

// DecodeCMSketch decodes a sketch from its wire encoding. A nil or
// empty input yields a nil sketch, not an error: columns analyzed
// without a sketch store NULL bytes.
func DecodeCMSketch(data []byte) (*CMSketch, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var table [][]uint32
	var defaultValue uint64
	for off := 0; off < len(data); {
		key, n := proto.DecodeVarint(data[off:])
		if n == 0 {
			return nil, errors.New("sketch: truncated field key")
		}
		off += n
		field, wire := key>>3, key&7
		switch {
		case field == sketchRowsField && wire == wireLengthDel:
			raw, m, err := decodeLengthDelimited(data[off:])
			if err != nil {
				return nil, errors.Wrap(err, "sketch: rows")
			}
			off += m
			counters, err := decodeSketchRow(raw)
			if err != nil {
				return nil, err
			}
			table = append(table, counters)
		case field == sketchDefaultValueField && wire == wireVarint:
			v, m := proto.DecodeVarint(data[off:])
			if m == 0 {
				return nil, errors.New("sketch: truncated default value")
			}
			off += m
			defaultValue = v
		default:
			m, err := skipField(data[off:], wire)
			if err != nil {
				return nil, err
			}
			off += m
		}
	}
	if len(table) == 0 {
		return nil, errors.New("sketch: no counter rows")
	}
	width := len(table[0])
	for i, row := range table {
		if len(row) != width {
			return nil, errors.Newf("sketch: row %d has %d counters, want %d", i, len(row), width)
		}
	}
	c := &CMSketch{
		depth:        int32(len(table)),
		width:        int32(width),
		defaultValue: defaultValue,
		table:        table,
	}
	for _, v := range table[0] {
		c.count += uint64(v)
	}
	return c, nil
}

// EncodeCMSketch encodes the sketch into its wire format. A nil
// sketch encodes to nil bytes.
func EncodeCMSketch(c *CMSketch) []byte {
	if c == nil {
		return nil
	}
	var out []byte
	for _, row := range c.table {
		var packed []byte
		for _, v := range row {
			packed = append(packed, proto.EncodeVarint(uint64(v))...)
		}
		var body []byte
		body = append(body, proto.EncodeVarint(sketchRowCountersField<<3|wireLengthDel)...)
		body = append(body, proto.EncodeVarint(uint64(len(packed)))...)
		body = append(body, packed...)

		out = append(out, proto.EncodeVarint(sketchRowsField<<3|wireLengthDel)...)
		out = append(out, proto.EncodeVarint(uint64(len(body)))...)
		out = append(out, body...)
	}
	if c.defaultValue != 0 {
		out = append(out, proto.EncodeVarint(sketchDefaultValueField<<3|wireVarint)...)
		out = append(out, proto.EncodeVarint(c.defaultValue)...)
	}
	return out
}

// decodeSketchRow decodes one Row submessage into its counters.
func decodeSketchRow(data []byte) ([]uint32, error) {
	var counters []uint32
	for off := 0; off < len(data); {
		key, n := proto.DecodeVarint(data[off:])
		if n == 0 {
			return nil, errors.New("sketch: truncated row key")
		}
		off += n
		field, wire := key>>3, key&7
		switch {
		case field == sketchRowCountersField && wire == wireLengthDel:
			// Packed counters.
			raw, m, err := decodeLengthDelimited(data[off:])
			if err != nil {
				return nil, errors.Wrap(err, "sketch: counters")
			}
			off += m
			for p := 0; p < len(raw); {
				v, q := proto.DecodeVarint(raw[p:])
				if q == 0 {
					return nil, errors.New("sketch: truncated counter")
				}
				p += q
				counters = append(counters, uint32(v))
			}
		case field == sketchRowCountersField && wire == wireVarint:
			// Unpacked counters, written by older encoders.
			v, m := proto.DecodeVarint(data[off:])
			if m == 0 {
				return nil, errors.New("sketch: truncated counter")
			}
			off += m
			counters = append(counters, uint32(v))
		default:
			m, err := skipField(data[off:], wire)
			if err != nil {
				return nil, err
			}
			off += m
		}
	}
	return counters, nil
}

func decodeLengthDelimited(data []byte) ([]byte, int, error) {
	length, n := proto.DecodeVarint(data)
	if n == 0 {
		return nil, 0, errors.New("truncated length")
	}
	end := n + int(length)
	if end > len(data) || end < n {
		return nil, 0, errors.New("length past end of buffer")
	}
	return data[n:end], end, nil
}

// skipField skips an unknown field of the given wire type, returning
// the number of bytes consumed.
func skipField(data []byte, wire uint64) (int, error) {
	switch wire {
	case wireVarint:
		_, n := proto.DecodeVarint(data)
		if n == 0 {
			return 0, errors.New("sketch: truncated varint")
		}
		return n, nil
	case wireLengthDel:
		_, n, err := decodeLengthDelimited(data)
		return n, err
	default:
		return 0, errors.Newf("sketch: unsupported wire type %d", wire)
	}
}
