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

package kv

type datumKind int8

const (
	kindNull datumKind = iota
	kindInt
	kindUint
	kindBytes
)

// A Datum is one typed field of a remote row. The zero value is NULL.
type Datum struct {
	kind datumKind
	i    int64
	b    []byte
}

// IntDatum returns a signed integer datum.
func IntDatum(v int64) Datum { return Datum{kind: kindInt, i: v} }

// UintDatum returns an unsigned integer datum.
func UintDatum(v uint64) Datum { return Datum{kind: kindUint, i: int64(v)} }

// BytesDatum returns a raw bytes datum. The slice is aliased, not
// copied.
func BytesDatum(b []byte) Datum { return Datum{kind: kindBytes, b: b} }

// NullDatum returns the NULL datum.
func NullDatum() Datum { return Datum{} }

// A Row is one decoded remote row with ordinal-indexed typed access.
// Accessors of the wrong type return the zero value; schema-level
// validation happens in the decoders that consume rows.
type Row []Datum

// Len returns the number of fields in the row.
func (r Row) Len() int { return len(r) }

// IsNull reports whether field i is NULL.
func (r Row) IsNull(i int) bool { return r[i].kind == kindNull }

// Int64 returns field i as a signed integer.
func (r Row) Int64(i int) int64 {
	if r[i].kind == kindInt || r[i].kind == kindUint {
		return r[i].i
	}
	return 0
}

// Uint64 returns field i as an unsigned integer.
func (r Row) Uint64(i int) uint64 {
	if r[i].kind == kindInt || r[i].kind == kindUint {
		return uint64(r[i].i)
	}
	return 0
}

// Bytes returns field i as raw bytes, nil if the field is NULL or not
// a bytes field.
func (r Row) Bytes(i int) []byte {
	if r[i].kind == kindBytes {
		return r[i].b
	}
	return nil
}
