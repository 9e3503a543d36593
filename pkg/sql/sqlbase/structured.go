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

// Package sqlbase holds the schema descriptors shared by the SQL
// layers: tables, columns, indexes and their declared types. The
// descriptors mirror what the cluster's catalog serves; this package
// does not talk to the catalog itself.
package sqlbase

import "strings"

// ID is a unique identifier for a table.
type ID int64

// ColumnID is the identifier for a column within a table. It doubles
// as the histogram ID for the column's statistics.
type ColumnID int64

// IndexID is the identifier for an index within a table. It doubles as
// the histogram ID for the index's statistics.
type IndexID int64

// TypeFamily classifies a column type for width estimation. Types
// outside the enumerated families are treated as very wide by the
// size estimator.
type TypeFamily int

const (
	// UnknownFamily is any type not covered by the families below.
	UnknownFamily TypeFamily = iota
	// BoolFamily is BOOLEAN.
	BoolFamily
	// IntFamily covers the fixed-width integer types; the width is
	// carried in ColumnType.Width.
	IntFamily
	// FloatFamily covers FLOAT4/FLOAT8.
	FloatFamily
	// DecimalFamily is arbitrary-precision decimal.
	DecimalFamily
	// DateFamily is DATE.
	DateFamily
	// TimestampFamily covers TIMESTAMP and TIMESTAMPTZ.
	TimestampFamily
	// StringFamily covers CHAR/VARCHAR/TEXT; Width is the declared
	// maximum length in bytes (0 if unbounded).
	StringFamily
	// BytesFamily covers BYTES/BLOB; Width as for StringFamily.
	BytesFamily
)

// ColumnType is the declared type of a column.
type ColumnType struct {
	Family TypeFamily
	// Width is the fixed byte width for fixed-width families and the
	// declared maximum byte length for variable-width families. Zero
	// means "use the family default".
	Width int64
}

// ColumnDescriptor describes a single column of a table.
type ColumnDescriptor struct {
	ID   ColumnID
	Name string
	Type ColumnType
}

// IndexDescriptor describes a single index of a table.
type IndexDescriptor struct {
	ID        IndexID
	Name      string
	ColumnIDs []ColumnID
}

// TableDescriptor describes a table: its identity plus the column and
// index descriptors statistics are keyed against.
type TableDescriptor struct {
	ID      ID
	Name    string
	Columns []ColumnDescriptor
	Indexes []IndexDescriptor
}

// FindColumnByName returns the column with the given name, matching
// case-insensitively per the catalog's collation rules.
func (desc *TableDescriptor) FindColumnByName(name string) (*ColumnDescriptor, bool) {
	for i := range desc.Columns {
		if strings.EqualFold(desc.Columns[i].Name, name) {
			return &desc.Columns[i], true
		}
	}
	return nil, false
}

// FindColumnByID returns the column with the given ID.
func (desc *TableDescriptor) FindColumnByID(id ColumnID) (*ColumnDescriptor, bool) {
	for i := range desc.Columns {
		if desc.Columns[i].ID == id {
			return &desc.Columns[i], true
		}
	}
	return nil, false
}

// FindIndexByID returns the index with the given ID.
func (desc *TableDescriptor) FindIndexByID(id IndexID) (*IndexDescriptor, bool) {
	for i := range desc.Indexes {
		if desc.Indexes[i].ID == id {
			return &desc.Indexes[i], true
		}
	}
	return nil, false
}
