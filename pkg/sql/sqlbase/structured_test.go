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

package sqlbase

import "testing"

func testDesc() *TableDescriptor {
	return &TableDescriptor{
		ID:   1,
		Name: "orders",
		Columns: []ColumnDescriptor{
			{ID: 1, Name: "OrderID", Type: ColumnType{Family: IntFamily, Width: 8}},
			{ID: 2, Name: "note", Type: ColumnType{Family: StringFamily, Width: 64}},
		},
		Indexes: []IndexDescriptor{
			{ID: 1, Name: "primary", ColumnIDs: []ColumnID{1}},
		},
	}
}

func TestFindColumnByName(t *testing.T) {
	desc := testDesc()
	testCases := []struct {
		name  string
		found bool
		id    ColumnID
	}{
		{"OrderID", true, 1},
		{"orderid", true, 1}, // name matching is case-insensitive
		{"NOTE", true, 2},
		{"ghost", false, 0},
	}
	for _, tc := range testCases {
		col, ok := desc.FindColumnByName(tc.name)
		if ok != tc.found {
			t.Fatalf("%q: found = %v, want %v", tc.name, ok, tc.found)
		}
		if ok && col.ID != tc.id {
			t.Fatalf("%q: id = %d, want %d", tc.name, col.ID, tc.id)
		}
	}
}

func TestFindByID(t *testing.T) {
	desc := testDesc()
	if col, ok := desc.FindColumnByID(2); !ok || col.Name != "note" {
		t.Fatal("FindColumnByID(2) failed")
	}
	if _, ok := desc.FindColumnByID(99); ok {
		t.Fatal("FindColumnByID(99) should miss")
	}
	if idx, ok := desc.FindIndexByID(1); !ok || idx.Name != "primary" {
		t.Fatal("FindIndexByID(1) failed")
	}
	if _, ok := desc.FindIndexByID(99); ok {
		t.Fatal("FindIndexByID(99) should miss")
	}
}

func TestDescriptorPointersAreStable(t *testing.T) {
	desc := testDesc()
	a, _ := desc.FindColumnByName("note")
	b, _ := desc.FindColumnByID(2)
	if a != b {
		t.Fatal("lookups must return pointers into the descriptor")
	}
}
