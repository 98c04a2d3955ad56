// Copyright 2024 Tessera DB
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package idtable

import (
	"sort"

	"github.com/tesseradb/tessera/pkg/common/moerr"
)

// IdTable is a dynamically sized table of Ids with a fixed width. Rows are
// stored row-major in one backing slice. The producer of a table owns it
// exclusively until it hands the table to a consumer; after that the table
// is treated as read-only.
type IdTable struct {
	width int
	data  []Id
}

func New(width int) *IdTable {
	if width <= 0 {
		panic(moerr.NewInternalErrorNoCtx("id table width must be positive, got %d", width))
	}
	return &IdTable{width: width}
}

func NewWithCapacity(width, rows int) *IdTable {
	t := New(width)
	t.data = make([]Id, 0, width*rows)
	return t
}

func (t *IdTable) Width() int {
	return t.width
}

func (t *IdTable) RowCount() int {
	return len(t.data) / t.width
}

func (t *IdTable) Get(row, col int) Id {
	return t.data[row*t.width+col]
}

func (t *IdTable) Set(row, col int, id Id) {
	t.data[row*t.width+col] = id
}

// Row returns a view into the table's backing storage. The slice is only
// valid until the next append.
func (t *IdTable) Row(row int) []Id {
	off := row * t.width
	return t.data[off : off+t.width : off+t.width]
}

func (t *IdTable) AppendRow(row []Id) {
	if len(row) != t.width {
		panic(moerr.NewInternalErrorNoCtx(
			"appending row of width %d to table of width %d", len(row), t.width))
	}
	t.data = append(t.data, row...)
}

func (t *IdTable) Reserve(rows int) {
	need := len(t.data) + rows*t.width
	if cap(t.data) < need {
		grown := make([]Id, len(t.data), need)
		copy(grown, t.data)
		t.data = grown
	}
}

// Clone makes a deep copy. Used by paths that must sort an input they do
// not own.
func (t *IdTable) Clone() *IdTable {
	c := &IdTable{width: t.width, data: make([]Id, len(t.data))}
	copy(c.data, t.data)
	return c
}

// SortByColumn sorts the rows ascending by the given column. The sort is
// stable so rows with equal keys keep their input order.
func (t *IdTable) SortByColumn(col int) {
	if col < 0 || col >= t.width {
		panic(moerr.NewInternalErrorNoCtx("sort column %d out of range for width %d", col, t.width))
	}
	sort.Stable(&rowSorter{t: t, col: col, buf: make([]Id, t.width)})
}

func (t *IdTable) IsSortedOn(col int) bool {
	for r := 1; r < t.RowCount(); r++ {
		if t.Get(r, col) < t.Get(r-1, col) {
			return false
		}
	}
	return true
}

type rowSorter struct {
	t   *IdTable
	col int
	buf []Id
}

func (s *rowSorter) Len() int {
	return s.t.RowCount()
}

func (s *rowSorter) Less(i, j int) bool {
	return s.t.Get(i, s.col) < s.t.Get(j, s.col)
}

func (s *rowSorter) Swap(i, j int) {
	ri, rj := s.t.Row(i), s.t.Row(j)
	copy(s.buf, ri)
	copy(ri, rj)
	copy(rj, s.buf)
}
