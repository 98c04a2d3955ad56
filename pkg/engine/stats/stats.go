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

// Package stats estimates column statistics of materialized tables for the
// optimizer-facing side of the operator contract.
package stats

import (
	"encoding/binary"

	"github.com/axiomhq/hyperloglog"

	"github.com/tesseradb/tessera/pkg/container/idtable"
)

// DistinctEstimate approximates the number of distinct Ids in a column
// using a hyperloglog sketch. Always at least 1 for non-empty tables.
func DistinctEstimate(t *idtable.IdTable, col int) uint64 {
	rows := t.RowCount()
	if rows == 0 {
		return 0
	}
	sketch := hyperloglog.New14()
	var buf [8]byte
	for r := 0; r < rows; r++ {
		binary.LittleEndian.PutUint64(buf[:], uint64(t.Get(r, col)))
		sketch.Insert(buf[:])
	}
	est := sketch.Estimate()
	if est < 1 {
		est = 1
	}
	if est > uint64(rows) {
		est = uint64(rows)
	}
	return est
}

// Multiplicity is the estimated average number of occurrences of a distinct
// value in the column: rows / distinct. 1.0 for empty tables.
func Multiplicity(t *idtable.IdTable, col int) float64 {
	rows := t.RowCount()
	if rows == 0 {
		return 1.0
	}
	return float64(rows) / float64(DistinctEstimate(t, col))
}
