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

// Package join implements the binary inner equi-join operator. It selects
// among index-scan fusion, merge join (with a galloping fast path) and hash
// join based on the static kind and sortedness of its children.
package join

import (
	"github.com/tesseradb/tessera/pkg/common/moerr"
	"github.com/tesseradb/tessera/pkg/container/idtable"
	"github.com/tesseradb/tessera/pkg/engine"
	"github.com/tesseradb/tessera/pkg/engine/indexscan"
)

// Join holds shared references to its two child subtrees; children may be
// reused across cached plans and are never mutated here.
type Join struct {
	left  engine.Operator
	right engine.Operator

	leftCol  int
	rightCol int

	// Estimates are computed at most once.
	estimatesComputed bool
	sizeEstimate      uint64
	multiplicities    []float64
}

var _ engine.Operator = (*Join)(nil)

// New builds a join of two subtrees on one column per side. Join columns
// outside the children's widths are a programming error and fail fast.
func New(left, right engine.Operator, leftCol, rightCol int) *Join {
	if left == nil || right == nil {
		panic(moerr.NewInternalErrorNoCtx("join requires two child subtrees"))
	}
	if leftCol < 0 || leftCol >= left.ResultWidth() {
		panic(moerr.NewInternalErrorNoCtx(
			"left join column %d out of range for width %d", leftCol, left.ResultWidth()))
	}
	if rightCol < 0 || rightCol >= right.ResultWidth() {
		panic(moerr.NewInternalErrorNoCtx(
			"right join column %d out of range for width %d", rightCol, right.ResultWidth()))
	}
	return &Join{left: left, right: right, leftCol: leftCol, rightCol: rightCol}
}

// strategy is decided purely from the static kind and sortedness of the
// children; fusion is always at least as good as materializing, so no cost
// comparison is involved.
type strategy int

const (
	strategyTwoScans strategy = iota
	strategyScanLeft
	strategyScanRight
	strategyMerge
	strategyHash
)

func (s strategy) String() string {
	switch s {
	case strategyTwoScans:
		return "two index scans"
	case strategyScanLeft:
		return "index scan left"
	case strategyScanRight:
		return "index scan right"
	case strategyMerge:
		return "merge"
	default:
		return "hash"
	}
}

func (j *Join) pickStrategy() strategy {
	// A scan can only be fused on its first output column, the one it is
	// natively sorted on.
	ls, lok := j.left.(*indexscan.IndexScan)
	rs, rok := j.right.(*indexscan.IndexScan)
	scanLeft := lok && ls != nil && j.leftCol == 0
	scanRight := rok && rs != nil && j.rightCol == 0
	switch {
	case scanLeft && scanRight:
		return strategyTwoScans
	case scanLeft:
		return strategyScanLeft
	case scanRight:
		return strategyScanRight
	}
	if sortedOnContains(j.left.ResultSortedOn(), j.leftCol) &&
		sortedOnContains(j.right.ResultSortedOn(), j.rightCol) {
		return strategyMerge
	}
	return strategyHash
}

func sortedOnContains(sorted []int, col int) bool {
	return len(sorted) > 0 && sorted[0] == col
}

// appendCombinedRow emits l followed by r without r's join column, reusing
// buf across calls.
func appendCombinedRow(out *idtable.IdTable, buf []idtable.Id, l, r []idtable.Id, jcR int) []idtable.Id {
	buf = buf[:0]
	buf = append(buf, l...)
	buf = append(buf, r[:jcR]...)
	buf = append(buf, r[jcR+1:]...)
	out.AppendRow(buf)
	return buf
}
