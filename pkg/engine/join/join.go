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

package join

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tesseradb/tessera/pkg/common/moerr"
	"github.com/tesseradb/tessera/pkg/container/idtable"
	"github.com/tesseradb/tessera/pkg/container/vocab"
	"github.com/tesseradb/tessera/pkg/engine"
	"github.com/tesseradb/tessera/pkg/engine/indexscan"
	"github.com/tesseradb/tessera/pkg/engine/process"
	"github.com/tesseradb/tessera/pkg/logutil"
)

// ResultWidth is left width + right width - 1; the join column appears once,
// at its position in the left child.
func (j *Join) ResultWidth() int {
	return j.left.ResultWidth() + j.right.ResultWidth() - 1
}

func (j *Join) ResultSortedOn() []int {
	switch j.pickStrategy() {
	case strategyTwoScans, strategyScanLeft:
		return []int{0}
	case strategyScanRight, strategyMerge:
		return []int{j.leftCol}
	default:
		// The hash path is sorted only if the probe side happens to be;
		// that is known at run time, not statically.
		return nil
	}
}

func (j *Join) KnownEmptyResult() bool {
	return j.left.KnownEmptyResult() || j.right.KnownEmptyResult()
}

// computeSizeEstimateAndMultiplicities fills the cached estimate fields
// under a uniform-key-distribution assumption for the join column.
func (j *Join) computeSizeEstimateAndMultiplicities() {
	sizeL := j.left.SizeEstimateBeforeLimit()
	sizeR := j.right.SizeEstimateBeforeLimit()
	multL := j.left.Multiplicity(j.leftCol)
	multR := j.right.Multiplicity(j.rightCol)

	distinctL := distinctOf(sizeL, multL)
	distinctR := distinctOf(sizeR, multR)
	distinctJoined := distinctL
	if distinctR < distinctJoined {
		distinctJoined = distinctR
	}

	if sizeL == 0 || sizeR == 0 {
		j.sizeEstimate = 0
	} else {
		j.sizeEstimate = uint64(distinctJoined * multL * multR)
		if j.sizeEstimate < 1 {
			j.sizeEstimate = 1
		}
	}

	widthL := j.left.ResultWidth()
	widthR := j.right.ResultWidth()
	j.multiplicities = make([]float64, 0, widthL+widthR-1)
	for c := 0; c < widthL; c++ {
		if c == j.leftCol {
			j.multiplicities = append(j.multiplicities, multL*multR)
		} else {
			j.multiplicities = append(j.multiplicities, j.left.Multiplicity(c)*multR)
		}
	}
	for c := 0; c < widthR; c++ {
		if c == j.rightCol {
			continue
		}
		j.multiplicities = append(j.multiplicities, j.right.Multiplicity(c)*multL)
	}
}

func distinctOf(size uint64, mult float64) float64 {
	if size == 0 {
		return 1
	}
	d := float64(size) / mult
	if d < 1 {
		d = 1
	}
	return d
}

func (j *Join) SizeEstimateBeforeLimit() uint64 {
	if !j.estimatesComputed {
		j.computeSizeEstimateAndMultiplicities()
		j.estimatesComputed = true
	}
	return j.sizeEstimate
}

// CostEstimate is additive in the children's costs: both children must be at
// least partially evaluated before this join can produce anything.
func (j *Join) CostEstimate() uint64 {
	return j.SizeEstimateBeforeLimit() +
		j.left.SizeEstimateBeforeLimit() + j.right.SizeEstimateBeforeLimit() +
		j.left.CostEstimate() + j.right.CostEstimate()
}

func (j *Join) Multiplicity(col int) float64 {
	if !j.estimatesComputed {
		j.computeSizeEstimateAndMultiplicities()
		j.estimatesComputed = true
	}
	if col < 0 || col >= len(j.multiplicities) {
		return 1.0
	}
	return j.multiplicities[col]
}

func (j *Join) CacheKey() string {
	return fmt.Sprintf("JOIN\n%s join-column: [%d]\n|X|\n%s join-column: [%d]\n",
		j.left.CacheKey(), j.leftCol, j.right.CacheKey(), j.rightCol)
}

func (j *Join) Descriptor() string {
	return fmt.Sprintf("join on columns %d = %d", j.leftCol, j.rightCol)
}

func (j *Join) Children() []engine.Operator {
	return []engine.Operator{j.left, j.right}
}

func (j *Join) ComputeResult(proc *process.Process) (*engine.Result, error) {
	if j.left == nil || j.right == nil {
		return nil, moerr.NewInvalidState(proc.Ctx,
			"join without subtrees is only valid in unit tests of pure helpers")
	}

	if j.KnownEmptyResult() {
		return &engine.Result{
			Table:    idtable.New(j.ResultWidth()),
			Vocab:    vocab.New(proc.Lim),
			SortedOn: []int{j.leftCol},
		}, nil
	}

	start := time.Now()
	st := j.pickStrategy()
	res, err := j.computeWithStrategy(proc, st)
	if err != nil {
		return nil, err
	}
	logutil.Debug("join computed",
		zap.String("query", proc.Id),
		zap.String("strategy", st.String()),
		zap.Int("rows", res.Table.RowCount()),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (j *Join) computeWithStrategy(proc *process.Process, st strategy) (*engine.Result, error) {
	switch st {
	case strategyTwoScans:
		return j.computeResultForTwoIndexScans(proc,
			j.left.(*indexscan.IndexScan), j.right.(*indexscan.IndexScan))
	case strategyScanLeft:
		tableRes, err := j.right.ComputeResult(proc)
		if err != nil {
			return nil, err
		}
		return j.computeResultForIndexScanAndIdTable(proc,
			j.left.(*indexscan.IndexScan), tableRes, j.rightCol, true)
	case strategyScanRight:
		tableRes, err := j.left.ComputeResult(proc)
		if err != nil {
			return nil, err
		}
		return j.computeResultForIndexScanAndIdTable(proc,
			j.right.(*indexscan.IndexScan), tableRes, j.leftCol, false)
	}

	leftRes, err := j.left.ComputeResult(proc)
	if err != nil {
		return nil, err
	}
	rightRes, err := j.right.ComputeResult(proc)
	if err != nil {
		return nil, err
	}

	out := idtable.New(j.ResultWidth())
	mergedVocab := vocab.Merge(proc.Lim, leftRes.Vocab, rightRes.Vocab)

	leftSorted := sortedOnContains(leftRes.SortedOn, j.leftCol)
	rightSorted := sortedOnContains(rightRes.SortedOn, j.rightCol)
	if leftSorted && rightSorted {
		if err := j.mergeOrGallopJoin(proc, leftRes.Table, rightRes.Table, out); err != nil {
			return nil, err
		}
		return &engine.Result{Table: out, Vocab: mergedVocab, SortedOn: []int{j.leftCol}}, nil
	}

	probeIsLeft, err := j.hashJoin(proc, leftRes.Table, rightRes.Table, out)
	if err != nil {
		return nil, err
	}
	// The hash result is sorted on the join column only when the probe side
	// was. Callers must not assume more.
	var sortedOn []int
	if (probeIsLeft && leftSorted) || (!probeIsLeft && rightSorted) {
		sortedOn = []int{j.leftCol}
	}
	return &engine.Result{Table: out, Vocab: mergedVocab, SortedOn: sortedOn}, nil
}
