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

// Package indexscan implements the raw index-scan operator over an
// in-memory triple permutation. The scan fixes the predicate and produces a
// two-column table sorted on both output columns. It additionally exposes a
// lazy, seekable access path so a parent join can pull only the ranges it
// needs instead of materializing the whole relation.
package indexscan

import (
	"encoding/binary"
	"fmt"

	"github.com/axiomhq/hyperloglog"

	"github.com/tesseradb/tessera/pkg/container/idtable"
	"github.com/tesseradb/tessera/pkg/container/vocab"
	"github.com/tesseradb/tessera/pkg/engine"
	"github.com/tesseradb/tessera/pkg/engine/index"
	"github.com/tesseradb/tessera/pkg/engine/process"
)

type IndexScan struct {
	perm *index.Permutation
	pred idtable.Id

	statsComputed  bool
	numRows        uint64
	distinctFirst  uint64
	distinctSecond uint64
}

var _ engine.Operator = (*IndexScan)(nil)

func New(perm *index.Permutation, pred idtable.Id) *IndexScan {
	return &IndexScan{perm: perm, pred: pred}
}

func (s *IndexScan) ResultWidth() int {
	return 2
}

func (s *IndexScan) ResultSortedOn() []int {
	return []int{0, 1}
}

func (s *IndexScan) ensureStats() {
	if s.statsComputed {
		return
	}
	sketch := hyperloglog.New14()
	var buf [8]byte
	var prev idtable.Id
	first := true
	s.perm.ScanFrom(s.pred, 0, 0, func(c1, c2 idtable.Id) bool {
		s.numRows++
		if first || c1 != prev {
			s.distinctFirst++
			prev, first = c1, false
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(c2))
		sketch.Insert(buf[:])
		return true
	})
	s.distinctSecond = sketch.Estimate()
	if s.numRows > 0 && s.distinctSecond < 1 {
		s.distinctSecond = 1
	}
	s.statsComputed = true
}

func (s *IndexScan) SizeEstimateBeforeLimit() uint64 {
	return uint64(s.perm.CountForKey(s.pred))
}

func (s *IndexScan) CostEstimate() uint64 {
	return s.SizeEstimateBeforeLimit()
}

func (s *IndexScan) Multiplicity(col int) float64 {
	s.ensureStats()
	if s.numRows == 0 {
		return 1.0
	}
	switch col {
	case 0:
		return float64(s.numRows) / float64(s.distinctFirst)
	case 1:
		return float64(s.numRows) / float64(s.distinctSecond)
	default:
		return 1.0
	}
}

func (s *IndexScan) KnownEmptyResult() bool {
	return s.perm.CountForKey(s.pred) == 0
}

func (s *IndexScan) CacheKey() string {
	return fmt.Sprintf("INDEX SCAN %s with P = #%d", s.perm.Order(), uint64(s.pred))
}

func (s *IndexScan) Descriptor() string {
	return fmt.Sprintf("index scan %s", s.perm.Order())
}

func (s *IndexScan) Children() []engine.Operator {
	return nil
}

// ComputeResult fully materializes the scan. Fusion paths in the join avoid
// this and use NextBlockGE / MatchingValues instead.
func (s *IndexScan) ComputeResult(proc *process.Process) (*engine.Result, error) {
	tbl := idtable.New(2)
	tbl.Reserve(s.perm.CountForKey(s.pred))
	row := make([]idtable.Id, 2)
	s.perm.ScanFrom(s.pred, 0, 0, func(c1, c2 idtable.Id) bool {
		row[0], row[1] = c1, c2
		tbl.AppendRow(row)
		return true
	})
	return &engine.Result{
		Table:    tbl,
		Vocab:    vocab.New(proc.Lim),
		SortedOn: []int{0, 1},
	}, nil
}

// NextBlockGE seeks to the smallest first-column key >= from and returns
// that key together with all its second-column values. ok is false when the
// scan is exhausted. Logarithmic in the relation size plus the block length.
func (s *IndexScan) NextBlockGE(from idtable.Id) (blockKey idtable.Id, values []idtable.Id, ok bool) {
	s.perm.ScanFrom(s.pred, from, 0, func(c1, c2 idtable.Id) bool {
		if !ok {
			blockKey, ok = c1, true
		} else if c1 != blockKey {
			return false
		}
		values = append(values, c2)
		return true
	})
	return blockKey, values, ok
}

// MatchingValues returns the second-column values of exactly the rows whose
// first column equals key, without touching the rest of the relation.
func (s *IndexScan) MatchingValues(key idtable.Id) []idtable.Id {
	blockKey, values, ok := s.NextBlockGE(key)
	if !ok || blockKey != key {
		// NextBlockGE may land on a later key; only an exact hit matches.
		return nil
	}
	return values
}
