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

// Package valuescan is the leaf operator over an already-materialized row
// table, optionally carrying the local vocabulary its rows reference.
package valuescan

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/tesseradb/tessera/pkg/container/idtable"
	"github.com/tesseradb/tessera/pkg/container/vocab"
	"github.com/tesseradb/tessera/pkg/engine"
	"github.com/tesseradb/tessera/pkg/engine/process"
	"github.com/tesseradb/tessera/pkg/engine/stats"
)

type ValuesScan struct {
	table    *idtable.IdTable
	vocab    *vocab.LocalVocab
	sortedOn []int

	multsComputed bool
	mults         []float64
}

var _ engine.Operator = (*ValuesScan)(nil)

// New wraps a materialized table. sortedOn states which columns the caller
// guarantees the table to be sorted on; it is trusted, not verified.
func New(table *idtable.IdTable, vc *vocab.LocalVocab, sortedOn []int) *ValuesScan {
	return &ValuesScan{table: table, vocab: vc, sortedOn: sortedOn}
}

func (s *ValuesScan) ResultWidth() int {
	return s.table.Width()
}

func (s *ValuesScan) ResultSortedOn() []int {
	return s.sortedOn
}

func (s *ValuesScan) SizeEstimateBeforeLimit() uint64 {
	return uint64(s.table.RowCount())
}

func (s *ValuesScan) CostEstimate() uint64 {
	return uint64(s.table.RowCount())
}

func (s *ValuesScan) Multiplicity(col int) float64 {
	if !s.multsComputed {
		s.mults = make([]float64, s.table.Width())
		for c := range s.mults {
			s.mults[c] = stats.Multiplicity(s.table, c)
		}
		s.multsComputed = true
	}
	if col < 0 || col >= len(s.mults) {
		return 1.0
	}
	return s.mults[col]
}

func (s *ValuesScan) KnownEmptyResult() bool {
	return s.table.RowCount() == 0
}

func (s *ValuesScan) CacheKey() string {
	h := fnv.New64a()
	var buf [8]byte
	for r := 0; r < s.table.RowCount(); r++ {
		for c := 0; c < s.table.Width(); c++ {
			binary.LittleEndian.PutUint64(buf[:], uint64(s.table.Get(r, c)))
			h.Write(buf[:])
		}
	}
	return fmt.Sprintf("VALUES %dx%d #%x", s.table.RowCount(), s.table.Width(), h.Sum64())
}

func (s *ValuesScan) Descriptor() string {
	return fmt.Sprintf("values scan of %d rows", s.table.RowCount())
}

func (s *ValuesScan) Children() []engine.Operator {
	return nil
}

func (s *ValuesScan) ComputeResult(proc *process.Process) (*engine.Result, error) {
	vc := s.vocab
	if vc == nil {
		vc = vocab.New(proc.Lim)
	}
	return &engine.Result{Table: s.table, Vocab: vc, SortedOn: s.sortedOn}, nil
}
