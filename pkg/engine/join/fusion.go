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
	"github.com/tesseradb/tessera/pkg/container/idtable"
	"github.com/tesseradb/tessera/pkg/container/vocab"
	"github.com/tesseradb/tessera/pkg/engine"
	"github.com/tesseradb/tessera/pkg/engine/indexscan"
	"github.com/tesseradb/tessera/pkg/engine/process"
)

// computeResultForTwoIndexScans streams both scans in sorted join-key order
// without materializing either. The two-pointer logic advances by key
// blocks; skipping uses the scans' seekable access, so neither relation is
// enumerated past what the other side needs.
func (j *Join) computeResultForTwoIndexScans(proc *process.Process, ls, rs *indexscan.IndexScan) (*engine.Result, error) {
	out := idtable.New(3)
	buf := make([]idtable.Id, 0, 3)
	check := newInterruptChecker(proc, j.Descriptor())

	kl, vl, okl := ls.NextBlockGE(0)
	kr, vr, okr := rs.NextBlockGE(0)
	for okl && okr {
		// Polled per block advance; disjoint key ranges emit nothing.
		if err := check.tick(out); err != nil {
			return nil, err
		}
		if kl < kr {
			kl, vl, okl = ls.NextBlockGE(kr)
			continue
		}
		if kr < kl {
			kr, vr, okr = rs.NextBlockGE(kl)
			continue
		}
		for _, a := range vl {
			for _, b := range vr {
				buf = append(buf[:0], kl, a, b)
				out.AppendRow(buf)
				if err := check.tick(out); err != nil {
					return nil, err
				}
			}
		}
		kl, vl, okl = ls.NextBlockGE(kl + 1)
		kr, vr, okr = rs.NextBlockGE(kr + 1)
	}

	return &engine.Result{
		Table:    out,
		Vocab:    vocab.New(proc.Lim),
		SortedOn: []int{0},
	}, nil
}

// computeResultForIndexScanAndIdTable holds the materialized side fixed and
// requests only the matching ranges from the scan, one distinct join key at
// a time. scanIsLeft records which logical child the scan is; the output
// keeps the left-then-right column order either way.
func (j *Join) computeResultForIndexScanAndIdTable(proc *process.Process, scan *indexscan.IndexScan,
	tableRes *engine.Result, jcTable int, scanIsLeft bool) (*engine.Result, error) {

	tbl := tableRes.Table
	if !sortedOnContains(tableRes.SortedOn, jcTable) {
		tbl = tbl.Clone()
		tbl.SortByColumn(jcTable)
	}

	out := idtable.New(j.ResultWidth())
	buf := make([]idtable.Id, 0, out.Width())
	check := newInterruptChecker(proc, j.Descriptor())
	scanRow := make([]idtable.Id, 2)

	n := tbl.RowCount()
	for i := 0; i < n; {
		if err := check.tick(out); err != nil {
			return nil, err
		}
		key := tbl.Get(i, jcTable)
		e := i + 1
		for e < n && tbl.Get(e, jcTable) == key {
			e++
			// Long duplicate runs with no scan match must still poll.
			if err := check.tick(out); err != nil {
				return nil, err
			}
		}
		values := scan.MatchingValues(key)
		if len(values) == 0 {
			i = e
			continue
		}
		scanRow[0] = key
		if scanIsLeft {
			for _, v := range values {
				scanRow[1] = v
				for b := i; b < e; b++ {
					buf = appendCombinedRow(out, buf, scanRow, tbl.Row(b), jcTable)
					if err := check.tick(out); err != nil {
						return nil, err
					}
				}
			}
		} else {
			for b := i; b < e; b++ {
				tr := tbl.Row(b)
				for _, v := range values {
					scanRow[1] = v
					buf = appendCombinedRow(out, buf, tr, scanRow, 0)
					if err := check.tick(out); err != nil {
						return nil, err
					}
				}
			}
		}
		i = e
	}

	outJoinCol := 0
	if !scanIsLeft {
		outJoinCol = j.leftCol
	}
	return &engine.Result{
		Table:    out,
		Vocab:    vocab.Merge(proc.Lim, tableRes.Vocab),
		SortedOn: []int{outJoinCol},
	}, nil
}
