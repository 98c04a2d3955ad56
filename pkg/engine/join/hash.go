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
	"github.com/tesseradb/tessera/pkg/engine/process"
)

// hashJoin builds a multi-map over the smaller input's join column and
// probes it with the other input, emitting all matches for a probe row
// contiguously in probe order. Returns which side was probed; only a sorted
// probe side makes the output sorted.
func (j *Join) hashJoin(proc *process.Process, l, r *idtable.IdTable, out *idtable.IdTable) (probeIsLeft bool, err error) {
	buildIsLeft := l.RowCount() <= r.RowCount()
	build, jcBuild := l, j.leftCol
	probe, jcProbe := r, j.rightCol
	if !buildIsLeft {
		build, jcBuild = r, j.rightCol
		probe, jcProbe = l, j.leftCol
	}

	check := newInterruptChecker(proc, j.Descriptor())

	// multi-map from join key to all build-side row indices with that key
	sels := make(map[idtable.Id][]int32, build.RowCount())
	for i := 0; i < build.RowCount(); i++ {
		key := build.Get(i, jcBuild)
		sels[key] = append(sels[key], int32(i))
		if err := check.tick(out); err != nil {
			return !buildIsLeft, err
		}
	}

	buf := make([]idtable.Id, 0, out.Width())
	for p := 0; p < probe.RowCount(); p++ {
		// Probe misses emit nothing, so the poll has to happen per probe row.
		if err := check.tick(out); err != nil {
			return !buildIsLeft, err
		}
		matches, ok := sels[probe.Get(p, jcProbe)]
		if !ok {
			continue
		}
		pr := probe.Row(p)
		for _, b := range matches {
			if buildIsLeft {
				buf = appendCombinedRow(out, buf, build.Row(int(b)), pr, jcProbe)
			} else {
				buf = appendCombinedRow(out, buf, pr, build.Row(int(b)), jcBuild)
			}
			if err := check.tick(out); err != nil {
				return !buildIsLeft, err
			}
		}
	}
	return !buildIsLeft, nil
}
