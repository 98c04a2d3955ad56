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
	"sort"

	"github.com/tesseradb/tessera/pkg/container/idtable"
	"github.com/tesseradb/tessera/pkg/engine/process"
)

// mergeOrGallopJoin joins two tables sorted on their join columns. When one
// side is smaller than the other by more than proc.GallopThreshold it drives
// the join from the small side and locates matching runs in the large side
// by galloping search; otherwise it runs the plain two-pointer merge.
func (j *Join) mergeOrGallopJoin(proc *process.Process, l, r *idtable.IdTable, out *idtable.IdTable) error {
	nl, nr := int64(l.RowCount()), int64(r.RowCount())
	switch {
	case nl*proc.GallopThreshold <= nr:
		return j.gallopJoin(proc, l, j.leftCol, r, j.rightCol, true, out)
	case nr*proc.GallopThreshold <= nl:
		return j.gallopJoin(proc, r, j.rightCol, l, j.leftCol, false, out)
	default:
		return j.mergeJoin(proc, l, r, out)
	}
}

// mergeJoin is the standard two-pointer intersection. On equal keys it finds
// the full duplicate block on each side and emits the cross product.
func (j *Join) mergeJoin(proc *process.Process, l, r *idtable.IdTable, out *idtable.IdTable) error {
	nl, nr := l.RowCount(), r.RowCount()
	buf := make([]idtable.Id, 0, out.Width())
	check := newInterruptChecker(proc, j.Descriptor())

	il, ir := 0, 0
	for il < nl && ir < nr {
		kl, kr := l.Get(il, j.leftCol), r.Get(ir, j.rightCol)
		if kl < kr {
			il++
			// Skipped rows count against the poll interval too; otherwise a
			// low-selectivity join could scan both inputs to the end without
			// ever noticing an expired deadline.
			if err := check.tick(out); err != nil {
				return err
			}
			continue
		}
		if kr < kl {
			ir++
			if err := check.tick(out); err != nil {
				return err
			}
			continue
		}
		el := il + 1
		for el < nl && l.Get(el, j.leftCol) == kl {
			el++
		}
		er := ir + 1
		for er < nr && r.Get(er, j.rightCol) == kr {
			er++
		}
		for a := il; a < el; a++ {
			la := l.Row(a)
			for b := ir; b < er; b++ {
				buf = appendCombinedRow(out, buf, la, r.Row(b), j.rightCol)
				if err := check.tick(out); err != nil {
					return err
				}
			}
		}
		il, ir = el, er
	}
	return nil
}

// gallopJoin iterates the duplicate blocks of the small side and uses
// exponential-then-binary search to find the matching run in the large
// side. smallIsLeft records which logical child the small table is, so the
// output columns keep the left-then-right order.
func (j *Join) gallopJoin(proc *process.Process, small *idtable.IdTable, jcSmall int,
	large *idtable.IdTable, jcLarge int, smallIsLeft bool, out *idtable.IdTable) error {
	ns, nlg := small.RowCount(), large.RowCount()
	buf := make([]idtable.Id, 0, out.Width())
	check := newInterruptChecker(proc, j.Descriptor())

	pos := 0
	for is := 0; is < ns && pos < nlg; {
		key := small.Get(is, jcSmall)
		es := is + 1
		for es < ns && small.Get(es, jcSmall) == key {
			es++
		}

		lo := gallopLowerBound(large, jcLarge, pos, key)
		if lo < nlg && large.Get(lo, jcLarge) == key {
			hi := gallopUpperBound(large, jcLarge, lo, key)
			if smallIsLeft {
				for a := is; a < es; a++ {
					la := small.Row(a)
					for b := lo; b < hi; b++ {
						buf = appendCombinedRow(out, buf, la, large.Row(b), jcLarge)
						if err := check.tick(out); err != nil {
							return err
						}
					}
				}
			} else {
				for b := lo; b < hi; b++ {
					lb := large.Row(b)
					for a := is; a < es; a++ {
						buf = appendCombinedRow(out, buf, lb, small.Row(a), jcSmall)
						if err := check.tick(out); err != nil {
							return err
						}
					}
				}
			}
			pos = hi
		} else {
			pos = lo
		}
		is = es
		// One poll per driven block keeps match-free runs interruptible.
		if err := check.tick(out); err != nil {
			return err
		}
	}
	return nil
}

// gallopLowerBound returns the first row index >= from whose key is >= key,
// by doubling steps followed by binary search within the last window.
func gallopLowerBound(t *idtable.IdTable, jc, from int, key idtable.Id) int {
	n := t.RowCount()
	lo, step := from, 1
	for lo+step < n && t.Get(lo+step, jc) < key {
		lo += step
		step <<= 1
	}
	hi := lo + step
	if hi > n {
		hi = n
	}
	return lo + sort.Search(hi-lo, func(i int) bool { return t.Get(lo+i, jc) >= key })
}

// gallopUpperBound returns the first row index >= from whose key is > key.
func gallopUpperBound(t *idtable.IdTable, jc, from int, key idtable.Id) int {
	n := t.RowCount()
	lo, step := from, 1
	for lo+step < n && t.Get(lo+step, jc) <= key {
		lo += step
		step <<= 1
	}
	hi := lo + step
	if hi > n {
		hi = n
	}
	return lo + sort.Search(hi-lo, func(i int) bool { return t.Get(lo+i, jc) > key })
}

// interruptChecker polls the process deadline at a bounded interval of rows
// processed. Both consumed and emitted rows count, so scan phases that
// produce no output still poll.
type interruptChecker struct {
	proc       *process.Process
	descriptor string
	sinceCheck int64
}

func newInterruptChecker(proc *process.Process, descriptor string) *interruptChecker {
	return &interruptChecker{proc: proc, descriptor: descriptor}
}

func (c *interruptChecker) tick(out *idtable.IdTable) error {
	c.sinceCheck++
	if c.sinceCheck < c.proc.CheckInterval {
		return nil
	}
	c.sinceCheck = 0
	return c.proc.CheckInterrupt(c.descriptor, out.RowCount())
}
