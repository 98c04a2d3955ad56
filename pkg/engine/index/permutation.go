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

// Package index holds in-memory triple permutations. They stand in for the
// on-disk permutation structures of a full index and give index scans
// natively sorted, seekable access paths.
package index

import (
	"github.com/google/btree"

	"github.com/tesseradb/tessera/pkg/container/idtable"
)

// Order is the column order of a permutation. The first component is the
// one a scan fixes (the predicate for PSO and POS).
type Order uint8

const (
	PSO Order = iota
	POS
)

func (o Order) String() string {
	switch o {
	case PSO:
		return "PSO"
	case POS:
		return "POS"
	default:
		return "unknown"
	}
}

type Triple struct {
	S, P, O idtable.Id
}

// key is a triple permuted into this permutation's column order.
type key [3]idtable.Id

func (k key) Less(than btree.Item) bool {
	o := than.(key)
	for i := 0; i < 3; i++ {
		if k[i] != o[i] {
			return k[i] < o[i]
		}
	}
	return false
}

const btreeDegree = 32

// Permutation stores triples ordered by a fixed column permutation.
type Permutation struct {
	order     Order
	tree      *btree.BTree
	keyCounts map[idtable.Id]int // triples per first component
}

func NewPermutation(order Order) *Permutation {
	return &Permutation{
		order:     order,
		tree:      btree.New(btreeDegree),
		keyCounts: make(map[idtable.Id]int),
	}
}

func (p *Permutation) Order() Order {
	return p.order
}

func (p *Permutation) permute(t Triple) key {
	switch p.order {
	case PSO:
		return key{t.P, t.S, t.O}
	default: // POS
		return key{t.P, t.O, t.S}
	}
}

func (p *Permutation) Insert(t Triple) {
	k := p.permute(t)
	if p.tree.ReplaceOrInsert(k) == nil {
		p.keyCounts[k[0]]++
	}
}

func (p *Permutation) Len() int {
	return p.tree.Len()
}

// CountForKey returns the number of triples whose first permuted component
// equals k0. Constant time; used for scan size estimates.
func (p *Permutation) CountForKey(k0 idtable.Id) int {
	return p.keyCounts[k0]
}

// ScanFrom visits all entries with first component k0 and (c1, c2) lexically
// at or after (fromC1, fromC2), in sorted order, until fn returns false.
func (p *Permutation) ScanFrom(k0, fromC1, fromC2 idtable.Id, fn func(c1, c2 idtable.Id) bool) {
	p.tree.AscendGreaterOrEqual(key{k0, fromC1, fromC2}, func(item btree.Item) bool {
		k := item.(key)
		if k[0] != k0 {
			return false
		}
		return fn(k[1], k[2])
	})
}
