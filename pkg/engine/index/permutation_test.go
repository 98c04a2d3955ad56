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

package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/pkg/container/idtable"
)

func TestPermutationOrderAndDedup(t *testing.T) {
	p := NewPermutation(PSO)
	p.Insert(Triple{S: 3, P: 1, O: 9})
	p.Insert(Triple{S: 2, P: 1, O: 8})
	p.Insert(Triple{S: 3, P: 1, O: 7})
	p.Insert(Triple{S: 3, P: 1, O: 9}) // duplicate
	p.Insert(Triple{S: 5, P: 2, O: 1})

	require.Equal(t, 4, p.Len())
	require.Equal(t, 3, p.CountForKey(1))
	require.Equal(t, 1, p.CountForKey(2))
	require.Equal(t, 0, p.CountForKey(3))

	var got [][2]idtable.Id
	p.ScanFrom(1, 0, 0, func(c1, c2 idtable.Id) bool {
		got = append(got, [2]idtable.Id{c1, c2})
		return true
	})
	// sorted by (S, O) within predicate 1
	require.Equal(t, [][2]idtable.Id{{2, 8}, {3, 7}, {3, 9}}, got)
}

func TestScanFromSeeks(t *testing.T) {
	p := NewPermutation(POS)
	p.Insert(Triple{S: 11, P: 4, O: 50})
	p.Insert(Triple{S: 12, P: 4, O: 50})
	p.Insert(Triple{S: 13, P: 4, O: 60})

	// POS order: first component P, then O, then S
	var got [][2]idtable.Id
	p.ScanFrom(4, 55, 0, func(c1, c2 idtable.Id) bool {
		got = append(got, [2]idtable.Id{c1, c2})
		return true
	})
	require.Equal(t, [][2]idtable.Id{{60, 13}}, got)

	// early stop
	count := 0
	p.ScanFrom(4, 0, 0, func(c1, c2 idtable.Id) bool {
		count++
		return false
	})
	require.Equal(t, 1, count)
}
