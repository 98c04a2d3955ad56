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

package indexscan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/pkg/container/idtable"
	"github.com/tesseradb/tessera/pkg/engine/index"
	"github.com/tesseradb/tessera/pkg/engine/process"
)

func testPermutation() *index.Permutation {
	p := index.NewPermutation(index.PSO)
	p.Insert(index.Triple{S: 10, P: 1, O: 100})
	p.Insert(index.Triple{S: 10, P: 1, O: 101})
	p.Insert(index.Triple{S: 12, P: 1, O: 100})
	p.Insert(index.Triple{S: 15, P: 1, O: 105})
	p.Insert(index.Triple{S: 99, P: 2, O: 1})
	return p
}

func TestComputeResultMaterializes(t *testing.T) {
	proc := process.New(context.Background(), nil)
	s := New(testPermutation(), 1)

	require.Equal(t, 2, s.ResultWidth())
	require.Equal(t, []int{0, 1}, s.ResultSortedOn())
	require.False(t, s.KnownEmptyResult())
	require.Equal(t, uint64(4), s.SizeEstimateBeforeLimit())

	res, err := s.ComputeResult(proc)
	require.NoError(t, err)
	require.Equal(t, 4, res.Table.RowCount())
	require.True(t, res.Table.IsSortedOn(0))
	require.Equal(t, []idtable.Id{10, 100}, res.Table.Row(0))
	require.Equal(t, []idtable.Id{15, 105}, res.Table.Row(3))
}

func TestLazyAccess(t *testing.T) {
	s := New(testPermutation(), 1)

	key, values, ok := s.NextBlockGE(0)
	require.True(t, ok)
	require.Equal(t, idtable.Id(10), key)
	require.Equal(t, []idtable.Id{100, 101}, values)

	key, values, ok = s.NextBlockGE(11)
	require.True(t, ok)
	require.Equal(t, idtable.Id(12), key)
	require.Equal(t, []idtable.Id{100}, values)

	_, _, ok = s.NextBlockGE(16)
	require.False(t, ok)

	require.Equal(t, []idtable.Id{105}, s.MatchingValues(15))
	require.Nil(t, s.MatchingValues(11))
}

func TestScanEstimates(t *testing.T) {
	s := New(testPermutation(), 1)
	// 4 rows over 3 distinct subjects and 3 distinct objects
	require.InDelta(t, 4.0/3.0, s.Multiplicity(0), 0.01)
	require.InDelta(t, 4.0/3.0, s.Multiplicity(1), 0.01)

	empty := New(testPermutation(), 7)
	require.True(t, empty.KnownEmptyResult())
	require.Equal(t, uint64(0), empty.SizeEstimateBeforeLimit())
	require.Equal(t, 1.0, empty.Multiplicity(0))
}

func TestCacheKeyStable(t *testing.T) {
	p := testPermutation()
	require.Equal(t, New(p, 1).CacheKey(), New(p, 1).CacheKey())
	require.NotEqual(t, New(p, 1).CacheKey(), New(p, 2).CacheKey())
}
