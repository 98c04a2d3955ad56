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

package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/pkg/container/idtable"
)

func TestDistinctEstimateSmall(t *testing.T) {
	tbl := idtable.New(2)
	for _, r := range [][]idtable.Id{{1, 10}, {1, 20}, {2, 30}, {2, 40}, {3, 50}} {
		tbl.AppendRow(r)
	}
	// exact on tiny inputs
	require.Equal(t, uint64(3), DistinctEstimate(tbl, 0))
	require.Equal(t, uint64(5), DistinctEstimate(tbl, 1))
	require.InDelta(t, 5.0/3.0, Multiplicity(tbl, 0), 0.01)
}

func TestDistinctEstimateLarge(t *testing.T) {
	tbl := idtable.New(1)
	const distinct = 10000
	for i := 0; i < distinct; i++ {
		tbl.AppendRow([]idtable.Id{idtable.Id(i)})
		tbl.AppendRow([]idtable.Id{idtable.Id(i)})
	}
	est := DistinctEstimate(tbl, 0)
	// hyperloglog-14 is well within 3% at this cardinality
	require.InEpsilon(t, float64(distinct), float64(est), 0.03)
}

func TestEmptyTable(t *testing.T) {
	tbl := idtable.New(1)
	require.Equal(t, uint64(0), DistinctEstimate(tbl, 0))
	require.Equal(t, 1.0, Multiplicity(tbl, 0))
}
