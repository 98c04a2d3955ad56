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

// tessera-bench runs the join strategies against synthetic data and reports
// row counts and timings. It is the quickest way to sanity-check a config
// file and to compare merge, gallop and hash behavior on a given shape.
//
// Usage:
//
//	tessera-bench [-config engine.toml] [-rows 200000] [-seed 1] [-timeout 30s]
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tesseradb/tessera/pkg/config"
	"github.com/tesseradb/tessera/pkg/container/idtable"
	"github.com/tesseradb/tessera/pkg/engine"
	"github.com/tesseradb/tessera/pkg/engine/index"
	"github.com/tesseradb/tessera/pkg/engine/indexscan"
	"github.com/tesseradb/tessera/pkg/engine/join"
	"github.com/tesseradb/tessera/pkg/engine/process"
	"github.com/tesseradb/tessera/pkg/engine/valuescan"
	"github.com/tesseradb/tessera/pkg/logutil"
)

var (
	configFile = flag.String("config", "", "path to a toml config file")
	rows       = flag.Int("rows", 200000, "rows per synthetic input")
	seed       = flag.Int64("seed", 1, "rng seed")
	timeout    = flag.Duration("timeout", 30*time.Second, "per-case deadline")
)

const (
	predKnows = idtable.Id(1)
	predLikes = idtable.Id(2)
)

func main() {
	flag.Parse()

	ctx := context.Background()
	params, err := config.LoadEngineParameters(ctx, *configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logutil.SetupLogger(&params.Log)

	rng := rand.New(rand.NewSource(*seed))
	logutil.Info("building synthetic inputs",
		zap.Int("rows", *rows), zap.Int64("seed", *seed))

	perm := index.NewPermutation(index.PSO)
	subjects := uint64(*rows) / 4
	if subjects == 0 {
		subjects = 1
	}
	for i := 0; i < *rows; i++ {
		perm.Insert(index.Triple{
			S: idtable.Id(rng.Uint64() % subjects),
			P: predKnows,
			O: idtable.Id(rng.Uint64() % uint64(*rows)),
		})
		perm.Insert(index.Triple{
			S: idtable.Id(rng.Uint64() % subjects),
			P: predLikes,
			O: idtable.Id(rng.Uint64() % uint64(*rows)),
		})
	}

	sorted := randomTable(rng, *rows, subjects)
	sorted.SortByColumn(0)
	unsorted := randomTable(rng, *rows, subjects)
	// a handful of ids covering most of the small side triggers galloping
	skewSmall := idtable.New(2)
	for i := 0; i < 64; i++ {
		skewSmall.AppendRow([]idtable.Id{idtable.Id(rng.Uint64() % subjects), idtable.Id(uint64(i))})
	}
	skewSmall.SortByColumn(0)

	cases := []struct {
		name string
		op   engine.Operator
	}{
		{"two index scans", join.New(
			indexscan.New(perm, predKnows), indexscan.New(perm, predLikes), 0, 0)},
		{"index scan and table", join.New(
			indexscan.New(perm, predKnows), valuescan.New(unsorted, nil, nil), 0, 0)},
		{"merge", join.New(
			valuescan.New(sorted, nil, []int{0}),
			valuescan.New(sorted.Clone(), nil, []int{0}), 0, 0)},
		{"gallop", join.New(
			valuescan.New(skewSmall, nil, []int{0}),
			valuescan.New(sorted.Clone(), nil, []int{0}), 0, 0)},
		{"hash", join.New(
			valuescan.New(unsorted, nil, nil),
			valuescan.New(sorted.Clone(), nil, nil), 0, 0)},
	}

	failed := false
	for _, c := range cases {
		proc := process.New(ctx, params)
		proc.SetDeadline(time.Now().Add(*timeout))

		start := time.Now()
		res, err := c.op.ComputeResult(proc)
		elapsed := time.Since(start)
		if err != nil {
			logutil.Error("case failed",
				zap.String("case", c.name), zap.Error(err))
			failed = true
			continue
		}
		logutil.Info("case done",
			zap.String("case", c.name),
			zap.String("query", proc.Id),
			zap.Int("rows", res.Table.RowCount()),
			zap.Uint64("estimate", c.op.SizeEstimateBeforeLimit()),
			zap.Duration("elapsed", elapsed))
	}
	if failed {
		os.Exit(1)
	}
}

func randomTable(rng *rand.Rand, n int, keyRange uint64) *idtable.IdTable {
	t := idtable.NewWithCapacity(2, n)
	for i := 0; i < n; i++ {
		t.AppendRow([]idtable.Id{
			idtable.Id(rng.Uint64() % keyRange),
			idtable.Id(uint64(i)),
		})
	}
	return t
}
