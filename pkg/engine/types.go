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

// Package engine defines the physical operator contract shared by the join
// execution core and its leaf operators.
package engine

import (
	"github.com/tesseradb/tessera/pkg/container/idtable"
	"github.com/tesseradb/tessera/pkg/container/vocab"
	"github.com/tesseradb/tessera/pkg/engine/process"
)

// Result bundles an operator's output table with the local vocabulary its
// rows may reference. Once returned, both are logically shared read-only.
type Result struct {
	Table *idtable.IdTable
	Vocab *vocab.LocalVocab
	// Columns the table is actually sorted on, leftmost first. May be more
	// precise than the operator's static ResultSortedOn claim.
	SortedOn []int
}

// Operator is the capability interface of every physical operator variant.
// Estimates are consumed by the external plan optimizer; CacheKey by the
// external result cache.
type Operator interface {
	ResultWidth() int
	// ResultSortedOn reports the columns the output is statically known to
	// be sorted on, or nil.
	ResultSortedOn() []int

	SizeEstimateBeforeLimit() uint64
	CostEstimate() uint64
	Multiplicity(col int) float64
	KnownEmptyResult() bool

	// CacheKey is identical for semantically identical operators regardless
	// of object identity.
	CacheKey() string
	// Descriptor is a short human-readable label for logs and errors.
	Descriptor() string

	Children() []Operator
	ComputeResult(proc *process.Process) (*Result, error)
}
