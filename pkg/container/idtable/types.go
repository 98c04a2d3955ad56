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

// Package idtable provides the compact identifier type used throughout the
// engine and the row table the physical operators exchange.
package idtable

// Datatype is the 4-bit tag stored in the top bits of an Id.
type Datatype uint8

const (
	DtUndefined Datatype = iota
	DtInt
	DtVocab      // index into the persistent vocabulary
	DtLocalVocab // handle into a query-local vocabulary
	DtBlankNode
)

const (
	tagShift  = 60
	valueMask = (uint64(1) << tagShift) - 1
)

// Id is a tagged 64-bit identifier: 4 tag bits, 60 value bits. The ordering
// of the raw bits is the total order used by all join comparisons, so Ids of
// the same datatype compare by value and datatypes are grouped.
type Id uint64

const IdUndefined Id = 0

func MakeId(dt Datatype, value uint64) Id {
	return Id(uint64(dt)<<tagShift | value&valueMask)
}

func (id Id) Datatype() Datatype {
	return Datatype(uint64(id) >> tagShift)
}

func (id Id) Value() uint64 {
	return uint64(id) & valueMask
}
