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

// Package mlimit tracks a shared byte budget for dynamic allocations made
// during query evaluation. A Limiter is safe for concurrent use; local
// vocabularies built on different goroutines may charge against the same
// Limiter.
package mlimit

import (
	"context"
	"sync/atomic"

	"github.com/tesseradb/tessera/pkg/common/moerr"
)

// NoLimit disables budget enforcement. Charges are still counted so that
// InUse stays meaningful.
const NoLimit int64 = 0

type Limiter struct {
	cap  int64
	used atomic.Int64
}

func New(capacity int64) *Limiter {
	if capacity < 0 {
		capacity = NoLimit
	}
	return &Limiter{cap: capacity}
}

// Charge reserves n bytes of the budget. It fails with ErrOOM when the
// reservation would exceed the capacity, leaving the budget unchanged.
func (l *Limiter) Charge(ctx context.Context, n int64) error {
	if n < 0 {
		return moerr.NewInvalidInput(ctx, "negative charge of %d bytes", n)
	}
	for {
		cur := l.used.Load()
		next := cur + n
		if l.cap != NoLimit && next > l.cap {
			return moerr.NewOOM(ctx)
		}
		if l.used.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

// Release returns n bytes to the budget. Releasing more than was charged is
// a programming error and fails fast.
func (l *Limiter) Release(n int64) {
	if v := l.used.Add(-n); v < 0 {
		panic(moerr.NewInternalErrorNoCtx("memory budget released below zero: %d", v))
	}
}

func (l *Limiter) InUse() int64 {
	return l.used.Load()
}

func (l *Limiter) Cap() int64 {
	return l.cap
}
