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

package vocab

import (
	"sync"

	"github.com/RoaringBitmap/roaring/roaring64"
)

const DefaultBlankNodeBlockSize = 1024

// BlankNodeManager hands out disjoint blocks of blank-node indices. One
// manager exists per query evaluation; scopes carved from it never overlap.
type BlankNodeManager struct {
	mu        sync.Mutex
	next      uint64
	blockSize uint64
}

func NewBlankNodeManager(blockSize uint64) *BlankNodeManager {
	if blockSize == 0 {
		blockSize = DefaultBlankNodeBlockSize
	}
	return &BlankNodeManager{blockSize: blockSize}
}

func (m *BlankNodeManager) allocateBlock() (lo, hi uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lo = m.next
	m.next += m.blockSize
	return lo, m.next
}

// BlankNodeScope is the per-vocabulary allocator. It remembers every index
// it handed out, so membership means "allocated by this scope", not merely
// "numerically inside an allocated block".
type BlankNodeScope struct {
	mgr       *BlankNodeManager
	cur, end  uint64
	allocated *roaring64.Bitmap
}

func newBlankNodeScope(mgr *BlankNodeManager) *BlankNodeScope {
	return &BlankNodeScope{mgr: mgr, allocated: roaring64.New()}
}

func (s *BlankNodeScope) allocate() uint64 {
	if s.cur == s.end {
		s.cur, s.end = s.mgr.allocateBlock()
	}
	idx := s.cur
	s.cur++
	s.allocated.Add(idx)
	return idx
}

// GetBlankNodeIndex returns a fresh blank-node index tagged as belonging to
// this vocabulary's scope. The scope is created lazily on first use.
func (v *LocalVocab) GetBlankNodeIndex(mgr *BlankNodeManager) uint64 {
	if v.blank == nil {
		v.blank = newBlankNodeScope(mgr)
	}
	return v.blank.allocate()
}

// IsBlankNodeIndexContained reports whether idx was allocated by this
// vocabulary's own scope.
func (v *LocalVocab) IsBlankNodeIndexContained(idx uint64) bool {
	return v.blank != nil && v.blank.allocated.Contains(idx)
}
