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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/pkg/common/mlimit"
	"github.com/tesseradb/tessera/pkg/common/moerr"
)

func TestInsertDeduplicates(t *testing.T) {
	ctx := context.Background()
	v := New(nil)

	idx1, err := v.GetIndexAndAddIfNotContained(ctx, NewLiteral("hello"))
	require.NoError(t, err)
	require.Equal(t, 1, v.Size())

	idx2, err := v.GetIndexAndAddIfNotContained(ctx, NewLiteral("hello"))
	require.NoError(t, err)
	require.Equal(t, idx1, idx2)
	require.Equal(t, 1, v.Size())

	idx3, err := v.GetIndexAndAddIfNotContained(ctx, NewIri("http://example.org/hello"))
	require.NoError(t, err)
	require.NotEqual(t, idx1, idx3)
	require.Equal(t, 2, v.Size())

	// a literal and an IRI with equal content are different words
	idx4, err := v.GetIndexAndAddIfNotContained(ctx, NewIri("hello"))
	require.NoError(t, err)
	require.NotEqual(t, idx1, idx4)
	require.Equal(t, 3, v.Size())
}

func TestLookupOnly(t *testing.T) {
	ctx := context.Background()
	v := New(nil)

	_, ok := v.GetIndexOrNil(NewLiteral("absent"))
	require.False(t, ok)
	require.True(t, v.Empty())

	want, err := v.GetIndexAndAddIfNotContained(ctx, NewLiteral("present"))
	require.NoError(t, err)
	got, ok := v.GetIndexOrNil(NewLiteral("present"))
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestGetWord(t *testing.T) {
	ctx := context.Background()
	v := New(nil)
	idx, err := v.GetIndexAndAddIfNotContained(ctx, NewLangLiteral("chat", "fr"))
	require.NoError(t, err)

	w, err := v.GetWord(idx)
	require.NoError(t, err)
	require.Equal(t, "chat", w.Content)
	require.Equal(t, "fr", w.Language)

	other := New(nil)
	_, err = other.GetWord(idx)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))

	_, err = v.GetWord(Index{})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
}

func TestCloneIsolation(t *testing.T) {
	ctx := context.Background()
	v := New(nil)
	idxShared, err := v.GetIndexAndAddIfNotContained(ctx, NewLiteral("shared"))
	require.NoError(t, err)

	c := v.Clone()
	require.Equal(t, 1, c.Size())

	// the pre-clone index resolves through both vocabularies
	for _, vv := range []*LocalVocab{v, c} {
		w, err := vv.GetWord(idxShared)
		require.NoError(t, err)
		require.Equal(t, "shared", w.Content)
	}

	// inserts after the clone are invisible to the other copy
	_, err = v.GetIndexAndAddIfNotContained(ctx, NewLiteral("only-original"))
	require.NoError(t, err)
	require.Equal(t, 2, v.Size())
	require.Equal(t, 1, c.Size())
	_, ok := c.GetIndexOrNil(NewLiteral("only-original"))
	require.False(t, ok)

	_, err = c.GetIndexAndAddIfNotContained(ctx, NewLiteral("only-clone"))
	require.NoError(t, err)
	require.Equal(t, 2, v.Size())
	require.Equal(t, 2, c.Size())
	_, ok = v.GetIndexOrNil(NewLiteral("only-clone"))
	require.False(t, ok)
}

func TestMergeComposition(t *testing.T) {
	ctx := context.Background()
	a := New(nil)
	b := New(nil)

	idxA, err := a.GetIndexAndAddIfNotContained(ctx, NewLiteral("from-a"))
	require.NoError(t, err)
	idxB1, err := b.GetIndexAndAddIfNotContained(ctx, NewLiteral("from-b1"))
	require.NoError(t, err)
	idxB2, err := b.GetIndexAndAddIfNotContained(ctx, NewIri("http://example.org/b2"))
	require.NoError(t, err)

	m := Merge(nil, a, b)
	require.Equal(t, a.Size()+b.Size(), m.Size())

	// every pre-merge index stays resolvable through the merged vocabulary
	for idx, content := range map[Index]string{
		idxA:  "from-a",
		idxB1: "from-b1",
		idxB2: "http://example.org/b2",
	} {
		w, err := m.GetWord(idx)
		require.NoError(t, err)
		require.Equal(t, content, w.Content)
	}

	// the merged vocabulary accepts new words of its own
	_, err = m.GetIndexAndAddIfNotContained(ctx, NewLiteral("fresh"))
	require.NoError(t, err)
	require.Equal(t, 4, m.Size())
	require.Equal(t, 1, a.Size())
	require.Equal(t, 2, b.Size())
}

func TestMergeLeavesSourcesUntouched(t *testing.T) {
	ctx := context.Background()
	a := New(nil)
	idx, err := a.GetIndexAndAddIfNotContained(ctx, NewLiteral("pre-merge"))
	require.NoError(t, err)

	m := Merge(nil, a)
	require.Equal(t, 1, m.Size())

	// the source's primary set is shared, not sealed away: its own
	// lookup-only path still resolves words inserted before the merge
	got, ok := a.GetIndexOrNil(NewLiteral("pre-merge"))
	require.True(t, ok)
	require.Equal(t, idx, got)

	// later growth of the shared primary set is visible through the merge
	idx2, err := a.GetIndexAndAddIfNotContained(ctx, NewLiteral("post-merge"))
	require.NoError(t, err)
	require.Equal(t, 2, m.Size())
	w, err := m.GetWord(idx2)
	require.NoError(t, err)
	require.Equal(t, "post-merge", w.Content)
}

func TestMemoryBudget(t *testing.T) {
	ctx := context.Background()
	limit := mlimit.New(2 * NewLiteral("0123456789").DynamicSize())
	v := New(limit)

	_, err := v.GetIndexAndAddIfNotContained(ctx, NewLiteral("0123456789"))
	require.NoError(t, err)
	_, err = v.GetIndexAndAddIfNotContained(ctx, NewLiteral("9876543210"))
	require.NoError(t, err)

	_, err = v.GetIndexAndAddIfNotContained(ctx, NewLiteral("overflowing"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrOOM))
	require.Equal(t, 2, v.Size())

	// duplicates of contained words never charge the budget
	_, err = v.GetIndexAndAddIfNotContained(ctx, NewLiteral("0123456789"))
	require.NoError(t, err)
}

func TestBudgetSharedAcrossVocabs(t *testing.T) {
	ctx := context.Background()
	word := NewLiteral("x")
	limit := mlimit.New(word.DynamicSize())

	a := New(limit)
	b := New(limit)
	_, err := a.GetIndexAndAddIfNotContained(ctx, word)
	require.NoError(t, err)
	_, err = b.GetIndexAndAddIfNotContained(ctx, NewLiteral("y"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrOOM))
}

func TestBlankNodeScoping(t *testing.T) {
	mgr := NewBlankNodeManager(4)
	v := New(nil)
	w := New(nil)

	idx := v.GetBlankNodeIndex(mgr)
	require.True(t, v.IsBlankNodeIndexContained(idx))
	require.False(t, w.IsBlankNodeIndexContained(idx))

	// crossing a block boundary keeps indices unique and scoped
	seen := map[uint64]bool{idx: true}
	for i := 0; i < 10; i++ {
		next := v.GetBlankNodeIndex(mgr)
		require.False(t, seen[next])
		seen[next] = true
		require.True(t, v.IsBlankNodeIndexContained(next))
	}

	other := w.GetBlankNodeIndex(mgr)
	require.False(t, v.IsBlankNodeIndexContained(other))
	require.True(t, w.IsBlankNodeIndexContained(other))
}
