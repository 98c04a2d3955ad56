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

// Package vocab maintains query-local vocabularies: deduplicating,
// memory-bounded registries for literals and IRIs produced during query
// evaluation that are not part of the persistent vocabulary.
package vocab

import (
	"context"

	"github.com/tesseradb/tessera/pkg/common/mlimit"
	"github.com/tesseradb/tessera/pkg/common/moerr"
)

type WordKind uint8

const (
	KindLiteral WordKind = iota
	KindIri
)

// Word is an immutable literal-or-IRI value.
type Word struct {
	Kind     WordKind
	Content  string
	Datatype string
	Language string
}

func NewLiteral(content string) Word {
	return Word{Kind: KindLiteral, Content: content}
}

func NewTypedLiteral(content, datatype string) Word {
	return Word{Kind: KindLiteral, Content: content, Datatype: datatype}
}

func NewLangLiteral(content, language string) Word {
	return Word{Kind: KindLiteral, Content: content, Language: language}
}

func NewIri(iri string) Word {
	return Word{Kind: KindIri, Content: iri}
}

// Accounting overhead per stored word: slice slot plus map entry.
const wordOverhead = 64

// DynamicSize is the number of budget bytes charged when the word is
// inserted into a vocabulary.
func (w Word) DynamicSize() int64 {
	return int64(len(w.Content)+len(w.Datatype)+len(w.Language)) + wordOverhead
}

// wordSet is one storage unit of a vocabulary. While it is the primary set
// of exactly one vocabulary it grows by appends; once sealed it is shared
// read-only between arbitrarily many vocabularies.
type wordSet struct {
	words []Word
	index map[Word]uint32
}

func newWordSet() *wordSet {
	return &wordSet{index: make(map[Word]uint32)}
}

func (s *wordSet) size() int {
	return len(s.words)
}

// Index is a stable handle to a word in some word set. It stays valid for
// the lifetime of the set, across seals, clones and merges.
type Index struct {
	set *wordSet
	off uint32
}

func (idx Index) IsValid() bool {
	return idx.set != nil
}

// LocalVocab owns one mutable primary word set and shares zero or more
// sealed sets inherited from earlier vocabularies. Total size is the sum
// over all sets; an index is unique within its set.
type LocalVocab struct {
	limit     *mlimit.Limiter
	primary   *wordSet
	inherited []*wordSet
	blank     *BlankNodeScope
}

func New(limit *mlimit.Limiter) *LocalVocab {
	if limit == nil {
		limit = mlimit.New(mlimit.NoLimit)
	}
	return &LocalVocab{limit: limit, primary: newWordSet()}
}

// GetIndexAndAddIfNotContained returns the stable index of word, inserting
// it into the primary set if no equal word is already there. The insertion
// charges the word's dynamic size against the shared memory budget and
// fails with ErrOOM when the budget is exhausted.
func (v *LocalVocab) GetIndexAndAddIfNotContained(ctx context.Context, word Word) (Index, error) {
	if off, ok := v.primary.index[word]; ok {
		return Index{set: v.primary, off: off}, nil
	}
	if err := v.limit.Charge(ctx, word.DynamicSize()); err != nil {
		return Index{}, err
	}
	off := uint32(len(v.primary.words))
	v.primary.words = append(v.primary.words, word)
	v.primary.index[word] = off
	return Index{set: v.primary, off: off}, nil
}

// GetIndexOrNil looks the word up in the primary set without mutating
// anything. Inherited sets are not searched; their indices are handed out
// by the vocabularies that own them.
func (v *LocalVocab) GetIndexOrNil(word Word) (Index, bool) {
	if off, ok := v.primary.index[word]; ok {
		return Index{set: v.primary, off: off}, true
	}
	return Index{}, false
}

// GetWord resolves an index against this vocabulary's sets.
func (v *LocalVocab) GetWord(idx Index) (Word, error) {
	if !idx.IsValid() {
		return Word{}, moerr.NewInvalidState(context.Background(), "invalid local vocab index")
	}
	if !v.ownsSet(idx.set) {
		return Word{}, moerr.NewInvalidState(context.Background(),
			"local vocab index does not belong to this vocabulary")
	}
	return idx.set.words[idx.off], nil
}

func (v *LocalVocab) ownsSet(s *wordSet) bool {
	if s == v.primary {
		return true
	}
	for _, o := range v.inherited {
		if o == s {
			return true
		}
	}
	return false
}

// Size is linear in the number of word sets. It is deliberately not cached:
// sets inherited here may still grow as the primary set of another owner.
func (v *LocalVocab) Size() int {
	n := v.primary.size()
	for _, s := range v.inherited {
		n += s.size()
	}
	return n
}

func (v *LocalVocab) Empty() bool {
	return v.Size() == 0
}

// sealPrimary freezes the current primary set by moving it into the
// inherited list, leaving a fresh empty primary behind. All handed-out
// indices stay valid. An empty primary is dropped instead of sealed.
func (v *LocalVocab) sealPrimary() {
	if v.primary.size() > 0 {
		v.inherited = append(v.inherited, v.primary)
	}
	v.primary = newWordSet()
}

// Clone returns a vocabulary that shares all current words read-only and is
// independent of the receiver for future insertions: the primary set is
// sealed, so later inserts into either copy land in disjoint fresh sets.
// Runs in O(number of sets), never copies a word. The blank-node scope is
// shared with the clone.
func (v *LocalVocab) Clone() *LocalVocab {
	v.sealPrimary()
	c := &LocalVocab{
		limit:     v.limit,
		primary:   newWordSet(),
		inherited: make([]*wordSet, len(v.inherited)),
		blank:     v.blank,
	}
	copy(c.inherited, v.inherited)
	return c
}

// MergeWith folds the word sets of the given vocabularies into this one by
// sharing their set references, primary included. The sources are never
// modified: a child's vocabulary may already be published through a cached
// result, so a parent's merge must not touch it. Words a source inserts
// into its primary set later become visible here too, which is one reason
// Size stays linear and uncached. Cost is bounded by the number of sets,
// not words.
func (v *LocalVocab) MergeWith(others ...*LocalVocab) {
	for _, o := range others {
		if o == nil || o == v {
			continue
		}
		v.inherited = append(v.inherited, o.primary)
		v.inherited = append(v.inherited, o.inherited...)
	}
}

// Merge creates a vocabulary with an empty primary set that keeps alive all
// words of the given vocabularies. Used when an operator combines its
// children's vocabularies into its own result vocabulary.
func Merge(limit *mlimit.Limiter, vocabs ...*LocalVocab) *LocalVocab {
	merged := New(limit)
	merged.MergeWith(vocabs...)
	return merged
}

// AllWords returns the words of all sets. For testing.
func (v *LocalVocab) AllWords() []Word {
	var words []Word
	for _, s := range v.inherited {
		words = append(words, s.words...)
	}
	words = append(words, v.primary.words...)
	return words
}
