// Package dedupe detects exact duplicate records through canonical signatures.
//
// A record's signature is built from its (key, value) pairs sorted by key, so
// two records that differ only in key order are the same record. Signatures
// are bucketed by an xxhash digest and compared on their full canonical
// encoding, so hash collisions never merge distinct records.
package dedupe

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/dataq/internal/domain/model"
)

// Signature is the canonical encoding of a record.
type Signature struct {
	Hash uint64
	Key  string
}

// Canonical computes the signature of r.
func Canonical(r model.Record) Signature {
	keys := make([]string, len(r.Keys()))
	copy(keys, r.Keys())
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		writeToken(&b, k)
		v := r.Value(k).Key()
		b.WriteByte(byte('0' + v.Kind()))
		writeToken(&b, v.String())
	}
	key := b.String()
	return Signature{Hash: xxhash.Sum64String(key), Key: key}
}

// writeToken length-prefixes s so that no concatenation of tokens is ambiguous.
func writeToken(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}

// Group is a set of identical records.
type Group struct {
	Signature Signature
	// First is the index of the first record with this signature.
	First int
	// Indexes lists record indexes with this signature, in order, up to the
	// index's retention cap.
	Indexes []int

	count int
}

// Count returns the number of occurrences.
func (g *Group) Count() int { return g.count }

// Index counts record signatures.
type Index struct {
	buckets map[uint64][]*Group
	groups  []*Group
	records int
	maxKeep int
}

// NewIndex creates an empty index.
func NewIndex(opts ...Option) *Index {
	idx := &Index{
		buckets: make(map[uint64][]*Group),
		maxKeep: -1,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Build indexes every record of data.
func Build(data model.Dataset, opts ...Option) *Index {
	idx := NewIndex(opts...)
	for i, r := range data {
		idx.SeenAndRecord(i, r)
	}
	return idx
}

// SeenAndRecord records r under position i and reports whether an identical
// record was recorded before.
func (x *Index) SeenAndRecord(i int, r model.Record) bool {
	sig := Canonical(r)
	x.records++
	for _, g := range x.buckets[sig.Hash] {
		if g.Signature.Key == sig.Key {
			g.count++
			if x.maxKeep < 0 || len(g.Indexes) < x.maxKeep {
				g.Indexes = append(g.Indexes, i)
			}
			return true
		}
	}
	g := &Group{Signature: sig, First: i, Indexes: []int{i}, count: 1}
	x.buckets[sig.Hash] = append(x.buckets[sig.Hash], g)
	x.groups = append(x.groups, g)
	return false
}

// Records returns the number of records indexed.
func (x *Index) Records() int { return x.records }

// Distinct returns the number of distinct signatures.
func (x *Index) Distinct() int { return len(x.groups) }

// DuplicateCount returns Σ(count-1) over all signatures.
func (x *Index) DuplicateCount() int { return x.records - len(x.groups) }

// Duplicates returns groups occurring more than once, in first-seen order.
func (x *Index) Duplicates() []*Group {
	var out []*Group
	for _, g := range x.groups {
		if g.Count() > 1 {
			out = append(out, g)
		}
	}
	return out
}
