// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graphdb

import (
	"slices"

	"github.com/sigil-dev/graphdl/internal/thing"
)

// Filter selects triples. Empty fields match anything.
type Filter struct {
	Subject   string `json:"subject,omitempty" query:"subject"`
	Predicate string `json:"predicate,omitempty" query:"predicate"`
	Object    string `json:"object,omitempty" query:"object"`
}

// IsEmpty reports whether the filter matches every triple.
func (f Filter) IsEmpty() bool {
	return f.Subject == "" && f.Predicate == "" && f.Object == ""
}

func (f Filter) matches(t thing.Triple) bool {
	return (f.Subject == "" || f.Subject == t.Subject) &&
		(f.Predicate == "" || f.Predicate == t.Predicate) &&
		(f.Object == "" || f.Object == t.Object)
}

// edgeIndex holds the edge set and its three lookup structures. All
// mutations go through insert and remove, which keep every structure in
// step. Sequence lists are kept in ascending order, which is insertion order.
type edgeIndex struct {
	nextSeq     uint64
	edges       map[uint64]thing.Triple
	spo         map[thing.Key]uint64
	bySubject   map[string]map[string][]uint64
	byObject    map[string]map[string][]uint64
	byPredicate map[string][]uint64
}

func newEdgeIndex() *edgeIndex {
	return &edgeIndex{
		nextSeq:     1,
		edges:       make(map[uint64]thing.Triple),
		spo:         make(map[thing.Key]uint64),
		bySubject:   make(map[string]map[string][]uint64),
		byObject:    make(map[string]map[string][]uint64),
		byPredicate: make(map[string][]uint64),
	}
}

func (ix *edgeIndex) len() int { return len(ix.edges) }

// lookup returns the sequence of an existing (subject, predicate, object).
func (ix *edgeIndex) lookup(k thing.Key) (uint64, bool) {
	seq, ok := ix.spo[k]
	return seq, ok
}

func (ix *edgeIndex) get(seq uint64) thing.Triple {
	return ix.edges[seq]
}

// insert adds t under seq. Sequences must be inserted in ascending order
// except during load, where insertSorted keeps the lists ordered.
func (ix *edgeIndex) insert(seq uint64, t thing.Triple) {
	ix.edges[seq] = t
	ix.spo[t.Key()] = seq
	addTo(ix.bySubject, t.Subject, t.Predicate, seq)
	addTo(ix.byObject, t.Object, t.Predicate, seq)
	ix.byPredicate[t.Predicate] = insertSorted(ix.byPredicate[t.Predicate], seq)
	if seq >= ix.nextSeq {
		ix.nextSeq = seq + 1
	}
}

func (ix *edgeIndex) remove(seq uint64) {
	t, ok := ix.edges[seq]
	if !ok {
		return
	}
	delete(ix.edges, seq)
	delete(ix.spo, t.Key())
	removeFrom(ix.bySubject, t.Subject, t.Predicate, seq)
	removeFrom(ix.byObject, t.Object, t.Predicate, seq)
	if rest := deleteSeq(ix.byPredicate[t.Predicate], seq); len(rest) > 0 {
		ix.byPredicate[t.Predicate] = rest
	} else {
		delete(ix.byPredicate, t.Predicate)
	}
}

// match returns the sequences of triples matching f in insertion order,
// reading from the most selective index the filter allows.
func (ix *edgeIndex) match(f Filter) []uint64 {
	var (
		best  []uint64
		found bool
	)
	consider := func(c []uint64) {
		if !found || len(c) < len(best) {
			best, found = c, true
		}
	}
	if f.Subject != "" {
		consider(bucket(ix.bySubject, f.Subject, f.Predicate))
	}
	if f.Object != "" {
		consider(bucket(ix.byObject, f.Object, f.Predicate))
	}
	if f.Predicate != "" && !found {
		consider(ix.byPredicate[f.Predicate])
	}
	if !found {
		best = ix.allSeqs()
	}

	out := make([]uint64, 0, len(best))
	for _, seq := range best {
		if f.matches(ix.edges[seq]) {
			out = append(out, seq)
		}
	}
	return out
}

func (ix *edgeIndex) allSeqs() []uint64 {
	out := make([]uint64, 0, len(ix.edges))
	for seq := range ix.edges {
		out = append(out, seq)
	}
	slices.Sort(out)
	return out
}

// bucket returns the sequences under key, narrowed to predicate when set.
func bucket(ix map[string]map[string][]uint64, key, predicate string) []uint64 {
	byPred := ix[key]
	if predicate != "" {
		return byPred[predicate]
	}
	var out []uint64
	for _, seqs := range byPred {
		out = append(out, seqs...)
	}
	slices.Sort(out)
	return out
}

func addTo(ix map[string]map[string][]uint64, key, predicate string, seq uint64) {
	byPred, ok := ix[key]
	if !ok {
		byPred = make(map[string][]uint64)
		ix[key] = byPred
	}
	byPred[predicate] = insertSorted(byPred[predicate], seq)
}

func removeFrom(ix map[string]map[string][]uint64, key, predicate string, seq uint64) {
	byPred := ix[key]
	if byPred == nil {
		return
	}
	if rest := deleteSeq(byPred[predicate], seq); len(rest) > 0 {
		byPred[predicate] = rest
	} else {
		delete(byPred, predicate)
	}
	if len(byPred) == 0 {
		delete(ix, key)
	}
}

func insertSorted(seqs []uint64, seq uint64) []uint64 {
	if n := len(seqs); n == 0 || seqs[n-1] < seq {
		return append(seqs, seq)
	}
	i, found := slices.BinarySearch(seqs, seq)
	if found {
		return seqs
	}
	return slices.Insert(seqs, i, seq)
}

func deleteSeq(seqs []uint64, seq uint64) []uint64 {
	i, found := slices.BinarySearch(seqs, seq)
	if !found {
		return seqs
	}
	return slices.Delete(seqs, i, i+1)
}
