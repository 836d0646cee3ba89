// Package intern implements the ordered, unique string/key table the codec
// splits off into its own stream: first-insertion order is preserved, and
// lookups work both by index and by value.
//
// The dedupe engine is hash-bucketed (xxHash64 of the string) with an
// exact-match fallback per bucket for byte-exact string interning.
package intern

import "github.com/jpakfmt/jpak/internal/hash"

// Table is an ordered, unique sequence of strings with O(1) amortized
// lookup in both directions. The zero value is ready to use.
type Table struct {
	values  []string         // insertion-order sequence; also the string-stream payload
	buckets map[uint64][]int // hash(value) -> indices of values sharing that hash
}

// New creates an empty Table.
func New() *Table {
	return &Table{buckets: make(map[uint64][]int)}
}

// Add interns s, returning its index. If s was already interned, the
// existing index is returned and no new entry is created.
func (t *Table) Add(s string) int {
	if t.buckets == nil {
		t.buckets = make(map[uint64][]int)
	}

	h := hash.ID(s)
	for _, idx := range t.buckets[h] {
		if t.values[idx] == s {
			return idx
		}
	}

	idx := len(t.values)
	t.values = append(t.values, s)
	t.buckets[h] = append(t.buckets[h], idx)

	return idx
}

// Lookup returns the index of s and whether it is present, without
// inserting it.
func (t *Table) Lookup(s string) (int, bool) {
	h := hash.ID(s)
	for _, idx := range t.buckets[h] {
		if t.values[idx] == s {
			return idx, true
		}
	}

	return 0, false
}

// At returns the string at index idx and whether idx is in range.
func (t *Table) At(idx int) (string, bool) {
	if idx < 0 || idx >= len(t.values) {
		return "", false
	}

	return t.values[idx], true
}

// Len returns the number of interned strings.
func (t *Table) Len() int { return len(t.values) }

// Values returns the interned strings in insertion order. The returned
// slice must not be mutated by the caller.
func (t *Table) Values() []string { return t.values }

// FromSlice builds a read-only lookup Table from a pre-existing ordered
// slice, used to load a decoder's string section (or a caller-supplied
// out-of-band key array) without re-deduplicating: duplicates, if any, are
// preserved positionally since indices into the slice must be stable.
func FromSlice(values []string) *Table {
	t := &Table{
		values:  values,
		buckets: make(map[uint64][]int, len(values)),
	}
	for i, s := range values {
		h := hash.ID(s)
		t.buckets[h] = append(t.buckets[h], i)
	}

	return t
}
