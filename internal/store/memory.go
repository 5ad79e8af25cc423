package store

import (
	"fmt"
	"sort"

	"github.com/jward/schematic/internal/adjacency"
	"github.com/jward/schematic/internal/token"
)

// MemoryIndex buckets tokens by line, each bucket sorted by start column.
// A window lookup touches at most three buckets.
type MemoryIndex struct {
	lines    map[int][]token.Token
	spans    map[token.Span]bool
	metadata map[string]string
	count    int
}

// NewMemoryIndex returns an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	m := &MemoryIndex{}
	m.Reset()
	return m
}

func (m *MemoryIndex) Reset() error {
	m.lines = make(map[int][]token.Token)
	m.spans = make(map[token.Span]bool)
	m.metadata = make(map[string]string)
	m.count = 0
	return nil
}

func (m *MemoryIndex) InsertTokens(tokens []token.Token) error {
	touched := make(map[int]bool)
	for _, t := range tokens {
		if m.spans[t.Span] {
			return fmt.Errorf("insert tokens: duplicate span %s", t)
		}
		m.spans[t.Span] = true
		m.lines[t.Line] = append(m.lines[t.Line], t)
		touched[t.Line] = true
		m.count++
	}
	for line := range touched {
		bucket := m.lines[line]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Start < bucket[j].Start })
	}
	return nil
}

func (m *MemoryIndex) TokensInWindow(w adjacency.Window) ([]token.Token, error) {
	var out []token.Token
	for line := w.FirstLine; line <= w.LastLine; line++ {
		bucket := m.lines[line]
		// First token that ends at or after the window's left edge.
		i := sort.Search(len(bucket), func(i int) bool { return bucket[i].End >= w.FirstCol })
		for ; i < len(bucket) && bucket[i].Start <= w.LastCol; i++ {
			out = append(out, bucket[i])
		}
	}
	return out, nil
}

func (m *MemoryIndex) TokenAt(line, col int) (*token.Token, error) {
	bucket := m.lines[line]
	i := sort.Search(len(bucket), func(i int) bool { return bucket[i].End >= col })
	if i < len(bucket) && bucket[i].Covers(line, col) {
		t := bucket[i]
		return &t, nil
	}
	return nil, nil
}

func (m *MemoryIndex) TokensByKind(kinds ...token.Kind) ([]token.Token, error) {
	want := make(map[token.Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	lines := make([]int, 0, len(m.lines))
	for line := range m.lines {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	var out []token.Token
	for _, line := range lines {
		for _, t := range m.lines[line] {
			if len(want) == 0 || want[t.Kind] {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (m *MemoryIndex) Count() (int, error) { return m.count, nil }

func (m *MemoryIndex) SetMetadata(key, value string) error {
	m.metadata[key] = value
	return nil
}

func (m *MemoryIndex) GetMetadata(key string) (string, error) {
	return m.metadata[key], nil
}

func (m *MemoryIndex) Close() error { return nil }
