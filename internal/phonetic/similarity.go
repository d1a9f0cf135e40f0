package phonetic

import (
	"sort"
)

// Block is a run of Size equal elements starting at a[A] and b[B].
type Block struct {
	A, B, Size int
}

// autojunkMin is the length of b from which popular elements are ignored
// when seeding matches.
const autojunkMin = 200

// SequenceMatcher finds matching blocks between two rune sequences using
// the Ratcliff/Obershelp "gestalt" approach: take the longest common
// contiguous run, then recurse on the pieces to its left and right.
//
// Ties between equally long runs go to the one starting earliest in a,
// and for that start, earliest in b. Results are identical to Python's
// difflib.SequenceMatcher without a junk function.
type SequenceMatcher struct {
	a, b    []rune
	b2j     map[rune][]int
	popular map[rune]struct{}
	blocks  []Block
}

// NewSequenceMatcher prepares a matcher for a and b.
func NewSequenceMatcher(a, b string) *SequenceMatcher {
	m := &SequenceMatcher{a: []rune(a), b: []rune(b)}
	m.chainB()
	return m
}

func (m *SequenceMatcher) chainB() {
	m.b2j = make(map[rune][]int)
	for i, r := range m.b {
		m.b2j[r] = append(m.b2j[r], i)
	}

	m.popular = make(map[rune]struct{})
	n := len(m.b)
	if n >= autojunkMin {
		ntest := n/100 + 1
		for r, idxs := range m.b2j {
			if len(idxs) > ntest {
				m.popular[r] = struct{}{}
			}
		}
		for r := range m.popular {
			delete(m.b2j, r)
		}
	}
}

// longestMatch returns the longest block within a[alo:ahi] and b[blo:bhi].
func (m *SequenceMatcher) longestMatch(alo, ahi, blo, bhi int) Block {
	besti, bestj, bestSize := alo, blo, 0

	// j2len[j] is the length of the match ending at a[i-1], b[j].
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestSize {
				besti, bestj, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	// Popular elements never seed a match but may extend one.
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestSize = besti-1, bestj-1, bestSize+1
	}
	for besti+bestSize < ahi && bestj+bestSize < bhi && m.a[besti+bestSize] == m.b[bestj+bestSize] {
		bestSize++
	}

	return Block{A: besti, B: bestj, Size: bestSize}
}

// MatchingBlocks returns the non-adjacent matching blocks ordered by
// position, followed by a zero-size sentinel block at (len(a), len(b)).
func (m *SequenceMatcher) MatchingBlocks() []Block {
	if m.blocks != nil {
		return m.blocks
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	var found []Block
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		blk := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if blk.Size == 0 {
			continue
		}
		found = append(found, blk)
		if s.alo < blk.A && s.blo < blk.B {
			queue = append(queue, span{s.alo, blk.A, s.blo, blk.B})
		}
		if blk.A+blk.Size < s.ahi && blk.B+blk.Size < s.bhi {
			queue = append(queue, span{blk.A + blk.Size, s.ahi, blk.B + blk.Size, s.bhi})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].A != found[j].A {
			return found[i].A < found[j].A
		}
		if found[i].B != found[j].B {
			return found[i].B < found[j].B
		}
		return found[i].Size < found[j].Size
	})

	// Collapse adjacent blocks.
	var blocks []Block
	var cur Block
	for _, blk := range found {
		if cur.A+cur.Size == blk.A && cur.B+cur.Size == blk.B {
			cur.Size += blk.Size
			continue
		}
		if cur.Size > 0 {
			blocks = append(blocks, cur)
		}
		cur = blk
	}
	if cur.Size > 0 {
		blocks = append(blocks, cur)
	}
	blocks = append(blocks, Block{A: len(m.a), B: len(m.b)})

	m.blocks = blocks
	return blocks
}

// Ratio returns 2*M/T where M is the number of matched runes and T the
// combined length of both sequences. Two empty sequences have ratio 1.
func (m *SequenceMatcher) Ratio() float64 {
	matches := 0
	for _, blk := range m.MatchingBlocks() {
		matches += blk.Size
	}
	length := len(m.a) + len(m.b)
	if length == 0 {
		return 1.0
	}
	return 2.0 * float64(matches) / float64(length)
}
