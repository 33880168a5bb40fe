// Package munkres solves maximum-weight perfect matching on a square
// integer weight matrix with the Kuhn-Munkres (Hungarian) algorithm.
// The segment matcher feeds it similarity scores scaled to integers;
// integer weights guarantee termination of the label adjustments.
package munkres

import "fmt"

// Matcher computes a maximum-weight perfect assignment for an N x N
// weight matrix.
type Matcher struct {
	n       int
	weight  [][]int
	labelL  []int // left vertex potentials
	labelR  []int // right vertex potentials
	matchL  []int // left index -> matched right index
	matchR  []int // right index -> matched left index
	slack   []int
	slackX  []int // left vertex responsible for each slack entry
	visL    []bool
	visR    []bool
	matched bool
}

// New creates a matcher for the given matrix. The matrix must be square
// and non-empty with non-negative weights.
func New(weight [][]int) (*Matcher, error) {
	n := len(weight)
	if n == 0 {
		return nil, fmt.Errorf("munkres: empty weight matrix")
	}
	for i, row := range weight {
		if len(row) != n {
			return nil, fmt.Errorf("munkres: row %d has %d columns, want %d", i, len(row), n)
		}
		for j, w := range row {
			if w < 0 {
				return nil, fmt.Errorf("munkres: negative weight at (%d,%d)", i, j)
			}
		}
	}
	return &Matcher{n: n, weight: weight}, nil
}

// Match runs the algorithm. It is idempotent.
func (m *Matcher) Match() {
	if m.matched {
		return
	}
	n := m.n
	m.labelL = make([]int, n)
	m.labelR = make([]int, n)
	m.matchL = make([]int, n)
	m.matchR = make([]int, n)
	for i := 0; i < n; i++ {
		m.matchL[i] = -1
		m.matchR[i] = -1
		for j := 0; j < n; j++ {
			if m.weight[i][j] > m.labelL[i] {
				m.labelL[i] = m.weight[i][j]
			}
		}
	}

	for i := 0; i < n; i++ {
		m.augmentFrom(i)
	}
	m.matched = true
}

// augmentFrom grows the matching by one edge starting at left vertex x.
func (m *Matcher) augmentFrom(x int) {
	n := m.n
	m.slack = make([]int, n)
	m.slackX = make([]int, n)
	for j := 0; j < n; j++ {
		m.slack[j] = int(^uint(0) >> 1)
		m.slackX[j] = -1
	}

	for {
		m.visL = make([]bool, n)
		m.visR = make([]bool, n)
		if m.tryPath(x) {
			return
		}

		// No augmenting path over tight edges: lower potentials by the
		// minimum slack over unvisited right vertices and retry.
		delta := int(^uint(0) >> 1)
		for j := 0; j < n; j++ {
			if !m.visR[j] && m.slack[j] < delta {
				delta = m.slack[j]
			}
		}
		for i := 0; i < n; i++ {
			if m.visL[i] {
				m.labelL[i] -= delta
			}
		}
		for j := 0; j < n; j++ {
			if m.visR[j] {
				m.labelR[j] += delta
			} else {
				m.slack[j] -= delta
			}
		}
	}
}

// tryPath searches for an augmenting path from left vertex i over tight
// edges (labelL + labelR == weight), updating slack along the way.
func (m *Matcher) tryPath(i int) bool {
	m.visL[i] = true
	for j := 0; j < m.n; j++ {
		if m.visR[j] {
			continue
		}
		gap := m.labelL[i] + m.labelR[j] - m.weight[i][j]
		if gap == 0 {
			m.visR[j] = true
			if m.matchR[j] == -1 || m.tryPath(m.matchR[j]) {
				m.matchL[i] = j
				m.matchR[j] = i
				return true
			}
		} else if gap < m.slack[j] {
			m.slack[j] = gap
			m.slackX[j] = i
		}
	}
	return false
}

// MatchOf returns the partner of the vertex at index. When left is true,
// index names a left (row) vertex, otherwise a right (column) vertex.
// Match must have been called.
func (m *Matcher) MatchOf(index int, left bool) int {
	if !m.matched {
		m.Match()
	}
	if left {
		return m.matchL[index]
	}
	return m.matchR[index]
}

// Total returns the weight of the computed assignment.
func (m *Matcher) Total() int {
	if !m.matched {
		m.Match()
	}
	sum := 0
	for i, j := range m.matchL {
		sum += m.weight[i][j]
	}
	return sum
}
