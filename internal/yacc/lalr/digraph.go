// digraph.go implements DeRemer & Pennello's relational fixed-point
// technique: given a base value F(x) for each node x and a "depends on"
// relation expressed as a successor function, compute, for every node,
// F(x) unioned with the computed value of every node it (transitively)
// depends on. Nodes in the same strongly connected component necessarily
// share one final value, so they are resolved together via Tarjan's SCC
// algorithm and then aliased onto one shared bitset.Set, exactly the
// scenario bitset.Buffer.Alias exists for.
package lalr

import "github.com/jlama/yacc/internal/yacc/bitset"

type sccSolver struct {
	succ    func(int) []int
	base    []bitset.Set
	buf     *bitset.Buffer
	index   []int
	low     []int
	onstack []bool
	stack   []int
	counter int
}

// digraph computes, for each of len(base) nodes, its fixed-point value
// under the relation succ (node -> the nodes it includes/reads) and base
// values base. bits is the bit width every base Set and the result share.
func digraph(bits int, base []bitset.Set, succ func(int) []int) *bitset.Buffer {
	n := len(base)
	s := &sccSolver{
		succ:    succ,
		base:    base,
		buf:     bitset.NewBuffer(n, bits),
		index:   make([]int, n),
		low:     make([]int, n),
		onstack: make([]bool, n),
	}
	for i := range s.index {
		s.index[i] = -1
	}
	for v := 0; v < n; v++ {
		if s.index[v] == -1 {
			s.strongconnect(v)
		}
	}
	return s.buf
}

func (s *sccSolver) strongconnect(v int) {
	s.index[v] = s.counter
	s.low[v] = s.counter
	s.counter++
	s.stack = append(s.stack, v)
	s.onstack[v] = true

	for _, w := range s.succ(v) {
		switch {
		case s.index[w] == -1:
			s.strongconnect(w)
			if s.low[w] < s.low[v] {
				s.low[v] = s.low[w]
			}
		case s.onstack[w]:
			if s.index[w] < s.low[v] {
				s.low[v] = s.index[w]
			}
		}
	}

	if s.low[v] != s.index[v] {
		return
	}

	var members []int
	for {
		w := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		s.onstack[w] = false
		members = append(members, w)
		if w == v {
			break
		}
	}

	canon := members[0]
	value := s.buf.At(canon)
	inSCC := make(map[int]bool, len(members))
	for _, m := range members {
		inSCC[m] = true
	}
	for _, m := range members {
		value.Union(s.base[m])
	}
	for _, m := range members {
		for _, w := range s.succ(m) {
			if !inSCC[w] {
				value.Union(s.buf.At(w))
			}
		}
	}
	for _, m := range members[1:] {
		s.buf.Alias(m, canon)
	}
}
