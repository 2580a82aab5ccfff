package diff

import (
	"strconv"
	"strings"

	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// directLimit bounds the number of tokens handed to myers.ComputeEdits in one
// go. It keeps a full trace per edit step, so larger inputs are split first.
const directLimit = 512

const tokenURI = span.URI("tokens")

// script collects the aligned runs. Deletions and insertions between two
// equal runs are buffered so that the deletion is always emitted first.
type script struct {
	runs     []run
	del, ins []string
}

func (s *script) equal(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	s.flush()
	s.runs = append(s.runs, run{tagEqual, join(tokens)})
}

func (s *script) delete(tokens []string) { s.del = append(s.del, tokens...) }

func (s *script) insert(tokens []string) { s.ins = append(s.ins, tokens...) }

func (s *script) flush() {
	if len(s.del) > 0 {
		s.runs = append(s.runs, run{tagDelete, join(s.del)})
	}
	if len(s.ins) > 0 {
		s.runs = append(s.runs, run{tagInsert, join(s.ins)})
	}
	s.del, s.ins = nil, nil
}

// aligner computes a shortest edit script between two token streams.
// Tokens are compared by ID.
type aligner struct {
	before, after []string
	a, b          []int
	out           script
}

func newAligner(before, after []string) *aligner {
	ids := make(map[string]int)
	number := func(tokens []string) []int {
		numbered := make([]int, len(tokens))
		for i, token := range tokens {
			id, ok := ids[token]
			if !ok {
				id = len(ids)
				ids[token] = id
			}
			numbered[i] = id
		}
		return numbered
	}
	return &aligner{
		before: before,
		after:  after,
		a:      number(before),
		b:      number(after),
	}
}

// runs aligns the token streams and returns the tagged runs, in order.
func runs(before, after []string) []run {
	al := newAligner(before, after)
	al.align(0, len(before), 0, len(after))
	al.out.flush()
	return al.out.runs
}

func (al *aligner) align(alo, ahi, blo, bhi int) {
	prefix := 0
	for alo+prefix < ahi && blo+prefix < bhi && al.a[alo+prefix] == al.b[blo+prefix] {
		prefix++
	}
	al.out.equal(al.before[alo : alo+prefix])
	alo, blo = alo+prefix, blo+prefix

	suffix := 0
	for alo < ahi-suffix && blo < bhi-suffix && al.a[ahi-suffix-1] == al.b[bhi-suffix-1] {
		suffix++
	}
	ahi, bhi = ahi-suffix, bhi-suffix

	switch {
	case alo == ahi:
		al.out.insert(al.after[blo:bhi])
	case blo == bhi:
		al.out.delete(al.before[alo:ahi])
	case (ahi-alo)+(bhi-blo) <= directLimit:
		al.direct(alo, ahi, blo, bhi)
	default:
		x, y, ok := bisect(al.a[alo:ahi], al.b[blo:bhi])
		if !ok || (x == 0 && y == 0) || (x == ahi-alo && y == bhi-blo) {
			al.out.delete(al.before[alo:ahi])
			al.out.insert(al.after[blo:bhi])
			break
		}
		al.align(alo, alo+x, blo, blo+y)
		al.align(alo+x, ahi, blo+y, bhi)
	}

	al.out.equal(al.before[ahi : ahi+suffix])
}

// direct aligns the ranges with myers.ComputeEdits by writing every token ID
// on a line of its own.
func (al *aligner) direct(alo, ahi, blo, bhi int) {
	edits := myers.ComputeEdits(tokenURI, lines(al.a[alo:ahi]), lines(al.b[blo:bhi]))

	i, j := alo, blo
	for _, edit := range edits {
		start := alo + edit.Span.Start().Line() - 1
		if start > i {
			al.out.equal(al.before[i:start])
			j += start - i
			i = start
		}
		if edit.NewText == "" {
			end := alo + edit.Span.End().Line() - 1
			al.out.delete(al.before[i:end])
			i = end
			continue
		}
		n := strings.Count(edit.NewText, "\n")
		al.out.insert(al.after[j : j+n])
		j += n
	}
	al.out.equal(al.before[i:ahi])
}

func lines(ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(strconv.Itoa(id))
		b.WriteByte('\n')
	}
	return b.String()
}

// bisect returns a point (x, y) on a shortest edit path from a to b, where the
// forward and reverse searches of Myers' algorithm overlap. It uses space
// linear in the input. a and b must both be non-empty.
func bisect(a, b []int) (x, y int, ok bool) {
	n, m := len(a), len(b)
	maxD := (n + m + 1) / 2
	offset := maxD
	length := 2*maxD + 2
	forward := make([]int, length)
	reverse := make([]int, length)
	for i := range forward {
		forward[i] = -1
		reverse[i] = -1
	}
	forward[offset+1] = 0
	reverse[offset+1] = 0

	delta := n - m
	// With an odd delta the paths meet during a forward step, otherwise
	// during a reverse step.
	odd := delta%2 != 0
	// Diagonals that have run off the edit graph are skipped.
	var forwardStart, forwardEnd, reverseStart, reverseEnd int

	for d := 0; d < maxD; d++ {
		for k := -d + forwardStart; k <= d-forwardEnd; k += 2 {
			i := offset + k
			var fx int
			if k == -d || (k != d && forward[i-1] < forward[i+1]) {
				fx = forward[i+1]
			} else {
				fx = forward[i-1] + 1
			}
			fy := fx - k
			for fx < n && fy < m && a[fx] == b[fy] {
				fx++
				fy++
			}
			forward[i] = fx

			switch {
			case fx > n:
				forwardEnd += 2
			case fy > m:
				forwardStart += 2
			case odd:
				j := offset + delta - k
				if j >= 0 && j < length && reverse[j] != -1 && fx >= n-reverse[j] {
					return fx, fy, true
				}
			}
		}

		for k := -d + reverseStart; k <= d-reverseEnd; k += 2 {
			i := offset + k
			var rx int
			if k == -d || (k != d && reverse[i-1] < reverse[i+1]) {
				rx = reverse[i+1]
			} else {
				rx = reverse[i-1] + 1
			}
			ry := rx - k
			for rx < n && ry < m && a[n-rx-1] == b[m-ry-1] {
				rx++
				ry++
			}
			reverse[i] = rx

			switch {
			case rx > n:
				reverseEnd += 2
			case ry > m:
				reverseStart += 2
			case !odd:
				j := offset + delta - k
				if j >= 0 && j < length && forward[j] != -1 {
					fx := forward[j]
					fy := offset + fx - j
					if fx >= n-rx {
						return fx, fy, true
					}
				}
			}
		}
	}
	return 0, 0, false
}
