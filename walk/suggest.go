package walk

import (
	"adac/common"
	"adac/sem"
)

// suggest finds the closest visible name to a misspelled identifier; an empty
// result means nothing was close enough to mention
func (w *Walker) suggest(name string) string {
	folded := common.FoldName(name)

	// anything beyond a third of the name's length apart is noise
	limit := len(folded)/3 + 1

	best := ""
	bestDist := limit + 1
	for s := w.Mgr.Top; s != nil; s = s.Parent {
		for _, sym := range s.Symbols {
			if sym.Visibility < sem.VisImmediate {
				continue
			}
			d := editDistance(folded, common.FoldName(sym.Name))
			if d < bestDist {
				best, bestDist = sym.Name, d
			}
		}
	}

	if bestDist == 0 || bestDist > limit {
		return ""
	}
	return best
}

// editDistance is the Levenshtein distance over bytes
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
