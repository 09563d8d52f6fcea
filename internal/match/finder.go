package match

import (
	"strings"

	"github.com/braksator/webarchiver/internal/fragment"
)

// Found reports one maximal common run: the concatenated content and
// the fragment offsets it starts at in each sequence.
type Found struct {
	Content string
	AOffset int
	BOffset int
}

// Find compares fragment sequences a and b and returns every maximal
// common consecutive run whose concatenated length is at least minLen,
// in discovery order.
//
// For every pair (i, j) with a[i] == b[j] — excluding i == j when the
// sequences are the same file (self) — the run is extended to the
// maximal k with a[i..i+k) == b[j..j+k). An accepted run advances the
// outer cursor past its end, so a-side suffixes of an accepted run are
// never reported as separate shorter matches; the inner scan restarts
// from the start of b at the next outer position, which is how a self
// comparison reports the mirrored (j, i) pair of an earlier run.
// Reference fragments terminate runs: already-spliced tokens never
// participate in new matches.
//
// The scan is O(len(a)·len(b)).
func Find(a, b []fragment.Fragment, self bool, minLen int) []Found {
	var found []Found
	for i := 0; i < len(a); i++ {
		if a[i].Ref {
			continue
		}
		for j := 0; j < len(b); j++ {
			if self && i == j {
				continue
			}
			if b[j].Ref || a[i].Text != b[j].Text {
				continue
			}
			k := 1
			length := len(a[i].Text)
			for i+k < len(a) && j+k < len(b) &&
				!a[i+k].Ref && !b[j+k].Ref &&
				a[i+k].Text == b[j+k].Text {
				length += len(a[i+k].Text)
				k++
			}
			if length < minLen {
				continue
			}
			var sb strings.Builder
			sb.Grow(length)
			for n := 0; n < k; n++ {
				sb.WriteString(a[i+n].Text)
			}
			found = append(found, Found{Content: sb.String(), AOffset: i, BOffset: j})
			// Advance the outer cursor past the run; the inner scan
			// restarts for the next position.
			i += k - 1
			break
		}
	}
	return found
}
