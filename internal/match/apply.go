package match

import "github.com/braksator/webarchiver/internal/fragment"

// Apply splices a reference fragment for id over every run in frags
// whose concatenation equals content, scanning left to right. It
// returns the compacted sequence and the number of runs replaced.
//
// The windowing rule mirrors the finder: the first fragment of a run
// must be a prefix of content, and each subsequent fragment must extend
// it exactly, landing on the full length. Reference fragments never
// take part in a run. The returned sequence is freshly built with the
// replaced run collapsed to a single reference fragment, so later
// matches never see blanked holes.
func Apply(frags []fragment.Fragment, content, id string) ([]fragment.Fragment, int) {
	if content == "" || len(frags) == 0 {
		return frags, 0
	}
	out := make([]fragment.Fragment, 0, len(frags))
	replaced := 0
	for s := 0; s < len(frags); {
		end, ok := matchWindow(frags, s, content)
		if !ok {
			out = append(out, frags[s])
			s++
			continue
		}
		out = append(out, fragment.Reference(id))
		replaced++
		s = end
	}
	if replaced == 0 {
		return frags, 0
	}
	return out, replaced
}

// matchWindow reports whether the fragments starting at s concatenate
// to exactly content, returning the exclusive end offset of the run.
func matchWindow(frags []fragment.Fragment, s int, content string) (int, bool) {
	n := 0
	for e := s; e < len(frags); e++ {
		f := frags[e]
		if f.Ref {
			return 0, false
		}
		t := f.Text
		if len(t) > len(content)-n || content[n:n+len(t)] != t {
			return 0, false
		}
		n += len(t)
		if n == len(content) {
			return e + 1, true
		}
	}
	return 0, false
}
