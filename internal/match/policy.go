package match

// TokenOverhead is the rendered size of a reference token for an
// identifier: the splice form '.$id.' costs the identifier plus five
// punctuation characters.
func TokenOverhead(id string) int {
	return len(id) + 5
}

// Policy decides whether a match is worth replacing.
//
// With MinSaving set, the effective floor adapts to the current
// identifier length: a match must save at least MinSaving bytes per
// replacement after paying the reference-token overhead. Otherwise the
// fixed MinLength floor applies. MinOccurrences, when set, additionally
// requires the match to have been seen that many times in total.
type Policy struct {
	MinLength      int
	MinSaving      int
	MinOccurrences int
}

// Allowed reports whether rec may be replaced, computing the decision
// on first call and memoizing it on the record. currentID is the next
// unissued identifier; its length feeds the automatic floor.
func (p Policy) Allowed(rec *Record, currentID string) bool {
	if rec.Judged {
		return rec.Allowed
	}
	floor := p.MinLength
	if p.MinSaving > 0 {
		floor = p.MinSaving + TokenOverhead(currentID)
	}
	ok := len(rec.Content) >= floor
	if ok && p.MinOccurrences > 0 {
		ok = rec.Total >= p.MinOccurrences
	}
	rec.Judged = true
	rec.Allowed = ok
	return ok
}
