package layout

// Buckets splits start-sorted spans wherever the union of the intervals seen
// so far has a gap. Buckets never overlap in time, so each can be laid out on
// its own and keep its own row numbering.
func Buckets(spans []Span) [][]Span {
	if len(spans) == 0 {
		return nil
	}

	var buckets [][]Span
	begin := 0
	maxEnd := spanEnd(spans[0])
	for i := 1; i < len(spans); i++ {
		if spans[i].Start >= maxEnd {
			buckets = append(buckets, spans[begin:i])
			begin = i
		}
		if end := spanEnd(spans[i]); end > maxEnd {
			maxEnd = end
		}
	}
	return append(buckets, spans[begin:])
}

func spanEnd(s Span) int64 {
	if s.End <= s.Start {
		return s.Start + dayMillis
	}
	return s.End
}
