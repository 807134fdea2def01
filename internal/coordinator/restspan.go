package coordinator

import (
	"github.com/notemark/notemark/internal/arena"
	"github.com/notemark/notemark/internal/notation"
)

// BuildRestSpans merges adjacent or overlapping rest notes into contiguous
// spans. Sounding notes terminate the current span but never start one.
// Two rests merge iff the next rest starts at or before the current span's
// end. The returned slice is allocated from a; empty input yields empty
// output.
func BuildRestSpans(store *notation.Store, a *arena.Arena) ([]notation.RestSpan, error) {
	rests := 0
	for i := 0; i < store.Len(); i++ {
		if store.At(i).Note.IsRest() {
			rests++
		}
	}
	spans, err := arena.Slice[notation.RestSpan](a, rests)
	if err != nil {
		return nil, err
	}
	spans = spans[:0]

	var cur *notation.RestSpan
	for i := 0; i < store.Len(); i++ {
		n := store.At(i)
		if !n.Note.IsRest() {
			cur = nil
			continue
		}
		if cur != nil && cur.EndTick >= n.Note.StartTick {
			if end := n.Note.EndTick(); end > cur.EndTick {
				cur.EndTick = end
			}
			cur.NoteIndices = append(cur.NoteIndices, i)
			continue
		}
		optimized := false
		if n.Rest != nil {
			optimized = n.Rest.IsOptimizedRest
		}
		spans = append(spans, notation.RestSpan{
			StartTick:       n.Note.StartTick,
			EndTick:         n.Note.EndTick(),
			NoteIndices:     []int{i},
			IsOptimizedRest: optimized,
		})
		cur = &spans[len(spans)-1]
	}
	return spans, nil
}
