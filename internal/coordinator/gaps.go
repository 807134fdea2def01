package coordinator

import (
	"fmt"
	"sort"

	"github.com/notemark/notemark/internal/notation"
)

// DetectGaps finds the maximal time ranges within [measureStart,
// measureEnd) covered by no sounding note. Rests count as silence and are
// ignored; the input need not be sorted.
func DetectGaps(notes []notation.EnhancedNote, measureStart, measureEnd uint32) ([]notation.Gap, error) {
	if measureEnd <= measureStart {
		return nil, fmt.Errorf("measure [%d,%d): %w", measureStart, measureEnd, ErrInvalidMeasure)
	}
	measureLen := measureEnd - measureStart
	measureNumber := int(measureStart/measureLen) + 1

	if len(notes) == 0 {
		return []notation.Gap{{
			StartTime:     measureStart,
			Duration:      measureLen,
			MeasureNumber: measureNumber,
		}}, nil
	}

	order := make([]int, len(notes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return notes[order[i]].Note.StartTick < notes[order[j]].Note.StartTick
	})

	var gaps []notation.Gap
	pos := measureStart
	for _, i := range order {
		n := notes[i].Note
		if n.IsRest() {
			continue
		}
		if n.StartTick > pos {
			gaps = append(gaps, notation.Gap{
				StartTime:     pos,
				Duration:      n.StartTick - pos,
				MeasureNumber: measureNumber,
			})
		}
		if end := n.EndTick(); end > pos {
			pos = end
		}
	}
	if pos < measureEnd {
		gaps = append(gaps, notation.Gap{
			StartTime:     pos,
			Duration:      measureEnd - pos,
			MeasureNumber: measureNumber,
		})
	}
	return gaps, nil
}
