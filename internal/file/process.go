package file

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"

	"github.com/notemark/notemark/internal/coordinator"
	"github.com/notemark/notemark/internal/extract"
	"github.com/notemark/notemark/internal/grouping"
	"github.com/notemark/notemark/internal/notation"
)

// Process converts the piece named by options into a notation document:
// decode, measure segmentation, beam grouping, coordination. The returned
// metrics cover the whole conversion. If the options carry no checksum,
// one is filled in for the caller to persist.
func Process(config *coordinator.Config, options *Options, log *zap.Logger) (*Document, *coordinator.Metrics, error) {
	inBytes, err := os.ReadFile(options.InputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read %v: %v", options.InputFile, err)
	}

	sum := fmt.Sprintf("%x", sha256.Sum256(inBytes))
	if options.InputFileSHA256 != "" && options.InputFileSHA256 != sum {
		return nil, nil, fmt.Errorf("mismatching checksum of %v: got %v, want %v", options.InputFile, sum, options.InputFileSHA256)
	}
	options.InputFileSHA256 = sum

	mid, err := smf.ReadFrom(bytes.NewReader(inBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse %v: %v", options.InputFile, err)
	}

	doc, metrics, err := Convert(mid, config, options, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert %v: %w", options.InputFile, err)
	}
	doc.Source = options.InputFile
	return doc, metrics, nil
}

// Convert runs the coordination engine over every measure of an already
// parsed MIDI file.
func Convert(mid *smf.SMF, config *coordinator.Config, options *Options, log *zap.Logger) (*Document, *coordinator.Metrics, error) {
	measures, err := extract.FindMeasures(mid)
	if err != nil {
		return nil, nil, fmt.Errorf("could not find measures: %v", err)
	}
	notes, err := extract.Notes(mid)
	if err != nil {
		return nil, nil, fmt.Errorf("could not decode notes: %v", err)
	}

	coord, err := coordinator.New(*config, log)
	if err != nil {
		return nil, nil, err
	}
	metrics := coordinator.NewMetrics()

	var spans []*notation.TupletSpan
	for _, t := range options.Tuplets {
		span, err := t.Span()
		if err != nil {
			return nil, nil, fmt.Errorf("bad tuplet option: %v", err)
		}
		spans = append(spans, span)
	}

	quarter := int64(480)
	if ticks, ok := mid.TimeFormat.(smf.MetricTicks); ok {
		quarter = int64(ticks)
	}

	doc := &Document{RunID: metrics.RunID}
	for mi, m := range measures {
		measureNotes := extract.MeasureNotes(notes, m)
		store := notation.NewStore(measureNotes, nil)

		params := grouping.Params{
			MeasureBegin:      m.Begin,
			BeatLength:        quarter * 4 / int64(m.Denom),
			MaxBeamedDuration: quarter - 1,
		}
		groups := grouping.Build(measureNotes, params)

		// Tuplet spans are indexed against the measure's note slice.
		var measureSpans []*notation.TupletSpan
		for _, span := range spans {
			if int64(span.StartTick) >= m.Begin && int64(span.StartTick) < m.End() {
				measureSpans = append(measureSpans, span)
			}
		}

		section := coordinator.Section{
			StartTick: uint32(m.Begin),
			EndTick:   uint32(m.End()),
			TimeSig:   m.TimeSignature(),
		}
		if err := coord.Process(store, measureSpans, groups, section, metrics); err != nil {
			return nil, nil, fmt.Errorf("measure %d: %w", mi+1, err)
		}
		doc.Measures = append(doc.Measures, measureDoc(mi+1, m, store))
	}
	return doc, metrics, nil
}
