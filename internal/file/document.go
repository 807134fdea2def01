package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/notemark/notemark/internal/extract"
	"github.com/notemark/notemark/internal/notation"
)

// Document is the notation-metadata output of a conversion, one entry per
// measure, ready for a downstream markup emitter.
type Document struct {
	Source   string       `yaml:"source,omitempty"`
	RunID    string       `yaml:"run_id"`
	Measures []MeasureDoc `yaml:"measures"`
}

// MeasureDoc is one measure's enriched notes.
type MeasureDoc struct {
	Number        int       `yaml:"number"`
	TimeSignature string    `yaml:"time_signature"`
	StartTick     int64     `yaml:"start_tick"`
	Notes         []NoteDoc `yaml:"notes"`
}

// NoteDoc flattens an enhanced note for serialization.
type NoteDoc struct {
	Pitch     uint8  `yaml:"pitch"`
	Rest      bool   `yaml:"rest,omitempty"`
	StartTick uint32 `yaml:"start_tick"`
	Duration  uint32 `yaml:"duration"`
	Channel   uint8  `yaml:"channel"`
	Track     uint8  `yaml:"track"`

	Beam      string `yaml:"beam,omitempty"`
	BeamGroup string `yaml:"beam_group,omitempty"`
	Tuplet    string `yaml:"tuplet,omitempty"`
	RestSpan  bool   `yaml:"consolidated_rest,omitempty"`
	Dynamic   string `yaml:"dynamic,omitempty"`
	Stem      string `yaml:"stem,omitempty"`
	StaffLine *int   `yaml:"staff_line,omitempty"`
	Voice     int    `yaml:"voice,omitempty"`
}

func measureDoc(number int, m extract.Measure, store *notation.Store) MeasureDoc {
	doc := MeasureDoc{
		Number:        number,
		TimeSignature: fmt.Sprintf("%d/%d", m.Num, m.Denom),
		StartTick:     m.Begin,
	}
	for i := 0; i < store.Len(); i++ {
		n := store.At(i)
		nd := NoteDoc{
			Pitch:     n.Note.Pitch,
			Rest:      n.Note.IsRest(),
			StartTick: n.Note.StartTick,
			Duration:  n.Note.Duration,
			Channel:   n.Note.Channel,
			Track:     n.Note.Track,
		}
		if b := n.Beaming; b != nil && b.State != notation.BeamNone {
			nd.Beam = b.State.String()
			nd.BeamGroup = b.GroupID
		}
		if t := n.Tuplet; t != nil && t.Span != nil {
			nd.Tuplet = t.Span.Type.String()
		}
		if r := n.Rest; r != nil {
			nd.RestSpan = r.IsOptimizedRest
		}
		if d := n.Dynamics; d != nil {
			nd.Dynamic = d.Marking.String()
		}
		if s := n.Stem; s != nil {
			nd.Stem = s.Direction.String()
			line := s.StaffLine
			nd.StaffLine = &line
			nd.Voice = s.Voice
		}
		doc.Notes = append(doc.Notes, nd)
	}
	return doc
}

// WriteDocument writes the document as YAML.
func (d *Document) WriteDocument(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %v: %v", path, err)
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(d)
}
