package file

import (
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/notemark/notemark/internal/notation"
)

// TupletOption declares one tuplet span of a piece. Tuplet detection
// itself is an external concern; a piece's options file names the spans
// the engine should honor.
type TupletOption struct {
	StartTick  uint32  `yaml:"start_tick"`
	EndTick    uint32  `yaml:"end_tick"`
	Type       string  `yaml:"type"` // duplet, triplet, quintuplet, sextuplet
	Confidence float64 `yaml:"confidence"`
}

// Span converts the declaration to the engine's span type.
func (t TupletOption) Span() (*notation.TupletSpan, error) {
	var typ notation.TupletType
	switch t.Type {
	case "duplet":
		typ = notation.Duplet
	case "triplet", "":
		typ = notation.Triplet
	case "quintuplet":
		typ = notation.Quintuplet
	case "sextuplet":
		typ = notation.Sextuplet
	default:
		return nil, fmt.Errorf("unknown tuplet type %q", t.Type)
	}
	confidence := t.Confidence
	if confidence == 0 {
		confidence = 1 // declared spans are trusted
	}
	return &notation.TupletSpan{
		StartTick:  t.StartTick,
		EndTick:    t.EndTick,
		Type:       typ,
		Confidence: confidence,
	}, nil
}

// Options are the per-piece conversion options.
type Options struct {
	InputFile       string         `yaml:"input_file"`
	InputFileSHA256 string         `yaml:"input_file_sha256,omitempty"`
	Tuplets         []TupletOption `yaml:"tuplets,omitempty"`
}

// ReadOptions loads a piece's options file.
func ReadOptions(fsys fs.FS, optionsFile string) (*Options, error) {
	f, err := fsys.Open(optionsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open %v: %v", optionsFile, err)
	}
	defer f.Close()
	var options Options
	err = yaml.NewDecoder(f).Decode(&options)
	if err != nil {
		return nil, fmt.Errorf("could not decode %v: %v", optionsFile, err)
	}
	return &options, nil
}

// WriteOptions rewrites a piece's options file (after checksum addition).
func WriteOptions(optionsFile string, options *Options) (err error) {
	f, err := os.Create(optionsFile)
	if err != nil {
		return fmt.Errorf("could not recreate %v: %v", optionsFile, err)
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2) // Match yq.
	return enc.Encode(options)
}
