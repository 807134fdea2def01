package notation

// TupletType identifies a tuplet by its expected note count.
type TupletType uint8

const (
	Duplet     TupletType = 2
	Triplet    TupletType = 3
	Quintuplet TupletType = 5
	Sextuplet  TupletType = 6
)

// ExpectedNotes returns how many notes a complete tuplet of this type
// carries.
func (t TupletType) ExpectedNotes() int {
	return int(t)
}

func (t TupletType) String() string {
	switch t {
	case Duplet:
		return "duplet"
	case Triplet:
		return "triplet"
	case Quintuplet:
		return "quintuplet"
	case Sextuplet:
		return "sextuplet"
	default:
		return "tuplet"
	}
}

// TupletSpan is a detected tuplet's time range. Produced by an external
// detector (or declared per piece); consumed read-only here. Assumed
// sorted and non-overlapping per voice.
type TupletSpan struct {
	StartTick   uint32
	EndTick     uint32
	Type        TupletType
	Confidence  float64
	NoteIndices []int
}

// Contains reports whether the tick lies in [StartTick, EndTick).
func (s *TupletSpan) Contains(tick uint32) bool {
	return tick >= s.StartTick && tick < s.EndTick
}

// BeamGroup is a set of notes joined by one beam, produced by an external
// grouping stage. NoteIndices are time-ordered. The coordinator only
// validates and repairs groups, it never invents them.
type BeamGroup struct {
	GroupID     string
	NoteIndices []int
	StartTick   uint32
	EndTick     uint32
}

// RestSpan is one or more merged silent intervals notated as a single
// rest.
type RestSpan struct {
	StartTick       uint32
	EndTick         uint32
	NoteIndices     []int
	IsOptimizedRest bool
}

// Gap is a maximal time interval within a measure covered by no sounding
// note.
type Gap struct {
	StartTime     uint32
	Duration      uint32
	MeasureNumber int
}

// TimeSignatureEvent is a meta time-signature change at an absolute tick.
// DenominatorPower is the negative power of two (2 means /4).
type TimeSignatureEvent struct {
	Numerator        uint8
	DenominatorPower uint8
	Tick             uint32
}

// Denominator returns the notated denominator (4 for DenominatorPower 2).
func (e TimeSignatureEvent) Denominator() int {
	return 1 << e.DenominatorPower
}
