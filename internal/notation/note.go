// Package notation holds the shared data model of the coordination
// pipeline: immutable timed notes, per-note notation attachments, and the
// grouping structures (tuplet spans, beam groups, rest spans, gaps) the
// phases compute and cross-check.
package notation

// TimedNote is one decoded note event in absolute ticks. A note with
// Velocity 0 is a rest. TimedNotes are produced upstream and never
// mutated by the pipeline.
type TimedNote struct {
	Pitch     uint8
	Velocity  uint8
	StartTick uint32
	Duration  uint32
	Channel   uint8
	Track     uint8
	TieStart  bool
	TieStop   bool
}

// IsRest reports whether the note is silence.
func (n TimedNote) IsRest() bool {
	return n.Velocity == 0
}

// EndTick returns the first tick after the note.
func (n TimedNote) EndTick() uint32 {
	return n.StartTick + n.Duration
}

// ProcessingFlags records which phases have touched a note.
type ProcessingFlags uint8

const (
	FlagTupletDetection ProcessingFlags = 1 << iota
	FlagBeamGrouping
	FlagRestOptimization
	FlagDynamicsMapping
	FlagCoordination
)

// Has reports whether all bits in f are set.
func (p ProcessingFlags) Has(f ProcessingFlags) bool {
	return p&f == f
}

// BeamState is a note's position within a beam group.
type BeamState uint8

const (
	BeamNone BeamState = iota
	BeamBegin
	BeamContinue
	BeamEnd
)

func (s BeamState) String() string {
	switch s {
	case BeamBegin:
		return "begin"
	case BeamContinue:
		return "continue"
	case BeamEnd:
		return "end"
	default:
		return "none"
	}
}

// BeamingInfo is the per-note beaming attachment.
type BeamingInfo struct {
	State        BeamState
	Level        uint8
	CanBeam      bool
	BeatPosition float64
	GroupID      string
}

// TupletInfo attaches a note to the tuplet span containing it.
type TupletInfo struct {
	Span             *TupletSpan
	PositionInTuplet int
}

// RestInfo is the per-note rest attachment.
type RestInfo struct {
	IsOptimizedRest  bool
	ConsolidatedFrom int
}

// DynamicMarking is a notated dynamic level.
type DynamicMarking uint8

const (
	DynamicPP DynamicMarking = iota
	DynamicP
	DynamicMP
	DynamicMF
	DynamicF
	DynamicFF
)

func (d DynamicMarking) String() string {
	switch d {
	case DynamicPP:
		return "pp"
	case DynamicP:
		return "p"
	case DynamicMP:
		return "mp"
	case DynamicMF:
		return "mf"
	case DynamicF:
		return "f"
	default:
		return "ff"
	}
}

// DynamicsInfo is the per-note dynamics attachment.
type DynamicsInfo struct {
	Marking  DynamicMarking
	Velocity uint8
}

// StemDirection is the visual stem orientation of a note.
type StemDirection uint8

const (
	StemUp StemDirection = iota
	StemDown
)

func (s StemDirection) String() string {
	if s == StemDown {
		return "down"
	}
	return "up"
}

// StemInfo is the per-note stem attachment. StaffLine 3 is the middle
// line of the 5-line staff; lower numbers are lower on the staff.
type StemInfo struct {
	Direction StemDirection
	StaffLine int
	Voice     int
}

// EnhancedNote wraps a TimedNote with the optional notation attachments
// the phases compute. Attachments are allocated through the store's arena
// and referenced here; the note itself never allocates or frees.
type EnhancedNote struct {
	Note     TimedNote
	Tuplet   *TupletInfo
	Beaming  *BeamingInfo
	Rest     *RestInfo
	Dynamics *DynamicsInfo
	Stem     *StemInfo
	Flags    ProcessingFlags
}
