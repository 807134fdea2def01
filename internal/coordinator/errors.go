package coordinator

import "errors"

var (
	// ErrInvalidConfiguration is returned by Config.Validate for
	// out-of-range or contradictory settings.
	ErrInvalidConfiguration = errors.New("coordinator: invalid configuration")
	// ErrInvalidMeasure is returned for measures of non-positive length.
	ErrInvalidMeasure = errors.New("coordinator: invalid measure")
	// ErrCoordinationConflict is returned when a conflict resolution step
	// itself fails. Merely finding a conflict is the normal, counted case
	// and is not an error.
	ErrCoordinationConflict = errors.New("coordinator: coordination conflict")
	// ErrProcessingChainFailure is returned when the phase chain aborts in
	// failFast mode.
	ErrProcessingChainFailure = errors.New("coordinator: processing chain failure")
)
