package navbuild

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a build failure.
type ErrorKind string

const (
	KindInvalidInput    ErrorKind = "invalid_input"
	KindDegenerateInput ErrorKind = "degenerate_input"
	KindAllocation      ErrorKind = "allocation"
	KindDistanceField   ErrorKind = "distance_field"
	KindRegionBuild     ErrorKind = "region_build"
	KindContourBuild    ErrorKind = "contour_build"
	KindPolyMeshBuild   ErrorKind = "poly_mesh_build"
	KindDetailMeshBuild ErrorKind = "detail_mesh_build"
)

// Sentinels for errors.Is. Only the kind is compared.
var (
	ErrInvalidInput    = &BuildError{Kind: KindInvalidInput}
	ErrDegenerateInput = &BuildError{Kind: KindDegenerateInput}
	ErrAllocation      = &BuildError{Kind: KindAllocation}
	ErrDistanceField   = &BuildError{Kind: KindDistanceField}
	ErrRegionBuild     = &BuildError{Kind: KindRegionBuild}
	ErrContourBuild    = &BuildError{Kind: KindContourBuild}
	ErrPolyMeshBuild   = &BuildError{Kind: KindPolyMeshBuild}
	ErrDetailMeshBuild = &BuildError{Kind: KindDetailMeshBuild}
)

// BuildError reports the first failing stage of a build. Builds are never retried.
type BuildError struct {
	Kind    ErrorKind
	Stage   string
	Message string
	Cause   error
}

func newBuildError(kind ErrorKind, stage, message string) *BuildError {
	return &BuildError{Kind: kind, Stage: stage, Message: message}
}

func wrapBuildError(err error, kind ErrorKind, stage, message string) *BuildError {
	return &BuildError{Kind: kind, Stage: stage, Message: message, Cause: err}
}

func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Stage, e.Message)
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Is matches any *BuildError of the same kind.
func (e *BuildError) Is(target error) bool {
	t, ok := target.(*BuildError)
	return ok && t.Kind == e.Kind
}

// IsKind reports whether err is, or wraps, a BuildError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
