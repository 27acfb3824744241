package globemesh

import "fmt"

// PipelineVersion participates in the cache key so that cached meshes built
// by an older pipeline are never served after the geometry code changed.
const PipelineVersion = "globemesh/1"

// ProjectionMode selects the 2d projection a part is triangulated in.
type ProjectionMode uint8

const (
	// ProjectionAuto picks a mode per part from its classification.
	ProjectionAuto ProjectionMode = iota

	// ProjectionLegacy uses recentered (lon, lat) directly as (x, y).
	// Cheap, acceptable only for parts with a small angular span.
	ProjectionLegacy

	// ProjectionTangent projects onto the plane touching the sphere at the
	// part centroid, using a local east/north basis.
	ProjectionTangent

	// ProjectionPolarLambert uses a Lambert azimuthal equal-area projection
	// centered on the part, avoiding the singularity near the poles.
	ProjectionPolarLambert
)

func (m ProjectionMode) String() string {
	switch m {
	case ProjectionAuto:
		return "auto"
	case ProjectionLegacy:
		return "legacy"
	case ProjectionTangent:
		return "tangent"
	case ProjectionPolarLambert:
		return "polarLambert"
	default:
		return "unknown"
	}
}

func ParseProjectionMode(value string) (ProjectionMode, error) {
	switch value {
	case "auto":
		return ProjectionAuto, nil
	case "legacy":
		return ProjectionLegacy, nil
	case "tangent":
		return ProjectionTangent, nil
	case "polarLambert":
		return ProjectionPolarLambert, nil
	default:
		return ProjectionAuto, fmt.Errorf("unknown projection mode %q", value)
	}
}

// Config carries all knobs of the pipeline. The zero value is not useful,
// start from DefaultConfig.
type Config struct {
	// Normalize enables longitude unwrapping and antimeridian splitting.
	// With Normalize off the raw outer ring becomes a single standard part.
	Normalize bool

	// Projection overrides the per-part projection selection.
	Projection ProjectionMode

	DiagnosticsEnabled bool
	CacheStatsEnabled  bool

	// FallbackOnEdgeRatio rebuilds a legacy-projected part with the tangent
	// plane projection when its 3d edge length ratio exceeds the distortion
	// threshold.
	FallbackOnEdgeRatio bool

	// Extrude generates side walls so that the mesh has visible thickness.
	Extrude bool

	// ExtrudeHeight is the cap lift above SurfaceRadius when extruding.
	ExtrudeHeight float64

	// SurfaceRadius is the sphere radius mesh positions are scaled to.
	SurfaceRadius float64

	// HoleWallMinPerimeter suppresses wall generation for holes whose
	// angular perimeter, in degrees, is below this value.
	HoleWallMinPerimeter float64

	// VertexBudget bounds the total number of cap vertices the cache keeps
	// before evicting least recently used meshes.
	VertexBudget int

	// Parallelism bounds concurrent feature builds in BuildAll.
	// Zero means one worker per CPU.
	Parallelism int

	// PipelineVersion is hashed into every cache key.
	PipelineVersion string
}

func DefaultConfig() Config {
	return Config{
		Normalize:            true,
		Projection:           ProjectionAuto,
		DiagnosticsEnabled:   true,
		FallbackOnEdgeRatio:  true,
		ExtrudeHeight:        0.005,
		SurfaceRadius:        1.0,
		HoleWallMinPerimeter: 1.0,
		VertexBudget:         2_000_000,
		PipelineVersion:      PipelineVersion,
	}
}
