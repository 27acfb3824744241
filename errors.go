package globemesh

import "fmt"

// MalformedInputError marks a feature whose geometry cannot be built at all,
// e.g. an outer ring with fewer than three usable points. The feature is
// skipped; other features of the same dataset are unaffected.
type MalformedInputError struct {
	FeatureID string
	Reason    string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed feature %q: %s", e.FeatureID, e.Reason)
}

func malformed(featureID, format string, args ...any) *MalformedInputError {
	return &MalformedInputError{
		FeatureID: featureID,
		Reason:    fmt.Sprintf(format, args...),
	}
}

type WarningKind uint8

const (
	WarnDuplicatePoints WarningKind = iota
	WarnCollinearPoints
	WarnSelfIntersection
	WarnIntersectionCheckSkipped
	WarnOrphanHole
	WarnDegenerateRing
	WarnProjectionDistortion
	WarnTriangulationFailed
)

func (k WarningKind) String() string {
	switch k {
	case WarnDuplicatePoints:
		return "duplicate-points"
	case WarnCollinearPoints:
		return "collinear-points"
	case WarnSelfIntersection:
		return "self-intersection"
	case WarnIntersectionCheckSkipped:
		return "intersection-check-skipped"
	case WarnOrphanHole:
		return "orphan-hole"
	case WarnDegenerateRing:
		return "degenerate-ring"
	case WarnProjectionDistortion:
		return "projection-distortion"
	case WarnTriangulationFailed:
		return "triangulation-failed"
	default:
		return fmt.Sprintf("warning(%d)", k)
	}
}

// Warning records a non-fatal problem found during a feature build. Warnings
// never stop the build; they end up in the feature's diagnostics Report.
type Warning struct {
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	if w.Detail == "" {
		return w.Kind.String()
	}

	return w.Kind.String() + ": " + w.Detail
}

func warningf(kind WarningKind, format string, args ...any) Warning {
	return Warning{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

func hasWarning(warnings []Warning, kind WarningKind) bool {
	for _, w := range warnings {
		if w.Kind == kind {
			return true
		}
	}

	return false
}
