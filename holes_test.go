package globemesh

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestAssignHoles_SimpleContainment(t *testing.T) {
	parts, _, err := normalizeOuter("box", rectRing(0, 0, 20, 20, 5), false)
	require.NoError(t, err)
	require.Len(t, parts, 1)

	warnings := assignHoles(parts, []orb.Ring{circleRing(10, 10, 2, 16)}, nil)
	require.Empty(t, warnings)
	require.Len(t, parts[0].Holes, 1)
}

func TestAssignHoles_OrphanDropped(t *testing.T) {
	parts, _, err := normalizeOuter("box", rectRing(0, 0, 20, 20, 5), false)
	require.NoError(t, err)

	warnings := assignHoles(parts, []orb.Ring{circleRing(50, 50, 2, 16)}, nil)
	require.Len(t, warnings, 1)
	require.Equal(t, WarnOrphanHole, warnings[0].Kind)
	require.Empty(t, parts[0].Holes)
}

func TestAssignHoles_AcrossDatelineSplit(t *testing.T) {
	parts, cuts, err := normalizeOuter("russia-like", russiaLikeRing(), false)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(parts), 2)

	// one lake well inside the western part, one inside the eastern part
	// (given in canonical coordinates, east of the dateline)
	holes := []orb.Ring{
		circleRing(60, 55, 2, 16),
		circleRing(-170, 60, 2, 16),
	}

	warnings := assignHoles(parts, holes, cuts)
	require.Empty(t, warnings)

	var assigned int
	for _, part := range parts {
		assigned += len(part.Holes)

		// every assigned hole shares its owner's longitude frame
		frame := medianLon(part.Outer)
		for _, hole := range part.Holes {
			require.InDelta(t, frame, medianLon(hole), datelineSpanDegrees)
		}
	}
	require.Equal(t, 2, assigned)
}

func TestAssignHoles_HoleOnCutMeridianSplits(t *testing.T) {
	parts, cuts, err := normalizeOuter("russia-like", russiaLikeRing(), false)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(parts), 2)
	require.NotEmpty(t, cuts)

	// a lake sitting right on the cut meridian, in canonical coordinates
	hole := canonicalRing(circleRing(180, 57, 2, 16))

	warnings := assignHoles(parts, []orb.Ring{hole}, cuts)
	require.Empty(t, warnings)

	// the hole splits at the cut; each half goes to the part it lies in and
	// never pokes past its owner's outer boundary
	var assigned int
	for _, part := range parts {
		partMin, partMax := lonRange(part.Outer)

		for _, h := range part.Holes {
			assigned++

			holeMin, holeMax := lonRange(h)
			require.GreaterOrEqual(t, holeMin, partMin-1e-9)
			require.LessOrEqual(t, holeMax, partMax+1e-9)
		}
	}
	require.Equal(t, 2, assigned)
}

func TestSplitHole_CutAppliesAcrossFrames(t *testing.T) {
	// the same cut expressed 360 degrees away still splits the hole
	hole := canonicalRing(circleRing(180, 57, 2, 16))

	subs := splitHole(hole, []float64{-180})
	require.Len(t, subs, 2)
}

func TestSplitHole_StraddlingHoleUnwrapsWhole(t *testing.T) {
	// a hole crossing the ±180 line in canonical form
	hole := canonicalRing(rectRing(175, 50, 190, 60, 5))

	subs := splitHole(hole, nil)
	require.Len(t, subs, 1)

	// the hole does not span more than 180 degrees, so it unwraps whole
	minLon, maxLon := lonRange(subs[0])
	require.InDelta(t, 15, maxLon-minLon, 1e-9)
}

func TestShiftPointToFrame(t *testing.T) {
	shifted := shiftPointToFrame(orb.Point{-170, 0}, 175)
	require.InDelta(t, 190, shifted.Lon(), 1e-9)

	shifted = shiftPointToFrame(orb.Point{10, 0}, 20)
	require.InDelta(t, 10, shifted.Lon(), 1e-9)
}
