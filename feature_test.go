package globemesh

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestNewFeature_ClosesOpenRing(t *testing.T) {
	f, err := NewFeature("a", orb.Ring{{0, 0}, {10, 0}, {10, 10}})
	require.NoError(t, err)

	require.Equal(t, f.Outer[0], f.Outer[len(f.Outer)-1])
	require.Len(t, f.Outer, 4)
}

func TestNewFeature_DropsDegenerateHoles(t *testing.T) {
	f, err := NewFeature("a", rectRing(0, 0, 10, 10, 10),
		circleRing(5, 5, 1, 8),
		orb.Ring{{2, 2}, {2, 2}, {3, 3}})
	require.NoError(t, err)

	require.Len(t, f.Holes, 1)
}

func TestNewFeature_RejectsTinyRing(t *testing.T) {
	_, err := NewFeature("tiny", orb.Ring{{0, 0}, {0, 0}, {1, 1}})

	var malformedErr *MalformedInputError
	require.ErrorAs(t, err, &malformedErr)
}
