package globemesh

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDiagnostics_ReportLifecycle(t *testing.T) {
	b := NewBuilder(DefaultConfig())

	f, err := NewFeature("a", rectRing(0, 0, 20, 20, 5))
	require.NoError(t, err)

	_, ok := b.Diagnostics().Report("a")
	require.False(t, ok)

	_, built, err := b.Build(context.Background(), f)
	require.NoError(t, err)

	report, ok := b.Diagnostics().Report("a")
	require.True(t, ok)
	require.Same(t, built, report)
	require.Equal(t, StateCached, report.State)
	require.Positive(t, report.Triangles)
	require.Positive(t, report.Vertices)

	snapshot := b.Diagnostics().Snapshot()
	require.Len(t, snapshot, 1)
	require.Same(t, report, snapshot["a"])
}

func TestDiagnostics_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DiagnosticsEnabled = false
	b := NewBuilder(cfg)

	f, err := NewFeature("a", rectRing(0, 0, 20, 20, 5))
	require.NoError(t, err)

	_, report, err := b.Build(context.Background(), f)
	require.NoError(t, err)
	require.NotNil(t, report)

	_, ok := b.Diagnostics().Report("a")
	require.False(t, ok)
}

func TestReport_MarshalJSON(t *testing.T) {
	report := &Report{
		FeatureID:    "a",
		State:        StateCached,
		Parts:        2,
		Triangles:    10,
		Vertices:     12,
		MaxEdgeRatio: 1.5,
		BuildTime:    1500 * time.Microsecond,
		Warnings:     []Warning{warningf(WarnOrphanHole, "dropped")},
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Equal(t, "cached", decoded["state"])
	require.EqualValues(t, 2, decoded["partsCount"])
	require.EqualValues(t, 10, decoded["triangleCount"])
	require.EqualValues(t, 12, decoded["vertexCount"])
	require.InDelta(t, 1.5, decoded["buildTimeMs"], 1e-9)
	require.Equal(t, []any{"orphan-hole: dropped"}, decoded["warnings"])
}

func TestTimings_Add(t *testing.T) {
	var timings Timings

	timings = timings.Add(100 * time.Millisecond)
	require.Equal(t, 1, timings.Count)
	require.Equal(t, 100*time.Millisecond, timings.Latest)
	require.Equal(t, 100*time.Millisecond, timings.Min)
	require.Equal(t, 100*time.Millisecond, timings.Max)
	require.Equal(t, 5*time.Millisecond, timings.MovingAverage)

	timings = timings.Add(20 * time.Millisecond)
	require.Equal(t, 2, timings.Count)
	require.Equal(t, 20*time.Millisecond, timings.Min)
	require.Equal(t, 100*time.Millisecond, timings.Max)
	require.Equal(t, 20*time.Millisecond, timings.Latest)
}
