package globemesh

import (
	"encoding/json"
	"sync"
	"time"
)

// BuildState tracks how far a feature build has progressed. Terminal states
// are StateCached and StateRejected.
type BuildState uint8

const (
	StateIngested BuildState = iota
	StateNormalized
	StateHolesAssigned
	StateValidated
	StateProjected
	StateTriangulated
	StateExtruded
	StateCached
	StateRejected
)

func (s BuildState) String() string {
	switch s {
	case StateIngested:
		return "ingested"
	case StateNormalized:
		return "normalized"
	case StateHolesAssigned:
		return "holes-assigned"
	case StateValidated:
		return "validated"
	case StateProjected:
		return "projected"
	case StateTriangulated:
		return "triangulated"
	case StateExtruded:
		return "extruded"
	case StateCached:
		return "cached"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Report is the per feature diagnostics snapshot. It is created once per
// build and never mutated afterwards; a rebuild replaces the whole Report.
type Report struct {
	FeatureID    string
	State        BuildState
	Parts        int
	Triangles    int
	Vertices     int
	MaxEdgeRatio float64
	BuildTime    time.Duration
	Warnings     []Warning
}

func (r *Report) MarshalJSON() ([]byte, error) {
	warnings := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		warnings[i] = w.String()
	}

	return json.Marshal(struct {
		State        string   `json:"state"`
		PartsCount   int      `json:"partsCount"`
		TriangleCnt  int      `json:"triangleCount"`
		VertexCount  int      `json:"vertexCount"`
		MaxEdgeRatio float64  `json:"maxEdgeRatio"`
		BuildTimeMs  float64  `json:"buildTimeMs"`
		Warnings     []string `json:"warnings"`
	}{
		State:        r.State.String(),
		PartsCount:   r.Parts,
		TriangleCnt:  r.Triangles,
		VertexCount:  r.Vertices,
		MaxEdgeRatio: r.MaxEdgeRatio,
		BuildTimeMs:  float64(r.BuildTime) / float64(time.Millisecond),
		Warnings:     warnings,
	})
}

// Timings aggregates build durations across features.
type Timings struct {
	Count         int
	Latest        time.Duration
	MovingAverage time.Duration
	Min, Max      time.Duration
}

func (t Timings) Add(d time.Duration) Timings {
	t.Latest = d

	if t.Count == 0 {
		t.Min = d
		t.Max = d
	} else {
		t.Min = min(t.Min, d)
		t.Max = max(t.Max, d)
	}

	t.MovingAverage = (95*t.MovingAverage + 5*d) / 100

	t.Count += 1

	return t
}

// Diagnostics collects Reports by feature id for external QA tooling.
// Replacement on rebuild is atomic: readers either see the old Report or the
// new one, never a mix.
type Diagnostics struct {
	mu      sync.RWMutex
	reports map[string]*Report
	timings Timings
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		reports: map[string]*Report{},
	}
}

func (d *Diagnostics) put(report *Report) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reports[report.FeatureID] = report
	d.timings = d.timings.Add(report.BuildTime)
}

// Report returns the latest Report for a feature. The Report is immutable
// and safe to share.
func (d *Diagnostics) Report(featureID string) (*Report, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	report, ok := d.reports[featureID]
	return report, ok
}

// Snapshot returns a copy of the feature → Report map.
func (d *Diagnostics) Snapshot() map[string]*Report {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snapshot := make(map[string]*Report, len(d.reports))
	for id, report := range d.reports {
		snapshot[id] = report
	}

	return snapshot
}

func (d *Diagnostics) Timings() Timings {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.timings
}
