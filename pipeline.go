package globemesh

import (
	"log/slog"
	"sync/atomic"
	"time"

	"context"
)

// edgeRatioFallbackThreshold marks a projection result as pathological. A
// clean triangulation of country sized polygons stays well below this ratio;
// equirectangular output near the poles blows far past it.
const edgeRatioFallbackThreshold = 12.0

// Builder runs the geometry pipeline. Builds for different features are
// independent and may run concurrently; the cache is the only
// synchronization point between them.
type Builder struct {
	cfg   Config
	cache *MeshCache
	diag  *Diagnostics
	log   *slog.Logger

	// builds counts actual pipeline runs, i.e. cache misses
	builds atomic.Int64
}

type BuilderOptions struct {
	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// OnEvict is forwarded to the mesh cache so the rendering collaborator
	// can release resources of evicted meshes.
	OnEvict EvictFunc
}

func NewBuilder(cfg Config) *Builder {
	return NewBuilderWith(cfg, BuilderOptions{})
}

func NewBuilderWith(cfg Config, opts BuilderOptions) *Builder {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Builder{
		cfg:   cfg,
		cache: NewMeshCache(cfg.VertexBudget, opts.OnEvict),
		diag:  NewDiagnostics(),
		log:   log,
	}
}

// Diagnostics exposes the per feature reports collected so far.
func (b *Builder) Diagnostics() *Diagnostics {
	return b.diag
}

// CacheStats reports cache counters; ok is false when stats are disabled in
// the configuration.
func (b *Builder) CacheStats() (CacheStats, bool) {
	if !b.cfg.CacheStatsEnabled {
		return CacheStats{}, false
	}

	return b.cache.Stats(), true
}

// BuildCount returns how many times the full pipeline actually ran. Cache
// hits do not count.
func (b *Builder) BuildCount() int64 {
	return b.builds.Load()
}

// Build returns the mesh for the feature, running the pipeline only on a
// cache miss. Concurrent calls for the same feature and configuration share
// one build.
func (b *Builder) Build(ctx context.Context, f *Feature) (*Mesh, *Report, error) {
	key := cacheKey(f, &b.cfg)

	return b.cache.GetOrBuild(ctx, key, func(ctx context.Context) (*Mesh, *Report, error) {
		return b.buildFeature(ctx, f)
	})
}

// buildFeature is one full pipeline run:
// normalize → assign holes → validate → project → triangulate → extrude.
// Stages attach warnings freely; only malformed input rejects the feature.
func (b *Builder) buildFeature(ctx context.Context, f *Feature) (*Mesh, *Report, error) {
	start := time.Now()
	b.builds.Add(1)

	state := StateIngested
	var warnings []Warning

	fail := func(err error) (*Mesh, *Report, error) {
		b.log.Warn("feature rejected",
			slog.String("feature", f.ID),
			slog.String("stage", state.String()),
			slog.Any("error", err))

		report := &Report{
			FeatureID: f.ID,
			State:     StateRejected,
			BuildTime: time.Since(start),
			Warnings:  warnings,
		}
		if b.cfg.DiagnosticsEnabled {
			b.diag.put(report)
		}

		return nil, nil, err
	}

	var parts []*NormalizedPart
	var cuts []float64
	if b.cfg.Normalize {
		var err error
		parts, cuts, err = normalizeOuter(f.ID, f.Outer, f.PolarHint)
		if err != nil {
			return fail(err)
		}
	} else {
		open := openRing(dedupeRing(f.Outer, coordEps))
		if len(open) < 3 {
			return fail(malformed(f.ID, "outer ring has %d usable points, need at least 3", len(open)))
		}

		parts = []*NormalizedPart{{Classification: ClassStandard, Outer: open}}
	}
	state = StateNormalized

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	warnings = append(warnings, assignHoles(parts, f.Holes, cuts)...)
	state = StateHolesAssigned

	usable := parts[:0]
	for _, part := range parts {
		ok, w := validatePart(part)
		warnings = append(warnings, w...)

		if ok {
			usable = append(usable, part)
		}
	}
	parts = usable

	if len(parts) == 0 {
		return fail(malformed(f.ID, "no usable parts after validation"))
	}
	state = StateValidated

	type partBuild struct {
		part *NormalizedPart
		mode ProjectionMode
		pp   *ProjectedPart
		tri  Triangulation
	}

	builds := make([]*partBuild, 0, len(parts))
	for _, part := range parts {
		mode := selectProjection(part, b.cfg.Projection)
		builds = append(builds, &partBuild{part: part, mode: mode, pp: projectPart(part, mode)})
	}
	state = StateProjected

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	triangulated := builds[:0]
	for _, pb := range builds {
		tri, err := triangulatePart(pb.pp)
		if err != nil {
			// one broken part must not take the whole feature down
			warnings = append(warnings, warningf(WarnTriangulationFailed, "part skipped: %v", err))
			continue
		}

		pb.tri = tri
		triangulated = append(triangulated, pb)
	}
	builds = triangulated
	state = StateTriangulated

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	mesh := &Mesh{FeatureID: f.ID}
	var maxRatio float64

	for _, pb := range builds {
		meshPart := extrudePart(pb.pp, pb.tri, &b.cfg)
		ratio := edgeRatio(meshPart)

		if ratio > edgeRatioFallbackThreshold {
			if pb.mode == ProjectionLegacy && b.cfg.FallbackOnEdgeRatio {
				warnings = append(warnings, warningf(WarnProjectionDistortion,
					"edge ratio %.1f under legacy projection, rebuilt with tangent plane", ratio))

				rebuilt, rebuiltRatio, err := b.projectAndExtrude(pb.part, ProjectionTangent)
				if err != nil {
					warnings = append(warnings, warningf(WarnTriangulationFailed, "part skipped: %v", err))
					continue
				}

				meshPart, ratio = rebuilt, rebuiltRatio
			} else {
				warnings = append(warnings, warningf(WarnProjectionDistortion,
					"edge ratio %.1f exceeds threshold %.0f", ratio, edgeRatioFallbackThreshold))
			}
		}

		maxRatio = max(maxRatio, ratio)
		mesh.Parts = append(mesh.Parts, meshPart)
	}
	state = StateExtruded

	if len(mesh.Parts) == 0 {
		return fail(malformed(f.ID, "no part could be triangulated"))
	}

	report := &Report{
		FeatureID:    f.ID,
		State:        StateCached,
		Parts:        len(mesh.Parts),
		Triangles:    mesh.TriangleCount(),
		Vertices:     mesh.VertexCount(),
		MaxEdgeRatio: maxRatio,
		BuildTime:    time.Since(start),
		Warnings:     warnings,
	}
	if b.cfg.DiagnosticsEnabled {
		b.diag.put(report)
	}

	b.log.Debug("feature built",
		slog.String("feature", f.ID),
		slog.Int("parts", len(mesh.Parts)),
		slog.Int("triangles", report.Triangles),
		slog.Duration("took", report.BuildTime))

	return mesh, report, nil
}

// projectAndExtrude runs a single part through projection, triangulation and
// extrusion in one go; the distortion fallback uses it for its rebuild.
func (b *Builder) projectAndExtrude(part *NormalizedPart, mode ProjectionMode) (*MeshPart, float64, error) {
	pp := projectPart(part, mode)

	tri, err := triangulatePart(pp)
	if err != nil {
		return nil, 0, err
	}

	meshPart := extrudePart(pp, tri, &b.cfg)
	return meshPart, edgeRatio(meshPart), nil
}
