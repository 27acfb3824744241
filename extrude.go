package globemesh

import (
	"math"
	"slices"

	"github.com/golang/geo/r3"

	"github.com/oliverbestmann/globemesh/gm"
)

// MeshPart is the externally consumed artifact for one normalized part:
// sphere mapped cap geometry plus optional extruded side walls. Positions
// are xyz triples; the rendering collaborator owns GPU upload and transforms.
type MeshPart struct {
	Classification Classification
	Projection     ProjectionMode

	Positions []float32
	Indices   []uint32

	WallPositions []float32
	WallNormals   []float32
	WallIndices   []uint32
}

func (p *MeshPart) VertexCount() int {
	return (len(p.Positions) + len(p.WallPositions)) / 3
}

func (p *MeshPart) TriangleCount() int {
	return (len(p.Indices) + len(p.WallIndices)) / 3
}

// Mesh is the full build product of one feature. Cached meshes are shared
// read only; nobody mutates a Mesh after the build.
type Mesh struct {
	FeatureID string
	Parts     []*MeshPart
}

func (m *Mesh) VertexCount() int {
	var sum int
	for _, part := range m.Parts {
		sum += part.VertexCount()
	}

	return sum
}

func (m *Mesh) TriangleCount() int {
	var sum int
	for _, part := range m.Parts {
		sum += part.TriangleCount()
	}

	return sum
}

// extrudePart maps the triangulated 2d vertices back onto the sphere through
// the part's own projection basis and, when extrusion is on, builds side
// walls from the same basis so cap and wall meet without seams.
func extrudePart(pp *ProjectedPart, tri Triangulation, cfg *Config) *MeshPart {
	capRadius := cfg.SurfaceRadius
	if cfg.Extrude {
		capRadius += cfg.ExtrudeHeight
	}

	part := &MeshPart{
		Classification: pp.Part.Classification,
		Projection:     pp.Basis.Mode,
		Positions:      make([]float32, 0, len(tri.Vertices)*3),
		Indices:        tri.Indices,
	}

	for _, v := range tri.Vertices {
		p3 := pp.Basis.Unproject(v).Mul(capRadius)
		part.Positions = append(part.Positions, float32(p3.X), float32(p3.Y), float32(p3.Z))
	}

	if cfg.Extrude {
		appendWall(part, pp.Basis, pp.Outer, cfg)

		for _, hole := range pp.Holes {
			if ringPerimeterDegrees(pp.Basis, hole) < cfg.HoleWallMinPerimeter {
				// a wall on a visually insignificant hole is only overdraw
				continue
			}

			appendWall(part, pp.Basis, hole, cfg)
		}
	}

	return part
}

// appendWall builds one quad per ring edge between the lifted cap and the
// sphere surface. The wall normal points left of the travel direction; with
// the outer ring counter clockwise and holes clockwise this faces the
// polygon interior on every wall.
func appendWall(part *MeshPart, basis Basis, ring []gm.Vec, cfg *Config) {
	top := cfg.SurfaceRadius + cfg.ExtrudeHeight
	bottom := cfg.SurfaceRadius

	for i, a := range ring {
		b := ring[(i+1)%len(ring)]

		a3 := basis.Unproject(a)
		b3 := basis.Unproject(b)

		edge := b3.Sub(a3)
		if edge.Norm() < 1e-15 {
			continue
		}

		radial := a3.Add(b3).Normalize()
		normal := radial.Cross(edge).Normalize()

		base := uint32(len(part.WallPositions) / 3)
		for _, v := range []r3.Vector{a3.Mul(top), b3.Mul(top), b3.Mul(bottom), a3.Mul(bottom)} {
			part.WallPositions = append(part.WallPositions,
				float32(v.X), float32(v.Y), float32(v.Z))
			part.WallNormals = append(part.WallNormals,
				float32(normal.X), float32(normal.Y), float32(normal.Z))
		}

		part.WallIndices = append(part.WallIndices,
			base, base+1, base+2,
			base, base+2, base+3)
	}
}

// ringPerimeterDegrees sums the angular edge lengths of the ring as mapped
// onto the sphere.
func ringPerimeterDegrees(basis Basis, ring []gm.Vec) float64 {
	if len(ring) < 2 {
		return 0
	}

	var sum float64
	prev := basis.Unproject(ring[len(ring)-1])

	for _, v := range ring {
		cur := basis.Unproject(v)
		sum += cur.Angle(prev).Degrees()
		prev = cur
	}

	return sum
}

// edgeRatio is the longest cap edge over the median cap edge, measured in 3d
// after reprojection. A high ratio flags a projection that collapsed or
// stretched part of the ring, e.g. equirectangular near a pole.
func edgeRatio(part *MeshPart) float64 {
	position := func(idx uint32) r3.Vector {
		return r3.Vector{
			X: float64(part.Positions[idx*3]),
			Y: float64(part.Positions[idx*3+1]),
			Z: float64(part.Positions[idx*3+2]),
		}
	}

	var lengths []float64
	for i := 0; i+2 < len(part.Indices); i += 3 {
		a := position(part.Indices[i])
		b := position(part.Indices[i+1])
		c := position(part.Indices[i+2])

		lengths = append(lengths, b.Sub(a).Norm(), c.Sub(b).Norm(), a.Sub(c).Norm())
	}

	if len(lengths) == 0 {
		return 1
	}

	slices.Sort(lengths)
	median := lengths[len(lengths)/2]
	longest := lengths[len(lengths)-1]

	if median <= 0 {
		return math.Inf(1)
	}

	return longest / median
}
