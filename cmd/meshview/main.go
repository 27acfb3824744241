// Command meshview is a debug viewer: it builds the features of a GeoJSON
// file and draws the resulting sphere meshes as a slowly rotating
// orthographic wireframe. It exists to eyeball antimeridian splits and
// projection artifacts, not to render anything for production.
package main

import (
	"context"
	"flag"
	"image/color"
	"log/slog"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/oliverbestmann/globemesh"
	"github.com/oliverbestmann/globemesh/gm"
)

var classColors = map[globemesh.Classification]color.RGBA{
	globemesh.ClassStandard:      {R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff},
	globemesh.ClassDatelineSplit: {R: 0xff, G: 0x80, B: 0x40, A: 0xff},
	globemesh.ClassPolar:         {R: 0x60, G: 0xa0, B: 0xff, A: 0xff},
}

type viewer struct {
	meshes []*globemesh.Mesh
	fit    gm.Rect
	angle  float64
}

// fitBounds is the screen space extent the meshes can reach under any
// rotation around the y axis: ±hypot(x, z) horizontally, y vertically.
func fitBounds(meshes []*globemesh.Mesh) gm.Rect {
	var points []gm.Vec

	for _, mesh := range meshes {
		for _, part := range mesh.Parts {
			positions := part.Positions
			for i := 0; i+2 < len(positions); i += 3 {
				r := math.Hypot(float64(positions[i]), float64(positions[i+2]))
				y := float64(positions[i+1])
				points = append(points, gm.VecOf(r, y), gm.VecOf(-r, y))
			}
		}
	}

	if len(points) == 0 {
		return gm.RectWithPoints(gm.VecOf(-1, -1), gm.VecOf(1, 1))
	}

	return gm.BoundsOf(points)
}

func (v *viewer) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	speed := 0.005
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
		speed = -0.02
	case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
		speed = 0.02
	case ebiten.IsKeyPressed(ebiten.KeySpace):
		speed = 0
	}

	v.angle += speed
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	bounds := screen.Bounds()
	cx := float64(bounds.Dx()) / 2
	cy := float64(bounds.Dy()) / 2

	size := v.fit.Size()
	scale := 0.9 * min(float64(bounds.Dx())/size.X, float64(bounds.Dy())/size.Y)
	center := v.fit.Center()

	sin, cos := math.Sincos(v.angle)

	// orthographic projection after a rotation around the y axis; the
	// depth value culls edges on the far side of the globe
	project := func(positions []float32, idx uint32) (x, y, depth float64) {
		px := float64(positions[idx*3])
		py := float64(positions[idx*3+1])
		pz := float64(positions[idx*3+2])

		rx := px*cos + pz*sin
		rz := -px*sin + pz*cos

		return cx + (rx-center.X)*scale, cy - (py-center.Y)*scale, rz
	}

	for _, mesh := range v.meshes {
		for _, part := range mesh.Parts {
			clr := classColors[part.Classification]

			for i := 0; i+2 < len(part.Indices); i += 3 {
				x0, y0, d0 := project(part.Positions, part.Indices[i])
				x1, y1, d1 := project(part.Positions, part.Indices[i+1])
				x2, y2, d2 := project(part.Positions, part.Indices[i+2])

				if d0 < 0 || d1 < 0 || d2 < 0 {
					continue
				}

				vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1, clr, true)
				vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, clr, true)
				vector.StrokeLine(screen, float32(x2), float32(y2), float32(x0), float32(y0), 1, clr, true)
			}
		}
	}
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func main() {
	var (
		input      = flag.String("in", "", "GeoJSON feature collection to view")
		featureID  = flag.String("feature", "", "only view the feature with this id prefix")
		projection = flag.String("projection", "auto", "projection mode: auto, legacy, tangent or polarLambert")
	)
	flag.Parse()

	if err := run(*input, *featureID, *projection); err != nil {
		slog.Error("meshview failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(input, featureID, projection string) error {
	mode, err := globemesh.ParseProjectionMode(projection)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	features, err := globemesh.FeaturesFromGeoJSON(data)
	if err != nil {
		return err
	}

	if featureID != "" {
		var filtered []*globemesh.Feature
		for _, f := range features {
			if len(f.ID) >= len(featureID) && f.ID[:len(featureID)] == featureID {
				filtered = append(filtered, f)
			}
		}
		features = filtered
	}

	cfg := globemesh.DefaultConfig()
	cfg.Projection = mode

	builder := globemesh.NewBuilder(cfg)
	meshes, err := builder.BuildAll(context.Background(), features)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(1000, 1000)
	ebiten.SetWindowTitle("meshview")
	return ebiten.RunGame(&viewer{meshes: meshes, fit: fitBounds(meshes)})
}
