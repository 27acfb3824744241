// Command globemesh builds every feature of a GeoJSON feature collection
// into sphere meshes and prints the per feature diagnostics as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pkg/profile"

	"github.com/oliverbestmann/globemesh"
)

func main() {
	var (
		input        = flag.String("in", "", "GeoJSON feature collection to build")
		projection   = flag.String("projection", "auto", "projection mode: auto, legacy, tangent or polarLambert")
		extrude      = flag.Bool("extrude", false, "generate extruded side walls")
		noNormalize  = flag.Bool("no-normalize", false, "skip antimeridian normalization")
		noFallback   = flag.Bool("no-fallback", false, "disable the distortion fallback")
		holeWallMin  = flag.Float64("hole-wall-min-perimeter", 1.0, "minimum hole perimeter in degrees for wall generation")
		vertexBudget = flag.Int("vertex-budget", 2_000_000, "cache vertex budget, 0 disables eviction")
		profileMode  = flag.String("profile", "", "write a profile: cpu or mem")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "":
	default:
		slog.Warn("unknown profile mode", slog.String("mode", *profileMode))
	}

	mode, err := globemesh.ParseProjectionMode(*projection)
	if err != nil {
		slog.Error("invalid flags", slog.Any("error", err))
		os.Exit(1)
	}

	cfg := globemesh.DefaultConfig()
	cfg.Projection = mode
	cfg.Extrude = *extrude
	cfg.Normalize = !*noNormalize
	cfg.FallbackOnEdgeRatio = !*noFallback
	cfg.HoleWallMinPerimeter = *holeWallMin
	cfg.VertexBudget = *vertexBudget
	cfg.CacheStatsEnabled = true

	if err := run(cfg, *input); err != nil {
		slog.Error("build failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg globemesh.Config, input string) error {
	if input == "" {
		return fmt.Errorf("missing -in flag")
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	features, err := globemesh.FeaturesFromGeoJSON(data)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	builder := globemesh.NewBuilder(cfg)

	meshes, err := builder.BuildAll(ctx, features)
	if err != nil {
		return err
	}

	var triangles int
	for _, mesh := range meshes {
		triangles += mesh.TriangleCount()
	}

	slog.Info("build finished",
		slog.Int("features", len(features)),
		slog.Int("meshes", len(meshes)),
		slog.Int("triangles", triangles))

	if stats, ok := builder.CacheStats(); ok {
		slog.Info("cache stats",
			slog.Int64("hits", stats.Hits),
			slog.Int64("misses", stats.Misses),
			slog.Int64("evictions", stats.Evictions),
			slog.Int("vertices", stats.Vertices))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(builder.Diagnostics().Snapshot())
}
