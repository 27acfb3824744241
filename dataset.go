package globemesh

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BuildAll builds every feature of a dataset in parallel. Per feature
// failures are isolated: a malformed feature is logged and skipped, the rest
// of the dataset still builds. Only context cancellation aborts the whole
// run.
func (b *Builder) BuildAll(ctx context.Context, features []*Feature) ([]*Mesh, error) {
	parallelism := b.cfg.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	results := make([]*Mesh, len(features))

	for i, feature := range features {
		g.Go(func() error {
			mesh, _, err := b.Build(ctx, feature)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}

				// already logged with its stage by the pipeline
				return nil
			}

			results[i] = mesh
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	meshes := make([]*Mesh, 0, len(results))
	for _, mesh := range results {
		if mesh != nil {
			meshes = append(meshes, mesh)
		}
	}

	b.log.Info("dataset built",
		slog.Int("features", len(features)),
		slog.Int("meshes", len(meshes)),
		slog.Int64("pipelineRuns", b.BuildCount()))

	return meshes, nil
}
