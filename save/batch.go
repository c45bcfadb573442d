package save

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of loading one file in a batch.
type Result struct {
	Path string
	Game *SaveGame
	Err  error
}

// LoadFiles loads every path with at most workers concurrent decodes
// (GOMAXPROCS when workers <= 0). A failing file does not stop the
// others. Results are returned in the order of paths.
func (d *Decoder) LoadFiles(ctx context.Context, paths []string, workers int) []Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			game, err := d.LoadFile(ctx, path)
			results[i] = Result{Path: path, Game: game, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
