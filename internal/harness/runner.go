package harness

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of loading and running one scenario file.
type FileResult struct {
	Path     string
	Scenario *Scenario // nil if the file failed to load
	Result   *Result   // nil if loading or setup failed
	Err      error     // load or setup error
}

// Pass reports whether the file loaded, ran and every case passed.
func (f FileResult) Pass() bool {
	return f.Err == nil && f.Result != nil && f.Result.Pass
}

// Name returns the scenario name, or the path when the file did not load.
func (f FileResult) Name() string {
	if f.Scenario != nil {
		return f.Scenario.Name
	}
	return f.Path
}

// RunFiles loads and runs scenario files with at most workers running at
// once. Results are returned in the order of paths. Per-file failures are
// recorded in each FileResult; the returned error is non-nil only when ctx
// is cancelled.
func RunFiles(ctx context.Context, paths []string, workers int, opts ...Option) ([]FileResult, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = runFile(gctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runFile(ctx context.Context, path string, opts []Option) FileResult {
	fr := FileResult{Path: path}

	scenario, err := LoadScenario(path)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Scenario = scenario

	result, err := Run(ctx, scenario, opts...)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Result = result
	return fr
}
