package maincmd

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// checkFilesReadable stats every path concurrently and combines every
// failure into a single error, so a command given several bad paths reports
// all of them instead of stopping at the first one scanner.ScanFiles or
// parser.ParseFiles would happen to reach.
func checkFilesReadable(files ...string) error {
	var g errgroup.Group
	errs := make([]error, len(files))
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			info, err := os.Stat(f)
			switch {
			case err != nil:
				errs[i] = fmt.Errorf("%s: %w", f, err)
			case info.IsDir():
				errs[i] = fmt.Errorf("%s: is a directory", f)
			}
			return nil
		})
	}
	_ = g.Wait()
	return multierr.Combine(errs...)
}
