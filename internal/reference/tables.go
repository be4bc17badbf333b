package reference

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Tables bundles the optional reference tables. Either field may be nil.
type Tables struct {
	Norms      *NormTable
	Facilities *FacilityTable
}

// Load reads both tables concurrently. A table that fails to load is left nil
// and its error is included in the joined error; the other table is still
// returned. An empty path skips that table without error.
func Load(ctx context.Context, normPath, facilityPath string) (Tables, error) {
	var (
		tables               Tables
		normErr, facilityErr error
	)

	g, _ := errgroup.WithContext(ctx)
	if normPath != "" {
		g.Go(func() error {
			tables.Norms, normErr = LoadNormTable(normPath)
			if normErr != nil {
				normErr = fmt.Errorf("norm table: %w", normErr)
			}
			return nil
		})
	}
	if facilityPath != "" {
		g.Go(func() error {
			tables.Facilities, facilityErr = LoadFacilityTable(facilityPath)
			if facilityErr != nil {
				facilityErr = fmt.Errorf("facility table: %w", facilityErr)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return tables, err
	}
	if err := ctx.Err(); err != nil {
		return tables, err
	}
	return tables, errors.Join(normErr, facilityErr)
}
