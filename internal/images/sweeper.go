package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// IDChecker reports which of the given property ids still exist.
type IDChecker interface {
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// Sweeper removes variant sets whose property no longer exists. Sets with
// files younger than the grace period are left alone, so a property that
// is being created is never touched.
type Sweeper struct {
	gen     *Generator
	checker IDChecker
	grace   time.Duration
	logger  *slog.Logger

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewSweeper(gen *Generator, checker IDChecker, grace time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		gen:     gen,
		checker: checker,
		grace:   grace,
		logger:  logger,
		NowFunc: time.Now,
	}
}

// Sweep removes orphaned variant sets and stale temp files and returns the
// ids of the removed sets.
func (s *Sweeper) Sweep(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.gen.Dir())
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	cutoff := s.NowFunc().Add(-s.grace)

	// newest modification time per id.
	newest := make(map[string]time.Time)
	var errs []error

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			// removed in the meantime.
			continue
		}

		name := e.Name()
		if strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp") {
			if info.ModTime().Before(cutoff) {
				err := os.Remove(filepath.Join(s.gen.Dir(), name))
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					errs = append(errs, err)
				}
			}
			continue
		}

		id, ok := idOf(name)
		if !ok {
			continue
		}

		if info.ModTime().After(newest[id]) {
			newest[id] = info.ModTime()
		}
	}

	candidates := make([]string, 0, len(newest))
	for id, mod := range newest {
		if mod.Before(cutoff) {
			candidates = append(candidates, id)
		}
	}
	sort.Strings(candidates)

	if len(candidates) == 0 {
		return nil, errors.Join(errs...)
	}

	existing, err := s.checker.ExistingIDs(ctx, candidates)
	if err != nil {
		return nil, errors.Join(append(errs, err)...)
	}

	removed := make([]string, 0)
	for _, id := range candidates {
		if existing[id] {
			continue
		}

		err := s.gen.Remove(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, id)
	}

	if len(removed) > 0 {
		s.logger.Info("removed orphaned property images", "count", len(removed), "ids", removed)
	}

	return removed, errors.Join(errs...)
}

// Schedule runs Sweep on c according to the cron schedule.
func (s *Sweeper) Schedule(ctx context.Context, c *cron.Cron, schedule string, timeout time.Duration) (cron.EntryID, error) {
	return c.AddFunc(schedule, func() {
		sCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		_, err := s.Sweep(sCtx)
		if err != nil {
			s.logger.Error("image sweep failed", "error", err)
		}
	})
}

// idOf extracts the property id from a variant filename.
func idOf(name string) (string, bool) {
	if len(name) < 24 {
		return "", false
	}

	id := name[:24]
	if ValidateID(id) != nil {
		return "", false
	}

	for _, fn := range Filenames(id) {
		if fn == name {
			return id, true
		}
	}

	return "", false
}
