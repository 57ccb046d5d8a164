// Package report turns a fresh feed snapshot plus persisted history into one
// classified price report per (fuel type, region) pair.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/timnew/Fuel-price/pkg/feed"
	"github.com/timnew/Fuel-price/pkg/fuel"
)

// HistoryStore is the persistence the builder reads and writes. Get returns
// an empty list for a key that was never written; Put replaces the whole
// stored list for a key.
type HistoryStore interface {
	Get(ctx context.Context, key fuel.Key) ([]fuel.PricePoint, error)
	Put(ctx context.Context, key fuel.Key, points []fuel.PricePoint) error
}

// Report is the classified outcome for one (fuel type, region) pair in one
// run. Immutable once built.
type Report struct {
	FuelType fuel.FuelType
	Region   fuel.Region

	// LatestPrices are this run's observations, ordered by index ascending.
	// The first entry is the representative price.
	LatestPrices []fuel.PricePoint

	// HistoryPrices is the stored history after this run's update, oldest
	// first.
	HistoryPrices []fuel.PricePoint

	PriceDelta float64
	Trend      fuel.Trend
}

// Set maps every (fuel type, region) pair to its report for one run.
// Iterate it through fuel.Types() x fuel.Regions() for a stable order.
type Set map[fuel.Key]Report

// Builder owns the per-run history read-modify-write. History for a key is
// touched at most once per run.
type Builder struct {
	store          HistoryStore
	alertThreshold float64
	historyLimit   int
}

func NewBuilder(store HistoryStore, alertThreshold float64, historyLimit int) *Builder {
	return &Builder{
		store:          store,
		alertThreshold: alertThreshold,
		historyLimit:   historyLimit,
	}
}

// BuildSet builds a report for every pair of the fixed fuel-type and region
// lists, in that order. A store failure skips only the affected pair; the
// collected errors are returned for the caller to log.
func (b *Builder) BuildSet(ctx context.Context, observations []feed.Observation) (Set, []error) {
	set := make(Set, len(fuel.Types())*len(fuel.Regions()))
	var errs []error
	for _, fuelType := range fuel.Types() {
		for _, region := range fuel.Regions() {
			r, err := b.buildReport(ctx, fuelType, region, observations)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			set[fuel.Key{FuelType: fuelType, Region: region}] = r
		}
	}
	return set, errs
}

func (b *Builder) buildReport(ctx context.Context, fuelType fuel.FuelType, region fuel.Region, observations []feed.Observation) (Report, error) {
	key := fuel.Key{FuelType: fuelType, Region: region}
	latest := latestPrices(observations, fuelType, region)

	history, err := b.store.Get(ctx, key)
	if err != nil {
		return Report{}, fmt.Errorf("load history for %s: %w", key, err)
	}

	if len(latest) == 0 {
		return Report{
			FuelType:      fuelType,
			Region:        region,
			HistoryPrices: history,
			Trend:         fuel.NoChange,
		}, nil
	}

	best := latest[0]
	updated, changed := updateHistory(history, best, b.historyLimit)
	if changed {
		if err := b.store.Put(ctx, key, updated); err != nil {
			return Report{}, fmt.Errorf("persist history for %s: %w", key, err)
		}
	}

	var delta float64
	trend := fuel.NoChange
	if changed {
		if len(updated) >= 2 {
			delta = updated[len(updated)-1].Price - updated[len(updated)-2].Price
		} else {
			// First sighting for this key: the price itself stands in for
			// the delta. Intentional, kept for digest continuity.
			delta = updated[0].Price
		}
		trend = fuel.ClassifyTrend(delta, b.alertThreshold)
	}

	return Report{
		FuelType:      fuelType,
		Region:        region,
		LatestPrices:  latest,
		HistoryPrices: updated,
		PriceDelta:    delta,
		Trend:         trend,
	}, nil
}

// updateHistory appends best unless the stored tail already carries exactly
// the same price. At most one point is added per run, so eviction drops a
// single oldest entry.
func updateHistory(history []fuel.PricePoint, best fuel.PricePoint, limit int) ([]fuel.PricePoint, bool) {
	if len(history) > 0 && history[len(history)-1].Price == best.Price {
		return history, false
	}
	updated := make([]fuel.PricePoint, 0, len(history)+1)
	updated = append(updated, history...)
	updated = append(updated, best)
	if len(updated) > limit {
		updated = updated[1:]
	}
	return updated, true
}

// latestPrices filters observations down to one (fuel type, region) pair and
// orders them by index ascending. Equal indexes keep feed order.
func latestPrices(observations []feed.Observation, fuelType fuel.FuelType, region fuel.Region) []fuel.PricePoint {
	var matched []feed.Observation
	for _, o := range observations {
		if o.FuelType == fuelType && o.Region == region {
			matched = append(matched, o)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Index < matched[j].Index
	})
	points := make([]fuel.PricePoint, 0, len(matched))
	for _, o := range matched {
		points = append(points, o.Point)
	}
	return points
}
