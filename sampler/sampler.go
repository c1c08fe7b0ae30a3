// Package sampler picks the cities a game is played between. It works out
// the population a city needs for the chosen difficulty and then draws random
// feature ids until two qualifying cities turn up.
package sampler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/wanderer/backend"
	"github.com/domino14/wanderer/city"
)

// DefaultMaxRounds bounds the number of query rounds spent on one pair.
const DefaultMaxRounds = 1000

const batchSize = 2

// FeatureQuerier is the part of the feature service the sampler needs.
type FeatureQuerier interface {
	QueryByIDs(ctx context.Context, ids []int64) ([]city.City, error)
	QueryStatistic(ctx context.Context, stat backend.Statistic, field, where string) (int64, error)
	QueryRanked(ctx context.Context, where, orderBy string, offset, limit int) ([]city.City, error)
}

// Sampler draws city pairs from a feature layer.
type Sampler struct {
	features  FeatureQuerier
	maxRounds int
	intn      func(n int) int
}

// New creates a sampler. A maxRounds of zero or less removes the bound on
// query rounds, in which case a sparse layer can keep the sampler looping.
func New(features FeatureQuerier, maxRounds int) *Sampler {
	return &Sampler{
		features:  features,
		maxRounds: maxRounds,
		intn:      frand.Intn,
	}
}

// SetRandSource replaces the uniform source used for id draws. intn must
// return a value in [0, n).
func (s *Sampler) SetRandSource(intn func(n int) int) {
	s.intn = intn
}

// EligibleCount is the number of cities with a known population.
func (s *Sampler) EligibleCount(ctx context.Context) (int, error) {
	n, err := s.features.QueryStatistic(ctx, backend.StatCount, backend.IDField, backend.PopulationKnown())
	if err != nil {
		return 0, fmt.Errorf("failed to count eligible cities: %w", err)
	}
	return int(n), nil
}

// ResolveThreshold returns the population of the cityCount-th most populous
// city, which is the minimum population for a game over that many cities.
// AllCities uses the full eligible count.
func (s *Sampler) ResolveThreshold(ctx context.Context, cityCount int) (int64, error) {
	if cityCount <= AllCities {
		n, err := s.EligibleCount(ctx)
		if err != nil {
			return 0, err
		}
		cityCount = n
	}
	if cityCount <= 0 {
		return 0, backend.QueryErrorf("no cities have a population")
	}
	ranked, err := s.features.QueryRanked(ctx, backend.PopulationKnown(),
		backend.PopulationField+" DESC", cityCount-1, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to rank cities: %w", err)
	}
	if len(ranked) == 0 {
		return 0, backend.QueryErrorf("no city at population rank %d", cityCount)
	}
	if !ranked[0].HasPopulation {
		return 0, backend.QueryErrorf("city at population rank %d has no population", cityCount)
	}
	log.Debug().Int("city-count", cityCount).Int64("min-population", ranked[0].Population).
		Msg("resolved population threshold")
	return ranked[0].Population, nil
}

// IDRange returns the smallest and largest feature id among cities meeting
// the minimum population.
func (s *Sampler) IDRange(ctx context.Context, minPopulation int64) (int64, int64, error) {
	where := backend.PopulationAtLeast(minPopulation)
	minID, err := s.features.QueryStatistic(ctx, backend.StatMin, backend.IDField, where)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get minimum id: %w", err)
	}
	maxID, err := s.features.QueryStatistic(ctx, backend.StatMax, backend.IDField, where)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get maximum id: %w", err)
	}
	if maxID < minID {
		return 0, 0, backend.QueryErrorf("empty id range [%d, %d]", minID, maxID)
	}
	return minID, maxID, nil
}

// SampleDistinctPair draws random ids in [minID, maxID], never the same id
// twice, two per query, until two distinct cities meeting minPopulation have
// been fetched. The first qualifying city is where the player starts.
func (s *Sampler) SampleDistinctPair(ctx context.Context, minID, maxID, minPopulation int64) (city.Pair, error) {
	if maxID < minID {
		return city.Pair{}, backend.QueryErrorf("empty id range [%d, %d]", minID, maxID)
	}
	span := maxID - minID + 1
	tried := make(map[int64]struct{})
	found := make([]city.City, 0, 2)

	for round := 0; len(found) < 2; round++ {
		if s.maxRounds > 0 && round >= s.maxRounds {
			return city.Pair{}, backend.QueryErrorf(
				"found %d of 2 cities with population >= %d after %d rounds", len(found), minPopulation, round)
		}
		remaining := span - int64(len(tried))
		if remaining <= 0 {
			return city.Pair{}, backend.QueryErrorf(
				"tried every id in [%d, %d] and found %d of 2 cities", minID, maxID, len(found))
		}
		ids := s.draw(minID, span, tried, int(min(batchSize, remaining)))

		cities, err := s.features.QueryByIDs(ctx, ids)
		if err != nil {
			return city.Pair{}, fmt.Errorf("failed to fetch cities %v: %w", ids, err)
		}
		for _, c := range cities {
			if len(found) == 2 {
				break
			}
			if !c.Qualifies(minPopulation) {
				log.Debug().Int64("fid", c.ID).Bool("has-population", c.HasPopulation).
					Int64("population", c.Population).Msg("city does not qualify")
				continue
			}
			if lo.ContainsBy(found, func(f city.City) bool { return f.ID == c.ID }) {
				continue
			}
			found = append(found, c)
		}
	}
	return city.Pair{Current: found[0], Target: found[1]}, nil
}

// draw picks n ids not yet in tried and marks them as tried.
func (s *Sampler) draw(minID, span int64, tried map[int64]struct{}, n int) []int64 {
	ids := make([]int64, 0, n)
	for len(ids) < n {
		id := minID + int64(s.intn(int(span)))
		if _, ok := tried[id]; ok {
			continue
		}
		tried[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Setup is the outcome of preparing a game.
type Setup struct {
	MinPopulation int64
	Pair          city.Pair
}

// Prepare resolves the threshold for cityCount and samples a pair of cities
// that meet it.
func (s *Sampler) Prepare(ctx context.Context, cityCount int) (*Setup, error) {
	minPop, err := s.ResolveThreshold(ctx, cityCount)
	if err != nil {
		return nil, err
	}
	minID, maxID, err := s.IDRange(ctx, minPop)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("min-population", minPop).Int64("min-fid", minID).Int64("max-fid", maxID).
		Msg("sampling a random city pair")
	pair, err := s.SampleDistinctPair(ctx, minID, maxID, minPop)
	if err != nil {
		return nil, err
	}
	if err := pair.Valid(minPop); err != nil {
		return nil, backend.QueryErrorf("sampled pair is invalid: %v", err)
	}
	return &Setup{MinPopulation: minPop, Pair: pair}, nil
}
